package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/pieceflow/dealbridge/internal/domain"
	"github.com/pieceflow/dealbridge/internal/repository"
)

// Column names shared by the stage views.
const (
	colAggregate = "aggregate"
	colInserted  = "inserted"
	colSigned    = "signed"
	colProcessed = "processed"
)

// isoMillis matches the ISO-8601 form the rest of the pipeline emits.
const isoMillis = "2006-01-02T15:04:05.000Z"

// textTimeLayouts are tried in order when a driver hands back a timestamp as text.
var textTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

var errNullColumn = errors.New("unexpected NULL")

func projectPending(row repository.Row) (domain.DealPending, error) {
	raw := row[colAggregate]
	if raw == nil {
		return domain.DealPending{}, fmt.Errorf("%s: %w", colAggregate, errNullColumn)
	}
	aggregate, err := parseCID(raw)
	if err != nil {
		return domain.DealPending{}, fmt.Errorf("%s: %w", colAggregate, err)
	}

	if row[colInserted] == nil {
		return domain.DealPending{}, fmt.Errorf("%s: %w", colInserted, errNullColumn)
	}
	inserted, err := asTime(row[colInserted])
	if err != nil {
		return domain.DealPending{}, fmt.Errorf("%s: %w", colInserted, err)
	}

	return domain.DealPending{
		Aggregate: aggregate,
		Inserted:  inserted.UTC().Format(isoMillis),
	}, nil
}

func projectSigned(row repository.Row) (domain.DealSigned, error) {
	aggregate, err := maybeCID(row[colAggregate])
	if err != nil {
		return domain.DealSigned{}, fmt.Errorf("%s: %w", colAggregate, err)
	}
	signed, err := optionalTime(row[colSigned])
	if err != nil {
		return domain.DealSigned{}, fmt.Errorf("%s: %w", colSigned, err)
	}
	return domain.DealSigned{Aggregate: aggregate, Signed: signed}, nil
}

func projectProcessed(row repository.Row) (domain.DealProcessed, error) {
	aggregate, err := maybeCID(row[colAggregate])
	if err != nil {
		return domain.DealProcessed{}, fmt.Errorf("%s: %w", colAggregate, err)
	}
	processed, err := optionalTime(row[colProcessed])
	if err != nil {
		return domain.DealProcessed{}, fmt.Errorf("%s: %w", colProcessed, err)
	}
	return domain.DealProcessed{Aggregate: aggregate, Processed: processed}, nil
}

// maybeCID never hands a NULL to the parser.
func maybeCID(v any) (domain.MaybeCID, error) {
	if v == nil {
		return domain.NoCID(), nil
	}
	c, err := parseCID(v)
	if err != nil {
		return domain.MaybeCID{}, err
	}
	return domain.SomeCID(c), nil
}

func parseCID(v any) (cid.Cid, error) {
	switch x := v.(type) {
	case string:
		return cid.Decode(x)
	case []byte:
		return cid.Decode(string(x))
	}
	return cid.Undef, fmt.Errorf("expected text, got %T", v)
}

func optionalTime(v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := asTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func asTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return parseTextTime(string(x))
	case string:
		return parseTextTime(x)
	}
	return time.Time{}, fmt.Errorf("expected timestamp, got %T", v)
}

func parseTextTime(s string) (time.Time, error) {
	for _, layout := range textTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
