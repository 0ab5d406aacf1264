package domain

import (
	"time"

	"github.com/ipfs/go-cid"
)

// Stage is one of the four read views over a deal's lifecycle.
type Stage string

const (
	StagePending  Stage = "pending"
	StageSigned   Stage = "signed"
	StageApproved Stage = "approved"
	StageRejected Stage = "rejected"
)

func (s Stage) IsValid() bool {
	switch s {
	case StagePending, StageSigned, StageApproved, StageRejected:
		return true
	}
	return false
}

// DefaultLimit bounds a view read when the caller does not pass a limit.
const DefaultLimit = 100

// ListOptions holds query parameters for a stage read.
// A zero Limit means DefaultLimit.
type ListOptions struct {
	Limit int
}

func (o ListOptions) Validate() error {
	if o.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// MaybeCID is an aggregate identifier that may be absent.
// Views fed by a partially written row carry a NULL aggregate; those map to
// the zero MaybeCID instead of a parse attempt.
type MaybeCID struct {
	c  cid.Cid
	ok bool
}

func SomeCID(c cid.Cid) MaybeCID { return MaybeCID{c: c, ok: true} }

func NoCID() MaybeCID { return MaybeCID{} }

// Get returns the identifier and whether it is present.
func (m MaybeCID) Get() (cid.Cid, bool) { return m.c, m.ok }

func (m MaybeCID) IsPresent() bool { return m.ok }

func (m MaybeCID) String() string {
	if !m.ok {
		return "<absent>"
	}
	return m.c.String()
}

func (m MaybeCID) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}
	return m.c.MarshalJSON()
}

// DealPending is a deal proposal that has not been signed yet.
type DealPending struct {
	Aggregate cid.Cid `json:"aggregate"`
	// Inserted is ISO-8601 in UTC with millisecond precision.
	Inserted string `json:"inserted"`
}

// DealSigned is a signed deal. Signed is nil when the view left it unset.
type DealSigned struct {
	Aggregate MaybeCID   `json:"aggregate"`
	Signed    *time.Time `json:"signed"`
}

// DealProcessed is the projection of both the approved and rejected views;
// which one a value came from is known only by the call that read it.
type DealProcessed struct {
	Aggregate MaybeCID   `json:"aggregate"`
	Processed *time.Time `json:"processed"`
}
