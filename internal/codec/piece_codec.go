package codec

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ipfs/go-cid"
	ipldcodec "github.com/ipld/go-ipld-prime/codec"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/pieceflow/dealbridge/internal/domain"
)

// Field names of the encoded message map.
const (
	fieldPiece   = "piece"
	fieldGroup   = "group"
	fieldPayload = "payload"
)

// encodeOptions pins canonical DAG-JSON output: links and bytes in their
// {"/": ...} forms and map keys in RFC 7049 order, so equal messages always
// produce equal bodies.
var encodeOptions = dagjson.EncodeOptions{
	EncodeLinks: true,
	EncodeBytes: true,
	MapSortMode: ipldcodec.MapSortMode_RFC7049,
}

var decodeOptions = dagjson.DecodeOptions{
	ParseLinks: true,
	ParseBytes: true,
}

// EncodeMessage serializes m to a DAG-JSON message body.
// Every failure wraps domain.ErrEncoding.
func EncodeMessage(m domain.PieceMessage) (string, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}

	nb := basicnode.Prototype.Any.NewBuilder()
	if err := assembleMessage(nb, m); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := encodeOptions.Encode(nb.Build(), &buf); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	return buf.String(), nil
}

// DecodeMessage is the inverse of EncodeMessage. Integers in the payload come
// back as int64 whatever width they were encoded from, so a payload built
// with int values compares equal only after normalising them to int64.
func DecodeMessage(body string) (domain.PieceMessage, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := decodeOptions.Decode(nb, strings.NewReader(body)); err != nil {
		return domain.PieceMessage{}, fmt.Errorf("decode message: %w", err)
	}
	n := nb.Build()
	if n.Kind() != datamodel.Kind_Map {
		return domain.PieceMessage{}, fmt.Errorf("decode message: expected map, got %s", n.Kind())
	}

	var m domain.PieceMessage

	pieceNode, err := n.LookupByString(fieldPiece)
	if err != nil {
		return domain.PieceMessage{}, fmt.Errorf("decode message: %s: %w", fieldPiece, err)
	}
	piece, err := asCID(pieceNode)
	if err != nil {
		return domain.PieceMessage{}, fmt.Errorf("decode message: %s: %w", fieldPiece, err)
	}
	m.Piece = piece

	if groupNode, err := n.LookupByString(fieldGroup); err == nil {
		if m.Group, err = groupNode.AsString(); err != nil {
			return domain.PieceMessage{}, fmt.Errorf("decode message: %s: %w", fieldGroup, err)
		}
	}

	if payloadNode, err := n.LookupByString(fieldPayload); err == nil {
		v, err := toValue(payloadNode)
		if err != nil {
			return domain.PieceMessage{}, fmt.Errorf("decode message: %s: %w", fieldPayload, err)
		}
		payload, ok := v.(map[string]any)
		if !ok {
			return domain.PieceMessage{}, fmt.Errorf("decode message: %s: expected map, got %s", fieldPayload, payloadNode.Kind())
		}
		m.Payload = payload
	}

	return m, nil
}

func assembleMessage(na datamodel.NodeAssembler, m domain.PieceMessage) error {
	size := int64(1)
	if m.Group != "" {
		size++
	}
	if m.Payload != nil {
		size++
	}

	ma, err := na.BeginMap(size)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	if err := assembleEntry(ma, fieldPiece, m.Piece); err != nil {
		return err
	}
	if m.Group != "" {
		if err := assembleEntry(ma, fieldGroup, m.Group); err != nil {
			return err
		}
	}
	if m.Payload != nil {
		if err := assembleEntry(ma, fieldPayload, m.Payload); err != nil {
			return err
		}
	}
	if err := ma.Finish(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	return nil
}

func assembleEntry(ma datamodel.MapAssembler, key string, v any) error {
	if err := ma.AssembleKey().AssignString(key); err != nil {
		return fmt.Errorf("%w: key %q: %w", domain.ErrEncoding, key, err)
	}
	if err := assemble(ma.AssembleValue(), v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// assemble writes a Go value into na. Only IPLD data-model shapes are
// accepted; anything else is an encoding error.
func assemble(na datamodel.NodeAssembler, v any) error {
	var err error
	switch x := v.(type) {
	case nil:
		err = na.AssignNull()
	case bool:
		err = na.AssignBool(x)
	case int:
		err = na.AssignInt(int64(x))
	case int8:
		err = na.AssignInt(int64(x))
	case int16:
		err = na.AssignInt(int64(x))
	case int32:
		err = na.AssignInt(int64(x))
	case int64:
		err = na.AssignInt(x)
	case uint8:
		err = na.AssignInt(int64(x))
	case uint16:
		err = na.AssignInt(int64(x))
	case uint32:
		err = na.AssignInt(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return fmt.Errorf("%w: integer %d overflows int64", domain.ErrEncoding, x)
		}
		err = na.AssignInt(int64(x))
	case float32:
		return assemble(na, float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: float %v has no JSON form", domain.ErrEncoding, x)
		}
		err = na.AssignFloat(x)
	case string:
		err = na.AssignString(x)
	case []byte:
		err = na.AssignBytes(x)
	case cid.Cid:
		if !x.Defined() {
			return fmt.Errorf("%w: undefined content identifier", domain.ErrEncoding)
		}
		err = na.AssignLink(cidlink.Link{Cid: x})
	case []any:
		la, lerr := na.BeginList(int64(len(x)))
		if lerr != nil {
			return fmt.Errorf("%w: %w", domain.ErrEncoding, lerr)
		}
		for i, e := range x {
			if err := assemble(la.AssembleValue(), e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		err = la.Finish()
	case map[string]any:
		// "/" introduces the link and bytes forms; a map using it would not
		// decode back to itself.
		if _, reserved := x["/"]; reserved {
			return fmt.Errorf("%w: map key \"/\" is reserved", domain.ErrEncoding)
		}
		ma, merr := na.BeginMap(int64(len(x)))
		if merr != nil {
			return fmt.Errorf("%w: %w", domain.ErrEncoding, merr)
		}
		for k, e := range x {
			if err := assembleEntry(ma, k, e); err != nil {
				return err
			}
		}
		err = ma.Finish()
	default:
		return fmt.Errorf("%w: unsupported value of type %T", domain.ErrEncoding, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	return nil
}

func toValue(n datamodel.Node) (any, error) {
	switch n.Kind() {
	case datamodel.Kind_Null:
		return nil, nil
	case datamodel.Kind_Bool:
		return n.AsBool()
	case datamodel.Kind_Int:
		return n.AsInt()
	case datamodel.Kind_Float:
		return n.AsFloat()
	case datamodel.Kind_String:
		return n.AsString()
	case datamodel.Kind_Bytes:
		return n.AsBytes()
	case datamodel.Kind_Link:
		return asCID(n)
	case datamodel.Kind_List:
		out := make([]any, 0, n.Length())
		it := n.ListIterator()
		for !it.Done() {
			_, e, err := it.Next()
			if err != nil {
				return nil, err
			}
			v, err := toValue(e)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case datamodel.Kind_Map:
		out := make(map[string]any, n.Length())
		it := n.MapIterator()
		for !it.Done() {
			k, e, err := it.Next()
			if err != nil {
				return nil, err
			}
			ks, err := k.AsString()
			if err != nil {
				return nil, err
			}
			v, err := toValue(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ks, err)
			}
			out[ks] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected node kind %s", n.Kind())
}

func asCID(n datamodel.Node) (cid.Cid, error) {
	lnk, err := n.AsLink()
	if err != nil {
		return cid.Undef, err
	}
	cl, ok := lnk.(cidlink.Link)
	if !ok {
		return cid.Undef, fmt.Errorf("unsupported link type %T", lnk)
	}
	return cl.Cid, nil
}
