package domain

import "github.com/ipfs/go-cid"

// PieceMessage is the work item handed to the aggregation queue.
// It is encoded once by the codec and never mutated afterwards.
//
// Payload holds arbitrary IPLD data-model values: nil, bool, int64, float64,
// string, []byte, cid.Cid, []any and map[string]any. Encoding accepts the
// other Go integer widths as well, but decoding always yields int64.
type PieceMessage struct {
	Piece   cid.Cid
	Group   string
	Payload map[string]any
}

func (m PieceMessage) Validate() error {
	if !m.Piece.Defined() {
		return ErrMissingPiece
	}
	return nil
}

// AddOptions tunes a single queue Add call.
type AddOptions struct {
	// MessageGroupID opts in to ordered delivery among messages sharing the id.
	MessageGroupID string
}
