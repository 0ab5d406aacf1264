package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	apimw "github.com/pieceflow/dealbridge/internal/api/middleware"
	"github.com/pieceflow/dealbridge/internal/domain"
)

// MessageGroupHeader may carry the message group id instead of the body.
const MessageGroupHeader = "X-Message-Group-ID"

// PieceQueue is the producer side of the aggregation queue.
type PieceQueue interface {
	Add(ctx context.Context, record domain.PieceMessage, opts domain.AddOptions) error
}

// EnqueuePieceRequest is the inbound payload for POST /api/v1/pieces.
type EnqueuePieceRequest struct {
	Piece          string         `json:"piece"`
	Group          string         `json:"group,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
	MessageGroupID string         `json:"messageGroupId,omitempty"`
}

// PieceHandler accepts piece work items and hands them to the queue.
type PieceHandler struct {
	q PieceQueue
}

func NewPieceHandler(q PieceQueue) *PieceHandler {
	return &PieceHandler{q: q}
}

// Enqueue handles POST /api/v1/pieces
//
// @Summary  Enqueue a piece for aggregation
// @Tags     pieces
// @Accept   json
// @Produce  json
// @Param    X-Message-Group-ID  header    string               false  "Ordered delivery group"
// @Param    body                body      EnqueuePieceRequest  true   "Piece message"
// @Success  202                 {object}  map[string]string
// @Failure  422                 {object}  map[string]string
// @Failure  502                 {object}  map[string]string
// @Router   /api/v1/pieces [post]
func (h *PieceHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req EnqueuePieceRequest
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := req.toMessage()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	groupID := req.MessageGroupID
	if groupID == "" {
		groupID = r.Header.Get(MessageGroupHeader)
	}

	if err := h.q.Add(r.Context(), msg, domain.AddOptions{MessageGroupID: groupID}); err != nil {
		apimw.Logger(r.Context()).Warn("enqueue piece failed",
			zap.String("piece", req.Piece),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "piece": req.Piece})
}

func (req EnqueuePieceRequest) toMessage() (domain.PieceMessage, error) {
	if req.Piece == "" {
		return domain.PieceMessage{}, domain.ErrMissingPiece
	}
	piece, err := cid.Decode(req.Piece)
	if err != nil {
		return domain.PieceMessage{}, fmt.Errorf("piece: %w", err)
	}

	msg := domain.PieceMessage{Piece: piece, Group: req.Group}
	if req.Payload != nil {
		payload, err := normalizeJSON(req.Payload)
		if err != nil {
			return domain.PieceMessage{}, fmt.Errorf("payload: %w", err)
		}
		m, ok := payload.(map[string]any)
		if !ok {
			return domain.PieceMessage{}, errors.New("payload must be a map")
		}
		msg.Payload = m
	}
	return msg, nil
}

// normalizeJSON turns decoded JSON into data-model values: json.Number
// becomes int64 when integral, float64 otherwise, and {"/": "<cid>"}
// objects become links.
func normalizeJSON(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		return x.Float64()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalizeJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		if len(x) == 1 {
			if s, ok := x["/"].(string); ok {
				c, err := cid.Decode(s)
				if err != nil {
					return nil, fmt.Errorf("link: %w", err)
				}
				return c, nil
			}
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalizeJSON(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	}
	return v, nil
}
