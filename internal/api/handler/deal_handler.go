package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/pieceflow/dealbridge/internal/api/middleware"
	"github.com/pieceflow/dealbridge/internal/domain"
)

// DealReader serves stage-partitioned deal reads.
type DealReader interface {
	SelectStage(ctx context.Context, stage domain.Stage, opts domain.ListOptions) (any, error)
}

// DealHandler exposes the deal lifecycle views.
type DealHandler struct {
	deals DealReader
}

func NewDealHandler(deals DealReader) *DealHandler {
	return &DealHandler{deals: deals}
}

// List handles GET /api/v1/deals/{stage}
//
// @Summary  List deals in one lifecycle stage
// @Tags     deals
// @Produce  json
// @Param    stage  path      string  true   "pending, signed, approved or rejected"
// @Param    limit  query     int     false  "Maximum rows (default from DEAL_VIEW_DEFAULT_LIMIT)"
// @Success  200    {object}  map[string]any
// @Failure  400    {object}  map[string]string
// @Failure  503    {object}  map[string]string
// @Router   /api/v1/deals/{stage} [get]
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	stage := domain.Stage(chi.URLParam(r, "stage"))
	if !stage.IsValid() {
		mapError(w, domain.ErrInvalidStage)
		return
	}

	opts := domain.ListOptions{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			mapError(w, domain.ErrInvalidLimit)
			return
		}
		opts.Limit = n
	}

	deals, err := h.deals.SelectStage(r.Context(), stage, opts)
	if err != nil {
		apimw.Logger(r.Context()).Warn("deal view read failed",
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"stage": stage,
		"data":  deals,
	})
}
