package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pieceflow/dealbridge/internal/domain"
	"github.com/pieceflow/dealbridge/internal/repository"
)

// View names of the four deal stages.
const (
	PendingViewName  = "deal_pending"
	SignedViewName   = "deal_signed"
	ApprovedViewName = "deal_approved"
	RejectedViewName = "deal_rejected"
)

// Outcome labels reported to the read hook.
const (
	ReadOK    = domain.OutcomeOK
	ReadError = domain.OutcomeError
)

// stageView describes one stage: where its rows live and how a raw row
// becomes the typed projection.
type stageView[T any] struct {
	stage   domain.Stage
	view    string
	project func(repository.Row) (T, error)
}

var (
	pendingView  = stageView[domain.DealPending]{domain.StagePending, PendingViewName, projectPending}
	signedView   = stageView[domain.DealSigned]{domain.StageSigned, SignedViewName, projectSigned}
	approvedView = stageView[domain.DealProcessed]{domain.StageApproved, ApprovedViewName, projectProcessed}
	rejectedView = stageView[domain.DealProcessed]{domain.StageRejected, RejectedViewName, projectProcessed}
)

// DealView is the read model over a deal's lifecycle. It never writes;
// rows are owned by the write path and may briefly show one aggregate in
// more than one stage while it migrates.
type DealView struct {
	reader       repository.ViewReader
	defaultLimit int
	logger       *zap.Logger
	onRead       func(stage domain.Stage, outcome string, rows int)
}

// NewDealView constructs a view. defaultLimit <= 0 falls back to
// domain.DefaultLimit; logger and onRead are optional.
func NewDealView(
	reader repository.ViewReader,
	defaultLimit int,
	logger *zap.Logger,
	onRead func(stage domain.Stage, outcome string, rows int),
) *DealView {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if onRead == nil {
		onRead = func(domain.Stage, string, int) {}
	}
	return &DealView{reader: reader, defaultLimit: defaultLimit, logger: logger, onRead: onRead}
}

func (v *DealView) SelectAllPending(ctx context.Context, opts domain.ListOptions) ([]domain.DealPending, error) {
	return selectStage(ctx, v, pendingView, opts)
}

func (v *DealView) SelectAllSigned(ctx context.Context, opts domain.ListOptions) ([]domain.DealSigned, error) {
	return selectStage(ctx, v, signedView, opts)
}

func (v *DealView) SelectAllApproved(ctx context.Context, opts domain.ListOptions) ([]domain.DealProcessed, error) {
	return selectStage(ctx, v, approvedView, opts)
}

func (v *DealView) SelectAllRejected(ctx context.Context, opts domain.ListOptions) ([]domain.DealProcessed, error) {
	return selectStage(ctx, v, rejectedView, opts)
}

// SelectStage dispatches on stage and returns the typed slice as any.
func (v *DealView) SelectStage(ctx context.Context, stage domain.Stage, opts domain.ListOptions) (any, error) {
	switch stage {
	case domain.StagePending:
		return v.SelectAllPending(ctx, opts)
	case domain.StageSigned:
		return v.SelectAllSigned(ctx, opts)
	case domain.StageApproved:
		return v.SelectAllApproved(ctx, opts)
	case domain.StageRejected:
		return v.SelectAllRejected(ctx, opts)
	}
	return nil, domain.ErrInvalidStage
}

// selectStage is the single read path shared by every stage. Query and
// row-mapping failures both surface as domain.ErrDatabaseOperation, and
// nothing is retried. An empty view is a successful, empty read.
func selectStage[T any](ctx context.Context, v *DealView, s stageView[T], opts domain.ListOptions) ([]T, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit == 0 {
		limit = v.defaultLimit
	}

	log := v.logger.With(zap.String("view", s.view), zap.Int("limit", limit))

	rows, err := v.reader.SelectFrom(ctx, s.view, limit)
	if err != nil {
		log.Warn("deal view query failed", zap.Error(err))
		v.onRead(s.stage, ReadError, 0)
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseOperation, err)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	deals := make([]T, 0, len(rows))
	for i, row := range rows {
		d, err := s.project(row)
		if err != nil {
			log.Warn("deal view row unreadable", zap.Int("row", i), zap.Error(err))
			v.onRead(s.stage, ReadError, 0)
			return nil, fmt.Errorf("%w: %s row %d: %w", domain.ErrDatabaseOperation, s.view, i, err)
		}
		deals = append(deals, d)
	}

	v.onRead(s.stage, ReadOK, len(deals))
	log.Debug("deal view read", zap.Int("rows", len(deals)))
	return deals, nil
}
