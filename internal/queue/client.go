package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pieceflow/dealbridge/internal/codec"
	"github.com/pieceflow/dealbridge/internal/domain"
)

// Outcome labels reported to ClientConfig.OnResult.
const (
	OutcomeOK           = domain.OutcomeOK
	OutcomeEncodeFailed = domain.OutcomeEncodeFailed
	OutcomeQueueFailed  = domain.OutcomeQueueFailed
)

// Waiter throttles sends. *rate.Limiter satisfies it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// ClientConfig carries the per-queue settings injected by main.
type ClientConfig struct {
	QueueURL string
	// SendTimeout bounds the transport call; zero leaves only the caller's deadline.
	SendTimeout time.Duration
	// Limiter is optional (nil = unthrottled).
	Limiter Waiter
	// OnResult is an optional metric hook (nil = no-op).
	OnResult func(outcome string, latency time.Duration)
}

// Client is a typed producer for one queue. It encodes records and hands
// them to the transport with at most one attempt per Add; retry policy
// belongs to the caller or to the queue service's own redelivery.
//
// Client holds no mutable state and is safe for concurrent use.
type Client[T any] struct {
	transport Transport
	encode    func(T) (string, error)
	cfg       ClientConfig
	logger    *zap.Logger
}

func NewClient[T any](
	transport Transport,
	encode func(T) (string, error),
	cfg ClientConfig,
	logger *zap.Logger,
) *Client[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OnResult == nil {
		cfg.OnResult = func(string, time.Duration) {}
	}
	return &Client[T]{transport: transport, encode: encode, cfg: cfg, logger: logger}
}

// NewPieceClient returns the client used to feed aggregation workers.
func NewPieceClient(transport Transport, cfg ClientConfig, logger *zap.Logger) *Client[domain.PieceMessage] {
	return NewClient(transport, codec.EncodeMessage, cfg, logger)
}

// Add enqueues record.
//
// Errors:
//   - domain.ErrEncodeRecordFailed: record could not be encoded; no network call was made.
//   - domain.ErrQueueOperationFailed: throttling wait, transport call or status check failed.
//
// Both wrap the underlying cause. A nil return means the queue service accepted the message.
func (c *Client[T]) Add(ctx context.Context, record T, opts domain.AddOptions) error {
	start := time.Now()
	log := c.logger.With(zap.String("queue_url", c.cfg.QueueURL))

	body, err := c.encode(record)
	if err != nil {
		log.Warn("encode record failed", zap.Error(err))
		c.cfg.OnResult(OutcomeEncodeFailed, time.Since(start))
		return fmt.Errorf("%w: %w", domain.ErrEncodeRecordFailed, err)
	}

	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			log.Warn("send throttle wait aborted", zap.Error(err))
			c.cfg.OnResult(OutcomeQueueFailed, time.Since(start))
			return fmt.Errorf("%w: %w", domain.ErrQueueOperationFailed, err)
		}
	}

	sendCtx := ctx
	if c.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.cfg.SendTimeout)
		defer cancel()
	}

	resp, err := c.transport.Send(sendCtx, SendRequest{
		QueueURL: c.cfg.QueueURL,
		Body:     body,
		GroupID:  opts.MessageGroupID,
	})
	if err == nil && resp.StatusCode != StatusAccepted {
		err = fmt.Errorf("failed sending message to queue with code %d", resp.StatusCode)
	}
	if err != nil {
		log.Warn("queue send failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("message_group_id", opts.MessageGroupID),
			zap.Error(err),
		)
		c.cfg.OnResult(OutcomeQueueFailed, time.Since(start))
		return fmt.Errorf("%w: %w", domain.ErrQueueOperationFailed, err)
	}

	elapsed := time.Since(start)
	c.cfg.OnResult(OutcomeOK, elapsed)
	log.Debug("message enqueued",
		zap.String("message_id", resp.MessageID),
		zap.String("message_group_id", opts.MessageGroupID),
		zap.Duration("latency", elapsed),
	)
	return nil
}
