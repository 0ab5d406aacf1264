package queue

import (
	"context"
	"fmt"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
)

// Stream entry field names written by RedisStreamTransport.
const (
	StreamFieldBody  = "body"
	StreamFieldGroup = "group"
)

// StreamAdder is the slice of the go-redis client used for XADD.
type StreamAdder interface {
	XAdd(ctx context.Context, a *goredis.XAddArgs) *goredis.StringCmd
}

// RedisStreamTransport appends messages to a Redis stream named by the
// request's QueueURL. Consumer groups on the stream provide the durable,
// redeliverable side; the group id rides along as an entry field.
type RedisStreamTransport struct {
	rdb    StreamAdder
	maxLen int64
}

// NewRedisStreamTransport returns a transport over rdb. maxLen > 0 caps the
// stream approximately (XADD MAXLEN ~).
func NewRedisStreamTransport(rdb StreamAdder, maxLen int64) *RedisStreamTransport {
	return &RedisStreamTransport{rdb: rdb, maxLen: maxLen}
}

func (t *RedisStreamTransport) Send(ctx context.Context, req SendRequest) (SendResponse, error) {
	values := map[string]any{StreamFieldBody: req.Body}
	if req.GroupID != "" {
		values[StreamFieldGroup] = req.GroupID
	}

	args := &goredis.XAddArgs{
		Stream: req.QueueURL,
		Values: values,
	}
	if t.maxLen > 0 {
		args.MaxLen = t.maxLen
		args.Approx = true
	}

	id, err := t.rdb.XAdd(ctx, args).Result()
	if err != nil {
		return SendResponse{}, fmt.Errorf("redis xadd %s: %w", req.QueueURL, err)
	}
	if id == "" {
		return SendResponse{}, fmt.Errorf("redis xadd %s: empty entry id", req.QueueURL)
	}
	return SendResponse{StatusCode: http.StatusOK, MessageID: id}, nil
}

var _ Transport = (*RedisStreamTransport)(nil)
