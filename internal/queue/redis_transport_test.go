package queue_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pieceflow/dealbridge/internal/queue"
)

type fakeStream struct {
	args []*goredis.XAddArgs
	id   string
	err  error
}

func (f *fakeStream) XAdd(_ context.Context, a *goredis.XAddArgs) *goredis.StringCmd {
	f.args = append(f.args, a)
	return goredis.NewStringResult(f.id, f.err)
}

func TestRedisStreamTransport_Send(t *testing.T) {
	fake := &fakeStream{id: "1700000000000-0"}
	tr := queue.NewRedisStreamTransport(fake, 10_000)

	resp, err := tr.Send(context.Background(), queue.SendRequest{QueueURL: "piece-queue", Body: "{}", GroupID: "g1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.MessageID != "1700000000000-0" {
		t.Fatalf("unexpected response %+v", resp)
	}

	a := fake.args[0]
	if a.Stream != "piece-queue" || a.MaxLen != 10_000 || !a.Approx {
		t.Fatalf("unexpected xadd args %+v", a)
	}
	values := a.Values.(map[string]any)
	if values[queue.StreamFieldBody] != "{}" || values[queue.StreamFieldGroup] != "g1" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestRedisStreamTransport_NoGroup(t *testing.T) {
	fake := &fakeStream{id: "1-0"}
	tr := queue.NewRedisStreamTransport(fake, 0)

	if _, err := tr.Send(context.Background(), queue.SendRequest{QueueURL: "q", Body: "{}"}); err != nil {
		t.Fatal(err)
	}
	values := fake.args[0].Values.(map[string]any)
	if _, ok := values[queue.StreamFieldGroup]; ok {
		t.Fatal("expected no group field")
	}
	if fake.args[0].MaxLen != 0 {
		t.Fatal("expected uncapped stream")
	}
}

func TestRedisStreamTransport_Error(t *testing.T) {
	cause := errors.New("READONLY You can't write against a read only replica")
	tr := queue.NewRedisStreamTransport(&fakeStream{err: cause}, 0)

	if _, err := tr.Send(context.Background(), queue.SendRequest{QueueURL: "q", Body: "{}"}); !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
}
