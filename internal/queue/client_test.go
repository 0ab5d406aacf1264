package queue_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/pieceflow/dealbridge/internal/codec"
	"github.com/pieceflow/dealbridge/internal/domain"
	"github.com/pieceflow/dealbridge/internal/queue"
)

const testQueueURL = "https://sqs.us-west-2.amazonaws.com/000000000000/piece-queue.fifo"

func testCID(t *testing.T, seed string) cid.Cid {
	t.Helper()
	c, err := cid.Prefix{Version: 1, Codec: cid.Raw, MhType: 0x12, MhLength: -1}.Sum([]byte(seed))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) observe(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func newClient(tr queue.Transport, rec *outcomeRecorder) *queue.Client[domain.PieceMessage] {
	return queue.NewPieceClient(tr, queue.ClientConfig{
		QueueURL: testQueueURL,
		OnResult: rec.observe,
	}, zap.NewNop())
}

func TestClient_Add_Accepted(t *testing.T) {
	tr := queue.NewMockTransport()
	rec := &outcomeRecorder{}
	c := newClient(tr, rec)
	piece := testCID(t, "piece")

	err := c.Add(context.Background(), domain.PieceMessage{Piece: piece}, domain.AddOptions{MessageGroupID: "g1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := tr.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one transport call, got %d", len(calls))
	}
	if calls[0].QueueURL != testQueueURL {
		t.Fatalf("expected queue url %q, got %q", testQueueURL, calls[0].QueueURL)
	}
	if calls[0].GroupID != "g1" {
		t.Fatalf("expected group id g1, got %q", calls[0].GroupID)
	}

	decoded, err := codec.DecodeMessage(calls[0].Body)
	if err != nil {
		t.Fatalf("body is not a valid message: %v", err)
	}
	if !decoded.Piece.Equals(piece) {
		t.Fatalf("expected piece %s, got %s", piece, decoded.Piece)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != queue.OutcomeOK {
		t.Fatalf("expected one ok outcome, got %v", rec.outcomes)
	}
}

func TestClient_Add_NoGroupID(t *testing.T) {
	tr := queue.NewMockTransport()
	c := newClient(tr, &outcomeRecorder{})

	if err := c.Add(context.Background(), domain.PieceMessage{Piece: testCID(t, "p")}, domain.AddOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := tr.Calls()[0].GroupID; got != "" {
		t.Fatalf("expected empty group id, got %q", got)
	}
}

func TestClient_Add_StatusNotAccepted(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusAccepted, http.StatusForbidden} {
		tr := queue.NewMockTransport()
		tr.StatusCode = code
		rec := &outcomeRecorder{}
		c := newClient(tr, rec)

		err := c.Add(context.Background(), domain.PieceMessage{Piece: testCID(t, "p")}, domain.AddOptions{MessageGroupID: "g1"})
		if !errors.Is(err, domain.ErrQueueOperationFailed) {
			t.Fatalf("code %d: expected ErrQueueOperationFailed, got %v", code, err)
		}
		if !strings.Contains(err.Error(), "code "+strconv.Itoa(code)) {
			t.Fatalf("code %d: expected error detail to include the status code, got %q", code, err)
		}
		if len(tr.Calls()) != 1 {
			t.Fatalf("code %d: expected a single attempt, got %d", code, len(tr.Calls()))
		}
		if rec.outcomes[0] != queue.OutcomeQueueFailed {
			t.Fatalf("code %d: expected queue_failed outcome, got %v", code, rec.outcomes)
		}
	}
}

func TestClient_Add_TransportError(t *testing.T) {
	tr := queue.NewMockTransport()
	boom := errors.New("connection reset")
	tr.SendErr = boom
	c := newClient(tr, &outcomeRecorder{})

	err := c.Add(context.Background(), domain.PieceMessage{Piece: testCID(t, "p")}, domain.AddOptions{})
	if !errors.Is(err, domain.ErrQueueOperationFailed) {
		t.Fatalf("expected ErrQueueOperationFailed, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected the transport error to be wrapped, got %v", err)
	}
	if len(tr.Calls()) != 1 {
		t.Fatalf("expected no internal retry, got %d calls", len(tr.Calls()))
	}
}

func TestClient_Add_EncodeFailureSkipsTransport(t *testing.T) {
	tests := []struct {
		name string
		msg  domain.PieceMessage
	}{
		{"undefined piece", domain.PieceMessage{}},
		{"unencodable payload", domain.PieceMessage{
			Piece:   testCID(t, "p"),
			Payload: map[string]any{"fn": func() {}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := queue.NewMockTransport()
			rec := &outcomeRecorder{}
			c := newClient(tr, rec)

			err := c.Add(context.Background(), tc.msg, domain.AddOptions{MessageGroupID: "g1"})
			if !errors.Is(err, domain.ErrEncodeRecordFailed) {
				t.Fatalf("expected ErrEncodeRecordFailed, got %v", err)
			}
			if errors.Is(err, domain.ErrQueueOperationFailed) {
				t.Fatal("encode failure must not be reported as a queue failure")
			}
			if n := len(tr.Calls()); n != 0 {
				t.Fatalf("expected zero transport calls, got %d", n)
			}
			if rec.outcomes[0] != queue.OutcomeEncodeFailed {
				t.Fatalf("expected encode_failed outcome, got %v", rec.outcomes)
			}
		})
	}
}

func TestClient_Add_CustomEncoder(t *testing.T) {
	tr := queue.NewMockTransport()
	c := queue.NewClient(tr, func(s string) (string, error) {
		if s == "" {
			return "", errors.New("empty record")
		}
		return strings.ToUpper(s), nil
	}, queue.ClientConfig{QueueURL: "q"}, nil)

	if err := c.Add(context.Background(), "hello", domain.AddOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := tr.Calls()[0].Body; got != "HELLO" {
		t.Fatalf("expected encoded body HELLO, got %q", got)
	}
	if err := c.Add(context.Background(), "", domain.AddOptions{}); !errors.Is(err, domain.ErrEncodeRecordFailed) {
		t.Fatalf("expected ErrEncodeRecordFailed, got %v", err)
	}
	if len(tr.Calls()) != 1 {
		t.Fatalf("expected the failed encode to skip transport, got %d calls", len(tr.Calls()))
	}
}

type blockingWaiter struct{}

func (blockingWaiter) Wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestClient_Add_LimiterCancelled(t *testing.T) {
	tr := queue.NewMockTransport()
	c := queue.NewPieceClient(tr, queue.ClientConfig{
		QueueURL: testQueueURL,
		Limiter:  blockingWaiter{},
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Add(ctx, domain.PieceMessage{Piece: testCID(t, "p")}, domain.AddOptions{})
	if !errors.Is(err, domain.ErrQueueOperationFailed) {
		t.Fatalf("expected ErrQueueOperationFailed, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded to be wrapped, got %v", err)
	}
	if len(tr.Calls()) != 0 {
		t.Fatalf("expected no transport call while throttled, got %d", len(tr.Calls()))
	}
}

// slowTransport blocks until the send context is done.
type slowTransport struct{}

func (slowTransport) Send(ctx context.Context, _ queue.SendRequest) (queue.SendResponse, error) {
	<-ctx.Done()
	return queue.SendResponse{}, ctx.Err()
}

func TestClient_Add_SendTimeout(t *testing.T) {
	c := queue.NewPieceClient(slowTransport{}, queue.ClientConfig{
		QueueURL:    testQueueURL,
		SendTimeout: 10 * time.Millisecond,
	}, nil)

	err := c.Add(context.Background(), domain.PieceMessage{Piece: testCID(t, "p")}, domain.AddOptions{})
	if !errors.Is(err, domain.ErrQueueOperationFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected a timed-out queue failure, got %v", err)
	}
}

func TestClient_Add_Concurrent(t *testing.T) {
	tr := queue.NewMockTransport()
	c := newClient(tr, &outcomeRecorder{})

	const n = 50
	pieces := make([]cid.Cid, n)
	for i := range pieces {
		pieces[i] = testCID(t, strconv.Itoa(i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(piece cid.Cid) {
			defer wg.Done()
			errs <- c.Add(context.Background(), domain.PieceMessage{Piece: piece}, domain.AddOptions{})
		}(pieces[i])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(tr.Calls()) != n {
		t.Fatalf("expected %d calls, got %d", n, len(tr.Calls()))
	}
}
