package queue

import (
	"context"
	"net/http"
)

// StatusAccepted is the only transport status treated as success.
const StatusAccepted = http.StatusOK

// SendRequest is one outbound message.
// GroupID is optional; an empty value leaves delivery unordered.
type SendRequest struct {
	QueueURL string
	Body     string
	GroupID  string
}

// SendResponse reports what the queue service answered.
type SendResponse struct {
	StatusCode int
	MessageID  string
}

// Transport abstracts the external queue service.
// Implementations make exactly one attempt per call and return an error when
// the service does not answer with StatusAccepted. Faking this interface in
// tests gives full control over transport behaviour without a real queue.
type Transport interface {
	Send(ctx context.Context, req SendRequest) (SendResponse, error)
}
