package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// gatewayRequest is the JSON body posted to an HTTP queue gateway.
type gatewayRequest struct {
	Body    string `json:"body"`
	GroupID string `json:"groupId,omitempty"`
}

// gatewayResponse maps the gateway's 200 OK response body.
type gatewayResponse struct {
	MessageID string `json:"messageId"`
}

// HTTPTransport posts messages to a queue gateway that fronts the queue
// service over HTTP. QueueURL is the gateway endpoint.
type HTTPTransport struct {
	httpClient *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the message and expects 200 OK with a JSON body containing
// messageId. Any other status is returned together with an error.
func (t *HTTPTransport) Send(ctx context.Context, req SendRequest) (SendResponse, error) {
	body, err := json.Marshal(gatewayRequest{Body: req.Body, GroupID: req.GroupID})
	if err != nil {
		return SendResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.QueueURL, bytes.NewReader(body))
	if err != nil {
		return SendResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return SendResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	out := SendResponse{StatusCode: resp.StatusCode}
	if resp.StatusCode != StatusAccepted {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, fmt.Errorf("failed sending message to queue with code %d", resp.StatusCode)
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil && err != io.EOF {
		return out, fmt.Errorf("decode response: %w", err)
	}
	out.MessageID = gw.MessageID
	return out, nil
}

var _ Transport = (*HTTPTransport)(nil)
