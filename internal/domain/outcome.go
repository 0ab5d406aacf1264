package domain

// Outcome labels reported to metric hooks by the queue client and deal view.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeEncodeFailed = "encode_failed"
	OutcomeQueueFailed  = "queue_failed"
)
