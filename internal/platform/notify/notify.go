package notify

import (
	"context"
	"log/slog"
)

// LogNotifier records notifications in the structured log. Delivery is
// best effort by contract, so a log line is an acceptable stand-in
// until a real channel is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, recipientID string, subject string, body string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification dispatched",
		"event", "notification_dispatched",
		"module", "internal/platform/notify",
		"layer", "platform",
		"recipient_id", recipientID,
		"subject", subject,
		"body", body,
	)
	return nil
}
