// Package notify delivers assignment notifications. The log notifier is the
// default sink; real channels (email, chat webhooks) plug in behind the same
// service.Notifier interface.
package notify

import (
	"context"
	"log/slog"
)

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAssignment(ctx context.Context, workItemID, assigneeID string) error {
	n.logger.Info("work item assigned",
		"work_item_id", workItemID,
		"assignee_id", assigneeID,
	)
	return nil
}
