package mocks

import "context"

type notification struct {
	WorkItemID string
	AssigneeID string
}

type MockNotifier struct {
	Sent      []notification
	NotifyErr error
}

func (m *MockNotifier) NotifyAssignment(ctx context.Context, workItemID, assigneeID string) error {
	if m.NotifyErr != nil {
		return m.NotifyErr
	}
	m.Sent = append(m.Sent, notification{WorkItemID: workItemID, AssigneeID: assigneeID})
	return nil
}
