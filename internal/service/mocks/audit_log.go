package mocks

import (
	"context"

	"github.com/teamops/assignment-service/internal/domain"
)

type MockAuditLog struct {
	Recorded  []domain.AssignmentDecision
	RecordErr error
}

func (m *MockAuditLog) RecordDecision(ctx context.Context, decision domain.AssignmentDecision) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.Recorded = append(m.Recorded, decision)
	return nil
}
