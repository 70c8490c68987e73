package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teamops/assignment-service/internal/domain"
)

type MemberCapacityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TeamMember, error)
	UpdateCapacity(ctx context.Context, m *domain.TeamMember, expectedVersion int64) error
}

// CapacityService owns all writes to member workload counters. Selection
// works on read snapshots; only Commit is authoritative, and it re-validates
// the capacity limit against fresh data before every write.
type CapacityService struct {
	members MemberCapacityRepository
	logger  *slog.Logger
}

func NewCapacityService(members MemberCapacityRepository, logger *slog.Logger) *CapacityService {
	return &CapacityService{
		members: members,
		logger:  logger,
	}
}

// Commit adds hoursDelta to the member's committed hours: positive on
// assignment, negative on release. Committed hours clamp at zero;
// utilization and availability are recomputed from the new value.
//
// The write is guarded by the record's version counter. On a concurrent
// update it refreshes the snapshot and retries once, then reports a
// CAPACITY_CONFLICT. A missing member is logged and skipped, since commits
// also run from background automation where a member may have been removed
// mid-flight.
func (s *CapacityService) Commit(ctx context.Context, memberID string, hoursDelta float64) (*domain.TeamMember, error) {
	const maxAttempts = 2

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m, err := s.members.GetByID(ctx, memberID)
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("capacity commit target missing, skipping",
				"member_id", memberID,
				"hours_delta", hoursDelta,
			)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get member for capacity commit: %w", err)
		}

		next := m.CommittedHours + hoursDelta
		if next < 0 {
			next = 0
		}
		// Commit-time re-check: the score-time snapshot may be stale.
		if hoursDelta > 0 && next > m.MaxHours {
			return nil, domain.NewDomainError(domain.ErrorCodeCapacityConflict,
				"assignment would exceed maximum weekly hours")
		}

		expected := m.Version
		m.CommittedHours = next

		err = s.members.UpdateCapacity(ctx, m, expected)
		if err == nil {
			return m, nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("capacity commit target removed mid-update, skipping",
				"member_id", memberID,
			)
			return nil, nil
		}
		if domain.IsCode(err, domain.ErrorCodeCapacityConflict) && attempt < maxAttempts {
			s.logger.Info("capacity version conflict, retrying with fresh snapshot",
				"member_id", memberID,
			)
			continue
		}
		return nil, fmt.Errorf("update member capacity: %w", err)
	}

	return nil, domain.NewDomainError(domain.ErrorCodeCapacityConflict,
		"capacity record kept changing concurrently")
}
