package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/teamops/assignment-service/internal/domain"
)

// MockMemberRepository is an in-memory capacity store. UpdateCapacity
// enforces the version counter the way the real repo does, and
// ConflictsRemaining simulates concurrent writers bumping the version
// between a caller's read and write.
type MockMemberRepository struct {
	Members map[string]*domain.TeamMember

	GetByIDErr         error
	UpdateCapacityErr  error
	ListErr            error
	UpsertErr          error
	ConflictsRemaining int
	UpdateCalls        int

	// MissingIDs hides members from GetByID while ListByTeam and
	// ListAll still return them, like a row deleted between the
	// candidate listing and the capacity write.
	MissingIDs map[string]bool
}

func NewMockMemberRepository(members ...domain.TeamMember) *MockMemberRepository {
	m := &MockMemberRepository{Members: make(map[string]*domain.TeamMember)}
	for i := range members {
		cp := members[i]
		m.Members[cp.ID] = &cp
	}
	return m
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	member, ok := m.Members[id]
	if !ok || m.MissingIDs[id] {
		return nil, sql.ErrNoRows
	}
	cp := *member
	return &cp, nil
}

func (m *MockMemberRepository) UpdateCapacity(ctx context.Context, member *domain.TeamMember, expectedVersion int64) error {
	m.UpdateCalls++
	if m.UpdateCapacityErr != nil {
		return m.UpdateCapacityErr
	}

	stored, ok := m.Members[member.ID]
	if !ok {
		return sql.ErrNoRows
	}

	if m.ConflictsRemaining > 0 {
		m.ConflictsRemaining--
		stored.Version++
		return domain.NewDomainError(domain.ErrorCodeCapacityConflict, "capacity record changed concurrently")
	}

	if stored.Version != expectedVersion {
		return domain.NewDomainError(domain.ErrorCodeCapacityConflict, "capacity record changed concurrently")
	}

	stored.CommittedHours = member.CommittedHours
	stored.Version++
	member.Version = stored.Version
	return nil
}

func (m *MockMemberRepository) ListByTeam(ctx context.Context, teamName string) ([]domain.TeamMember, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.TeamMember, 0, len(m.Members))
	for _, member := range m.Members {
		if member.TeamName == teamName {
			out = append(out, *member)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockMemberRepository) ListAll(ctx context.Context) ([]domain.TeamMember, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.TeamMember, 0, len(m.Members))
	for _, member := range m.Members {
		if member.IsActive {
			out = append(out, *member)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockMemberRepository) UpsertForTeam(ctx context.Context, teamName string, members []domain.TeamMember) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	for i := range members {
		cp := members[i]
		cp.TeamName = teamName
		m.Members[cp.ID] = &cp
	}
	return nil
}
