package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/teamops/assignment-service/internal/domain"
)

// MockWorkItemRepository is an in-memory work item store that derives
// dependency queries from the items' DependsOn lists.
type MockWorkItemRepository struct {
	Items map[string]*domain.WorkItem

	CreateErr           error
	GetByIDErr          error
	UpdateAssignmentErr error
	UpdateStatusErr     error
	SetCompletedErr     error
	ListBlockedErr      error
	CountErr            error
	ListPendingErr      error

	// UpdateStatusErrFor fails status updates for specific item ids, used
	// to exercise per-dependent failure isolation in cascades.
	UpdateStatusErrFor map[string]error
}

func NewMockWorkItemRepository(items ...domain.WorkItem) *MockWorkItemRepository {
	m := &MockWorkItemRepository{Items: make(map[string]*domain.WorkItem)}
	for i := range items {
		cp := items[i]
		m.Items[cp.ID] = &cp
	}
	return m
}

func (m *MockWorkItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *item
	m.Items[cp.ID] = &cp
	return nil
}

func (m *MockWorkItemRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.Items[id]
	return ok, nil
}

func (m *MockWorkItemRepository) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	item, ok := m.Items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (m *MockWorkItemRepository) UpdateAssignment(ctx context.Context, id string, status domain.WorkItemStatus, assigneeID string) error {
	if m.UpdateAssignmentErr != nil {
		return m.UpdateAssignmentErr
	}
	item, ok := m.Items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	item.AssigneeID = assigneeID
	return nil
}

func (m *MockWorkItemRepository) UpdateStatus(ctx context.Context, id string, status domain.WorkItemStatus) error {
	if err, ok := m.UpdateStatusErrFor[id]; ok {
		return err
	}
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	item, ok := m.Items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

func (m *MockWorkItemRepository) SetCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	if m.SetCompletedErr != nil {
		return false, m.SetCompletedErr
	}
	item, ok := m.Items[id]
	if !ok {
		return false, nil
	}
	if item.Status == domain.WorkItemStatusCompleted {
		return false, nil
	}
	item.Status = domain.WorkItemStatusCompleted
	item.CompletedAt = completedAt.Unix()
	return true, nil
}

func (m *MockWorkItemRepository) ListBlockedByDependency(ctx context.Context, dependencyID string) ([]domain.WorkItem, error) {
	if m.ListBlockedErr != nil {
		return nil, m.ListBlockedErr
	}
	out := make([]domain.WorkItem, 0)
	for _, item := range m.Items {
		if item.Status != domain.WorkItemStatusBlocked {
			continue
		}
		for _, dep := range item.DependsOn {
			if dep == dependencyID {
				out = append(out, *item)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockWorkItemRepository) CountIncompleteDependencies(ctx context.Context, itemID string) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	item, ok := m.Items[itemID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	count := 0
	for _, depID := range item.DependsOn {
		dep, ok := m.Items[depID]
		if !ok || dep.Status != domain.WorkItemStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (m *MockWorkItemRepository) ListPendingByAssignee(ctx context.Context, assigneeID string) ([]domain.WorkItem, error) {
	if m.ListPendingErr != nil {
		return nil, m.ListPendingErr
	}
	out := make([]domain.WorkItem, 0)
	for _, item := range m.Items {
		if item.AssigneeID != assigneeID {
			continue
		}
		if item.Status != domain.WorkItemStatusAssigned {
			continue
		}
		if item.Priority == domain.PriorityCritical {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
