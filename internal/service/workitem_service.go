package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamops/assignment-service/internal/assignment"
	"github.com/teamops/assignment-service/internal/domain"
)

type WorkItemRepository interface {
	Create(ctx context.Context, item *domain.WorkItem) error
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	UpdateAssignment(ctx context.Context, id string, status domain.WorkItemStatus, assigneeID string) error
	UpdateStatus(ctx context.Context, id string, status domain.WorkItemStatus) error
	SetCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error)
	ListBlockedByDependency(ctx context.Context, dependencyID string) ([]domain.WorkItem, error)
	CountIncompleteDependencies(ctx context.Context, itemID string) (int, error)
}

type RosterRepository interface {
	ListByTeam(ctx context.Context, teamName string) ([]domain.TeamMember, error)
}

type AuditLog interface {
	RecordDecision(ctx context.Context, decision domain.AssignmentDecision) error
}

// Notifier delivers assignment notifications on a side channel. Failures
// never roll back the assignment itself.
type Notifier interface {
	NotifyAssignment(ctx context.Context, workItemID, assigneeID string) error
}

type WorkItemService struct {
	items    WorkItemRepository
	roster   RosterRepository
	capacity *CapacityService
	selector *assignment.Selector
	audit    AuditLog
	notifier Notifier
	logger   *slog.Logger
	nowFunc  func() time.Time
}

func NewWorkItemService(
	items WorkItemRepository,
	roster RosterRepository,
	capacity *CapacityService,
	selector *assignment.Selector,
	audit AuditLog,
	notifier Notifier,
	logger *slog.Logger,
	nowFunc func() time.Time,
) *WorkItemService {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &WorkItemService{
		items:    items,
		roster:   roster,
		capacity: capacity,
		selector: selector,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		nowFunc:  nowFunc,
	}
}

func (s *WorkItemService) CreateWorkItem(ctx context.Context, item domain.WorkItem) (*domain.WorkItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	} else {
		exists, err := s.items.Exists(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("check work item exists: %w", err)
		}
		if exists {
			return nil, domain.NewDomainError(domain.ErrorCodeWorkItemExists, "work item already exists")
		}
	}

	if item.Title == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidation, "work item title is required")
	}
	if item.EstimatedHours < 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeValidation, "estimated hours must not be negative")
	}
	if item.Kind == "" {
		item.Kind = domain.WorkItemKindTask
	}
	if item.Priority == "" {
		item.Priority = domain.PriorityMedium
	}

	item.Status = domain.WorkItemStatusUnassigned
	item.AssigneeID = ""
	for _, depID := range item.DependsOn {
		dep, err := s.items.GetByID(ctx, depID)
		if err != nil {
			return nil, fmt.Errorf("get dependency %s: %w", depID, err)
		}
		if !dep.IsCompleted() {
			item.Status = domain.WorkItemStatusBlocked
		}
	}

	item.CreatedAt = s.nowFunc().Unix()

	if err := s.items.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("create work item: %w", err)
	}

	return &item, nil
}

// AssignWorkItem picks the best available team member for an unassigned item
// and commits the assignment. A decision with an empty assignee is a valid
// outcome, not an error: the item simply stays unassigned.
func (s *WorkItemService) AssignWorkItem(ctx context.Context, id string) (*domain.AssignmentDecision, error) {
	return s.assign(ctx, id, domain.MethodAIOptimized)
}

// BulkAssign runs assignment for each listed item, isolating failures so one
// bad item does not abort the batch.
func (s *WorkItemService) BulkAssign(ctx context.Context, ids []string) ([]domain.AssignmentDecision, error) {
	decisions := make([]domain.AssignmentDecision, 0, len(ids))
	for _, id := range ids {
		decision, err := s.assign(ctx, id, domain.MethodManualBulk)
		if err != nil {
			s.logger.Error("bulk assignment failed for item",
				"work_item_id", id,
				"error", err.Error(),
			)
			decisions = append(decisions, domain.AssignmentDecision{WorkItemID: id, Method: domain.MethodManualBulk})
			continue
		}
		decisions = append(decisions, *decision)
	}
	return decisions, nil
}

func (s *WorkItemService) assign(ctx context.Context, id string, method domain.AssignmentMethod) (*domain.AssignmentDecision, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get work item for assignment: %w", err)
	}

	if item.Status != domain.WorkItemStatusUnassigned {
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidStatus,
			fmt.Sprintf("work item is %s, only unassigned items can be assigned", item.Status))
	}

	candidates, err := s.roster.ListByTeam(ctx, item.TeamName)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	var decision domain.AssignmentDecision
	if item.Kind == domain.WorkItemKindReview {
		// Review checkpoints also get a backup reviewer from the
		// remaining pool; only the primary reserves capacity.
		primary, backup := s.selector.SelectWithBackup(*item, candidates)
		decision = primary
		decision.BackupID = backup.AssigneeID
	} else {
		decision = s.selector.Select(*item, candidates)
	}
	decision.Method = method
	if !decision.Assigned() {
		s.logger.Info("no eligible candidate",
			"work_item_id", item.ID,
			"candidates", len(candidates),
		)
		return &decision, nil
	}

	// Reserve capacity before making the assignment visible. A commit-time
	// conflict that survives the retry means the snapshot lost a race; the
	// item falls back to unassigned rather than overshooting someone's week.
	reserved, err := s.capacity.Commit(ctx, decision.AssigneeID, item.EstimatedHours)
	if err != nil {
		if domain.IsCode(err, domain.ErrorCodeCapacityConflict) {
			s.logger.Warn("capacity conflict at commit, leaving item unassigned",
				"work_item_id", item.ID,
				"member_id", decision.AssigneeID,
			)
			unassigned := domain.AssignmentDecision{WorkItemID: item.ID, Method: method}
			return &unassigned, nil
		}
		return nil, fmt.Errorf("commit capacity: %w", err)
	}
	if reserved == nil {
		// The chosen member was removed between scoring and commit;
		// assigning to them would dangle. Leave the item unassigned.
		s.logger.Warn("chosen assignee vanished before commit, leaving item unassigned",
			"work_item_id", item.ID,
			"member_id", decision.AssigneeID,
		)
		unassigned := domain.AssignmentDecision{WorkItemID: item.ID, Method: method}
		return &unassigned, nil
	}

	if err := s.items.UpdateAssignment(ctx, item.ID, domain.WorkItemStatusAssigned, decision.AssigneeID); err != nil {
		return nil, fmt.Errorf("persist assignment: %w", err)
	}

	s.recordAndNotify(ctx, decision)

	return &decision, nil
}

// StartWorkItem moves an assigned item into progress.
func (s *WorkItemService) StartWorkItem(ctx context.Context, id string) (*domain.WorkItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get work item for start: %w", err)
	}
	if item.Status != domain.WorkItemStatusAssigned {
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidStatus,
			fmt.Sprintf("work item is %s, only assigned items can be started", item.Status))
	}

	if err := s.items.UpdateStatus(ctx, id, domain.WorkItemStatusInProgress); err != nil {
		return nil, fmt.Errorf("update work item status: %w", err)
	}
	item.Status = domain.WorkItemStatusInProgress
	return item, nil
}

// CompleteWorkItem marks the item completed, releases the assignee's
// capacity and cascades to dependents: any blocked item whose dependencies
// are now all complete becomes unassigned and gets an assignment attempt.
//
// Completing an already-completed item is a no-op; the status transition in
// the store happens at most once, so capacity is never released twice. A
// failure on one dependent never aborts the others; collected failures come
// back in the result and the completion itself still stands.
func (s *WorkItemService) CompleteWorkItem(ctx context.Context, id string) (*domain.CascadeResult, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get work item for completion: %w", err)
	}

	result := &domain.CascadeResult{CompletedID: id}

	transitioned, err := s.items.SetCompleted(ctx, id, s.nowFunc())
	if err != nil {
		return nil, fmt.Errorf("set work item completed: %w", err)
	}
	if !transitioned {
		return result, nil
	}

	if item.AssigneeID != "" {
		if _, err := s.capacity.Commit(ctx, item.AssigneeID, -item.EstimatedHours); err != nil {
			s.logger.Error("failed to release capacity on completion",
				"work_item_id", id,
				"member_id", item.AssigneeID,
				"error", err.Error(),
			)
		}
	}

	dependents, err := s.items.ListBlockedByDependency(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list dependents: %w", err)
	}

	for _, dep := range dependents {
		if err := s.unblockAndAssign(ctx, dep, result); err != nil {
			result.Failed = append(result.Failed, domain.CascadeFailure{
				WorkItemID: dep.ID,
				Err:        err,
			})
			s.logger.Error("cascade failed for dependent item",
				"work_item_id", dep.ID,
				"completed_id", id,
				"error", err.Error(),
			)
		}
	}

	return result, nil
}

func (s *WorkItemService) unblockAndAssign(ctx context.Context, dep domain.WorkItem, result *domain.CascadeResult) error {
	incomplete, err := s.items.CountIncompleteDependencies(ctx, dep.ID)
	if err != nil {
		return fmt.Errorf("count incomplete dependencies: %w", err)
	}
	if incomplete > 0 {
		return nil
	}

	if err := s.items.UpdateStatus(ctx, dep.ID, domain.WorkItemStatusUnassigned); err != nil {
		return fmt.Errorf("unblock dependent: %w", err)
	}
	result.Unblocked = append(result.Unblocked, dep.ID)

	decision, err := s.assign(ctx, dep.ID, domain.MethodAIOptimized)
	if err != nil {
		return fmt.Errorf("assign unblocked dependent: %w", err)
	}
	if decision.Assigned() {
		result.Assigned = append(result.Assigned, *decision)
	}
	return nil
}

// recordAndNotify handles the best-effort side channels of an assignment.
// Neither the audit row nor the notification may fail the assignment.
func (s *WorkItemService) recordAndNotify(ctx context.Context, decision domain.AssignmentDecision) {
	if err := s.audit.RecordDecision(ctx, decision); err != nil {
		s.logger.Error("failed to record assignment decision",
			"work_item_id", decision.WorkItemID,
			"error", err.Error(),
		)
	}
	if err := s.notifier.NotifyAssignment(ctx, decision.WorkItemID, decision.AssigneeID); err != nil {
		s.logger.Error("failed to notify assignment",
			"work_item_id", decision.WorkItemID,
			"error", err.Error(),
		)
	}
}

func (s *WorkItemService) GetWorkItem(ctx context.Context, id string) (*domain.WorkItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get work item: %w", err)
	}
	return item, nil
}
