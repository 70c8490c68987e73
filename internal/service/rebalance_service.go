package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/teamops/assignment-service/internal/assignment"
	"github.com/teamops/assignment-service/internal/domain"
)

type RebalanceMemberRepository interface {
	ListAll(ctx context.Context) ([]domain.TeamMember, error)
}

type RebalanceWorkItemRepository interface {
	ListPendingByAssignee(ctx context.Context, assigneeID string) ([]domain.WorkItem, error)
	UpdateAssignment(ctx context.Context, id string, status domain.WorkItemStatus, assigneeID string) error
}

// RebalanceService moves pending, non-critical work from overloaded members
// to underloaded ones. One pass is a bounded greedy heuristic, not a
// bin-packing solve: at most MaxMovesPerMember items leave any one member,
// and repeated passes converge workload gradually.
type RebalanceService struct {
	members  RebalanceMemberRepository
	items    RebalanceWorkItemRepository
	capacity *CapacityService
	selector *assignment.Selector
	audit    AuditLog
	logger   *slog.Logger

	MaxMovesPerMember int
	OverloadedPercent float64
	AvailablePercent  float64
}

func NewRebalanceService(
	members RebalanceMemberRepository,
	items RebalanceWorkItemRepository,
	capacity *CapacityService,
	selector *assignment.Selector,
	audit AuditLog,
	logger *slog.Logger,
) *RebalanceService {
	return &RebalanceService{
		members:           members,
		items:             items,
		capacity:          capacity,
		selector:          selector,
		audit:             audit,
		logger:            logger,
		MaxMovesPerMember: 2,
		OverloadedPercent: 90,
		AvailablePercent:  70,
	}
}

func (s *RebalanceService) Rebalance(ctx context.Context) ([]domain.Move, error) {
	all, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members for rebalance: %w", err)
	}

	var overloaded []domain.TeamMember
	pool := make([]domain.TeamMember, 0, len(all))
	for _, m := range all {
		util := m.Utilization()
		switch {
		case util > s.OverloadedPercent:
			overloaded = append(overloaded, m)
		case util < s.AvailablePercent:
			pool = append(pool, m)
		}
	}

	sort.SliceStable(overloaded, func(i, j int) bool {
		return overloaded[i].Utilization() > overloaded[j].Utilization()
	})

	moves := make([]domain.Move, 0)
	for _, from := range overloaded {
		pending, err := s.items.ListPendingByAssignee(ctx, from.ID)
		if err != nil {
			s.logger.Error("failed to list pending items for overloaded member",
				"member_id", from.ID,
				"error", err.Error(),
			)
			continue
		}

		if len(pending) > s.MaxMovesPerMember {
			pending = pending[:s.MaxMovesPerMember]
		}

		for _, item := range pending {
			move, ok := s.moveItem(ctx, item, from, pool)
			if ok {
				moves = append(moves, move)
				refreshPool(pool, move.To, item.EstimatedHours)
			}
		}
	}

	return moves, nil
}

// moveItem tries to hand one pending item to someone in the available pool.
// A move that fails at any step is skipped, never retried within the pass.
func (s *RebalanceService) moveItem(ctx context.Context, item domain.WorkItem, from domain.TeamMember, pool []domain.TeamMember) (domain.Move, bool) {
	// Re-select against the underloaded pool only; same thresholds as a
	// fresh assignment so a bad fit is never forced onto a quieter member.
	decision := s.selector.Select(item, poolWithout(pool, from.ID))
	decision.Method = domain.MethodRebalanced
	if !decision.Assigned() || decision.AssigneeID == from.ID {
		return domain.Move{}, false
	}

	reserved, err := s.capacity.Commit(ctx, decision.AssigneeID, item.EstimatedHours)
	if err != nil {
		s.logger.Warn("rebalance target commit failed, skipping move",
			"work_item_id", item.ID,
			"member_id", decision.AssigneeID,
			"error", err.Error(),
		)
		return domain.Move{}, false
	}
	if reserved == nil {
		s.logger.Warn("rebalance target vanished before commit, skipping move",
			"work_item_id", item.ID,
			"member_id", decision.AssigneeID,
		)
		return domain.Move{}, false
	}

	if err := s.items.UpdateAssignment(ctx, item.ID, domain.WorkItemStatusAssigned, decision.AssigneeID); err != nil {
		s.logger.Error("rebalance failed to persist reassignment",
			"work_item_id", item.ID,
			"error", err.Error(),
		)
		// Undo the reservation so the target is not charged for an item
		// it never received.
		if _, undoErr := s.capacity.Commit(ctx, decision.AssigneeID, -item.EstimatedHours); undoErr != nil {
			s.logger.Error("failed to undo rebalance reservation",
				"member_id", decision.AssigneeID,
				"error", undoErr.Error(),
			)
		}
		return domain.Move{}, false
	}

	if _, err := s.capacity.Commit(ctx, from.ID, -item.EstimatedHours); err != nil {
		s.logger.Error("rebalance failed to release source capacity",
			"member_id", from.ID,
			"error", err.Error(),
		)
	}

	if err := s.audit.RecordDecision(ctx, decision); err != nil {
		s.logger.Error("failed to record rebalance decision",
			"work_item_id", item.ID,
			"error", err.Error(),
		)
	}

	return domain.Move{
		WorkItemID: item.ID,
		From:       from.ID,
		To:         decision.AssigneeID,
	}, true
}

// refreshPool charges committed hours against the local pool snapshot so
// later selections in the same pass see earlier moves.
func refreshPool(pool []domain.TeamMember, memberID string, hours float64) {
	for i := range pool {
		if pool[i].ID == memberID {
			pool[i].CommittedHours += hours
			return
		}
	}
}

func poolWithout(pool []domain.TeamMember, memberID string) []domain.TeamMember {
	out := make([]domain.TeamMember, 0, len(pool))
	for _, m := range pool {
		if m.ID != memberID {
			out = append(out, m)
		}
	}
	return out
}
