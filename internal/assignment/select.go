package assignment

import "github.com/teamops/assignment-service/internal/domain"

// Default acceptance thresholds. The two call sites historically used
// different minimums, so both stay configurable instead of being unified.
const (
	DefaultTaskThreshold   = 0.5
	DefaultReviewThreshold = 0.6
)

// Selector ranks candidates for a work item and picks the best one above a
// minimum acceptance threshold. Selection is pure; capacity is reserved in a
// separate commit step so selections can be dry-run in tests.
type Selector struct {
	TaskThreshold   float64
	ReviewThreshold float64
}

func NewSelector(taskThreshold, reviewThreshold float64) *Selector {
	if taskThreshold <= 0 {
		taskThreshold = DefaultTaskThreshold
	}
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &Selector{
		TaskThreshold:   taskThreshold,
		ReviewThreshold: reviewThreshold,
	}
}

// Select returns the best-scoring eligible candidate for the item, or a
// decision with an empty AssigneeID when nobody clears the threshold.
// Candidates whose committed hours plus the item estimate exceed their
// maximum are excluded outright, whatever their other factors score.
// Ties break in favor of the first candidate encountered, so callers get
// deterministic results for a stable candidate order.
func (s *Selector) Select(item domain.WorkItem, candidates []domain.TeamMember) domain.AssignmentDecision {
	decision := domain.AssignmentDecision{WorkItemID: item.ID}

	threshold := s.TaskThreshold
	score := Score
	if item.Kind == domain.WorkItemKindReview {
		threshold = s.ReviewThreshold
		score = ReviewScore
	}

	best := -1.0
	for _, c := range candidates {
		if !c.IsActive {
			continue
		}
		if !c.HasCapacityFor(item.EstimatedHours) {
			continue
		}
		if got := score(item, c); got > best {
			best = got
			decision.AssigneeID = c.ID
			decision.Score = got
		}
	}

	if best < threshold {
		return domain.AssignmentDecision{WorkItemID: item.ID}
	}
	return decision
}

// SelectWithBackup picks a primary assignee and, when possible, a backup
// from the remaining pool. The backup is chosen by the same rules with the
// primary removed from the candidates.
func (s *Selector) SelectWithBackup(item domain.WorkItem, candidates []domain.TeamMember) (primary, backup domain.AssignmentDecision) {
	primary = s.Select(item, candidates)
	if !primary.Assigned() {
		return primary, domain.AssignmentDecision{WorkItemID: item.ID}
	}

	rest := make([]domain.TeamMember, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == primary.AssigneeID {
			continue
		}
		rest = append(rest, c)
	}

	return primary, s.Select(item, rest)
}
