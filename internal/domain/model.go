package domain

import "strings"

// Availability buckets derived from utilization.
type Availability string

const (
	AvailabilityAvailable  Availability = "available"
	AvailabilityBusy       Availability = "busy"
	AvailabilityOverloaded Availability = "overloaded"
)

// DefaultQualityScore is the neutral performance score used for members
// with no review history yet.
const DefaultQualityScore = 0.7

type TeamMember struct {
	ID             string
	Name           string
	TeamName       string
	Skills         []string
	CommittedHours float64
	MaxHours       float64
	QualityScore   float64
	IsActive       bool
	// Version counts capacity updates and guards concurrent commits.
	Version int64
}

// Utilization returns committed/max as a percentage. The stored value in
// the database is a cache only; eligibility decisions always recompute here.
func (m TeamMember) Utilization() float64 {
	if m.MaxHours <= 0 {
		return 100
	}
	return m.CommittedHours / m.MaxHours * 100
}

func (m TeamMember) Availability() Availability {
	util := m.Utilization()
	switch {
	case util > 95:
		return AvailabilityOverloaded
	case util >= 90:
		return AvailabilityBusy
	default:
		return AvailabilityAvailable
	}
}

func (m TeamMember) HasCapacityFor(hours float64) bool {
	return m.CommittedHours+hours <= m.MaxHours
}

// HasSkill matches case-insensitively; skill tags come from free-form
// team setup input and arrive in mixed case.
func (m TeamMember) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

type Team struct {
	Name    string
	Members []TeamMember
}

type WorkItemStatus string

const (
	WorkItemStatusUnassigned WorkItemStatus = "unassigned"
	WorkItemStatusAssigned   WorkItemStatus = "assigned"
	WorkItemStatusInProgress WorkItemStatus = "in_progress"
	WorkItemStatusBlocked    WorkItemStatus = "blocked"
	WorkItemStatusCompleted  WorkItemStatus = "completed"
)

type WorkItemKind string

const (
	WorkItemKindTask   WorkItemKind = "task"
	WorkItemKindReview WorkItemKind = "review"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type WorkItem struct {
	ID             string
	Title          string
	TeamName       string
	Kind           WorkItemKind
	RequiredSkills []string
	EstimatedHours float64
	Status         WorkItemStatus
	AssigneeID     string
	DependsOn      []string
	Priority       Priority
	CreatedAt      int64
	CompletedAt    int64
}

func (w WorkItem) IsCompleted() bool {
	return w.Status == WorkItemStatusCompleted
}

// IsPending reports whether the item is waiting for work to start and is
// therefore a candidate for rebalancing.
func (w WorkItem) IsPending() bool {
	return w.Status == WorkItemStatusUnassigned || w.Status == WorkItemStatusAssigned
}

// AssignmentMethod tags how an assignee was chosen, recorded in the audit log.
type AssignmentMethod string

const (
	MethodAIOptimized AssignmentMethod = "ai_optimized"
	MethodManualBulk  AssignmentMethod = "manual_bulk"
	MethodRebalanced  AssignmentMethod = "rebalanced"
)

// AssignmentDecision is the outcome of one selector invocation. An empty
// AssigneeID means no candidate cleared the acceptance threshold. For
// review items BackupID names the runner-up who can step in if the
// primary reviewer drops out; it reserves no capacity.
type AssignmentDecision struct {
	WorkItemID string
	AssigneeID string
	BackupID   string
	Score      float64
	Method     AssignmentMethod
}

func (d AssignmentDecision) Assigned() bool {
	return d.AssigneeID != ""
}

// Move records one rebalance reassignment.
type Move struct {
	WorkItemID string `json:"work_item_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// CascadeResult summarizes what a completion cascade did.
type CascadeResult struct {
	CompletedID string
	Unblocked   []string
	Assigned    []AssignmentDecision
	Failed      []CascadeFailure
}

// CascadeFailure isolates one dependent item's error so the remaining
// dependents still get processed.
type CascadeFailure struct {
	WorkItemID string
	Err        error
}
