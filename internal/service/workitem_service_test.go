package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamops/assignment-service/internal/assignment"
	"github.com/teamops/assignment-service/internal/domain"
	"github.com/teamops/assignment-service/internal/service/mocks"
)

type workItemFixture struct {
	items    *mocks.MockWorkItemRepository
	members  *mocks.MockMemberRepository
	audit    *mocks.MockAuditLog
	notifier *mocks.MockNotifier
	svc      *WorkItemService
}

func newWorkItemFixture(items *mocks.MockWorkItemRepository, members *mocks.MockMemberRepository) *workItemFixture {
	audit := &mocks.MockAuditLog{}
	notifier := &mocks.MockNotifier{}
	capacity := NewCapacityService(members, testLogger())
	selector := assignment.NewSelector(0.5, 0.6)

	svc := NewWorkItemService(
		items,
		members,
		capacity,
		selector,
		audit,
		notifier,
		testLogger(),
		func() time.Time { return time.Unix(1000, 0) },
	)

	return &workItemFixture{
		items:    items,
		members:  members,
		audit:    audit,
		notifier: notifier,
		svc:      svc,
	}
}

func TestWorkItemService_CreateWorkItem(t *testing.T) {
	tests := []struct {
		name       string
		existing   []domain.WorkItem
		item       domain.WorkItem
		wantStatus domain.WorkItemStatus
		wantErr    domain.ErrorCode
	}{
		{
			name:       "no dependencies starts unassigned",
			item:       domain.WorkItem{ID: "w-1", Title: "build", TeamName: "core", EstimatedHours: 4},
			wantStatus: domain.WorkItemStatusUnassigned,
		},
		{
			name: "incomplete dependency blocks the item",
			existing: []domain.WorkItem{
				{ID: "dep-1", Title: "base", Status: domain.WorkItemStatusInProgress},
			},
			item:       domain.WorkItem{ID: "w-2", Title: "next", TeamName: "core", EstimatedHours: 4, DependsOn: []string{"dep-1"}},
			wantStatus: domain.WorkItemStatusBlocked,
		},
		{
			name: "completed dependencies leave item unassigned",
			existing: []domain.WorkItem{
				{ID: "dep-1", Title: "base", Status: domain.WorkItemStatusCompleted},
			},
			item:       domain.WorkItem{ID: "w-3", Title: "next", TeamName: "core", EstimatedHours: 4, DependsOn: []string{"dep-1"}},
			wantStatus: domain.WorkItemStatusUnassigned,
		},
		{
			name: "duplicate id rejected",
			existing: []domain.WorkItem{
				{ID: "w-4", Title: "old", Status: domain.WorkItemStatusAssigned},
			},
			item:    domain.WorkItem{ID: "w-4", Title: "new", TeamName: "core"},
			wantErr: domain.ErrorCodeWorkItemExists,
		},
		{
			name:    "missing title rejected",
			item:    domain.WorkItem{ID: "w-5", TeamName: "core"},
			wantErr: domain.ErrorCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkItemFixture(
				mocks.NewMockWorkItemRepository(tt.existing...),
				mocks.NewMockMemberRepository(),
			)

			created, err := f.svc.CreateWorkItem(context.Background(), tt.item)

			if tt.wantErr != "" {
				if !domain.IsCode(err, tt.wantErr) {
					t.Fatalf("CreateWorkItem error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateWorkItem returned error: %v", err)
			}
			if created.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", created.Status, tt.wantStatus)
			}
		})
	}
}

func TestWorkItemService_CreateWorkItem_GeneratesID(t *testing.T) {
	f := newWorkItemFixture(mocks.NewMockWorkItemRepository(), mocks.NewMockMemberRepository())

	created, err := f.svc.CreateWorkItem(context.Background(), domain.WorkItem{Title: "t", TeamName: "core"})
	if err != nil {
		t.Fatalf("CreateWorkItem returned error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
}

func TestWorkItemService_AssignWorkItem(t *testing.T) {
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "implement parser",
		TeamName:       "core",
		Kind:           domain.WorkItemKindTask,
		EstimatedHours: 4,
		RequiredSkills: []string{"go"},
		Status:         domain.WorkItemStatusUnassigned,
		Priority:       domain.PriorityMedium,
	}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(item),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-skilled", TeamName: "core", IsActive: true, CommittedHours: 10, MaxHours: 40, QualityScore: 0.8, Skills: []string{"go"}},
			domain.TeamMember{ID: "m-other", TeamName: "core", IsActive: true, CommittedHours: 5, MaxHours: 40, QualityScore: 0.8},
		),
	)

	decision, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("AssignWorkItem returned error: %v", err)
	}
	if decision.AssigneeID != "m-skilled" {
		t.Fatalf("assignee = %q, want m-skilled", decision.AssigneeID)
	}
	if decision.Method != domain.MethodAIOptimized {
		t.Errorf("method = %s, want %s", decision.Method, domain.MethodAIOptimized)
	}

	stored := f.items.Items["w-1"]
	if stored.Status != domain.WorkItemStatusAssigned || stored.AssigneeID != "m-skilled" {
		t.Errorf("stored item = %s/%s, want assigned/m-skilled", stored.Status, stored.AssigneeID)
	}
	if got := f.members.Members["m-skilled"].CommittedHours; got != 14 {
		t.Errorf("assignee committed hours = %v, want 14", got)
	}
	if len(f.audit.Recorded) != 1 {
		t.Errorf("audit records = %d, want 1", len(f.audit.Recorded))
	}
	if len(f.notifier.Sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(f.notifier.Sent))
	}
}

func TestWorkItemService_AssignWorkItem_HardCapacityExclusion(t *testing.T) {
	// Member with 38/40 committed cannot take a 4h item even with a
	// perfect skill match; the next-best member gets it.
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "urgent fix",
		TeamName:       "core",
		EstimatedHours: 4,
		RequiredSkills: []string{"go"},
		Status:         domain.WorkItemStatusUnassigned,
	}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(item),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-loaded", TeamName: "core", IsActive: true, CommittedHours: 38, MaxHours: 40, QualityScore: 1, Skills: []string{"go"}},
			domain.TeamMember{ID: "m-free", TeamName: "core", IsActive: true, CommittedHours: 5, MaxHours: 40, QualityScore: 0.8, Skills: []string{"go"}},
		),
	)

	decision, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("AssignWorkItem returned error: %v", err)
	}
	if decision.AssigneeID != "m-free" {
		t.Errorf("assignee = %q, want m-free", decision.AssigneeID)
	}
	if got := f.members.Members["m-loaded"].CommittedHours; got != 38 {
		t.Errorf("excluded member hours changed to %v", got)
	}
}

func TestWorkItemService_AssignWorkItem_NoEligibleCandidate(t *testing.T) {
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "huge migration",
		TeamName:       "core",
		EstimatedHours: 35,
		Status:         domain.WorkItemStatusUnassigned,
	}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(item),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 10, MaxHours: 40},
		),
	)

	decision, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("no eligible candidate must not be an error, got %v", err)
	}
	if decision.Assigned() {
		t.Fatalf("decision assigned %q, want unassigned", decision.AssigneeID)
	}
	if f.items.Items["w-1"].Status != domain.WorkItemStatusUnassigned {
		t.Error("item should stay unassigned")
	}
	if len(f.audit.Recorded) != 0 {
		t.Error("no audit record expected without an assignment")
	}
}

func TestWorkItemService_AssignWorkItem_CapacityConflictFallsBack(t *testing.T) {
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "task",
		TeamName:       "core",
		EstimatedHours: 4,
		Status:         domain.WorkItemStatusUnassigned,
	}

	members := mocks.NewMockMemberRepository(
		domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 10, MaxHours: 40},
	)
	// Conflict on the first attempt and its retry: the score-time snapshot
	// lost the race for good.
	members.ConflictsRemaining = 2

	f := newWorkItemFixture(mocks.NewMockWorkItemRepository(item), members)

	decision, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("capacity conflict must fall back, not fail: %v", err)
	}
	if decision.Assigned() {
		t.Errorf("decision assigned %q, want unassigned fallback", decision.AssigneeID)
	}
	if f.items.Items["w-1"].Status != domain.WorkItemStatusUnassigned {
		t.Error("item should stay unassigned after conflict")
	}
}

func TestWorkItemService_AssignWorkItem_SideChannelFailuresKeepAssignment(t *testing.T) {
	// Audit and notification are best-effort; a broken side channel must
	// not undo a committed assignment.
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "task",
		TeamName:       "core",
		EstimatedHours: 4,
		Status:         domain.WorkItemStatusUnassigned,
	}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(item),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 10, MaxHours: 40, QualityScore: 0.8},
		),
	)
	f.audit.RecordErr = errors.New("audit store down")
	f.notifier.NotifyErr = errors.New("notifier down")

	decision, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("AssignWorkItem returned error: %v", err)
	}
	if decision.AssigneeID != "m-1" {
		t.Fatalf("assignee = %q, want m-1", decision.AssigneeID)
	}

	stored := f.items.Items["w-1"]
	if stored.Status != domain.WorkItemStatusAssigned || stored.AssigneeID != "m-1" {
		t.Errorf("stored item = %s/%s, want assigned/m-1", stored.Status, stored.AssigneeID)
	}
	if got := f.members.Members["m-1"].CommittedHours; got != 14 {
		t.Errorf("committed hours = %v, want 14", got)
	}
}

func TestWorkItemService_AssignWorkItem_VanishedAssigneeFallsBack(t *testing.T) {
	// The chosen member is deleted between candidate listing and the
	// capacity write; the item must stay unassigned instead of pointing
	// at a member that no longer exists.
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "task",
		TeamName:       "core",
		EstimatedHours: 4,
		Status:         domain.WorkItemStatusUnassigned,
	}

	members := mocks.NewMockMemberRepository(
		domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 10, MaxHours: 40, QualityScore: 0.8},
	)
	members.MissingIDs = map[string]bool{"m-1": true}

	f := newWorkItemFixture(mocks.NewMockWorkItemRepository(item), members)

	decision, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("vanished assignee must fall back, not fail: %v", err)
	}
	if decision.Assigned() {
		t.Fatalf("decision assigned %q, want unassigned fallback", decision.AssigneeID)
	}
	if f.items.Items["w-1"].Status != domain.WorkItemStatusUnassigned {
		t.Error("item should stay unassigned")
	}
	if len(f.audit.Recorded) != 0 {
		t.Error("no audit record expected without an assignment")
	}
}

func TestWorkItemService_AssignWorkItem_ReviewGetsBackup(t *testing.T) {
	item := domain.WorkItem{
		ID:             "r-1",
		Title:          "design review",
		TeamName:       "core",
		Kind:           domain.WorkItemKindReview,
		EstimatedHours: 2,
		Status:         domain.WorkItemStatusUnassigned,
	}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(item),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-senior", TeamName: "core", IsActive: true, CommittedHours: 5, MaxHours: 40, QualityScore: 0.9, Skills: []string{"review"}},
			domain.TeamMember{ID: "m-backup", TeamName: "core", IsActive: true, CommittedHours: 10, MaxHours: 40, QualityScore: 0.85, Skills: []string{"qa"}},
		),
	)

	decision, err := f.svc.AssignWorkItem(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("AssignWorkItem returned error: %v", err)
	}
	if decision.AssigneeID != "m-senior" {
		t.Fatalf("assignee = %q, want m-senior", decision.AssigneeID)
	}
	if decision.BackupID != "m-backup" {
		t.Errorf("backup = %q, want m-backup", decision.BackupID)
	}

	// Only the primary reviewer reserves hours.
	if got := f.members.Members["m-senior"].CommittedHours; got != 7 {
		t.Errorf("primary committed hours = %v, want 7", got)
	}
	if got := f.members.Members["m-backup"].CommittedHours; got != 10 {
		t.Errorf("backup committed hours = %v, want 10", got)
	}
}

func TestWorkItemService_AssignWorkItem_WrongStatus(t *testing.T) {
	item := domain.WorkItem{
		ID:       "w-1",
		Title:    "done already",
		TeamName: "core",
		Status:   domain.WorkItemStatusCompleted,
	}

	f := newWorkItemFixture(mocks.NewMockWorkItemRepository(item), mocks.NewMockMemberRepository())

	_, err := f.svc.AssignWorkItem(context.Background(), "w-1")
	if !domain.IsCode(err, domain.ErrorCodeInvalidStatus) {
		t.Fatalf("error = %v, want INVALID_STATUS", err)
	}
}

func TestWorkItemService_CompleteWorkItem_ReleasesCapacityOnce(t *testing.T) {
	item := domain.WorkItem{
		ID:             "w-1",
		Title:          "task",
		TeamName:       "core",
		EstimatedHours: 6,
		Status:         domain.WorkItemStatusInProgress,
		AssigneeID:     "m-1",
	}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(item),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 20, MaxHours: 40},
		),
	)

	if _, err := f.svc.CompleteWorkItem(context.Background(), "w-1"); err != nil {
		t.Fatalf("CompleteWorkItem returned error: %v", err)
	}
	if got := f.members.Members["m-1"].CommittedHours; got != 14 {
		t.Fatalf("committed hours after completion = %v, want 14", got)
	}

	// Completing again is a no-op and must not double-release.
	if _, err := f.svc.CompleteWorkItem(context.Background(), "w-1"); err != nil {
		t.Fatalf("second CompleteWorkItem returned error: %v", err)
	}
	if got := f.members.Members["m-1"].CommittedHours; got != 14 {
		t.Errorf("committed hours after repeat completion = %v, want 14", got)
	}
}

func TestWorkItemService_CompleteWorkItem_CascadeWaitsForAllDependencies(t *testing.T) {
	// X depends on A and B. Completing A leaves X blocked; completing B
	// unblocks X and triggers exactly one assignment attempt.
	a := domain.WorkItem{ID: "a", Title: "A", TeamName: "core", EstimatedHours: 4, Status: domain.WorkItemStatusInProgress, AssigneeID: "m-1"}
	b := domain.WorkItem{ID: "b", Title: "B", TeamName: "core", EstimatedHours: 4, Status: domain.WorkItemStatusInProgress, AssigneeID: "m-2"}
	x := domain.WorkItem{ID: "x", Title: "X", TeamName: "core", EstimatedHours: 4, Status: domain.WorkItemStatusBlocked, DependsOn: []string{"a", "b"}}

	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(a, b, x),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 4, MaxHours: 40, QualityScore: 0.8},
			domain.TeamMember{ID: "m-2", TeamName: "core", IsActive: true, CommittedHours: 4, MaxHours: 40, QualityScore: 0.8},
		),
	)

	result, err := f.svc.CompleteWorkItem(context.Background(), "a")
	if err != nil {
		t.Fatalf("complete A returned error: %v", err)
	}
	if len(result.Unblocked) != 0 {
		t.Fatalf("X unblocked while B still in progress: %v", result.Unblocked)
	}
	if f.items.Items["x"].Status != domain.WorkItemStatusBlocked {
		t.Fatalf("X status = %s, want blocked", f.items.Items["x"].Status)
	}

	result, err = f.svc.CompleteWorkItem(context.Background(), "b")
	if err != nil {
		t.Fatalf("complete B returned error: %v", err)
	}
	if len(result.Unblocked) != 1 || result.Unblocked[0] != "x" {
		t.Fatalf("unblocked = %v, want [x]", result.Unblocked)
	}
	if len(result.Assigned) != 1 || result.Assigned[0].WorkItemID != "x" {
		t.Fatalf("assigned = %v, want one decision for x", result.Assigned)
	}
	if f.items.Items["x"].Status != domain.WorkItemStatusAssigned {
		t.Errorf("X status = %s, want assigned", f.items.Items["x"].Status)
	}
}

func TestWorkItemService_CompleteWorkItem_IsolatesDependentFailures(t *testing.T) {
	a := domain.WorkItem{ID: "a", Title: "A", TeamName: "core", EstimatedHours: 2, Status: domain.WorkItemStatusInProgress, AssigneeID: "m-1"}
	bad := domain.WorkItem{ID: "bad", Title: "bad", TeamName: "core", EstimatedHours: 2, Status: domain.WorkItemStatusBlocked, DependsOn: []string{"a"}}
	good := domain.WorkItem{ID: "good", Title: "good", TeamName: "core", EstimatedHours: 2, Status: domain.WorkItemStatusBlocked, DependsOn: []string{"a"}}

	items := mocks.NewMockWorkItemRepository(a, bad, good)
	items.UpdateStatusErrFor = map[string]error{"bad": errors.New("storage error")}

	f := newWorkItemFixture(items, mocks.NewMockMemberRepository(
		domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 4, MaxHours: 40, QualityScore: 0.8},
	))

	result, err := f.svc.CompleteWorkItem(context.Background(), "a")
	if err != nil {
		t.Fatalf("completion must survive dependent failures: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].WorkItemID != "bad" {
		t.Fatalf("failed = %v, want [bad]", result.Failed)
	}
	if len(result.Unblocked) != 1 || result.Unblocked[0] != "good" {
		t.Fatalf("unblocked = %v, want [good]", result.Unblocked)
	}
}

func TestWorkItemService_StartWorkItem(t *testing.T) {
	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(
			domain.WorkItem{ID: "w-1", Title: "t", TeamName: "core", Status: domain.WorkItemStatusAssigned, AssigneeID: "m-1"},
			domain.WorkItem{ID: "w-2", Title: "t", TeamName: "core", Status: domain.WorkItemStatusUnassigned},
		),
		mocks.NewMockMemberRepository(),
	)

	item, err := f.svc.StartWorkItem(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("StartWorkItem returned error: %v", err)
	}
	if item.Status != domain.WorkItemStatusInProgress {
		t.Errorf("status = %s, want in_progress", item.Status)
	}

	if _, err := f.svc.StartWorkItem(context.Background(), "w-2"); !domain.IsCode(err, domain.ErrorCodeInvalidStatus) {
		t.Errorf("starting unassigned item: error = %v, want INVALID_STATUS", err)
	}
}

func TestWorkItemService_BulkAssign_IsolatesFailures(t *testing.T) {
	f := newWorkItemFixture(
		mocks.NewMockWorkItemRepository(
			domain.WorkItem{ID: "w-1", Title: "t1", TeamName: "core", EstimatedHours: 4, Status: domain.WorkItemStatusUnassigned},
			domain.WorkItem{ID: "w-2", Title: "t2", TeamName: "core", EstimatedHours: 4, Status: domain.WorkItemStatusCompleted},
		),
		mocks.NewMockMemberRepository(
			domain.TeamMember{ID: "m-1", TeamName: "core", IsActive: true, CommittedHours: 4, MaxHours: 40, QualityScore: 0.8},
		),
	)

	decisions, err := f.svc.BulkAssign(context.Background(), []string{"w-1", "w-2", "missing"})
	if err != nil {
		t.Fatalf("BulkAssign returned error: %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("decisions = %d, want 3", len(decisions))
	}
	if !decisions[0].Assigned() {
		t.Error("w-1 should be assigned")
	}
	if decisions[0].Method != domain.MethodManualBulk {
		t.Errorf("method = %s, want %s", decisions[0].Method, domain.MethodManualBulk)
	}
	if decisions[1].Assigned() || decisions[2].Assigned() {
		t.Error("failed entries must come back unassigned")
	}
}
