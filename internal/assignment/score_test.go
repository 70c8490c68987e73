package assignment

import (
	"math"
	"testing"

	"github.com/teamops/assignment-service/internal/domain"
)

func TestScore_Bounds(t *testing.T) {
	items := []domain.WorkItem{
		{ID: "w-1", EstimatedHours: 4},
		{ID: "w-2", EstimatedHours: 8, RequiredSkills: []string{"go", "sql"}},
		{ID: "w-3", EstimatedHours: 100, RequiredSkills: []string{"go"}},
	}
	members := []domain.TeamMember{
		{ID: "m-1", MaxHours: 40, CommittedHours: 0, QualityScore: 1, Skills: []string{"go", "sql"}},
		{ID: "m-2", MaxHours: 40, CommittedHours: 40, QualityScore: 0},
		{ID: "m-3", MaxHours: 0},
		{ID: "m-4", MaxHours: 40, CommittedHours: 20, QualityScore: 0.5, Skills: []string{"python"}},
	}

	for _, item := range items {
		for _, m := range members {
			got := Score(item, m)
			if got < 0 || got > 1 {
				t.Errorf("Score(%s, %s) = %v, out of [0,1]", item.ID, m.ID, got)
			}
			got = ReviewScore(item, m)
			if got < 0 || got > 1 {
				t.Errorf("ReviewScore(%s, %s) = %v, out of [0,1]", item.ID, m.ID, got)
			}
		}
	}
}

func TestScore_WeightsSumToOne(t *testing.T) {
	sum := weightSkillMatch + weightCapacityFit + weightPerformance + weightBalance
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("factor weights sum to %v, want 1.0", sum)
	}
}

func TestScore_SkillMatch(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		skills   []string
		want     float64
	}{
		{
			name:     "no required skills uses neutral constant",
			required: nil,
			skills:   []string{"go"},
			want:     neutralSkillScore,
		},
		{
			name:     "member without skills gets low constant",
			required: []string{"go"},
			skills:   nil,
			want:     noSkillScore,
		},
		{
			name:     "full match",
			required: []string{"go", "sql"},
			skills:   []string{"sql", "go", "docker"},
			want:     1.0,
		},
		{
			name:     "half match",
			required: []string{"go", "sql"},
			skills:   []string{"go"},
			want:     0.5,
		},
		{
			name:     "no match",
			required: []string{"go"},
			skills:   []string{"python"},
			want:     0.0,
		},
		{
			name:     "mixed case still matches",
			required: []string{"Go"},
			skills:   []string{"go"},
			want:     1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.WorkItem{RequiredSkills: tt.required}
			member := domain.TeamMember{Skills: tt.skills}
			if got := skillMatch(item, member); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("skillMatch = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_CapacityFitMonotonic(t *testing.T) {
	item := domain.WorkItem{EstimatedHours: 4}

	prev := math.Inf(1)
	for committed := 0.0; committed <= 40; committed += 2 {
		m := domain.TeamMember{MaxHours: 40, CommittedHours: committed}
		got := capacityFit(item, m)
		if got > prev {
			t.Fatalf("capacityFit increased from %v to %v at committed=%v", prev, got, committed)
		}
		prev = got
	}
}

func TestScore_CapacityFitZeroWhenOverCapacity(t *testing.T) {
	item := domain.WorkItem{EstimatedHours: 4}
	m := domain.TeamMember{MaxHours: 40, CommittedHours: 38}

	if got := capacityFit(item, m); got != 0 {
		t.Errorf("capacityFit = %v, want 0 when item does not fit", got)
	}
}

func TestScore_PerformanceDefault(t *testing.T) {
	m := domain.TeamMember{MaxHours: 40}
	if got := performance(m); got != domain.DefaultQualityScore {
		t.Errorf("performance without history = %v, want %v", got, domain.DefaultQualityScore)
	}
}

func TestReviewScore_SpecializationBonus(t *testing.T) {
	item := domain.WorkItem{
		Kind:           domain.WorkItemKindReview,
		EstimatedHours: 2,
		RequiredSkills: []string{"go"},
	}
	base := domain.TeamMember{
		MaxHours:       40,
		CommittedHours: 10,
		QualityScore:   0.8,
		Skills:         []string{"go"},
	}
	specialist := base
	specialist.Skills = []string{"go", "quality"}

	if ReviewScore(item, specialist) <= ReviewScore(item, base) {
		t.Error("review specialization should raise the review score")
	}
}
