// Package assignment holds the pure scoring and selection logic used for
// auto-assigning work items to team members. Nothing here touches storage;
// committing a decision is the service layer's job.
package assignment

import "github.com/teamops/assignment-service/internal/domain"

// Factor weights. They must sum to 1.0 so that Score stays in [0,1].
const (
	weightSkillMatch  = 0.4
	weightCapacityFit = 0.3
	weightPerformance = 0.2
	weightBalance     = 0.1

	// neutralSkillScore applies when an item lists no required skills;
	// noSkillScore when the member has no skills at all.
	neutralSkillScore = 0.8
	noSkillScore      = 0.3

	// reviewBonusWeight is the extra weight given to review specialization
	// when scoring reviewer assignments. The weighted sum is renormalized
	// by (1 + reviewBonusWeight) so the result stays in [0,1].
	reviewBonusWeight = 0.15
)

// Score computes the fitness of member for item as a weighted sum of skill
// match, remaining capacity, historical performance and current workload.
// Pure, no side effects. A zero capacity-fit factor means the member has no
// room for the item; the selector treats that as a hard exclusion, not just
// a low score.
func Score(item domain.WorkItem, member domain.TeamMember) float64 {
	return weightSkillMatch*skillMatch(item, member) +
		weightCapacityFit*capacityFit(item, member) +
		weightPerformance*performance(member) +
		weightBalance*workloadBalance(member)
}

// ReviewScore is the reviewer-assignment variant of Score: the same four
// factors plus a specialization bonus for review/quality expertise, with the
// total renormalized back into [0,1].
func ReviewScore(item domain.WorkItem, member domain.TeamMember) float64 {
	base := weightSkillMatch*skillMatch(item, member) +
		weightCapacityFit*capacityFit(item, member) +
		weightPerformance*performance(member) +
		weightBalance*workloadBalance(member)

	bonus := 0.0
	if hasReviewSpecialization(member) {
		bonus = 1.0
	}

	return (base + reviewBonusWeight*bonus) / (1 + reviewBonusWeight)
}

func skillMatch(item domain.WorkItem, member domain.TeamMember) float64 {
	if len(item.RequiredSkills) == 0 {
		return neutralSkillScore
	}
	if len(member.Skills) == 0 {
		return noSkillScore
	}

	matched := 0
	for _, required := range item.RequiredSkills {
		if member.HasSkill(required) {
			matched++
		}
	}
	return float64(matched) / float64(len(item.RequiredSkills))
}

// capacityFit rewards low post-assignment utilization and is 0 when the
// item does not fit at all.
func capacityFit(item domain.WorkItem, member domain.TeamMember) float64 {
	if member.MaxHours <= 0 {
		return 0
	}
	committedAfter := member.CommittedHours + item.EstimatedHours
	if committedAfter > member.MaxHours {
		return 0
	}
	return 1 - committedAfter/member.MaxHours
}

func performance(member domain.TeamMember) float64 {
	if member.QualityScore <= 0 {
		return domain.DefaultQualityScore
	}
	if member.QualityScore > 1 {
		return 1
	}
	return member.QualityScore
}

func workloadBalance(member domain.TeamMember) float64 {
	util := member.Utilization()
	if util >= 100 {
		return 0
	}
	return 1 - util/100
}

func hasReviewSpecialization(member domain.TeamMember) bool {
	return member.HasSkill("review") || member.HasSkill("quality") || member.HasSkill("qa")
}
