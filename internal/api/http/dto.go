package http

import "github.com/teamops/assignment-service/internal/domain"

type teamMemberDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	TeamName       string   `json:"team_name,omitempty"`
	Skills         []string `json:"skills"`
	CommittedHours float64  `json:"committed_hours"`
	MaxHours       float64  `json:"max_hours"`
	Utilization    float64  `json:"utilization"`
	Availability   string   `json:"availability"`
	QualityScore   float64  `json:"quality_score"`
	IsActive       bool     `json:"is_active"`
}

type teamDTO struct {
	Name    string          `json:"name"`
	Members []teamMemberDTO `json:"members"`
}

type workItemDTO struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	TeamName       string   `json:"team_name"`
	Kind           string   `json:"kind"`
	RequiredSkills []string `json:"required_skills"`
	EstimatedHours float64  `json:"estimated_hours"`
	Status         string   `json:"status"`
	AssigneeID     string   `json:"assignee_id,omitempty"`
	DependsOn      []string `json:"depends_on"`
	Priority       string   `json:"priority"`
}

type decisionDTO struct {
	WorkItemID string  `json:"work_item_id"`
	AssigneeID string  `json:"assignee_id,omitempty"`
	BackupID   string  `json:"backup_id,omitempty"`
	Score      float64 `json:"score"`
	Method     string  `json:"method"`
	Assigned   bool    `json:"assigned"`
}

func memberToDTO(m domain.TeamMember) teamMemberDTO {
	return teamMemberDTO{
		ID:             m.ID,
		Name:           m.Name,
		TeamName:       m.TeamName,
		Skills:         m.Skills,
		CommittedHours: m.CommittedHours,
		MaxHours:       m.MaxHours,
		Utilization:    m.Utilization(),
		Availability:   string(m.Availability()),
		QualityScore:   m.QualityScore,
		IsActive:       m.IsActive,
	}
}

func memberFromDTO(d teamMemberDTO) domain.TeamMember {
	return domain.TeamMember{
		ID:             d.ID,
		Name:           d.Name,
		Skills:         d.Skills,
		CommittedHours: d.CommittedHours,
		MaxHours:       d.MaxHours,
		QualityScore:   d.QualityScore,
		IsActive:       d.IsActive,
	}
}

func teamToDTO(t *domain.Team) teamDTO {
	members := make([]teamMemberDTO, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, memberToDTO(m))
	}
	return teamDTO{
		Name:    t.Name,
		Members: members,
	}
}

func workItemToDTO(w *domain.WorkItem) workItemDTO {
	return workItemDTO{
		ID:             w.ID,
		Title:          w.Title,
		TeamName:       w.TeamName,
		Kind:           string(w.Kind),
		RequiredSkills: w.RequiredSkills,
		EstimatedHours: w.EstimatedHours,
		Status:         string(w.Status),
		AssigneeID:     w.AssigneeID,
		DependsOn:      w.DependsOn,
		Priority:       string(w.Priority),
	}
}

func workItemFromDTO(d workItemDTO) domain.WorkItem {
	return domain.WorkItem{
		ID:             d.ID,
		Title:          d.Title,
		TeamName:       d.TeamName,
		Kind:           domain.WorkItemKind(d.Kind),
		RequiredSkills: d.RequiredSkills,
		EstimatedHours: d.EstimatedHours,
		DependsOn:      d.DependsOn,
		Priority:       domain.Priority(d.Priority),
	}
}

func decisionToDTO(d domain.AssignmentDecision) decisionDTO {
	return decisionDTO{
		WorkItemID: d.WorkItemID,
		AssigneeID: d.AssigneeID,
		BackupID:   d.BackupID,
		Score:      d.Score,
		Method:     string(d.Method),
		Assigned:   d.Assigned(),
	}
}
