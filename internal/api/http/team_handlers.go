package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teamops/assignment-service/internal/domain"
)

type createTeamResponse struct {
	Team teamDTO `json:"team"`
}

func (s *Server) HandleTeamAdd(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Debug("error closing body in HandleTeamAdd", "error", err)
		}
	}()

	var req teamDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "invalid JSON body")
		return
	}
	if req.Name == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "team name is required")
		return
	}

	members := make([]domain.TeamMember, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, memberFromDTO(m))
	}

	created, err := s.app.Team.CreateTeam(r.Context(), req.Name, members)
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := createTeamResponse{
		Team: teamToDTO(created),
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) HandleTeamGet(w http.ResponseWriter, r *http.Request) {
	teamName := r.URL.Query().Get("team_name")
	if teamName == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "team_name is required")
		return
	}

	team, err := s.app.Team.GetTeam(r.Context(), teamName)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, teamToDTO(team))
}

func (s *Server) HandleMemberWorkload(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("member_id")
	if memberID == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "member_id is required")
		return
	}

	member, err := s.app.Team.GetMemberWorkload(r.Context(), memberID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, memberToDTO(*member))
}
