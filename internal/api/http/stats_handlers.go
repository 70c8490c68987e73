package http

import "net/http"

type statsResponse struct {
	ByMember map[string]int64 `json:"by_member"`
	ByMethod map[string]int64 `json:"by_method"`
}

func (s *Server) HandleStatsAssignments(w http.ResponseWriter, r *http.Request) {
	byMember, byMethod, err := s.app.Stats.GetAssignmentStats(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		ByMember: byMember,
		ByMethod: byMethod,
	})
}
