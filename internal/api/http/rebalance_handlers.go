package http

import (
	"net/http"

	"github.com/teamops/assignment-service/internal/domain"
)

type rebalanceResponse struct {
	Moves []domain.Move `json:"moves"`
}

func (s *Server) HandleRebalanceRun(w http.ResponseWriter, r *http.Request) {
	moves, err := s.app.Rebalance.Rebalance(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rebalanceResponse{Moves: moves})
}
