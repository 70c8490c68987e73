package http

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
)

func NewRouter(server *Server, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", server.HealthCheck)

	r.Post("/team/add", server.HandleTeamAdd)
	r.Get("/team/get", server.HandleTeamGet)

	r.Get("/members/getWorkload", server.HandleMemberWorkload)

	r.Post("/workItem/create", server.HandleWorkItemCreate)
	r.Get("/workItem/get", server.HandleWorkItemGet)
	r.Post("/workItem/assign", server.HandleWorkItemAssign)
	r.Post("/workItem/bulkAssign", server.HandleWorkItemBulkAssign)
	r.Post("/workItem/start", server.HandleWorkItemStart)
	r.Post("/workItem/complete", server.HandleWorkItemComplete)

	r.Post("/rebalance/run", server.HandleRebalanceRun)

	r.Get("/stats/assignments", server.HandleStatsAssignments)

	return r
}
