package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/teamops/assignment-service/internal/domain"
	"github.com/teamops/assignment-service/internal/service"
)

type Server struct {
	app    *service.App
	logger *slog.Logger
}

func NewServer(app *service.App, logger *slog.Logger) *Server {
	return &Server{
		app:    app,
		logger: logger,
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, status int, code domain.ErrorCode, message string) {
	resp := errorResponse{
		Error: apiError{
			Code:    string(code),
			Message: message,
		},
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		status := http.StatusInternalServerError

		switch de.Code {
		case domain.ErrorCodeTeamExists,
			domain.ErrorCodeWorkItemExists:
			status = http.StatusConflict
		case domain.ErrorCodeInvalidStatus,
			domain.ErrorCodeNoCandidate,
			domain.ErrorCodeCapacityConflict:
			status = http.StatusConflict
		case domain.ErrorCodeValidation:
			status = http.StatusBadRequest
		case domain.ErrorCodeNotFound:
			status = http.StatusNotFound
		}

		s.writeDomainError(w, status, de.Code, de.Message)
		return
	}

	if errors.Is(err, sql.ErrNoRows) {
		s.writeDomainError(w, http.StatusNotFound, domain.ErrorCodeNotFound, "resource not found")
		return
	}

	s.logger.Error("unexpected error", "error", err)
	s.writeDomainError(w, http.StatusInternalServerError, domain.ErrorCodeNotFound, "internal server error")
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
