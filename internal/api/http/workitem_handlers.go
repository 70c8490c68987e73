package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teamops/assignment-service/internal/domain"
)

type workItemResponse struct {
	WorkItem workItemDTO `json:"work_item"`
}

func (s *Server) HandleWorkItemCreate(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Debug("error closing body in HandleWorkItemCreate", "error", err)
		}
	}()

	var req workItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "invalid JSON body")
		return
	}

	created, err := s.app.WorkItem.CreateWorkItem(r.Context(), workItemFromDTO(req))
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := workItemResponse{
		WorkItem: workItemToDTO(created),
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

type workItemIDRequest struct {
	ID string `json:"id"`
}

type assignResponse struct {
	Decision decisionDTO `json:"decision"`
}

func (s *Server) HandleWorkItemAssign(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Debug("error closing body in HandleWorkItemAssign", "error", err)
		}
	}()

	var req workItemIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "invalid JSON body")
		return
	}
	if req.ID == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "id is required")
		return
	}

	decision, err := s.app.WorkItem.AssignWorkItem(r.Context(), req.ID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := assignResponse{
		Decision: decisionToDTO(*decision),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type bulkAssignRequest struct {
	IDs []string `json:"ids"`
}

type bulkAssignResponse struct {
	Decisions []decisionDTO `json:"decisions"`
}

func (s *Server) HandleWorkItemBulkAssign(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Debug("error closing body in HandleWorkItemBulkAssign", "error", err)
		}
	}()

	var req bulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "ids are required")
		return
	}

	decisions, err := s.app.WorkItem.BulkAssign(r.Context(), req.IDs)
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := bulkAssignResponse{Decisions: make([]decisionDTO, 0, len(decisions))}
	for _, d := range decisions {
		resp.Decisions = append(resp.Decisions, decisionToDTO(d))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandleWorkItemStart(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Debug("error closing body in HandleWorkItemStart", "error", err)
		}
	}()

	var req workItemIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "invalid JSON body")
		return
	}
	if req.ID == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "id is required")
		return
	}

	item, err := s.app.WorkItem.StartWorkItem(r.Context(), req.ID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, workItemResponse{WorkItem: workItemToDTO(item)})
}

type completeResponse struct {
	CompletedID string        `json:"completed_id"`
	Unblocked   []string      `json:"unblocked"`
	Assigned    []decisionDTO `json:"assigned"`
	Failed      []string      `json:"failed"`
}

func (s *Server) HandleWorkItemComplete(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Debug("error closing body in HandleWorkItemComplete", "error", err)
		}
	}()

	var req workItemIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "invalid JSON body")
		return
	}
	if req.ID == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "id is required")
		return
	}

	result, err := s.app.WorkItem.CompleteWorkItem(r.Context(), req.ID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := completeResponse{
		CompletedID: result.CompletedID,
		Unblocked:   result.Unblocked,
		Assigned:    make([]decisionDTO, 0, len(result.Assigned)),
		Failed:      make([]string, 0, len(result.Failed)),
	}
	for _, d := range result.Assigned {
		resp.Assigned = append(resp.Assigned, decisionToDTO(d))
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, f.WorkItemID)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandleWorkItemGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeDomainError(w, http.StatusBadRequest, domain.ErrorCodeValidation, "id is required")
		return
	}

	item, err := s.app.WorkItem.GetWorkItem(r.Context(), id)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, workItemToDTO(item))
}
