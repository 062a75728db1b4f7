package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vendhub/vendhub/internal/approval"
	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/util"
	"github.com/vendhub/vendhub/internal/workflow"
)

// ApprovalsController exposes the manager reconciliation queue.
type ApprovalsController struct {
	Auth    *AuthController
	Service *approval.Service
}

func NewApprovalsController(auth *AuthController, service *approval.Service) *ApprovalsController {
	return &ApprovalsController{Auth: auth, Service: service}
}

func (c *ApprovalsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/approvals/pending", c.Auth.RequireAuth(c.handlePending))
	mux.HandleFunc("POST /api/approvals/{id}/confirm", c.Auth.RequireAuth(c.handleConfirm))
	mux.HandleFunc("POST /api/approvals/{id}/reject", c.Auth.RequireAuth(c.handleReject))
}

func (c *ApprovalsController) handlePending(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleManager); !ok {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := c.Service.Pending(r.Context(), limit)
	if err != nil {
		http.Error(w, "could not load pending entries", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, entries)
}

func (c *ApprovalsController) handleConfirm(w http.ResponseWriter, r *http.Request) {
	approver, ok := c.Auth.requireRole(w, r, domain.RoleManager)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	entry, err := c.Service.Confirm(r.Context(), id, approver.ID)
	if err != nil {
		writeVerdictError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, entry)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (c *ApprovalsController) handleReject(w http.ResponseWriter, r *http.Request) {
	approver, ok := c.Auth.requireRole(w, r, domain.RoleManager)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}
	req, err := util.DecodeJSONBody[rejectRequest](r)
	if err != nil || req.Reason == "" {
		http.Error(w, "a reject reason is required", http.StatusBadRequest)
		return
	}

	entry, err := c.Service.Reject(r.Context(), id, approver.ID, req.Reason)
	if err != nil {
		writeVerdictError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, entry)
}

func writeVerdictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrReferenceNotFound):
		http.Error(w, "cash entry not found", http.StatusNotFound)
	case errors.Is(err, approval.ErrAlreadyReconciled):
		http.Error(w, "entry already reconciled", http.StatusConflict)
	default:
		http.Error(w, "could not apply verdict", http.StatusInternalServerError)
	}
}
