package controllers

import (
	"errors"
	"net/http"

	"github.com/vendhub/vendhub/internal/util"
	"github.com/vendhub/vendhub/internal/workflow"
)

// SessionsController exposes the operator workflow session API: start a
// workflow, feed it input, cancel it.
type SessionsController struct {
	Auth     *AuthController
	Runner   *workflow.Runner
	Registry *workflow.Registry
}

func NewSessionsController(auth *AuthController, runner *workflow.Runner, registry *workflow.Registry) *SessionsController {
	return &SessionsController{Auth: auth, Runner: runner, Registry: registry}
}

func (sc *SessionsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/workflows", sc.Auth.RequireAuth(sc.handleListWorkflows))
	mux.HandleFunc("POST /api/sessions/start", sc.Auth.RequireAuth(sc.handleStart))
	mux.HandleFunc("POST /api/sessions/input", sc.Auth.RequireAuth(sc.handleInput))
	mux.HandleFunc("POST /api/sessions/cancel", sc.Auth.RequireAuth(sc.handleCancel))
}

type workflowInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Steps int    `json:"steps"`
}

func (sc *SessionsController) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	var infos []workflowInfo
	for _, id := range sc.Registry.IDs() {
		def, err := sc.Registry.Lookup(id)
		if err != nil {
			continue
		}
		infos = append(infos, workflowInfo{ID: def.ID, Title: def.Title, Steps: len(def.Steps)})
	}
	util.WriteJSONResponse(w, http.StatusOK, infos)
}

type startRequest struct {
	WorkflowID string `json:"workflowId"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

func (sc *SessionsController) handleStart(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[startRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	reply, err := sc.Runner.StartWorkflow(r.Context(), currentUserID(r), req.WorkflowID)
	if errors.Is(err, workflow.ErrWorkflowNotFound) {
		http.Error(w, "unknown workflow", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not start workflow", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, replyResponse{Reply: reply})
}

type inputRequest struct {
	Text     string `json:"text"`
	PhotoRef string `json:"photoRef"`
	Skip     bool   `json:"skip"`
	Cancel   bool   `json:"cancel"`
}

func (sc *SessionsController) handleInput(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[inputRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	in := workflow.Input{Text: req.Text, PhotoRef: req.PhotoRef, Skip: req.Skip, Cancel: req.Cancel}
	reply, err := sc.Runner.HandleInput(r.Context(), currentUserID(r), in)
	if errors.Is(err, workflow.ErrNoActiveSession) {
		http.Error(w, "no active session", http.StatusConflict)
		return
	}
	// rewinds and partial writes still carry the prompt the user must see next
	if err != nil && !errors.Is(err, workflow.ErrReferenceNotFound) && !errors.Is(err, workflow.ErrPartialWrite) {
		http.Error(w, "could not process input", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, replyResponse{Reply: reply})
}

func (sc *SessionsController) handleCancel(w http.ResponseWriter, r *http.Request) {
	reply, err := sc.Runner.HandleInput(r.Context(), currentUserID(r), workflow.CancelInput())
	if err != nil {
		http.Error(w, "could not cancel session", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, replyResponse{Reply: reply})
}
