package controllers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/util"
)

// UsersController manages staff accounts. Everything here is admin-only.
type UsersController struct {
	Auth *AuthController
}

func NewUsersController(auth *AuthController) *UsersController {
	return &UsersController{Auth: auth}
}

func (c *UsersController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", c.Auth.RequireAuth(c.handleList))
	mux.HandleFunc("POST /api/users", c.Auth.RequireAuth(c.handleCreate))
	mux.HandleFunc("POST /api/users/{id}/enabled", c.Auth.RequireAuth(c.handleSetEnabled))
}

func (c *UsersController) handleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleAdmin); !ok {
		return
	}
	users, err := c.Auth.UserRepo.FindAll()
	if err != nil {
		http.Error(w, "could not load users", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ChatID   string `json:"chatId"`
}

func validRole(role string) bool {
	switch role {
	case domain.RoleOperator, domain.RoleManager, domain.RoleWarehouse, domain.RoleAdmin:
		return true
	}
	return false
}

func (c *UsersController) handleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleAdmin); !ok {
		return
	}
	req, err := util.DecodeJSONBody[createUserRequest](r)
	if err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}
	if !validRole(req.Role) {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	u := &domain.User{
		Username: req.Username,
		Password: hashed,
		Role:     req.Role,
		ChatID:   nullString(req.ChatID),
		ApiKey:   sql.NullString{String: uuid.NewString(), Valid: true},
		Enabled:  sql.NullBool{Bool: true, Valid: true},
	}
	if _, err := c.Auth.UserRepo.Save(u); err != nil {
		http.Error(w, "could not save user", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, u)
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (c *UsersController) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleAdmin); !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	req, err := util.DecodeJSONBody[setEnabledRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := c.Auth.UserRepo.SetEnabled(id, req.Enabled); err != nil {
		http.Error(w, "could not update user", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
