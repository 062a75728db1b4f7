package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendhub/vendhub/internal/config"
	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/util"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// UserRepo defines the user persistence surface the controllers need.
type UserRepo interface {
	FindBySessionID(sessionID string, now time.Time) (*domain.User, error)
	FindByApiKey(apiKey string) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindById(id int64) (*domain.User, error)
	FindAll() ([]*domain.User, error)
	Save(u *domain.User) (int64, error)
	SetEnabled(id int64, enabled bool) error
	UpdateSession(userID int64, sessionID string, expiry time.Time) error
	ClearSessionBySessionID(sessionID string) error
}

type AuthController struct {
	UserRepo UserRepo
	Clock    core.Clock
}

func NewAuthController(userRepo UserRepo, clock core.Clock) *AuthController {
	return &AuthController{UserRepo: userRepo, Clock: clock}
}

func (ac *AuthController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", ac.handleLogin)
	mux.HandleFunc("POST /api/logout", ac.handleLogout)
}

// RequireAuth accepts either the session cookie or an X-API-Key header and
// puts the authenticated user's name and id on the request context.
func (ac *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1) Try session cookie
		if c, err := r.Cookie("sessionId"); err == nil && c.Value != "" {
			u, err := ac.UserRepo.FindBySessionID(c.Value, ac.Clock.Now().UTC())
			if err == nil && u != nil {
				next(w, r.WithContext(withUser(r.Context(), u)))
				return
			}
		}
		// 2) Try API key from headers
		apiKey := r.Header.Get("X-API-Key")
		if apiKey != "" {
			u, err := ac.UserRepo.FindByApiKey(apiKey)
			if err == nil && u != nil {
				next(w, r.WithContext(withUser(r.Context(), u)))
				return
			}
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
}

func withUser(ctx context.Context, u *domain.User) context.Context {
	ctx = context.WithValue(ctx, core.CtxKeyUsername, u.Username)
	return context.WithValue(ctx, core.CtxKeyUserId, u.ID)
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(core.CtxKeyUserId).(int64)
	return id
}

// requireRole loads the authenticated user and checks the role. Admins pass
// every check.
func (ac *AuthController) requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (*domain.User, bool) {
	u, err := ac.UserRepo.FindById(currentUserID(r))
	if err != nil || u == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if u.Role == domain.RoleAdmin {
		return u, true
	}
	for _, role := range roles {
		if u.Role == role {
			return u, true
		}
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
	return nil, false
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID string    `json:"sessionId"`
	Expiry    time.Time `json:"expiry"`
	Role      string    `json:"role"`
}

func (ac *AuthController) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[loginRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	u, err := ac.UserRepo.FindByUsername(req.Username)
	if err != nil || u == nil || !u.Enabled.Bool {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	// Compare bcrypt hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	sessionID := uuid.NewString()
	expiryHours := config.GetSystemSettingInteger(config.WEB_SESSION_EXPIRY_HOURS)
	expiry := ac.Clock.Now().UTC().Add(time.Duration(expiryHours) * time.Hour)
	if err := ac.UserRepo.UpdateSession(u.ID, sessionID, expiry); err != nil {
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "sessionId",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Expires:  expiry,
	})
	util.WriteJSONResponse(w, http.StatusOK, loginResponse{SessionID: sessionID, Expiry: expiry, Role: u.Role})
}

func (ac *AuthController) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie("sessionId"); err == nil && c.Value != "" {
		_ = ac.UserRepo.ClearSessionBySessionID(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: "sessionId", Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

// HashPassword is the single place passwords are hashed so the cost stays
// consistent between bootstrap and user creation.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// nullString converts an optional JSON field to its SQL representation.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
