// Package handler serves the /api/auth endpoints on top of the in-memory
// user and session store.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/store"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/validator"
	gwmw "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/gateway/middleware"
	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/validate"
)

var (
	errEmailTaken         = apperrors.Conflict("A user with this email is already registered").WithField("email")
	errInvalidCredentials = apperrors.Unauthorized("Invalid email or password")
	errUserNotFound       = apperrors.NotFound("User not found")
)

// AuthResult is returned by register and login.
type AuthResult struct {
	User      store.PublicUser `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Handler needs a store; collector and metrics may be nil.
type Handler struct {
	store     *store.Store
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(st *store.Store, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		store:     st,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "auth-handler"),
	}
}

// Register serves POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := validate.DecodeBody(w, r)
	if err != nil {
		response.Error(w, err)
		return
	}
	in, err := validator.Register(body)
	if err != nil {
		response.Error(w, err)
		return
	}
	if _, exists := h.store.FindUserByEmail(in.Email); exists {
		response.Error(w, errEmailTaken)
		return
	}

	user := h.store.CreateUser(in.Name, in.Email, in.Password)
	sess := h.store.CreateSession(user.ID)
	h.track(r, analytics.EventRegister, user.ID)
	logger.FromContext(r.Context()).Info("user registered", "user_id", user.ID)

	response.Message(w, http.StatusCreated, "Registration successful", AuthResult{
		User:      store.ToPublic(user),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Login serves POST /api/auth/login. Passwords are compared as stored.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := validate.DecodeBody(w, r)
	if err != nil {
		response.Error(w, err)
		return
	}
	in, err := validator.Login(body)
	if err != nil {
		response.Error(w, err)
		return
	}

	user, ok := h.store.FindUserByEmail(in.Email)
	if !ok || user.Password != in.Password {
		h.track(r, analytics.EventLoginFailed, "")
		response.Error(w, errInvalidCredentials)
		return
	}

	sess := h.store.CreateSession(user.ID)
	h.track(r, analytics.EventLogin, user.ID)

	response.Message(w, http.StatusOK, "Login successful", AuthResult{
		User:      store.ToPublic(user),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Logout serves POST /api/auth/logout. With ?all=true every session of the
// user is revoked, not just the calling one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := gwmw.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, gwmw.ErrNotAuthenticated)
		return
	}

	if r.URL.Query().Get("all") == "true" {
		n := h.store.DeleteAllUserSessions(p.User.ID)
		h.track(r, analytics.EventLogout, p.User.ID)
		response.Message(w, http.StatusOK, fmt.Sprintf("All sessions removed (%d)", n), map[string]int{"removed": n})
		return
	}

	h.store.DeleteSession(p.Session.Token)
	h.track(r, analytics.EventLogout, p.User.ID)
	response.Message(w, http.StatusOK, "Logged out", nil)
}

// Me serves GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := gwmw.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, gwmw.ErrNotAuthenticated)
		return
	}
	response.OK(w, http.StatusOK, store.ToPublic(p.User))
}

// UpdateMe serves PATCH /api/auth/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := gwmw.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, gwmw.ErrNotAuthenticated)
		return
	}
	body, err := validate.DecodeBody(w, r)
	if err != nil {
		response.Error(w, err)
		return
	}
	upd, err := validator.Update(body)
	if err != nil {
		response.Error(w, err)
		return
	}
	if upd.Email != nil {
		if other, exists := h.store.FindUserByEmail(*upd.Email); exists && other.ID != p.User.ID {
			response.Error(w, errEmailTaken)
			return
		}
	}

	updated, ok := h.store.UpdateUser(p.User.ID, upd)
	if !ok {
		response.Error(w, errUserNotFound)
		return
	}
	response.Message(w, http.StatusOK, "Profile updated", store.ToPublic(updated))
}

// DeleteMe serves DELETE /api/auth/me and revokes every session of the user.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	p, ok := gwmw.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, gwmw.ErrNotAuthenticated)
		return
	}
	h.store.DeleteUser(p.User.ID)
	h.track(r, analytics.EventDeleteUser, p.User.ID)
	logger.FromContext(r.Context()).Info("user deleted", "user_id", p.User.ID)
	response.Message(w, http.StatusOK, "Account deleted", nil)
}

// Users serves GET /api/auth/users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	response.List(w, h.store.AllUsers())
}

func (h *Handler) track(r *http.Request, event analytics.EventType, userID string) {
	if h.metrics != nil {
		h.metrics.AuthEventsTotal.WithLabelValues(string(event)).Inc()
		h.metrics.RegisteredUsers.Set(float64(h.store.UserCount()))
		h.metrics.ActiveSessions.Set(float64(h.store.SessionCount()))
	}
	if h.collector != nil {
		h.collector.Track(analytics.UserEvent{
			Type:      event,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(r.Context()),
		})
	}
}
