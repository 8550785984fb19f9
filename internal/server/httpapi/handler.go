// Package httpapi exposes UserService over HTTP with JSON bodies wrapped in
// the api.Response envelope.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserService is the subset of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Credential, error)
	Login(ctx context.Context, identifier, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, userID string) (*models.User, *models.Credential, error)
	UpdateAccount(ctx context.Context, userID string, email, username *string) (*models.Credential, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	VerifyEmail(ctx context.Context, token string) (*models.Credential, error)
	PasswordPolicy() password.Policy
}

const maxBodyBytes = 1 << 20

type Handler struct {
	users    UserService
	logger   logging.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

// NewHandler builds the handler and registers its metrics on reg.
func NewHandler(users UserService, logger logging.Logger, reg *prometheus.Registry, timeout time.Duration) *Handler {
	return &Handler{
		users:    users,
		logger:   logger.With("module", "http_api"),
		metrics:  NewMetrics(reg),
		gatherer: reg,
		timeout:  timeout,
	}
}

// Router returns a chi.Router with all routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.requestID)
	r.Use(h.accessLog)
	if h.timeout > 0 {
		r.Use(middleware.Timeout(h.timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Post("/user", h.Register)
	r.Post("/user/login", h.Login)
	r.Post("/user/verify", h.VerifyEmail)
	r.Get("/password-policy", h.PasswordPolicy)

	r.Group(func(r chi.Router) {
		r.Use(h.bearerAuth)
		r.Get("/user/me", h.Me)
		r.Patch("/user", h.UpdateAccount)
		r.Put("/user/password", h.ChangePassword)
	})

	return r
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func (h *Handler) badRequest(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, api.CodeBadRequest, "malformed request body")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrPasswordPolicy):
		return "password_policy"
	case errors.Is(err, common.ErrDuplicateEmail), errors.Is(err, common.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, common.ErrEmptyInput):
		return "empty_input"
	default:
		return "error"
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w)
		return
	}

	profile := models.User{
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Phone:   req.Phone,
		Gender:  req.Gender,
	}
	if req.BirthDate != "" {
		d, err := time.Parse(api.DateLayout, req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, api.CodeBadRequest, "birthDate must be YYYY-MM-DD")
			return
		}
		profile.BirthDate = &d
	}

	cred, err := h.users.Register(r.Context(), services.RegisterInput{
		Profile:  profile,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	h.metrics.RegistrationsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		h.mapError(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, toCredentialResponse(cred))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w)
		return
	}

	res, err := h.users.Login(r.Context(), req.Username, req.Password)
	h.metrics.LoginsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		h.mapError(w, r, err)
		return
	}

	user := toUserResponse(res.User, res.Credential)
	writeOK(w, http.StatusOK, api.LoginResponse{AccessToken: res.AccessToken, User: user})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, cred, err := h.users.Me(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			unauthenticated(w)
			return
		}
		h.mapError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, toUserResponse(user, cred))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateAccountRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w)
		return
	}
	if req.Email == nil && req.Username == nil {
		writeError(w, http.StatusBadRequest, api.CodeEmptyInput, "nothing to update")
		return
	}

	cred, err := h.users.UpdateAccount(r.Context(), userIDFrom(r.Context()), req.Email, req.Username)
	if err != nil {
		h.mapError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, toCredentialResponse(cred))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req api.ChangePasswordRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w)
		return
	}

	err := h.users.ChangePassword(r.Context(), userIDFrom(r.Context()), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		// 401 is reserved for a rejected bearer token; a wrong current
		// password must not end the session.
		writeError(w, http.StatusBadRequest, api.CodeInvalidCredentials, "current password is incorrect")
	case err != nil:
		h.mapError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyEmailRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w)
		return
	}

	cred, err := h.users.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		h.mapError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, toCredentialResponse(cred))
}

// PasswordPolicy publishes the password rules so clients validate with
// the same limits the server enforces.
func (h *Handler) PasswordPolicy(w http.ResponseWriter, r *http.Request) {
	p := h.users.PasswordPolicy()
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = password.DefaultMinLength
	}
	writeOK(w, http.StatusOK, api.PasswordPolicyResponse{
		MinLength:      minLength,
		MaxBytes:       password.MaxBytes,
		MinEntropyBits: p.MinEntropyBits,
	})
}

func toCredentialResponse(c *models.Credential) api.CredentialResponse {
	return api.CredentialResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Email:      c.Email,
		Username:   c.Username,
		IsVerified: c.IsVerified,
		LastLogin:  c.LastLogin,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toUserResponse(u *models.User, c *models.Credential) api.UserResponse {
	resp := api.UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Address: u.Address,
		Phone:   u.Phone,
		Gender:  u.Gender,
	}
	if u.BirthDate != nil {
		resp.BirthDate = u.BirthDate.Format(api.DateLayout)
	}
	if c != nil {
		cr := toCredentialResponse(c)
		resp.Credential = &cr
	}
	return resp
}
