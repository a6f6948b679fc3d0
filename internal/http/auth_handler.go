package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/auth"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewAuthHandler(timeout time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		timeout: timeout,
		logger:  logger,
	}
}

type CredentialsRequestDTO struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

type AuthResponse struct {
	User            *domain.AuthUser `json:"user"`
	IsAuthenticated bool             `json:"is_authenticated"`
	IsLoading       bool             `json:"is_loading"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, auth.FormLogin, http.StatusOK)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, auth.FormRegister, http.StatusCreated)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, kind auth.FormKind, status int) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	var req CredentialsRequestDTO
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := auth.ValidateForm(kind, req.Email, req.Password, req.ConfirmPassword); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	var err error
	if kind == auth.FormRegister {
		err = s.Auth.Register(ctx, req.Email, req.Password)
	} else {
		err = s.Auth.Login(ctx, req.Email, req.Password)
	}
	if err != nil {
		h.logger.Warn("auth persist error", zap.String("session_id", s.ID), zap.Error(err))
	}

	respondJSON(w, status, authState(s))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	if err := s.Auth.Logout(ctx); err != nil {
		h.logger.Warn("auth persist error", zap.String("session_id", s.ID), zap.Error(err))
	}
	respondJSON(w, http.StatusOK, authState(s))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}
	respondJSON(w, http.StatusOK, authState(s))
}

func authState(s *session.Session) *AuthResponse {
	return &AuthResponse{
		User:            s.Auth.User(),
		IsAuthenticated: s.Auth.IsAuthenticated(),
		IsLoading:       s.Auth.IsLoading(),
	}
}
