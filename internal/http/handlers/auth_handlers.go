package handlers

import (
	"errors"
	"net/http"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

func (s *Server) readCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var creds CredentialsRequest
	if err := readJSON(w, r, &creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid input")
		return creds, false
	}
	if errs := s.validator.Validate(creds); errs != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: errs})
		return creds, false
	}
	return creds, true
}

// SignUpHandler godoc
// @Summary Register a new shopper and sign them in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "email and password"
// @Success 201 {object} AuthResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email taken"
// @Router /auth/signup [post]
func (s *Server) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	user, tokens, err := s.auth.SignUp(r.Context(), creds.Email, creds.Password, models.RoleUser)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			s.writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error("sign up failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}
	s.writeJSON(w, http.StatusCreated, AuthResult{User: user, Tokens: tokens})
}

// LoginHandler godoc
// @Summary Sign in and receive tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "email and password"
// @Success 200 {object} AuthResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	user, tokens, err := s.auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	s.writeJSON(w, http.StatusOK, AuthResult{User: user, Tokens: tokens})
}

// RefreshHandler godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "refresh token"
// @Success 200 {object} auth.Tokens
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (s *Server) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(w, r, &req); err != nil || s.validator.Validate(req) != nil {
		s.writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	tokens, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			s.writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		s.logger.Error("token refresh failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}
	s.writeJSON(w, http.StatusOK, tokens)
}

// LogoutHandler godoc
// @Summary Sign out and revoke refresh tokens
// @Tags auth
// @Success 204 "Signed out"
// @Failure 401 {object} ErrorResponse
// @Router /auth/logout [post]
// @Security BearerAuth
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), IdentityFrom(r.Context())); err != nil {
		s.logger.Error("logout failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
// @Security BearerAuth
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Me(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			s.writeError(w, http.StatusUnauthorized, "user no longer exists")
			return
		}
		s.logger.Error("load current user failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}
