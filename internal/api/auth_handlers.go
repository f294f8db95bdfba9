package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"resume-forge/internal/auth"
	"resume-forge/internal/database"
	"resume-forge/internal/models"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const refreshTokenTTL = 24 * time.Hour

type RegisterRequest struct {
	Email       string  `json:"email" example:"alice@example.com"`
	Password    string  `json:"password" example:"password123"`
	DisplayName *string `json:"display_name,omitempty" example:"Alice"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password123"`
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user,omitempty"`
}

func (s *Server) issueTokens(r *http.Request, user *models.User) (*TokenResponse, error) {
	accessToken, err := auth.GenerateJWT(user, s.config.JWT.Secret)
	if err != nil {
		return nil, err
	}

	generateID, err := nanoid.Standard(40)
	if err != nil {
		return nil, err
	}
	refreshToken := generateID()

	sessionParams := database.CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	}
	if err := s.store.CreateSession(r.Context(), sessionParams); err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// @Summary      Register a new user
// @Description  Creates an account and returns tokens so the client is logged in immediately.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Registration data"
// @Success      201              {object}  Envelope{data=TokenResponse}
// @Failure      400              {object}  Envelope
// @Failure      409              {object}  Envelope
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		s.respondError(w, r, models.NewValidationError("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		s.respondError(w, r, models.NewValidationError("password must be at least 8 characters"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			s.respondError(w, r, models.NewConflictError(err.Error()))
			return
		}
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	tokens, err := s.issueTokens(r, user)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.respond(w, r, http.StatusCreated, "account created", tokens)
}

// @Summary      Log a user in
// @Description  Authenticates a user and returns a short-lived access token and a refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200           {object}  Envelope{data=TokenResponse}
// @Failure      400           {object}  Envelope
// @Failure      401           {object}  Envelope
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.fail(w, r, http.StatusUnauthorized, "invalid email or password")
		return
	}

	tokens, err := s.issueTokens(r, user)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.respond(w, r, http.StatusOK, "logged in", tokens)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// @Summary      Refresh access token
// @Description  Exchanges a valid refresh token for new tokens. Implements refresh token rotation.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refreshTokenRequest  body      RefreshTokenRequest  true  "Refresh token"
// @Success      200                  {object}  Envelope{data=TokenResponse}
// @Failure      400                  {object}  Envelope
// @Failure      401                  {object}  Envelope
// @Router       /auth/refresh [post]
func (s *Server) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}
	if req.RefreshToken == "" {
		s.respondError(w, r, models.NewValidationError("refresh token is required"))
		return
	}

	var errInvalidRefresh = errors.New("invalid or expired refresh token")

	var tokens *TokenResponse
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		user, err := q.GetUserByRefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			return err
		}
		if user == nil {
			return errInvalidRefresh
		}

		if err := q.DeleteSessionByRefreshToken(r.Context(), req.RefreshToken); err != nil {
			return err
		}

		accessToken, err := auth.GenerateJWT(user, s.config.JWT.Secret)
		if err != nil {
			return err
		}

		generateID, err := nanoid.Standard(40)
		if err != nil {
			return err
		}
		newRefreshToken := generateID()

		sessionParams := database.CreateSessionParams{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: newRefreshToken,
			UserAgent:    r.UserAgent(),
			ClientIP:     r.RemoteAddr,
			ExpiresAt:    time.Now().Add(refreshTokenTTL),
		}
		if err := q.CreateSession(r.Context(), sessionParams); err != nil {
			return err
		}

		tokens = &TokenResponse{AccessToken: accessToken, RefreshToken: newRefreshToken}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, errInvalidRefresh) {
			s.fail(w, r, http.StatusUnauthorized, txErr.Error())
			return
		}
		s.respondError(w, r, models.NewInternalError(txErr))
		return
	}

	s.respond(w, r, http.StatusOK, "token refreshed", tokens)
}
