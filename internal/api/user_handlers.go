package api

import (
	"encoding/json"
	"net/http"
	"time"

	"resume-forge/internal/auth"
	"resume-forge/internal/database"
	"resume-forge/internal/models"
	"resume-forge/internal/quota"
)

// @Summary      Get current user
// @Description  Returns the authenticated user's profile, tier and usage ledger.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=models.User}
// @Failure      401  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if user == nil {
		s.respondError(w, r, models.NewNotFoundError("user not found"))
		return
	}

	s.respond(w, r, http.StatusOK, "current user", user)
}

type UpdateProfileRequest struct {
	DisplayName *string             `json:"display_name,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

// @Summary      Update profile
// @Description  Updates display name and/or preferences. Omitted fields are left unchanged.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        updateProfileRequest  body      UpdateProfileRequest  true  "Fields to update"
// @Success      200                   {object}  Envelope{data=models.User}
// @Failure      400                   {object}  Envelope
// @Router       /me [patch]
func (s *Server) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}
	if req.DisplayName == nil && req.Preferences == nil {
		s.respondError(w, r, models.NewValidationError("nothing to update"))
		return
	}

	params := database.UpdateProfileParams{DisplayName: req.DisplayName}
	if req.Preferences != nil {
		prefs, err := json.Marshal(req.Preferences)
		if err != nil {
			s.respondError(w, r, models.NewInternalError(err))
			return
		}
		params.Preferences = prefs
	}

	user, err := s.store.UpdateProfile(r.Context(), claims.UserID, params)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if user == nil {
		s.respondError(w, r, models.NewNotFoundError("user not found"))
		return
	}

	s.respond(w, r, http.StatusOK, "profile updated", user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// @Summary      Change password
// @Description  Verifies the current password and replaces it.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        changePasswordRequest  body      ChangePasswordRequest  true  "Passwords"
// @Success      200                    {object}  Envelope
// @Failure      400                    {object}  Envelope
// @Failure      403                    {object}  Envelope
// @Router       /me/password [put]
func (s *Server) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}
	if len(req.NewPassword) < 8 {
		s.respondError(w, r, models.NewValidationError("new password must be at least 8 characters"))
		return
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if user == nil {
		s.respondError(w, r, models.NewNotFoundError("user not found"))
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		s.respondError(w, r, models.NewAuthError("current password is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if err := s.store.UpdatePassword(r.Context(), claims.UserID, hash); err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.respond(w, r, http.StatusOK, "password changed", nil)
}

type UsageResponse struct {
	Tier          models.Tier `json:"tier"`
	Used          int         `json:"used"`
	Limit         int         `json:"limit"`
	Remaining     int         `json:"remaining"`
	LifetimeTotal int64       `json:"lifetime_total"`
	ResetsAt      time.Time   `json:"resets_at"`
}

// @Summary      Get usage ledger
// @Description  Returns the monthly AI request usage against the tier limit. Reading never consumes a unit.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=UsageResponse}
// @Failure      401  {object}  Envelope
// @Router       /me/usage [get]
func (s *Server) GetUsageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if user == nil {
		s.respondError(w, r, models.NewNotFoundError("user not found"))
		return
	}

	now := time.Now()
	snap := quota.Snapshot(user, now)

	used := snap.Limit - snap.Remaining
	firstOfNextMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	s.respond(w, r, http.StatusOK, "usage", UsageResponse{
		Tier:          user.Tier,
		Used:          used,
		Limit:         snap.Limit,
		Remaining:     snap.Remaining,
		LifetimeTotal: user.LifetimeCount,
		ResetsAt:      firstOfNextMonth,
	})
}
