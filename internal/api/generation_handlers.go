package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"resume-forge/internal/models"
	"resume-forge/internal/provider"

	"github.com/go-chi/chi/v5"
)

// consumeQuota runs the monthly quota gate for the authenticated user. On
// rejection it writes the 429 envelope and reports false.
func (s *Server) consumeQuota(w http.ResponseWriter, r *http.Request, userID int64) bool {
	if _, err := s.quota.Consume(r.Context(), userID); err != nil {
		s.respondError(w, r, err)
		return false
	}
	return true
}

// @Summary      Analyze resume
// @Description  Runs AI analysis over the resume text and stores the result. Consumes one generation from the monthly quota.
// @Tags         generation
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId  path      string  true  "Resume ID"
// @Success      200       {object}  Envelope{data=models.Resume}
// @Failure      404       {object}  Envelope
// @Failure      409       {object}  Envelope
// @Failure      429       {object}  Envelope
// @Router       /resumes/{resumeId}/analyze [post]
func (s *Server) AnalyzeResumeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	resumeID := chi.URLParam(r, "resumeId")

	if !s.consumeQuota(w, r, claims.UserID) {
		return
	}

	resume, err := s.generation.Analyze(r.Context(), resumeID, claims.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, "resume analyzed", resume)
}

type EnhanceRequest struct {
	TargetRole     string `json:"target_role,omitempty"`
	TargetIndustry string `json:"target_industry,omitempty"`
}

// @Summary      Enhance resume
// @Description  Produces an enhanced rewrite of the resume, optionally tailored to a role and industry, and appends it as a named version. Consumes one generation from the monthly quota.
// @Tags         generation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId        path      string          true   "Resume ID"
// @Param        enhanceRequest  body      EnhanceRequest  false  "Optional targeting"
// @Success      200             {object}  Envelope{data=models.Resume}
// @Failure      404             {object}  Envelope
// @Failure      429             {object}  Envelope
// @Router       /resumes/{resumeId}/enhance [post]
func (s *Server) EnhanceResumeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	resumeID := chi.URLParam(r, "resumeId")

	var req EnhanceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, models.NewValidationError("invalid request body"))
			return
		}
	}

	if !s.consumeQuota(w, r, claims.UserID) {
		return
	}

	resume, err := s.generation.Enhance(r.Context(), resumeID, claims.UserID,
		strings.TrimSpace(req.TargetRole), strings.TrimSpace(req.TargetIndustry))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, "resume enhanced", resume)
}

type MatchRequest struct {
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	CompanyName    string `json:"company_name,omitempty"`
}

// @Summary      Match resume against a job
// @Description  Scores the resume against a job description and appends the result to the match history. Does not change the resume status. Consumes one generation from the monthly quota.
// @Tags         generation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId      path      string        true  "Resume ID"
// @Param        matchRequest  body      MatchRequest  true  "Job posting to match against"
// @Success      200           {object}  Envelope{data=models.JobMatch}
// @Failure      400           {object}  Envelope
// @Failure      404           {object}  Envelope
// @Failure      429           {object}  Envelope
// @Router       /resumes/{resumeId}/match [post]
func (s *Server) MatchResumeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	resumeID := chi.URLParam(r, "resumeId")

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}

	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	if req.JobTitle == "" {
		s.respondError(w, r, models.NewValidationError("job_title is required"))
		return
	}
	if req.JobDescription == "" {
		s.respondError(w, r, models.NewValidationError("job_description is required"))
		return
	}

	if !s.consumeQuota(w, r, claims.UserID) {
		return
	}

	match, err := s.generation.Match(r.Context(), resumeID, claims.UserID, provider.MatchRequest{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		CompanyName:    strings.TrimSpace(req.CompanyName),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, "job match computed", match)
}
