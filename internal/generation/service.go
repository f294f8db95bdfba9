// Package generation sequences the AI operations on a resume record: load,
// status transition, provider call, persist, journal. Provider failures are
// absorbed here: every operation degrades to deterministic fallback data
// instead of surfacing a provider error, and nothing is ever retried.
package generation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"resume-forge/internal/database"
	"resume-forge/internal/metrics"
	"resume-forge/internal/models"
	"resume-forge/internal/provider"
	"resume-forge/internal/websocket"
)

// Store is the slice of the persistence layer the orchestrator needs.
// *database.Store satisfies it.
type Store interface {
	GetResumeForOwner(ctx context.Context, id string, ownerID int64) (*models.Resume, error)
	SetResumeStatus(ctx context.Context, id string, status models.Status) error
	SaveAnalysis(ctx context.Context, id string, analysis *models.Analysis, status models.Status) error
	SaveEnhancement(ctx context.Context, id string, arg database.SaveEnhancementParams) error
	AppendJobMatch(ctx context.Context, id string, match models.JobMatch) error
	LogEvent(ctx context.Context, userID int64, resumeID *string, eventType string, payload interface{}) error
}

type Service struct {
	store    Store
	provider provider.GenerationProvider
	fallback *provider.FallbackProvider
	hub      *websocket.Hub
	metrics  *metrics.Collector
}

func NewService(store Store, p provider.GenerationProvider, hub *websocket.Hub, collector *metrics.Collector) *Service {
	return &Service{
		store:    store,
		provider: p,
		fallback: provider.NewFallbackProvider(),
		hub:      hub,
		metrics:  collector,
	}
}

// loadForGeneration fetches an owner-scoped record and checks it has text to
// work with.
func (s *Service) loadForGeneration(ctx context.Context, resumeID string, ownerID int64) (*models.Resume, error) {
	resume, err := s.store.GetResumeForOwner(ctx, resumeID, ownerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if resume == nil {
		return nil, models.NewNotFoundError("resume not found")
	}
	if strings.TrimSpace(resume.OriginalText) == "" {
		return nil, models.NewValidationError("resume has no extracted text")
	}
	return resume, nil
}

// Analyze runs the full analysis pipeline. The record is visible in the
// analyzing state between the two persistence writes. If persisting the
// result fails after analyzing was already written, status is rolled back to
// uploaded.
func (s *Service) Analyze(ctx context.Context, resumeID string, ownerID int64) (*models.Resume, error) {
	resume, err := s.loadForGeneration(ctx, resumeID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := resume.Transition(models.StatusAnalyzing); err != nil {
		return nil, models.NewValidationError("%v", err)
	}
	if err := s.store.SetResumeStatus(ctx, resume.ID, models.StatusAnalyzing); err != nil {
		return nil, models.NewInternalError(err)
	}

	result, usedFallback := s.callAnalyze(ctx, resume.OriginalText)

	analysis := &models.Analysis{
		Score:            result.Score,
		Strengths:        result.Strengths,
		Weaknesses:       result.Weaknesses,
		Keywords:         result.Keywords,
		ATSCompatibility: result.ATSCompatibility,
		GeneratedAt:      time.Now(),
		Fallback:         usedFallback,
	}

	if err := s.store.SaveAnalysis(ctx, resume.ID, analysis, models.StatusAnalyzed); err != nil {
		if rbErr := s.store.SetResumeStatus(ctx, resume.ID, models.StatusUploaded); rbErr != nil {
			slog.Error("failed to roll back status after analysis persist failure",
				"resume_id", resume.ID, "error", rbErr)
		}
		return nil, models.NewInternalError(err)
	}

	resume.Status = models.StatusAnalyzed
	resume.Analysis = analysis

	s.journal(ctx, ownerID, resume.ID, database.EventResumeAnalyzed, map[string]interface{}{
		"score":    analysis.Score,
		"fallback": usedFallback,
	})

	return resume, nil
}

// Enhance rewrites the resume for a target role and industry. It is allowed
// from every lifecycle state and always lands in enhanced; a named content
// version is appended alongside.
func (s *Service) Enhance(ctx context.Context, resumeID string, ownerID int64, targetRole, targetIndustry string) (*models.Resume, error) {
	resume, err := s.loadForGeneration(ctx, resumeID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := resume.Transition(models.StatusEnhanced); err != nil {
		return nil, models.NewValidationError("%v", err)
	}

	enhancedText, usedFallback := s.callEnhance(ctx, resume.OriginalText, targetRole, targetIndustry)

	versionName := strings.TrimSpace(targetRole)
	if versionName == "" {
		versionName = "enhanced"
	}
	version := models.Version{
		Name:      versionName,
		Content:   enhancedText,
		CreatedAt: time.Now(),
	}

	params := database.SaveEnhancementParams{
		EnhancedText:   enhancedText,
		TargetRole:     targetRole,
		TargetIndustry: targetIndustry,
		Version:        version,
	}
	if err := s.store.SaveEnhancement(ctx, resume.ID, params); err != nil {
		return nil, models.NewInternalError(err)
	}

	resume.EnhancedText = &enhancedText
	resume.TargetRole = &targetRole
	resume.TargetIndustry = &targetIndustry
	resume.Versions = append(resume.Versions, version)

	s.journal(ctx, ownerID, resume.ID, database.EventResumeEnhanced, map[string]interface{}{
		"target_role":     targetRole,
		"target_industry": targetIndustry,
		"fallback":        usedFallback,
	})

	return resume, nil
}

// Match appends exactly one job-match entry and never touches status.
func (s *Service) Match(ctx context.Context, resumeID string, ownerID int64, req provider.MatchRequest) (*models.JobMatch, error) {
	resume, err := s.loadForGeneration(ctx, resumeID, ownerID)
	if err != nil {
		return nil, err
	}

	result, usedFallback := s.callMatch(ctx, resume.OriginalText, req)

	match := models.JobMatch{
		JobTitle:                req.JobTitle,
		CompanyName:             req.CompanyName,
		MatchScore:              result.MatchScore,
		MatchedKeywords:         result.MatchedKeywords,
		MissingKeywords:         result.MissingKeywords,
		Suggestions:             result.Suggestions,
		StrengthAreas:           result.StrengthAreas,
		ImprovementAreas:        result.ImprovementAreas,
		SalaryNegotiationPoints: result.SalaryNegotiationPoints,
		CreatedAt:               time.Now(),
		Fallback:                usedFallback,
	}

	if err := s.store.AppendJobMatch(ctx, resume.ID, match); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.journal(ctx, ownerID, resume.ID, database.EventJobMatchAdded, map[string]interface{}{
		"job_title":   req.JobTitle,
		"match_score": match.MatchScore,
		"fallback":    usedFallback,
	})

	return &match, nil
}

func (s *Service) callAnalyze(ctx context.Context, text string) (*provider.AnalysisResult, bool) {
	result, err := s.provider.Analyze(ctx, text)
	if err == nil {
		s.metrics.RecordProviderCall("analyze", s.provider.Name())
		return result, s.provider.Name() == s.fallback.Name()
	}

	slog.Warn("provider analyze failed, using fallback data", "error", err)
	s.metrics.RecordProviderCall("analyze", s.fallback.Name())
	result, _ = s.fallback.Analyze(ctx, text)
	return result, true
}

func (s *Service) callEnhance(ctx context.Context, text, role, industry string) (string, bool) {
	enhanced, err := s.provider.Enhance(ctx, text, role, industry)
	if err == nil {
		s.metrics.RecordProviderCall("enhance", s.provider.Name())
		return enhanced, s.provider.Name() == s.fallback.Name()
	}

	slog.Warn("provider enhance failed, using fallback data", "error", err)
	s.metrics.RecordProviderCall("enhance", s.fallback.Name())
	enhanced, _ = s.fallback.Enhance(ctx, text, role, industry)
	return enhanced, true
}

func (s *Service) callMatch(ctx context.Context, text string, req provider.MatchRequest) (*provider.MatchResult, bool) {
	result, err := s.provider.Match(ctx, text, req)
	if err == nil {
		s.metrics.RecordProviderCall("match", s.provider.Name())
		return result, s.provider.Name() == s.fallback.Name()
	}

	slog.Warn("provider match failed, using fallback data", "error", err)
	s.metrics.RecordProviderCall("match", s.fallback.Name())
	result, _ = s.fallback.Match(ctx, text, req)
	return result, true
}

// journal writes the event and pushes it to the owner's websocket clients.
// Journal failures are logged, not surfaced: the generation result is already
// persisted at this point.
func (s *Service) journal(ctx context.Context, userID int64, resumeID, eventType string, payload map[string]interface{}) {
	if err := s.store.LogEvent(ctx, userID, &resumeID, eventType, payload); err != nil {
		slog.Error("failed to journal event", "event_type", eventType, "error", err)
	}
	s.hub.Publish(userID, websocket.EventMessage{
		EventType: eventType,
		ResumeID:  resumeID,
		Payload:   payload,
	})
}
