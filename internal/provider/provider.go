// Package provider wraps the external generation service behind a small
// interface so the live HTTP client and the deterministic fallback are
// interchangeable at process start.
package provider

import "context"

type AnalysisResult struct {
	Score            int      `json:"score"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Keywords         []string `json:"keywords"`
	ATSCompatibility int      `json:"ats_compatibility"`
}

type MatchRequest struct {
	JobTitle       string
	JobDescription string
	CompanyName    string
}

type MatchResult struct {
	MatchScore              int      `json:"match_score"`
	MatchedKeywords         []string `json:"matched_keywords"`
	MissingKeywords         []string `json:"missing_keywords"`
	Suggestions             []string `json:"suggestions"`
	StrengthAreas           []string `json:"strength_areas"`
	ImprovementAreas        []string `json:"improvement_areas"`
	SalaryNegotiationPoints []string `json:"salary_negotiation_points"`
}

// GenerationProvider produces AI-derived resume content. Implementations may
// fail; callers are expected to degrade to fallback data rather than surface
// provider errors.
type GenerationProvider interface {
	Analyze(ctx context.Context, resumeText string) (*AnalysisResult, error)
	Enhance(ctx context.Context, resumeText, targetRole, targetIndustry string) (string, error)
	Match(ctx context.Context, resumeText string, req MatchRequest) (*MatchResult, error)
	// Name identifies the implementation in logs and metrics.
	Name() string
}
