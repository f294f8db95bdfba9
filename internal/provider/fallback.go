package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

// FallbackProvider produces schema-valid synthetic results without any
// network call. Output is deterministic for a given input text: the PRNG is
// seeded from a hash of the resume, so repeated requests for the same record
// return identical data.
type FallbackProvider struct{}

func NewFallbackProvider() *FallbackProvider { return &FallbackProvider{} }

func (f *FallbackProvider) Name() string { return "fallback" }

func seededRand(text string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(text))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// scoreIn returns a score in [lo, hi].
func scoreIn(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// sampleKeywords picks plausible keywords, preferring words actually present
// in the resume text so the synthetic result does not look entirely canned.
func sampleKeywords(r *rand.Rand, text string, fallback []string, n int) []string {
	seen := make(map[string]bool)
	var candidates []string
	for _, w := range strings.Fields(text) {
		w = strings.Trim(strings.ToLower(w), ".,;:()")
		if len(w) >= 5 && !seen[w] {
			seen[w] = true
			candidates = append(candidates, w)
		}
	}

	var out []string
	for len(out) < n && len(candidates) > 0 {
		i := r.Intn(len(candidates))
		out = append(out, candidates[i])
		candidates = append(candidates[:i], candidates[i+1:]...)
	}
	for len(out) < n {
		out = append(out, fallback[len(out)%len(fallback)])
	}
	return out
}

var genericKeywords = []string{"communication", "leadership", "teamwork", "problem solving", "project management"}

func (f *FallbackProvider) Analyze(_ context.Context, resumeText string) (*AnalysisResult, error) {
	r := seededRand("analyze:" + resumeText)

	return &AnalysisResult{
		Score: scoreIn(r, 62, 88),
		Strengths: []string{
			"Clear presentation of professional experience",
			"Relevant skills are stated explicitly",
			"Consistent formatting throughout the document",
		},
		Weaknesses: []string{
			"Achievements could be quantified with concrete numbers",
			"Summary section could be more tailored to a target role",
		},
		Keywords:         sampleKeywords(r, resumeText, genericKeywords, 6),
		ATSCompatibility: scoreIn(r, 58, 85),
	}, nil
}

func (f *FallbackProvider) Enhance(_ context.Context, resumeText, targetRole, targetIndustry string) (string, error) {
	header := "PROFESSIONAL SUMMARY\n"
	if targetRole != "" {
		header = fmt.Sprintf("PROFESSIONAL SUMMARY - %s", targetRole)
		if targetIndustry != "" {
			header += fmt.Sprintf(" (%s)", targetIndustry)
		}
		header += "\n"
	}
	return header +
		"Results-driven professional with a track record of delivering measurable outcomes.\n\n" +
		resumeText, nil
}

func (f *FallbackProvider) Match(_ context.Context, resumeText string, req MatchRequest) (*MatchResult, error) {
	r := seededRand("match:" + resumeText + ":" + req.JobTitle)

	return &MatchResult{
		MatchScore:      scoreIn(r, 55, 85),
		MatchedKeywords: sampleKeywords(r, resumeText, genericKeywords, 4),
		MissingKeywords: sampleKeywords(r, req.JobDescription, genericKeywords, 3),
		Suggestions: []string{
			fmt.Sprintf("Mirror key phrases from the %s posting in your summary", req.JobTitle),
			"Quantify your most relevant achievements",
			"Move the most relevant experience to the top of the document",
		},
		StrengthAreas: []string{
			"Core professional experience",
			"Demonstrated career progression",
		},
		ImprovementAreas: []string{
			"Role-specific terminology",
			"Certifications and recent training",
		},
		SalaryNegotiationPoints: []string{
			"Breadth of experience across the listed requirements",
			"Immediate availability and short ramp-up time",
		},
	}, nil
}
