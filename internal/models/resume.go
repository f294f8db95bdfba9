package models

import "time"

type SourceFormat string

const (
	FormatPDF  SourceFormat = "pdf"
	FormatDOCX SourceFormat = "docx"
	FormatTXT  SourceFormat = "txt"
)

type Resume struct {
	ID             string       `json:"id"`
	OwnerID        int64        `json:"owner_id"`
	Title          string       `json:"title"`
	Filename       string       `json:"filename"`
	SourceFormat   SourceFormat `json:"source_format"`
	OriginalText   string       `json:"original_text"`
	EnhancedText   *string      `json:"enhanced_text,omitempty"`
	TargetRole     *string      `json:"target_role,omitempty"`
	TargetIndustry *string      `json:"target_industry,omitempty"`
	Status         Status       `json:"status"`
	Analysis       *Analysis    `json:"analysis,omitempty"`
	JobMatches     []JobMatch   `json:"job_matches"`
	Versions       []Version    `json:"versions"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Analysis is the latest analysis result embedded in a Resume. A new analyze
// call overwrites it; the job-match and version lists only ever grow.
type Analysis struct {
	Score            int       `json:"score"`
	Strengths        []string  `json:"strengths"`
	Weaknesses       []string  `json:"weaknesses"`
	Keywords         []string  `json:"keywords"`
	ATSCompatibility int       `json:"ats_compatibility"`
	GeneratedAt      time.Time `json:"generated_at"`
	Fallback         bool      `json:"fallback"`
}

type JobMatch struct {
	JobTitle                string    `json:"job_title"`
	CompanyName             string    `json:"company_name,omitempty"`
	MatchScore              int       `json:"match_score"`
	MatchedKeywords         []string  `json:"matched_keywords"`
	MissingKeywords         []string  `json:"missing_keywords"`
	Suggestions             []string  `json:"suggestions"`
	StrengthAreas           []string  `json:"strength_areas"`
	ImprovementAreas        []string  `json:"improvement_areas"`
	SalaryNegotiationPoints []string  `json:"salary_negotiation_points"`
	CreatedAt               time.Time `json:"created_at"`
	Fallback                bool      `json:"fallback"`
}

type Version struct {
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func ParseSourceFormat(s string) (SourceFormat, bool) {
	switch SourceFormat(s) {
	case FormatPDF, FormatDOCX, FormatTXT:
		return SourceFormat(s), true
	}
	return "", false
}
