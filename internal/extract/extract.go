// Package extract converts uploaded resume bytes into plain text based on
// the declared source format.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"resume-forge/internal/models"
)

type Extractor interface {
	Extract(data []byte, format models.SourceFormat) (string, error)
}

type Service struct{}

func New() *Service { return &Service{} }

func (s *Service) Extract(data []byte, format models.SourceFormat) (string, error) {
	if len(data) == 0 {
		return "", models.NewExtractionError("uploaded file is empty", nil)
	}

	switch format {
	case models.FormatTXT:
		return extractPlainText(data)
	case models.FormatPDF:
		return extractPDF(data)
	case models.FormatDOCX:
		return extractDOCX(data)
	default:
		return "", models.NewExtractionError(fmt.Sprintf("unsupported source format %q", format), nil)
	}
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", models.NewExtractionError("plain-text upload is not valid UTF-8", nil)
	}
	return normalize(string(data)), nil
}

// normalize collapses Windows line endings and trims trailing whitespace per
// line; extracted text is compared and prompted verbatim downstream.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
