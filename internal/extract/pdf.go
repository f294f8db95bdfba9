package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"

	"resume-forge/internal/models"
)

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", models.NewExtractionError("failed to parse PDF", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", models.NewExtractionError("failed to extract text from PDF", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", models.NewExtractionError("failed to read PDF text", err)
	}

	return normalize(buf.String()), nil
}
