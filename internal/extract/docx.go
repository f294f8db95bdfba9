package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"resume-forge/internal/models"
)

// extractDOCX pulls the text runs out of word/document.xml. A .docx file is a
// zip archive; the visible text lives in <w:t> elements and paragraphs in
// <w:p>, which become newlines.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", models.NewExtractionError("failed to open DOCX archive", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", models.NewExtractionError("DOCX archive has no word/document.xml", nil)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", models.NewExtractionError("failed to read DOCX document", err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", models.NewExtractionError("failed to parse DOCX document", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				sb.WriteByte('\n')
			case "tab":
				sb.WriteByte('\t')
			}
		case xml.CharData:
			if inTextRun {
				sb.Write(t)
			}
		}
	}

	return normalize(sb.String()), nil
}
