package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mimeZip         = "application/zip"
	mimeOctetStream = "application/octet-stream"
)

// Extraction methods reported in Result.Method.
const (
	MethodText      = "text"
	MethodDOCX      = "docx"
	MethodPDFParser = "pdf-parser"
)

var (
	// ErrNoTextFound means every strategy came back empty. It is a judgement about
	// the document, not a transient fault.
	ErrNoTextFound = errors.New("no readable text found; the document appears to be image-based, scanned, or encrypted")
	// ErrEmptyDocument is returned for text uploads that contain only whitespace.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrUnsupportedType is returned for content types without an extraction path.
	ErrUnsupportedType = errors.New("unsupported document type")
)

// Result is the text recovered from a document and how it was obtained.
type Result struct {
	Text   string
	Method string
}

// Extractor selects an extraction path by content type.
type Extractor struct {
	// ParserFirst tries github.com/ledongthuc/pdf before the heuristic chain.
	ParserFirst bool
}

// FromBytes extracts text from an in-memory payload.
func (e Extractor) FromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	normalized := NormalizeMimeType(mimeType, fileName, data)
	switch {
	case strings.HasPrefix(normalized, "text/"):
		text := strings.TrimSpace(toUTF8(data))
		if text == "" {
			return Result{}, ErrEmptyDocument
		}
		return Result{Text: text, Method: MethodText}, nil
	case normalized == MimePDF:
		return e.extractPDF(data)
	case normalized == MimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return Result{}, fmt.Errorf("docx: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return Result{}, ErrNoTextFound
		}
		return Result{Text: text, Method: MethodDOCX}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
}

func (e Extractor) extractPDF(data []byte) (Result, error) {
	if e.ParserFirst {
		if text, err := parsePDF(data); err == nil && strings.TrimSpace(text) != "" {
			return Result{Text: strings.TrimSpace(text), Method: MethodPDFParser}, nil
		}
	}
	text, strategy, err := RunStrategies(Strategies, data)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Method: "pdf-" + strategy}, nil
}

// NormalizeMimeType strips parameters and resolves generic or missing types from
// the file name (and, for zip payloads, from the archive layout).
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case mimeZip:
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		if byExt := mimeFromExt(fileName); byExt == MimeDOCX {
			return byExt
		}
		return clean
	case "", mimeOctetStream:
		if byExt := mimeFromExt(fileName); byExt != "" {
			return byExt
		}
		if bytes.HasPrefix(data, []byte("%PDF-")) {
			return MimePDF
		}
		if clean == "" {
			return mimeOctetStream
		}
		return clean
	default:
		return clean
	}
}

func mimeFromExt(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".txt", ".text", ".md":
		return MimeText
	case ".docx":
		return MimeDOCX
	default:
		return ""
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}
