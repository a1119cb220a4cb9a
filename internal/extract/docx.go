package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// maxDocumentXMLBytes bounds the inflated size of word/document.xml.
	maxDocumentXMLBytes = 32 << 20
	// maxDOCXTextBytes bounds the text kept from a DOCX body.
	maxDOCXTextBytes = 4 << 20
)

// ErrDocumentTooLarge is returned when an archive member inflates past its limit.
var ErrDocumentTooLarge = errors.New("document is too large once decompressed")

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found")
	}

	if docFile.UncompressedSize64 > maxDocumentXMLBytes {
		return "", fmt.Errorf("%w: word/document.xml declares %d bytes", ErrDocumentTooLarge, docFile.UncompressedSize64)
	}
	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := readLimited(rc, maxDocumentXMLBytes)
	if err != nil {
		return "", err
	}
	return docxText(raw, maxDOCXTextBytes), nil
}

// readLimited reads r fully unless it yields more than limit bytes. The size
// declared in the zip header is not trusted.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, limit)
	}
	return raw, nil
}

// docxText walks document.xml and keeps character data, breaking lines at
// paragraph and explicit break elements. Malformed XML yields what was read so
// far, and the walk stops once maxText bytes are collected.
func docxText(raw []byte, maxText int) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	for {
		if buf.Len() >= maxText {
			break
		}
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	text := buf.String()
	if len(text) > maxText {
		text = strings.ToValidUTF8(text[:maxText], "")
	}
	return strings.TrimSpace(text)
}
