package main

// Extract text from local documents the way the API does, without a model call:
//   go run ./cmd/checkfile essay.pdf notes.docx
//   go run ./cmd/checkfile -analysis answer.txt essay.pdf

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"padhaihub-backend/internal/aicheck"
	"padhaihub-backend/internal/checks"
	"padhaihub-backend/internal/extract"
	"padhaihub-backend/internal/shared/config"
)

const defaultConcurrency = 4

type fileReport struct {
	File     string `json:"file"`
	MimeType string `json:"mimeType"`
	Method   string `json:"method,omitempty"`
	Chars    int    `json:"chars"`
	Preview  string `json:"preview,omitempty"`
	Error    string `json:"error,omitempty"`
}

type report struct {
	Files    []fileReport    `json:"files"`
	Analysis *aicheck.Result `json:"analysis,omitempty"`
}

func main() {
	analysisPath := flag.String("analysis", "", "model answer to parse and band")
	previewChars := flag.Int("preview", 200, "characters of extracted text to print")
	parserFirst := flag.Bool("parser-first", false, "try the structured PDF parser before the heuristics")
	flag.Parse()

	if flag.NArg() == 0 && *analysisPath == "" {
		fmt.Fprintln(os.Stderr, "usage: checkfile [-analysis file] [-parser-first] file...")
		os.Exit(2)
	}
	if !*parserFirst {
		*parserFirst = config.Load().PDFParserFirst
	}

	out := report{Files: make([]fileReport, flag.NArg())}
	extractor := extract.Extractor{ParserFirst: *parserFirst}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(defaultConcurrency)
	for i, path := range flag.Args() {
		i, path := i, path
		g.Go(func() error {
			out.Files[i] = inspect(ctx, extractor, path, *previewChars)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("checkfile: %v", err)
	}

	if *analysisPath != "" {
		raw, err := os.ReadFile(*analysisPath)
		if err != nil {
			log.Fatalf("read analysis: %v", err)
		}
		result := aicheck.NewResult(string(raw))
		out.Analysis = &result
	}

	if err := writeJSON(os.Stdout, out); err != nil {
		log.Fatalf("write report: %v", err)
	}
	for _, f := range out.Files {
		if f.Error != "" {
			os.Exit(1)
		}
	}
}

func inspect(ctx context.Context, extractor extract.Extractor, path string, previewChars int) fileReport {
	rep := fileReport{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	name := filepath.Base(path)
	rep.MimeType = extract.NormalizeMimeType("", name, data)

	res, err := extractor.FromBytes(ctx, data, rep.MimeType, name)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Method = res.Method
	rep.Chars = utf8.RuneCountInString(res.Text)
	if previewChars > 0 {
		rep.Preview = checks.TruncateRunes(res.Text, previewChars)
	}
	return rep
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
