// Package aicheck builds the AI-check prompt and interprets the free-text answer.
//
// The model is only asked, not forced, to use the labelled lines below, so parsing
// is deliberately loose: a label may appear anywhere in a line and extra
// commentary is ignored.
package aicheck

import (
	"strings"
)

const (
	LabelAIScore                  = "AI Detection Score:"
	LabelConfidenceLevel          = "Confidence Level:"
	LabelOriginalityAssessment    = "Originality Assessment:"
	LabelWritingQualityEvaluation = "Writing Quality Evaluation:"

	// NotAvailable is stored when a label is present but carries no value.
	NotAvailable = "N/A"
)

// Fields holds the labelled values found in an analysis. A nil field means the
// label never appeared.
type Fields struct {
	AIScore                  *string `json:"aiScore,omitempty"`
	ConfidenceLevel          *string `json:"confidenceLevel,omitempty"`
	OriginalityAssessment    *string `json:"originalityAssessment,omitempty"`
	WritingQualityEvaluation *string `json:"writingQualityEvaluation,omitempty"`
}

// Parse extracts the labelled values from text. It returns nil for blank input.
// When a label occurs on several lines the last one wins.
func Parse(text string) *Fields {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	fields := &Fields{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case strings.Contains(line, LabelAIScore):
			fields.AIScore = valueAfterColon(line)
		case strings.Contains(line, LabelConfidenceLevel):
			fields.ConfidenceLevel = valueAfterColon(line)
		case strings.Contains(line, LabelOriginalityAssessment):
			fields.OriginalityAssessment = valueAfterColon(line)
		case strings.Contains(line, LabelWritingQualityEvaluation):
			fields.WritingQualityEvaluation = valueAfterColon(line)
		}
	}
	return fields
}

// Empty reports whether no label was found.
func (f *Fields) Empty() bool {
	return f == nil || (f.AIScore == nil && f.ConfidenceLevel == nil &&
		f.OriginalityAssessment == nil && f.WritingQualityEvaluation == nil)
}

// Score returns the raw AI score text, or "" when unset.
func (f *Fields) Score() string {
	if f == nil || f.AIScore == nil {
		return ""
	}
	return *f.AIScore
}

// valueAfterColon splits on the first colon of the line, which is not
// necessarily the one ending the label.
func valueAfterColon(line string) *string {
	_, after, _ := strings.Cut(line, ":")
	value := strings.TrimSpace(after)
	if value == "" {
		value = NotAvailable
	}
	return &value
}
