package aicheck

import (
	"fmt"
	"strings"
)

// Result is an interpreted AI analysis.
type Result struct {
	AnalysisText string  `json:"analysis"`
	Fields       *Fields `json:"fields"`
	Band         Band    `json:"band"`
}

// NewResult parses and bands a raw analysis.
func NewResult(analysis string) Result {
	fields := Parse(analysis)
	return Result{
		AnalysisText: analysis,
		Fields:       fields,
		Band:         Classify(fields.Score()),
	}
}

// HasAnalysis distinguishes "the AI returned nothing" from "the AI answered but
// none of the labels matched".
func (r Result) HasAnalysis() bool {
	return strings.TrimSpace(r.AnalysisText) != ""
}

// Prompt is the message pair sent to the chat model.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = "You are an academic integrity assistant for a school. " +
	"You review student submissions for likely AI-generated content and writing quality."

// BuildPrompt asks for exactly the four labelled lines that Parse understands.
func BuildPrompt(documentText string) Prompt {
	user := fmt.Sprintf(`Analyze the following student submission.

Respond with exactly these four lines and nothing else:
%s <0-100>%%
%s <Low|Medium|High>
%s <one sentence>
%s <one sentence>

Submission:
"""
%s
"""`,
		LabelAIScore,
		LabelConfidenceLevel,
		LabelOriginalityAssessment,
		LabelWritingQualityEvaluation,
		documentText,
	)
	return Prompt{System: systemPrompt, User: user}
}
