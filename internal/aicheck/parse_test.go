package aicheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestParseTwoLabels(t *testing.T) {
	fields := Parse("AI Detection Score: 85%\nConfidence Level: High")

	require.NotNil(t, fields)
	assert.Equal(t, strp("85%"), fields.AIScore)
	assert.Equal(t, strp("High"), fields.ConfidenceLevel)
	assert.Nil(t, fields.OriginalityAssessment)
	assert.Nil(t, fields.WritingQualityEvaluation)
}

func TestParseBlankInputIsNil(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("  \n\t\n"))
}

func TestParseLastMatchWins(t *testing.T) {
	fields := Parse("AI Detection Score: 20%\nsome commentary\nAI Detection Score: 64%")

	require.NotNil(t, fields)
	assert.Equal(t, "64%", *fields.AIScore)
}

func TestParseEmptyValueIsNotAvailable(t *testing.T) {
	fields := Parse("Originality Assessment:   \r\nWriting Quality Evaluation: Clear and well structured.\r\n")

	require.NotNil(t, fields)
	assert.Equal(t, NotAvailable, *fields.OriginalityAssessment)
	assert.Equal(t, "Clear and well structured.", *fields.WritingQualityEvaluation)
}

func TestParseLabelAnywhereInLine(t *testing.T) {
	fields := Parse("**Confidence Level:** Medium")

	require.NotNil(t, fields)
	assert.Equal(t, "** Medium", *fields.ConfidenceLevel)
}

func TestParseSplitsOnFirstColon(t *testing.T) {
	fields := Parse("Result: AI Detection Score: 30")

	require.NotNil(t, fields)
	assert.Equal(t, "AI Detection Score: 30", *fields.AIScore)
}

func TestParseNoLabelsIsPartialNotNil(t *testing.T) {
	fields := Parse("I cannot evaluate this document.")

	require.NotNil(t, fields)
	assert.True(t, fields.Empty())
}

func TestParseIsIdempotent(t *testing.T) {
	text := "AI Detection Score: 41%\nConfidence Level: Low\nOriginality Assessment: Mostly original.\nWriting Quality Evaluation: Good."

	first := Parse(text)
	second := Parse(text)
	assert.Equal(t, first, second)
}

func TestNewResultDistinguishesMissingAnalysis(t *testing.T) {
	none := NewResult("")
	assert.False(t, none.HasAnalysis())
	assert.Nil(t, none.Fields)
	assert.Equal(t, LevelUnknown, none.Band.Level)

	unlabelled := NewResult("The model rambled.")
	assert.True(t, unlabelled.HasAnalysis())
	require.NotNil(t, unlabelled.Fields)
	assert.True(t, unlabelled.Fields.Empty())
}

func TestBuildPromptMentionsEveryLabel(t *testing.T) {
	p := BuildPrompt("essay body")

	for _, label := range []string{LabelAIScore, LabelConfidenceLevel, LabelOriginalityAssessment, LabelWritingQualityEvaluation} {
		assert.Contains(t, p.User, label)
	}
	assert.Contains(t, p.User, "essay body")
	assert.NotEmpty(t, p.System)
}
