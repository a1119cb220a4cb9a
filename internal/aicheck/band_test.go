package aicheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score string
		want  Level
		color string
	}{
		{score: "72%", want: LevelHigh, color: "red"},
		{score: "70", want: LevelHigh, color: "red"},
		{score: "69.9%", want: LevelModerate, color: "yellow"},
		{score: "55", want: LevelModerate, color: "yellow"},
		{score: "40", want: LevelModerate, color: "yellow"},
		{score: "39", want: LevelLow, color: "green"},
		{score: "10%", want: LevelLow, color: "green"},
		{score: " 85 percent", want: LevelHigh, color: "red"},
		{score: "-5", want: LevelLow, color: "green"},
		{score: "99999999999999999999", want: LevelHigh, color: "red"},
		{score: "N/A", want: LevelUnknown, color: "gray"},
		{score: "", want: LevelUnknown, color: "gray"},
		{score: "about 80", want: LevelUnknown, color: "gray"},
	}
	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			got := Classify(tt.score)
			assert.Equal(t, tt.want, got.Level)
			assert.Equal(t, tt.color, got.Color)
		})
	}
}

func TestClassifyCarriesScore(t *testing.T) {
	b := Classify("72%")
	if assert.NotNil(t, b.Score) {
		assert.Equal(t, 72, *b.Score)
	}
	assert.Nil(t, Classify("N/A").Score)
}

func TestBandForUnknownLevel(t *testing.T) {
	assert.Equal(t, LevelUnknown, BandFor("bogus").Level)
	assert.Equal(t, "Moderate AI usage", BandFor(LevelModerate).Label)
}
