package aicheck

import (
	"math"
	"strconv"
	"strings"
)

// Score boundaries for banding. These are product policy.
const (
	HighThreshold     = 70
	ModerateThreshold = 40
)

// Level is a severity tier derived from the AI score.
type Level string

const (
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
	LevelUnknown  Level = "unknown"
)

// Band is the presentation of a Level.
type Band struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
	Score *int   `json:"score,omitempty"`
}

var bands = map[Level]Band{
	LevelHigh:     {Level: LevelHigh, Label: "High AI usage", Color: "red"},
	LevelModerate: {Level: LevelModerate, Label: "Moderate AI usage", Color: "yellow"},
	LevelLow:      {Level: LevelLow, Label: "Low AI usage", Color: "green"},
	LevelUnknown:  {Level: LevelUnknown, Label: "Unknown", Color: "gray"},
}

// Classify bands an AI score such as "72%" or "55". Anything after the leading
// integer is ignored; a score without one is unknown.
func Classify(aiScore string) Band {
	score, ok := leadingInt(aiScore)
	if !ok {
		return bands[LevelUnknown]
	}
	var b Band
	switch {
	case score >= HighThreshold:
		b = bands[LevelHigh]
	case score >= ModerateThreshold:
		b = bands[LevelModerate]
	default:
		b = bands[LevelLow]
	}
	b.Score = &score
	return b
}

// BandFor returns the presentation for a stored level.
func BandFor(level Level) Band {
	if b, ok := bands[level]; ok {
		return b
	}
	return bands[LevelUnknown]
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// Only overflow is possible here; saturate in the right direction.
		if s[0] == '-' {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	if n < math.MinInt32 {
		n = math.MinInt32
	}
	return int(n), true
}
