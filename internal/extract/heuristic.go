package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// operatorScanLimit bounds how much of the buffer the operator strategy decodes.
const operatorScanLimit = 100_000

// Strategy is one heuristic attempt to pull readable text out of a raw PDF buffer.
// It reports false when it found nothing usable.
type Strategy struct {
	Name string
	Fn   func(data []byte) (string, bool)
}

// Strategies is the fallback order used by Heuristic. Simple runs first even though
// Operators is the narrower PDF-aware scan; callers rely on this order.
var Strategies = []Strategy{
	{Name: "simple", Fn: Simple},
	{Name: "operators", Fn: Operators},
	{Name: "readable-runs", Fn: ReadableRuns},
}

var (
	markerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(([^)]*)\)`),
		// Hex strings only; dictionaries open with "<<" and must not match.
		regexp.MustCompile(`<([0-9A-Fa-f\s]+)>`),
		regexp.MustCompile(`(?i)/Subject\s*\(([^)]*)\)`),
		regexp.MustCompile(`(?i)/Title\s*\(([^)]*)\)`),
		regexp.MustCompile(`(?i)/Author\s*\(([^)]*)\)`),
	}
	operatorPattern = regexp.MustCompile(`(?s)(?:Td|Tm|Tj|TJ).*?\(([^)]*)\)`)
	readableRun     = regexp.MustCompile(`[A-Za-z]{3,}(?:\s+[A-Za-z]{3,}){2,}`)
	latinLetter     = regexp.MustCompile(`[A-Za-z]`)
	escapedParens   = strings.NewReplacer(`\(`, "(", `\)`, ")")
)

// Heuristic runs Strategies in order and returns the first non-empty result.
func Heuristic(data []byte) (string, error) {
	text, _, err := RunStrategies(Strategies, data)
	return text, err
}

// RunStrategies tries each strategy in order and reports which one produced text.
// A strategy that panics counts as having found nothing.
func RunStrategies(strategies []Strategy, data []byte) (string, string, error) {
	for _, s := range strategies {
		text, ok := attempt(s, data)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, s.Name, nil
		}
	}
	return "", "", ErrNoTextFound
}

func attempt(s Strategy, data []byte) (text string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			text, ok = "", false
		}
	}()
	return s.Fn(data)
}

// Simple scans a Latin-1 view of the buffer for string literals, hex strings and
// document info fields. Fragments of three characters or fewer, or without any
// Latin letter, are dropped.
func Simple(data []byte) (string, bool) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	content := string(decoded)

	var fragments []string
	for _, re := range markerPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			fragment := strings.TrimSpace(escapedParens.Replace(m[1]))
			if utf8.RuneCountInString(fragment) > 3 && latinLetter.MatchString(fragment) {
				fragments = append(fragments, fragment)
			}
		}
	}
	if len(fragments) == 0 {
		return "", false
	}
	return strings.Join(fragments, " "), true
}

// Operators looks for text positioning/show operators followed by a string literal
// in the first 100,000 bytes, decoded as UTF-8.
func Operators(data []byte) (string, bool) {
	if len(data) > operatorScanLimit {
		data = data[:operatorScanLimit]
	}
	content := toUTF8(data)

	var b strings.Builder
	for _, m := range operatorPattern.FindAllStringSubmatch(content, -1) {
		b.WriteString(m[1])
		b.WriteString(" ")
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// ReadableRuns collects runs of at least three consecutive words of three or more
// letters from the whole buffer decoded as UTF-8.
func ReadableRuns(data []byte) (string, bool) {
	matches := readableRun.FindAllString(toUTF8(data), -1)
	if len(matches) == 0 {
		return "", false
	}
	return strings.Join(matches, " "), true
}

func toUTF8(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
