package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleFindsParenthesisedLiteral(t *testing.T) {
	data := append([]byte{0x00, 0xff, 0x10}, []byte("garbage (Hello World) more\x00\x01")...)

	text, ok := Simple(data)
	require.True(t, ok)
	assert.Contains(t, text, "Hello World")
}

func TestSimpleFragmentFilter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
		want string
	}{
		{name: "too short", in: "(abc)", ok: false},
		{name: "digits only", in: "(123456)", ok: false},
		{name: "four letters", in: "(abcd)", ok: true, want: "abcd"},
		{name: "trimmed before length check", in: "(  ab  )", ok: false},
		{name: "escaped parens", in: `(Chapter \(one)`, ok: true, want: "Chapter (one"},
		{name: "hex string kept raw", in: "<48656C6C6F>", ok: true, want: "48656C6C6F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Simple([]byte(tt.in))
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSimpleMetadataCaseInsensitive(t *testing.T) {
	data := []byte("/title (Essay on Rivers) /AUTHOR (Asha Verma)")

	text, ok := Simple(data)
	require.True(t, ok)
	// The generic literal scan and the metadata scans both match.
	assert.Equal(t, 2, strings.Count(text, "Essay on Rivers"))
	assert.Equal(t, 2, strings.Count(text, "Asha Verma"))
}

func TestSimpleDecodesLatin1(t *testing.T) {
	data := []byte("(Caf\xe9 menu)")

	text, ok := Simple(data)
	require.True(t, ok)
	assert.Equal(t, "Café menu", text)
}

func TestOperatorsCapturesLiteralAfterOperator(t *testing.T) {
	data := []byte("BT /F1 12 Tf 72 712 Td (First line) Tj ET")

	text, ok := Operators(data)
	require.True(t, ok)
	assert.Equal(t, "First line ", text)
}

func TestOperatorsOnlyScansPrefix(t *testing.T) {
	data := append(bytes.Repeat([]byte{' '}, operatorScanLimit), []byte("Td (late text)")...)

	_, ok := Operators(data)
	assert.False(t, ok)
}

func TestReadableRuns(t *testing.T) {
	text, ok := ReadableRuns([]byte("\x00\x01the quick brown fox jumps\x02\x03"))
	require.True(t, ok)
	assert.Equal(t, "the quick brown fox jumps", text)

	_, ok = ReadableRuns([]byte("an ox is by me"))
	assert.False(t, ok, "words shorter than three letters must not form a run")
}

func TestHeuristicFallsBackToReadableRuns(t *testing.T) {
	text, strategy, err := RunStrategies(Strategies, []byte("the quick brown fox jumps"))
	require.NoError(t, err)
	assert.Equal(t, "readable-runs", strategy)
	assert.NotEmpty(t, text)
}

func TestHeuristicPrefersSimple(t *testing.T) {
	data := []byte("BT 72 712 Td (Photosynthesis notes) Tj ET")

	_, strategy, err := RunStrategies(Strategies, data)
	require.NoError(t, err)
	assert.Equal(t, "simple", strategy)
}

func TestHeuristicAllZeroBuffer(t *testing.T) {
	for _, size := range []int{0, 1, 512, 200_000} {
		_, err := Heuristic(make([]byte, size))
		assert.ErrorIs(t, err, ErrNoTextFound, "size %d", size)
	}
}

func TestRunStrategiesRecoversFromPanic(t *testing.T) {
	strategies := []Strategy{
		{Name: "boom", Fn: func([]byte) (string, bool) { panic("bad match") }},
		{Name: "blank", Fn: func([]byte) (string, bool) { return "   ", true }},
		{Name: "ok", Fn: func([]byte) (string, bool) { return " found ", true }},
	}

	text, strategy, err := RunStrategies(strategies, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", strategy)
	assert.Equal(t, "found", text)
}

func TestHeuristicImageOnlyPDF(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "image_only.pdf"))
	require.NoError(t, err)

	text, strategy, err := RunStrategies(Strategies, data)
	assert.ErrorIs(t, err, ErrNoTextFound)
	assert.Empty(t, text)
	assert.Empty(t, strategy)
}

func TestSimpleIgnoresDictionaries(t *testing.T) {
	_, ok := Simple([]byte("<< /Type /XObject /Subtype /Image /Filter /DCTDecode >>"))
	assert.False(t, ok)

	text, ok := Simple([]byte("<< /ID [<4A6F 6B65> <AB12CD34>] >>"))
	require.True(t, ok)
	assert.Equal(t, "4A6F 6B65 AB12CD34", text)
}

func TestRunStrategiesFallsBackToOperators(t *testing.T) {
	text, strategy, err := RunStrategies(Strategies, []byte("BT 72 712 Td (abc) Tj ET"))
	require.NoError(t, err)
	assert.Equal(t, "operators", strategy)
	assert.Equal(t, "abc", text)
}
