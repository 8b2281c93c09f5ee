package tagcolor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  int32
	}{
		{label: "", want: 0},
		{label: "a", want: 97},
		{label: "CARD", want: 2061072},
		{label: "ACCOUNT", want: -459336179},
		{label: "Shinhan Bank", want: -547978911},
		{label: "한국", want: 1737617},
		{label: "😀", want: 1772899},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Hash(tc.label), "label=%q", tc.label)
	}
}

func TestColorFor(t *testing.T) {
	t.Parallel()

	cases := map[string]Color{
		"":             Blue,
		"a":            Green,
		"ACCOUNT":      Yellow,
		"CREDIT":       Green,
		"CARD":         Blue,
		"BANK":         Orange,
		"Type1":        Magenta,
		"Type2":        Blue,
		"Shinhan Bank": Magenta,
	}
	for label, want := range cases {
		assert.Equal(t, want, ColorFor(label), "label=%q", label)
	}
}

func TestColorFor_Stable(t *testing.T) {
	t.Parallel()

	first := ColorFor("srcServiceType")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ColorFor("srcServiceType"))
	}
}

func TestPaletteIndex_MinInt32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, paletteIndex(math.MinInt32))
	assert.Equal(t, 7, paletteIndex(math.MaxInt32))
	assert.Equal(t, 1, paletteIndex(-1))
}

func TestColors_SkipsEmpty(t *testing.T) {
	t.Parallel()

	got := Colors("CARD", "", "BANK")
	assert.Len(t, got, 2)
	assert.Equal(t, Blue, got["CARD"])
	assert.Equal(t, Orange, got["BANK"])
}
