// Package tagcolor maps categorical labels to stable display colors.
package tagcolor

import "unicode/utf16"

type Color string

const (
	Blue    Color = "blue"
	Green   Color = "green"
	Red     Color = "red"
	Yellow  Color = "yellow"
	Orange  Color = "orange"
	Purple  Color = "purple"
	Cyan    Color = "cyan"
	Magenta Color = "magenta"
)

// Palette order is part of the contract: reordering changes every tag.
var Palette = [...]Color{Blue, Green, Red, Yellow, Orange, Purple, Cyan, Magenta}

// Hash folds the UTF-16 code units of label into a wrapping int32
// (h = h*31 + c), the same value a browser computes for the label.
func Hash(label string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(label)) {
		h = h*31 + int32(c)
	}
	return h
}

// ColorFor returns the palette entry for label. The empty label maps to Blue.
func ColorFor(label string) Color {
	return Palette[paletteIndex(Hash(label))]
}

func paletteIndex(h int32) int {
	// widen before negating so math.MinInt32 stays positive
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return int(abs % int64(len(Palette)))
}

// Colors resolves a set of labels at once, skipping empty ones.
func Colors(labels ...string) map[string]Color {
	out := make(map[string]Color, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		out[l] = ColorFor(l)
	}
	return out
}
