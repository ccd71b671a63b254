package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ef4444", Red},
		{"EF4444", Red},
		{"#fff", White},
		{"#00000080", Color{A: 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "#12", "#gggggg", "#12345"} {
		_, err := ParseHex(in)
		assert.ErrorIs(t, err, ErrInvalidHex, in)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, c := range DefaultPalette() {
		back, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
	assert.Equal(t, "#3b82f6", Blue.Hex())
	assert.Equal(t, "#00000000", Transparent.Hex())
}

func TestPaletteMatchesPanelSwatches(t *testing.T) {
	want := []string{
		"#ffffff", "#000000", "#ef4444", "#f97316", "#eab308",
		"#22c55e", "#06b6d4", "#3b82f6", "#8b5cf6", "#ec4899",
	}
	got := make([]string, 0, len(want))
	for _, c := range DefaultPalette() {
		got = append(got, c.Hex())
	}
	assert.Equal(t, want, got)
}

func TestContrast(t *testing.T) {
	assert.Equal(t, Black, Contrast(White))
	assert.Equal(t, White, Contrast(Black))
	assert.Equal(t, Black, Contrast(Yellow))
}
