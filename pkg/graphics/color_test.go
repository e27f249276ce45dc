package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", ColorWhite},
		{"#000000", ColorBlack},
		{"#F0F0F0", ColorLightGray},
		{"#ff000080", RGBA8(0xff, 0, 0, 0x80)},
		{"  #00ff00 ", RGB(0, 0xff, 0)},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseColorRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "#12", "#12345", "#gggggg", "red"} {
		_, err := ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#ffffff", ColorWhite.String())
	assert.Equal(t, "#ff000080", RGBA8(0xff, 0, 0, 0x80).String())
	assert.Equal(t, "#00000000", ColorTransparent.String())
}

func TestColorTextRoundTrip(t *testing.T) {
	c := RGBA8(0x12, 0x34, 0x56, 0x78)
	text, err := c.MarshalText()
	require.NoError(t, err)

	var back Color
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, c, back)
	assert.Equal(t, uint8(0x78), back.Alpha8())
	assert.Equal(t, uint8(0xFF), back.WithAlpha8(0xFF).Alpha8())
}
