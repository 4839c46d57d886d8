package chart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNiceStep(t *testing.T) {
	cases := []struct {
		max  float64
		want float64
	}{
		{max: 3, want: 0.5},
		{max: 4, want: 0.5},
		{max: 5, want: 1},
		{max: 100, want: 20},
		{max: 199, want: 38},
		{max: 240, want: 60},
		{max: 390, want: 95},
		{max: 400, want: 100},
		{max: 1000, want: 250},
		{max: 1234, want: 300},
		{max: 3000, want: 750},
	}
	for _, tc := range cases {
		got := NiceStep(tc.max)
		require.Equal(t, tc.want, got, "max=%v", tc.max)
		require.Equal(t, got, NiceStep(tc.max), "max=%v should be stable", tc.max)
	}
}

func TestPrettyNum(t *testing.T) {
	cases := map[float64]string{
		0:             "0",
		2.5:           "2.5",
		1.25:          "1.3",
		950:           "950",
		1500:          "1.5K",
		2000:          "2K",
		2_300_000:     "2.3M",
		7_100_000_000: "7.1B",
		999_999:       "1M",
		-1500:         "-1.5K",
		3e12:          "3.0e+12",
	}
	for in, want := range cases {
		require.Equal(t, want, PrettyNum(in), "PrettyNum(%v)", in)
	}
}

func TestLabelStride(t *testing.T) {
	require.Equal(t, 1, LabelStride(5, 10, 6))
	require.Equal(t, 1, LabelStride(6, 30, 6))
	require.Equal(t, 3, LabelStride(20, 20, 6))
	require.Equal(t, 5, LabelStride(30, 30, 6))
	require.Equal(t, 1, LabelStride(7, 2, 6))
}

func TestPaletteToggle(t *testing.T) {
	day := Day()
	require.Equal(t, NightName, day.Toggle().Name)
	require.Equal(t, day, day.Toggle().Toggle())
	night, ok := PaletteByName("night")
	require.True(t, ok)
	require.Equal(t, uint8(25), night.Background.R)
	require.Equal(t, uint8(153), night.Mask().A)
	_, ok = PaletteByName("dusk")
	require.False(t, ok)
}
