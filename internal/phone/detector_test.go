// ABOUTME: Tests for the phone number detector strategies.
// ABOUTME: Covers direct, leading-zero, country-code, and sliding-window matching.

package phone

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Direct(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		number    string
		formatted string
	}{
		{
			name:      "bare 10 digit number",
			input:     "9876543210",
			number:    "9876543210",
			formatted: "98765 43210",
		},
		{
			name:      "formatted with dashes",
			input:     "98765-43210",
			number:    "9876543210",
			formatted: "98765 43210",
		},
		{
			name:      "embedded in text",
			input:     "call me at 9876543210 tomorrow",
			number:    "9876543210",
			formatted: "98765 43210",
		},
		{
			name:      "nine digits",
			input:     "987654321",
			number:    "987654321",
			formatted: "98765 4321",
		},
		{
			name:      "digits scattered across text still count",
			input:     "order 98 shipped 765 on 43210 st",
			number:    "9876543210",
			formatted: "98765 43210",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Detect(tt.input)
			require.True(t, result.Detected)
			assert.Equal(t, tt.number, result.Number)
			assert.Equal(t, tt.formatted, result.Formatted)
			assert.Equal(t, MethodDirect, result.Method)
			assert.False(t, result.WithCountryCode)
		})
	}
}

func TestDetect_LeadingZero(t *testing.T) {
	result := Detect("09876543210")
	require.True(t, result.Detected)
	assert.Equal(t, "9876543210", result.Number)
	assert.Equal(t, "98765 43210", result.Formatted)
	assert.Equal(t, MethodLeadingZero, result.Method)
}

func TestDetect_LeadingZero_RequiresMobilePrefix(t *testing.T) {
	// Second digit 5 is not a mobile prefix; 11 digits fall through to the
	// sliding window, which finds no window starting with 6-9 either.
	result := Detect("05876543210")
	assert.False(t, result.Detected)
}

func TestDetect_CountryCode(t *testing.T) {
	result := Detect("919876543210")
	require.True(t, result.Detected)
	assert.Equal(t, "9876543210", result.Number)
	assert.Equal(t, "+91 98765 43210", result.Formatted)
	assert.Equal(t, MethodCountryCode, result.Method)
	assert.True(t, result.WithCountryCode)
}

func TestDetect_CountryCode_WrongPrefixFallsThrough(t *testing.T) {
	// 12 digits not starting with the country code: the sliding window takes
	// over and finds the first 10-digit window led by a mobile prefix.
	result := Detect("129876543210")
	require.True(t, result.Detected)
	assert.Equal(t, MethodSlidingWindow, result.Method)
	assert.Equal(t, "9876543210", result.Number)
}

func TestDetect_SlidingWindow(t *testing.T) {
	// 13 digits total, so no fixed-length strategy applies. The first window
	// starting with a mobile prefix begins at the 9.
	result := Detect("id 123 number 9876543210")
	require.True(t, result.Detected)
	assert.Equal(t, MethodSlidingWindow, result.Method)
	assert.Equal(t, "9876543210", result.Number)
	assert.Equal(t, "98765 43210", result.Formatted)
	require.Len(t, result.Positions, 10)

	// Positions point at the matched digits in the original text.
	for i, pos := range result.Positions {
		assert.Equal(t, result.Number[i], "id 123 number 9876543210"[pos])
	}
}

func TestDetect_SlidingWindow_SkipsInvalidLeadingDigit(t *testing.T) {
	// 14 digits; windows starting at 1, 2, 3, 4 are rejected until one leads
	// with a mobile prefix.
	result := Detect("12349876543210")
	require.True(t, result.Detected)
	assert.Equal(t, MethodSlidingWindow, result.Method)
	assert.Equal(t, "9876543210", result.Number)
}

func TestDetect_NotDetected(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"no digits", "hello there"},
		{"eight digits", "12345678"},
		{"many digits but no mobile prefix window", "1234512345123451"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Detect(tt.input)
			assert.False(t, result.Detected)
			assert.Empty(t, result.Number)
		})
	}
}

func TestDetect_AllMobilePrefixes(t *testing.T) {
	for prefix := 6; prefix <= 9; prefix++ {
		number := strconv.Itoa(prefix) + "876543210"
		result := Detect("prefix " + number + " suffix")
		require.True(t, result.Detected, "prefix %d", prefix)
		assert.Equal(t, number, result.Number)
	}
}

func TestDetect_FormattedOutputIsStable(t *testing.T) {
	// Re-running detection on a prior detection's formatted output terminates
	// and keeps detecting the same number.
	first := Detect("9876543210")
	require.True(t, first.Detected)

	second := Detect(first.Formatted)
	require.True(t, second.Detected)
	assert.Equal(t, first.Number, second.Number)

	third := Detect(second.Formatted)
	require.True(t, third.Detected)
	assert.Equal(t, first.Number, third.Number)
}
