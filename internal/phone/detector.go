// ABOUTME: Heuristic phone number detection over free-form chat text.
// ABOUTME: Tries fixed-length digit patterns first, then a sliding window over digit positions.

package phone

import "strings"

// Method identifies which detection strategy matched.
type Method string

const (
	MethodDirect        Method = "direct_10"
	MethodLeadingZero   Method = "leading_0"
	MethodCountryCode   Method = "country_code_12"
	MethodSlidingWindow Method = "sliding_window"
)

// countryCode is the dialing prefix recognized by the country-code strategy.
const countryCode = "91"

// Result describes the outcome of a detection attempt.
// Number holds only digits; Formatted is the display form shown to the user.
type Result struct {
	Detected        bool
	Number          string
	Formatted       string
	Method          Method
	WithCountryCode bool

	// Positions holds the character offsets of the matched digits in the
	// original text. Only populated by the sliding-window strategy.
	Positions []int
}

// Detect scans text for something that looks like a mobile phone number.
// Strategies are tried in order and the first match wins.
//
// The fixed-length strategies look only at the aggregate digit count of the
// whole input, so ten digits scattered across a longer string are treated the
// same as an explicit number. That over-detection bias is deliberate: this
// guards a privacy rule, and a false positive is cheaper than a miss.
func Detect(text string) Result {
	digits := stripNonDigits(text)

	// 9 or 10 digits total: treat as a bare local number.
	if len(digits) >= 9 && len(digits) <= 10 {
		return Result{
			Detected:  true,
			Number:    digits,
			Formatted: digits[:5] + " " + digits[5:],
			Method:    MethodDirect,
		}
	}

	// 11 digits with a leading zero, e.g. 09876543210.
	if len(digits) == 11 && digits[0] == '0' && isMobilePrefix(digits[1]) {
		rest := digits[1:]
		return Result{
			Detected:  true,
			Number:    rest,
			Formatted: rest[:5] + " " + rest[5:],
			Method:    MethodLeadingZero,
		}
	}

	// 12 digits with the country code, e.g. 919876543210.
	if len(digits) == 12 && strings.HasPrefix(digits, countryCode) && isMobilePrefix(digits[2]) {
		rest := digits[2:]
		return Result{
			Detected:        true,
			Number:          rest,
			Formatted:       "+" + countryCode + " " + rest[:5] + " " + rest[5:],
			Method:          MethodCountryCode,
			WithCountryCode: true,
		}
	}

	return detectSlidingWindow(text)
}

// detectSlidingWindow scans every contiguous 10-digit window over the digits
// of text, preserving each digit's offset in the source. The first window
// whose leading digit is a valid mobile prefix is accepted.
func detectSlidingWindow(text string) Result {
	type posDigit struct {
		digit byte
		pos   int
	}

	var digits []posDigit
	for i, r := range text {
		if r >= '0' && r <= '9' {
			digits = append(digits, posDigit{digit: byte(r), pos: i})
		}
	}

	if len(digits) < 10 {
		return Result{}
	}

	for start := 0; start+10 <= len(digits); start++ {
		window := digits[start : start+10]
		if !isMobilePrefix(window[0].digit) {
			continue
		}

		var number strings.Builder
		positions := make([]int, 0, 10)
		for _, d := range window {
			number.WriteByte(d.digit)
			positions = append(positions, d.pos)
		}
		num := number.String()
		return Result{
			Detected:  true,
			Number:    num,
			Formatted: num[:5] + " " + num[5:],
			Method:    MethodSlidingWindow,
			Positions: positions,
		}
	}

	return Result{}
}

// isMobilePrefix reports whether d is a plausible first digit of a mobile
// number (6-9).
func isMobilePrefix(d byte) bool {
	return d >= '6' && d <= '9'
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
