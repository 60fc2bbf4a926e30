package calculator

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numericPrefix matches the longest leading decimal literal of an operand.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`)

// ParseNumber reads the numeric value at the start of text.
//
// Only the leading literal is consumed, so "5." reads as 5 and "1e+" as 1.
// Text without a leading literal, such as "-", "." or ErrorMarker, reports
// false. Literals beyond the float64 range read as signed infinity.
func ParseNumber(text string) (float64, bool) {
	literal := numericPrefix.FindString(strings.TrimLeftFunc(text, unicode.IsSpace))
	if literal == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return value, true
		}
		return 0, false
	}
	return value, true
}

// FormatNumber renders value the way the display shows results.
//
// Digits are the shortest that round-trip. Magnitudes from 1e-6 up to 1e21
// print in positional form; others use an exponent without zero padding
// ("1e+21", "1.5e-7"). Zero of either sign prints as "0".
func FormatNumber(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	}

	magnitude := math.Abs(value)
	if magnitude >= 1e21 || magnitude < 1e-6 {
		formatted := strconv.FormatFloat(value, 'e', -1, 64)
		mantissa, exponent, _ := strings.Cut(formatted, "e")
		sign, digits := exponent[:1], strings.TrimLeft(exponent[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
