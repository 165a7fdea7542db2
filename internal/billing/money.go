package billing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	roundEpsilon = decimal.New(1, -9)
	roundHalf    = decimal.New(5, -1)
)

// Round2 rounds n half-up to two decimal places. A small epsilon is added
// first so values such as 1.005 that sit just below the midpoint in binary
// do not round down. Non-finite input yields 0.
func Round2(n float64) float64 {
	if !isFinite(n) {
		return 0
	}
	d := decimal.NewFromFloat(n).Add(roundEpsilon)
	return d.Shift(2).Add(roundHalf).Floor().Shift(-2).InexactFloat64()
}

// Currency formats n as Indian rupees with lakh/crore digit grouping,
// e.g. 6808300 -> "₹68,08,300.00". It is for display only.
func Currency(n float64) string {
	s := decimal.NewFromFloat(Round2(n)).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	grouped := groupIndian(intPart)

	var b strings.Builder
	if neg && (intPart != "0" || strings.Trim(frac, "0") != "") {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(grouped)
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// num coerces a non-finite value to zero.
func num(n float64) float64 {
	if !isFinite(n) {
		return 0
	}
	return n
}

// formatPlain renders n with exactly two decimals and no symbol or grouping.
func formatPlain(n float64) string {
	return decimal.NewFromFloat(Round2(n)).StringFixed(2)
}

// FormatAmount renders n with two decimals, e.g. for prompts and plain-text replies.
func FormatAmount(n float64) string {
	return formatPlain(n)
}
