package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCents renders an amount in minor units as a decimal string, e.g.
// 25000 -> "250.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseCents parses a decimal amount with at most two fractional digits.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidArgument)
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("%w: amount %q must have one or two decimals", ErrInvalidArgument, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", ErrInvalidArgument, s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidArgument, s)
	}
	if w > (math.MaxInt64-f)/100 || w < 0 {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrInvalidArgument, s)
	}
	return w*100 + f, nil
}
