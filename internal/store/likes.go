package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseLikes converts a displayed score such as "42", "1,204" or "12.5k" to a
// number.
func ParseLikes(s string) (int64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, " ", "")
	if v == "" {
		return 0, fmt.Errorf("empty score")
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(v, "k"):
		mult = 1e3
		v = strings.TrimSuffix(v, "k")
	case strings.HasSuffix(v, "m"):
		mult = 1e6
		v = strings.TrimSuffix(v, "m")
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	n := math.Round(f * mult)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, fmt.Errorf("score out of range: %q", s)
	}
	return int64(n), nil
}
