package scope

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMetric renders value with an SI prefix and three significant digits,
// e.g. FormatMetric(0.002, "V") == "2 mV".
func FormatMetric(value float64, unit string) string {
	if value == 0 {
		return "0 " + unit
	}
	abs := math.Abs(value)
	switch {
	case abs < 1e-6:
		return strconv.FormatFloat(value*1e9, 'f', 1, 64) + " n" + unit
	case abs < 1e-3:
		return precision3(value*1e6) + " u" + unit
	case abs < 1:
		return precision3(value*1e3) + " m" + unit
	case abs >= 1e6:
		return precision3(value/1e6) + " M" + unit
	case abs >= 1e3:
		return precision3(value/1e3) + " k" + unit
	default:
		return precision3(value) + " " + unit
	}
}

func precision3(v float64) string {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 3, 64), 64)
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ParseMetric is the inverse of FormatMetric. It accepts an optional
// prefix (n, u, m, k, M) followed by an optional unit (V, s, Hz), with or
// without whitespace: "2 mV", "1.5kHz", "20us", "3M".
func ParseMetric(s string) (float64, error) {
	str := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if str == "" {
		return 0, fmt.Errorf("%w: empty metric value", ErrInvalidConfig)
	}

	lower := strings.ToLower(str)
	for _, unit := range []string{"hz", "v", "s"} {
		if strings.HasSuffix(lower, unit) && len(lower) > len(unit) {
			str = str[:len(str)-len(unit)]
			break
		}
	}

	multiplier := 1.0
	switch str[len(str)-1] {
	case 'n':
		multiplier = 1e-9
	case 'u':
		multiplier = 1e-6
	case 'm':
		multiplier = 1e-3
	case 'k', 'K':
		multiplier = 1e3
	case 'M':
		multiplier = 1e6
	}
	if multiplier != 1 {
		str = str[:len(str)-1]
	}

	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse %q", ErrInvalidConfig, s)
	}
	return v * multiplier, nil
}
