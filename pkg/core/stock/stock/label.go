package stock

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	wsRe       = regexp.MustCompile(`\s+`)
	invalidRe  = regexp.MustCompile(`[^A-Za-z0-9_\-.]`)
	collapseRe = regexp.MustCompile(`_+`)
)

// slugify normalizes a reagent name for use inside a stock label: runs of
// whitespace become underscores, everything outside [A-Za-z0-9_-.] is
// dropped, underscore runs collapse.
func slugify(s string) string {
	s = strings.TrimSpace(s)
	s = wsRe.ReplaceAllString(s, "_")
	s = invalidRe.ReplaceAllString(s, "")
	s = collapseRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "Stock"
	}
	return s
}

// fmtNum renders a concentration without a trailing ".0" and without float
// noise: 10.0 -> "10", 0.5 -> "0.5".
func fmtNum(x float64) string {
	if math.Abs(x-math.Trunc(x)) < 1e-12 {
		return strconv.FormatInt(int64(x), 10)
	}
	s := strconv.FormatFloat(x, 'g', 12, 64)
	if strings.Contains(s, ".") && !strings.ContainsAny(s, "eE") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

func autoLabel(name string, conc float64, unit string) string {
	return slugify(name) + "_" + fmtNum(conc) + unit
}
