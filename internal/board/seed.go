package board

import (
	"strconv"
	"strings"
)

// ParseSeed parses the textual seed form "1,2,3,4,1,2,3,4" (commas and/or
// whitespace as separators). It reports false if s is empty or any entry is
// not an integer; zero entries are kept as-is.
func ParseSeed(s string) ([]int, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// FormatSeed renders values in the form accepted by ParseSeed.
func FormatSeed(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
