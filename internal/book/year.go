package book

import (
	"strconv"
	"strings"
)

// ParseYear reads the integer at the start of raw, ignoring leading
// whitespace and anything after the digits, so "2000abc" is 2000. It
// reports false when raw does not start with an integer.
func ParseYear(raw string) (int, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}
