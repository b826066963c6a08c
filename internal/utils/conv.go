package utils

import (
	"strconv"
)

// PositiveInt parses s, falling back to def when s is empty, malformed or < 1.
func PositiveInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 {
		return def
	}
	return i
}
