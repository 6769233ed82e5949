package domain

import "strings"

// CompareIDs orders status ids by recency: it returns a positive number when a
// is newer than b, negative when older, zero when equal. Mastodon ids are
// decimal snowflakes, so a longer id is newer; equal lengths compare
// lexically. Non-numeric ids fall back to plain lexical order.
func CompareIDs(a, b string) int {
	if a == b {
		return 0
	}
	if isDigits(a) && isDigits(b) {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) > len(b) {
				return 1
			}
			return -1
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
