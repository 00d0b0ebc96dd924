// Package vin locates and validates the 17-character vehicle identification
// number that keys every record in the system.
package vin

import (
	"regexp"
	"strings"
)

// Labeled "FIN: ..." runs are preferred over bare 17-character tokens:
// arbitrary text can contain a coincidental 17-character alphanumeric run,
// while an explicit label almost never lies. The labeled pattern accepts
// 15-17 characters to tolerate older message formats.
var (
	labeledPattern = regexp.MustCompile(`(?i)FIN:\s*([A-Z0-9]{15,17})`)
	barePattern    = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	charsetPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

// Extract returns the leftmost FIN found in text, labeled matches first,
// or "" when neither pattern matches.
func Extract(text string) string {
	if m := labeledPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := barePattern.FindString(strings.ToUpper(text)); m != "" {
		return m
	}
	return ""
}

// Normalize uppercases a FIN and strips separators humans tend to add.
func Normalize(fin string) string {
	fin = strings.ToUpper(strings.TrimSpace(fin))
	fin = strings.ReplaceAll(fin, "-", "")
	return strings.ReplaceAll(fin, " ", "")
}

// Valid reports whether fin is 17 characters from the VIN charset
// (I, O and Q are excluded by the standard).
func Valid(fin string) bool {
	return charsetPattern.MatchString(fin)
}
