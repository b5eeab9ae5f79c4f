// Package textnorm canonicalizes building names and OCR output so they can be
// compared with plain string equality.
package textnorm

import (
	"regexp"
	"strings"
)

var reNonLetter = regexp.MustCompile(`[^A-Za-z\s&]`)

// Normalize replaces "&" with "and", drops commas, collapses whitespace and
// uppercases the result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, ",", "")
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// FilterOCR keeps ASCII letters, whitespace and ampersands from raw OCR text.
// Digits and punctuation are OCR noise for building signs.
func FilterOCR(raw string) string {
	return strings.TrimSpace(reNonLetter.ReplaceAllString(raw, ""))
}
