package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText is the comparison form of an entry text: NFC composed,
// lowercased, with runs of whitespace collapsed to one space. Diacritics,
// hyphens and apostrophes are kept, so a precomposed and a
// combining "é" compare equal but "e" does not.
func NormalizeText(text string) string {
	fields := strings.Fields(norm.NFC.String(text))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}
