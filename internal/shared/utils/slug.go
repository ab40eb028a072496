package utils

import (
	"regexp"
	"strings"
)

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash  = regexp.MustCompile(`-+`)
	diacritics = strings.NewReplacer(
		"ä", "a", "å", "a", "á", "a", "à", "a", "â", "a",
		"ö", "o", "ø", "o", "ó", "o", "ô", "o",
		"é", "e", "è", "e", "ë", "e", "ê", "e",
		"ü", "u", "ú", "u",
		"í", "i", "ï", "i",
		"š", "s", "ž", "z",
		"Ä", "A", "Å", "A", "Á", "A", "À", "A", "Â", "A",
		"Ö", "O", "Ø", "O", "Ó", "O", "Ô", "O",
		"É", "E", "È", "E", "Ë", "E", "Ê", "E",
		"Ü", "U", "Ú", "U",
		"Í", "I", "Ï", "I",
		"Š", "S", "Ž", "Z",
	)
)

// GenerateSlug turns a title into an object-key friendly slug:
// "Kustannus Öy, ISBN 2024" → "kustannus-oy-isbn-2024"
func GenerateSlug(input string) string {
	// Step 1: Nordic letters to ASCII
	ascii := RemoveDiacritics(input)

	// Step 2: Lowercase, spaces and separators to hyphens
	lower := strings.ToLower(ascii)
	hyphenated := strings.NewReplacer(" ", "-", "_", "-", "/", "-", ".", "-").Replace(lower)

	// Step 3: Keep only a-z, 0-9 and hyphens
	cleaned := nonSlug.ReplaceAllString(hyphenated, "")

	// Step 4: Collapse and trim hyphens
	return strings.Trim(multiDash.ReplaceAllString(cleaned, "-"), "-")
}

// RemoveDiacritics maps the accented letters used in Finnish and Swedish
// titles to their base letter.
func RemoveDiacritics(input string) string {
	return diacritics.Replace(input)
}
