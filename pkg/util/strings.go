// Package util holds small helpers shared through the injectable context.
package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugInvalid  = regexp.MustCompile(`[^\w\-]+`)
	slugRepeated = regexp.MustCompile(`-{2,}`)
	slugSeps     = strings.NewReplacer("·", "-", "/", "-", "_", "-", ",", "-", ":", "-", ";", "-", "&", "-y-")
)

// Slugify lowercases text, strips diacritics and joins words with dashes.
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}

	s := strings.TrimSpace(strings.ToLower(stripped))
	s = slugSeps.Replace(s)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugRepeated.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UpCaseFirst upper-cases the first rune.
func UpCaseFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// WildcardMatch reports whether str matches pattern where '*' spans any run of characters.
func WildcardMatch(str, pattern string) bool {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(str)
}

// Utils is the helper bundle handed to managers during bootstrap.
type Utils struct {
	Slugify       func(string) string
	UpCaseFirst   func(string) string
	WildcardMatch func(str, pattern string) bool
}

// Default returns the standard helper bundle.
func Default() Utils {
	return Utils{
		Slugify:       Slugify,
		UpCaseFirst:   UpCaseFirst,
		WildcardMatch: WildcardMatch,
	}
}
