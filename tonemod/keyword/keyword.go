package keyword

import (
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Folds arbitrary user text in to a canonical form for substring and token
// matching: unicode NFKC (so full-width latin and half-width kana collapse)
// plus lower-casing. Whitespace is preserved.
//
// Feed text is frequently decorated to dodge keyword filters (ｂａｋａ,
// ﾊﾞｶ); matching against the folded form catches the cheap width and case
// variants without a per-language rule list. Accent/dakuten marks are kept:
// stripping them would corrupt Japanese (ザ vs サ are different words).
func Fold(text string) string {
	out, _, err := transform.String(norm.NFKC, text)
	if err != nil {
		slog.Warn("unicode fold error", "err", err)
		out = text
	}
	return strings.ToLower(out)
}

// Takes an arbitrary string and returns a version with all non-letter,
// non-digit characters removed, folded and lower-cased. Useful for matching
// lexicon terms against text that spaces or punctuates through them.
func Slugify(orig string) string {
	return nonSlugChars.ReplaceAllString(Fold(orig), "")
}

// Splits free-form text in to folded tokens, for space-delimited languages.
// Unsegmented text (eg, Japanese) comes back as few large tokens; callers
// matching against such text should use substring matching on Fold output
// instead.
func TokenizeText(text string) []string {
	folded := Fold(text)
	cleaned := nonSlugChars.ReplaceAllString(folded, " ")
	return strings.Fields(cleaned)
}

// Normalizes a single preference token for storage and matching: trimmed and
// folded. Returns the empty string for whitespace-only input.
func NormalizeToken(tok string) string {
	return Fold(strings.TrimSpace(tok))
}
