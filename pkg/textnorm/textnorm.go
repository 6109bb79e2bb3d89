// Package textnorm canonicalizes story titles so that spelling variants of
// the same title compare equal. Arabic titles are the common case: hamza
// carriers, taa marbuta and alef maqsura all get folded to one representative
// form, and tashkeel marks are dropped entirely.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes, drops combining marks, then recomposes. For Arabic
// this removes tashkeel and folds hamza-carrying letters (أ إ آ ؤ ئ) to their
// base form in one pass; for Latin it strips accents.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// glyphFolds maps remaining glyph variants that are distinct letters rather
// than mark compositions.
var glyphFolds = strings.NewReplacer(
	"ٱ", "ا",
	"ة", "ه",
	"ى", "ي",
)

// Normalize returns the canonical form of a title: marks stripped, glyph
// variants folded, lowercased, punctuation removed, whitespace collapsed.
// It is idempotent and never fails; non-string-like input such as the empty
// string maps to the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = glyphFolds.Replace(strings.ToLower(folded))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
