// Package title normalizes card titles for matching. The locator and the
// card catalog share these rules so that a query matches the same set of
// cards no matter which side of the lookup it lands on.
package title

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// leadingArticles are stripped once from the front of a normalized title.
var leadingArticles = []string{"a", "an", "the"}

// Normalize reduces a title to its canonical matching form: case-folded,
// punctuation dropped, whitespace collapsed, one leading article removed.
// Matching is exact equality of normalized forms; there is no partial or
// substring scoring.
func Normalize(s string) string {
	folded := cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	if len(words) > 1 && isArticle(words[0]) {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// Equal reports whether two titles normalize to the same form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func isArticle(w string) bool {
	for _, a := range leadingArticles {
		if w == a {
			return true
		}
	}
	return false
}
