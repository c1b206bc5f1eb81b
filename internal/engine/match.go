package engine

import (
	"html"
	"strings"

	"flashdeck/internal/models"
)

// IsCorrectAnswer reports whether userAnswer matches one of the card's
// accepted alternatives. The authored answer may carry HTML markup which is
// stripped before comparison; matching is an exact string comparison against
// each alternative, case-folded unless caseSensitive. The caller is
// responsible for trimming the raw input beforehand.
func IsCorrectAnswer(card models.Card, userAnswer string, caseSensitive bool) bool {
	if card.Answer == nil {
		return false
	}

	answer := htmlToText(*card.Answer)
	if !caseSensitive {
		answer = strings.ToLower(answer)
		userAnswer = strings.ToLower(userAnswer)
	}

	for _, alternative := range SplitAlternatives(answer, DefaultDelimiter, DefaultEscaper) {
		if alternative == userAnswer {
			return true
		}
	}
	return false
}

// Alternatives returns the card's accepted alternatives as authored, for
// display on feedback and result screens. Display-only cards have none.
func Alternatives(card models.Card) []string {
	if card.Answer == nil {
		return nil
	}
	return SplitAlternatives(*card.Answer, DefaultDelimiter, DefaultEscaper)
}

// htmlToText strips markup from an authored answer so formatting tags do not
// participate in the literal comparison. Entities are decoded afterwards.
func htmlToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
