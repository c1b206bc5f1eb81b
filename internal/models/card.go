package models

import "time"

// CardImage describes the visual clue shown on a card
type CardImage struct {
	Path    string
	AltText string
}

// Card represents a single flashcard in a deck.
// Answer holds one or more accepted alternatives separated by unescaped "|",
// with "\|" standing for a literal pipe. A nil Answer marks a display-only
// card that never counts toward the score.
type Card struct {
	ID           int64
	DeckID       int64
	Position     int
	Text         string
	Image        *CardImage
	Answer       *string
	AudioPath    string
	Tip          string
	SubContentID string
	CreatedAt    time.Time
}

// HasAnswer reports whether the card accepts an answer
func (c Card) HasAnswer() bool {
	return c.Answer != nil
}
