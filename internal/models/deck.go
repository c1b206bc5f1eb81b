package models

import "time"

// Deck represents an ordered set of flashcards
type Deck struct {
	ID          int64
	Title       string
	Description string
	OwnerEmail  string
	// CaseSensitive controls answer matching for every card in the deck
	CaseSensitive bool
	// ShowSolutionsRequiresInput rejects empty submissions unless they
	// happen to be correct (an empty accepted alternative)
	ShowSolutionsRequiresInput bool
	UseSpeechRecognition       bool
	IsPublic                   bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// DeckWithCards combines a deck with its cards in navigation order
type DeckWithCards struct {
	Deck  Deck
	Cards []Card
}

// DeckSummary extends Deck with its card counts
type DeckSummary struct {
	Deck
	CardCount       int
	AnswerableCards int
}
