package database

import (
	"fmt"
	"log"
)

type seedCard struct {
	text   string
	answer string
	tip    string
}

// SeedStarterDeck inserts a small demo deck on first startup so a fresh
// install has something to serve. It is a no-op once any deck exists.
func (db *DB) SeedStarterDeck() error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM decks").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check deck count: %w", err)
	}

	if count > 0 {
		return nil
	}

	log.Println("Seeding starter deck...")

	cards := []seedCard{
		{text: "What is the capital of France?", answer: "Paris", tip: "City of light"},
		{text: "What is the capital of Germany?", answer: "Berlin", tip: ""},
		{text: "What is the capital of Italy?", answer: "Rome|Roma", tip: "All roads lead there"},
		{text: "What is the capital of Spain?", answer: "Madrid", tip: ""},
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deckID, err := tx.ExecReturningID(`
		INSERT INTO decks (title, description, owner_email, case_sensitive, show_solutions_requires_input, use_speech_recognition, is_public)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"European Capitals", "A starter deck to try the widget with", "", false, true, false, true)
	if err != nil {
		return fmt.Errorf("failed to insert starter deck: %w", err)
	}

	for i, c := range cards {
		_, err := tx.Exec(`
			INSERT INTO cards (deck_id, position, text, answer, tip)
			VALUES (?, ?, ?, ?, ?)`,
			deckID, i, c.text, c.answer, c.tip)
		if err != nil {
			return fmt.Errorf("failed to insert starter card %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit starter deck: %w", err)
	}

	log.Printf("Starter deck seeded with %d cards", len(cards))
	return nil
}
