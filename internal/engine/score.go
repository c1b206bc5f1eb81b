package engine

import "flashdeck/internal/models"

// Score counts the cards whose recorded answer matches an accepted
// alternative. Cards without an answer record are evaluated against empty
// input, which only matches an alternative that is itself empty.
func Score(cards []models.Card, answers map[int]AnswerRecord, caseSensitive bool) int {
	score := 0
	for i, card := range cards {
		if !card.HasAnswer() {
			continue
		}
		if IsCorrectAnswer(card, answers[i].UserAnswer, caseSensitive) {
			score++
		}
	}
	return score
}

// MaxScore counts the cards that accept an answer. Display-only cards never
// contribute.
func MaxScore(cards []models.Card) int {
	count := 0
	for _, card := range cards {
		if card.HasAnswer() {
			count++
		}
	}
	return count
}
