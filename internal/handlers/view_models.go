package handlers

import (
	"flashdeck/internal/models"
)

// deckResponse is the authoring view of a deck. It includes answers; the
// routes serving it are API-key guarded.
func deckResponse(deck *models.DeckWithCards) map[string]interface{} {
	cards := make([]map[string]interface{}, 0, len(deck.Cards))
	for _, card := range deck.Cards {
		entry := map[string]interface{}{
			"id":       card.ID,
			"position": card.Position,
			"text":     card.Text,
		}
		if card.Image != nil {
			entry["imagePath"] = card.Image.Path
			entry["imageAlt"] = card.Image.AltText
		}
		if card.Answer != nil {
			entry["answer"] = *card.Answer
		}
		if card.AudioPath != "" {
			entry["audioPath"] = card.AudioPath
		}
		if card.Tip != "" {
			entry["tip"] = card.Tip
		}
		if card.SubContentID != "" {
			entry["subContentId"] = card.SubContentID
		}
		cards = append(cards, entry)
	}

	return map[string]interface{}{
		"id":                         deck.Deck.ID,
		"title":                      deck.Deck.Title,
		"description":                deck.Deck.Description,
		"ownerEmail":                 deck.Deck.OwnerEmail,
		"caseSensitive":              deck.Deck.CaseSensitive,
		"showSolutionsRequiresInput": deck.Deck.ShowSolutionsRequiresInput,
		"useSpeechRecognition":       deck.Deck.UseSpeechRecognition,
		"isPublic":                   deck.Deck.IsPublic,
		"createdAt":                  deck.Deck.CreatedAt,
		"cards":                      cards,
	}
}
