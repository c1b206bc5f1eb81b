package service

import (
	"flashdeck/internal/engine"
	"flashdeck/internal/models"
)

// CardView is the learner-facing projection of a card. It carries the
// submission state but never the accepted answers.
type CardView struct {
	Index      int               `json:"index"`
	Text       string            `json:"text"`
	Image      *models.CardImage `json:"image,omitempty"`
	AudioPath  string            `json:"audioPath,omitempty"`
	Tip        string            `json:"tip,omitempty"`
	HasAnswer  bool              `json:"hasAnswer"`
	UserAnswer string            `json:"userAnswer"`
	Checked    bool              `json:"checked"`
	Correct    *bool             `json:"correct,omitempty"`
}

// SessionView is the learner-facing state of a session
type SessionView struct {
	ID        string `json:"id"`
	DeckID    int64  `json:"deckId"`
	DeckTitle string `json:"deckTitle"`
	CardCount int    `json:"cardCount"`
	// Position is 1-based; cardCount+1 denotes the results screen
	Position             int       `json:"position"`
	ResultsShown         bool      `json:"resultsShown"`
	ShowResultsAvailable bool      `json:"showResultsAvailable"`
	Score                int       `json:"score"`
	MaxScore             int       `json:"maxScore"`
	NumAnswered          int       `json:"numAnswered"`
	Completed            bool      `json:"completed"`
	HasBeenReset         bool      `json:"hasBeenReset"`
	Card                 *CardView `json:"card,omitempty"`
}

// SubmitView reports the outcome of a submission along with the new state
type SubmitView struct {
	Counted   bool `json:"counted"`
	Correct   bool `json:"correct"`
	Completed bool `json:"completed"`
	// Solutions holds the accepted alternatives, revealed once the
	// submission counted
	Solutions []string    `json:"solutions,omitempty"`
	Session   SessionView `json:"session"`
}

// viewLocked builds the learner-facing view. Callers must hold s.mu.
func (s *SessionService) viewLocked(ls *liveSession) *SessionView {
	eng := ls.engine
	view := &SessionView{
		ID:                   ls.model.ID,
		DeckID:               ls.deck.ID,
		DeckTitle:            ls.deck.Title,
		CardCount:            eng.Len(),
		Position:             eng.CurrentIndex() + 1,
		ResultsShown:         eng.ResultsShown(),
		ShowResultsAvailable: eng.ShowResultsAvailable(),
		Score:                eng.Score(),
		MaxScore:             eng.MaxScore(),
		NumAnswered:          eng.NumAnswered(),
		Completed:            eng.NumAnswered() == eng.MaxScore(),
		HasBeenReset:         eng.HasBeenReset(),
	}

	if !eng.ResultsShown() {
		index := eng.CurrentIndex()
		card, err := eng.Card(index)
		if err == nil {
			record := eng.Answer(index)
			cardView := &CardView{
				Index:      index,
				Text:       card.Text,
				Image:      card.Image,
				AudioPath:  card.AudioPath,
				Tip:        card.Tip,
				HasAnswer:  card.HasAnswer(),
				UserAnswer: record.UserAnswer,
				Checked:    record.Checked,
			}
			if record.Checked {
				correct := engine.IsCorrectAnswer(card, record.UserAnswer, ls.deck.CaseSensitive)
				cardView.Correct = &correct
			}
			view.Card = cardView
		}
	}

	return view
}
