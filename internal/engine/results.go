package engine

// CardResult is the per-card line of the results breakdown
type CardResult struct {
	Index       int
	Question    string
	UserAnswer  string
	Correct     bool
	DisplayOnly bool
	// Alternatives lists the accepted answers as authored, populated when
	// the recorded answer was wrong.
	Alternatives []string
}

// ResultSummary is the score summary shown on the results screen
type ResultSummary struct {
	Score    int
	MaxScore int
	Cards    []CardResult
}

// Results computes the score summary and per-card breakdown
func (s *Session) Results() ResultSummary {
	summary := ResultSummary{
		Score:    s.Score(),
		MaxScore: s.MaxScore(),
		Cards:    make([]CardResult, len(s.cards)),
	}
	for i, card := range s.cards {
		result := CardResult{
			Index:       i,
			Question:    card.Text,
			DisplayOnly: !card.HasAnswer(),
		}
		if card.HasAnswer() {
			record := s.answers[i]
			result.UserAnswer = record.UserAnswer
			result.Correct = IsCorrectAnswer(card, record.UserAnswer, s.opts.CaseSensitive)
			if !result.Correct {
				result.Alternatives = Alternatives(card)
			}
		}
		summary.Cards[i] = result
	}
	return summary
}
