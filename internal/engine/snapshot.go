package engine

import (
	"encoding/json"

	"flashdeck/internal/models"
)

// CardState is the persisted per-card submission state
type CardState struct {
	UserAnswer string `json:"userAnswer"`
	Checked    bool   `json:"checked"`
}

// Snapshot is the persistable point-in-time copy of a session. Index equal to
// the card count marks the results screen; a missing index means no previous
// position. The layout is stable across sessions and hosts may store it
// verbatim as JSON.
type Snapshot struct {
	Index *int        `json:"index,omitempty"`
	Cards []CardState `json:"cards"`
}

// Serialize exports the session state, covering every card including
// unanswered ones.
func (s *Session) Serialize() Snapshot {
	cards := make([]CardState, len(s.cards))
	for i := range s.cards {
		record := s.answers[i]
		cards[i] = CardState{UserAnswer: record.UserAnswer, Checked: record.Checked}
	}
	index := s.current
	return Snapshot{Index: &index, Cards: cards}
}

// MarshalJSON keeps the wire layout explicit
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Serialize())
}

// Hydrate builds a session from a previously serialized snapshot. Checked
// answers are replayed in ascending card order to reconstruct the records and
// counters deterministically; replay never emits notifications or schedules
// deferred transitions.
//
// A nil snapshot yields a fresh session. An index outside [0, len] falls back
// to the first card; an index exactly equal to the card count restores the
// results screen. At most len(cards) snapshot entries are replayed.
func Hydrate(cards []models.Card, opts Options, snapshot *Snapshot, callbacks Callbacks, scheduler Scheduler) (*Session, error) {
	s, err := NewSession(cards, opts, callbacks, scheduler)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return s, nil
	}

	for i, state := range snapshot.Cards {
		if i >= len(cards) {
			break
		}
		if !state.Checked {
			continue
		}
		// Replay failures mean the entry no longer matches the card set
		// (e.g. a card lost its answer); skip rather than fail hydration.
		if _, err := s.submit(i, state.UserAnswer, true); err != nil {
			continue
		}
	}

	switch {
	case snapshot.Index == nil:
		s.current = 0
	case *snapshot.Index == len(cards):
		s.current = len(cards)
	case *snapshot.Index < 0 || *snapshot.Index > len(cards):
		// Corrupt snapshot position; fall back to the first card.
		s.current = 0
	default:
		s.current = *snapshot.Index
	}

	if s.complete() {
		s.showResults = true
	}
	return s, nil
}

// ParseSnapshot decodes a stored snapshot. Empty input yields nil, which
// Hydrate treats as a fresh session.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
