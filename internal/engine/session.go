// Package engine implements the flashcards answer-evaluation and session
// core: alternative splitting, answer matching, scoring, the card navigation
// state machine, and snapshot serialization for resumable sessions.
package engine

import (
	"errors"
	"strings"
	"time"

	"flashdeck/internal/models"
)

// Timing of deferred transitions after a counted submission
const (
	// AutoAdvanceDelay is how long feedback stays on screen before the
	// session moves to the next card on its own.
	AutoAdvanceDelay = 3500 * time.Millisecond
	// CaptureDelay is the fire-and-forget delay before the external capture
	// hook is requested, allowing feedback to render first.
	CaptureDelay = time.Second
)

var (
	ErrNoCards        = errors.New("engine: deck has no cards")
	ErrCardIndex      = errors.New("engine: card index out of range")
	ErrNotCurrent     = errors.New("engine: card is not the current card")
	ErrAlreadyChecked = errors.New("engine: card has already been checked")
	ErrDisplayOnly    = errors.New("engine: card has no answer to check")
	ErrNoResults      = errors.New("engine: retry is only available from the results screen")
)

// Options are the behavior flags the session honors
type Options struct {
	CaseSensitive              bool
	ShowSolutionsRequiresInput bool
}

// DefaultOptions mirror the widget's documented defaults
func DefaultOptions() Options {
	return Options{
		CaseSensitive:              false,
		ShowSolutionsRequiresInput: true,
	}
}

// AnswerRecord is the per-card submission state
type AnswerRecord struct {
	UserAnswer string
	Checked    bool
}

// Callbacks are the session's output ports. All fields are optional and are
// invoked synchronously on the goroutine driving the transition. None of them
// fire while a snapshot is being replayed.
type Callbacks struct {
	// Progressed carries the 1-based position after the current card
	// changes; len(cards)+1 denotes the results screen.
	Progressed func(position int)
	// Interacted fires on every counted submission.
	Interacted func(cardIndex int)
	// Answered reports the outcome of a counted submission.
	Answered func(cardIndex int, correct bool, response string)
	// Completed fires once every answerable card has a counted submission.
	Completed func(score, maxScore int)
	// StateChanged signals that the serialized snapshot would differ; hosts
	// persist on this.
	StateChanged func()
	// CaptureRequested asks the host for a point-in-time capture; it is
	// fire-and-forget and does not affect session state.
	CaptureRequested func()
}

// SubmitResult reports what a submission did
type SubmitResult struct {
	// Counted is false when the submission was rejected by the
	// requires-input rule and nothing was recorded.
	Counted bool
	Correct bool
	// Completed is true once all answerable cards have counted submissions.
	Completed bool
}

// Session is the navigation and progress state machine for one run through a
// card set. It is owned by a single caller; all transitions are synchronous
// and it performs no locking of its own.
type Session struct {
	cards     []models.Card
	opts      Options
	callbacks Callbacks
	scheduler Scheduler

	// current is in [0, len(cards)]; len(cards) means the results screen.
	current      int
	answers      map[int]AnswerRecord
	numAnswered  int
	hasBeenReset bool

	// showResults tracks visibility of the "show results" affordance; it
	// appears on the last card once every answerable card is answered and
	// hides again while browsing backward.
	showResults bool

	cancelAdvance func()
	cancelCapture func()
}

// NewSession creates a session at the first card with no answers recorded.
func NewSession(cards []models.Card, opts Options, callbacks Callbacks, scheduler Scheduler) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	if scheduler == nil {
		scheduler = noopScheduler{}
	}
	s := &Session{
		cards:     cards,
		opts:      opts,
		callbacks: callbacks,
		scheduler: scheduler,
		answers:   make(map[int]AnswerRecord),
	}
	if s.complete() {
		// Vacuous completion: nothing is answerable.
		s.showResults = true
	}
	return s, nil
}

// Len returns the number of cards
func (s *Session) Len() int {
	return len(s.cards)
}

// Card returns the card at index
func (s *Session) Card(index int) (models.Card, error) {
	if index < 0 || index >= len(s.cards) {
		return models.Card{}, ErrCardIndex
	}
	return s.cards[index], nil
}

// CurrentIndex returns the current card index; it equals Len when the
// results screen is showing.
func (s *Session) CurrentIndex() int {
	return s.current
}

// ResultsShown reports whether the session is on the results screen
func (s *Session) ResultsShown() bool {
	return s.current == len(s.cards)
}

// NumAnswered returns the number of counted submissions
func (s *Session) NumAnswered() int {
	return s.numAnswered
}

// Answer returns the recorded submission state for a card
func (s *Session) Answer(index int) AnswerRecord {
	return s.answers[index]
}

// HasBeenReset reports whether the session was restarted via Retry, which
// hosts use to decide on an initial announcement.
func (s *Session) HasBeenReset() bool {
	return s.hasBeenReset
}

// ShowResultsAvailable reports whether the results affordance is visible
func (s *Session) ShowResultsAvailable() bool {
	return s.showResults
}

// Score returns the number of correctly answered cards
func (s *Session) Score() int {
	return Score(s.cards, s.answers, s.opts.CaseSensitive)
}

// MaxScore returns the number of answerable cards
func (s *Session) MaxScore() int {
	return MaxScore(s.cards)
}

func (s *Session) complete() bool {
	return s.numAnswered >= s.MaxScore()
}

// Next moves to the following card. It is a no-op on the last card and never
// enters the results screen on its own. Any pending auto-advance is cancelled
// either way.
func (s *Session) Next() {
	s.cancelAdvanceTimer()
	if s.ResultsShown() || s.current+1 >= len(s.cards) {
		return
	}
	s.current++
	if s.current == len(s.cards)-1 && s.complete() {
		s.showResults = true
	}
	s.progressChanged()
}

// Previous moves to the preceding card and hides the results affordance. It
// is a no-op on the first card. Any pending auto-advance is cancelled either
// way.
func (s *Session) Previous() {
	s.cancelAdvanceTimer()
	if s.ResultsShown() || s.current == 0 {
		return
	}
	s.current--
	s.showResults = false
	s.progressChanged()
}

// JumpToLast moves straight to the last card and surfaces the results
// affordance when the session is complete.
func (s *Session) JumpToLast() {
	s.cancelAdvanceTimer()
	if s.ResultsShown() {
		return
	}
	s.current = len(s.cards) - 1
	if s.complete() {
		s.showResults = true
	}
	s.progressChanged()
}

// Submit checks rawInput against the card at cardIndex. The input is trimmed
// first. A submission counts unless the requires-input rule rejects it, in
// which case no state changes. Counting a submission records the answer,
// disables further checks for that card and, on a live session, emits the
// interaction notifications and schedules the deferred transitions:
// auto-advance when the session is not yet complete, an immediate jump to the
// last card when it completed early, or the results screen when the last card
// itself completed it.
func (s *Session) Submit(cardIndex int, rawInput string) (SubmitResult, error) {
	return s.submit(cardIndex, rawInput, false)
}

func (s *Session) submit(cardIndex int, rawInput string, replay bool) (SubmitResult, error) {
	if cardIndex < 0 || cardIndex >= len(s.cards) {
		return SubmitResult{}, ErrCardIndex
	}
	if !replay && s.current != cardIndex {
		return SubmitResult{}, ErrNotCurrent
	}
	card := s.cards[cardIndex]
	if !card.HasAnswer() {
		return SubmitResult{}, ErrDisplayOnly
	}
	if s.answers[cardIndex].Checked {
		return SubmitResult{}, ErrAlreadyChecked
	}

	userAnswer := strings.TrimSpace(rawInput)
	correct := IsCorrectAnswer(card, userAnswer, s.opts.CaseSensitive)

	if s.opts.ShowSolutionsRequiresInput && userAnswer == "" && !correct {
		// Rejected silently; the host refocuses the input.
		return SubmitResult{}, nil
	}

	s.answers[cardIndex] = AnswerRecord{UserAnswer: userAnswer, Checked: true}
	s.numAnswered++
	done := s.complete()

	result := SubmitResult{Counted: true, Correct: correct, Completed: done}
	if replay {
		return result, nil
	}

	if s.callbacks.Interacted != nil {
		s.callbacks.Interacted(cardIndex)
	}
	if s.callbacks.Answered != nil {
		s.callbacks.Answered(cardIndex, correct, userAnswer)
	}
	s.stateChanged()

	if s.callbacks.CaptureRequested != nil {
		if s.cancelCapture != nil {
			s.cancelCapture()
		}
		s.cancelCapture = s.scheduler.Schedule(CaptureDelay, s.callbacks.CaptureRequested)
	}

	if !done {
		if s.cancelAdvance != nil {
			s.cancelAdvance()
		}
		s.cancelAdvance = s.scheduler.Schedule(AutoAdvanceDelay, s.Next)
		return result, nil
	}

	if cardIndex == len(s.cards)-1 {
		s.ShowResults()
	} else {
		s.JumpToLast()
	}
	if s.callbacks.Completed != nil {
		s.callbacks.Completed(s.Score(), s.MaxScore())
	}
	return result, nil
}

// ShowResults freezes browsing and switches to the results screen. It may be
// invoked from any card and is idempotent.
func (s *Session) ShowResults() {
	s.cancelAdvanceTimer()
	if s.ResultsShown() {
		return
	}
	s.current = len(s.cards)
	s.progressChanged()
}

// Retry restarts the session from the results screen: all answer records are
// cleared and the session returns to the first card.
func (s *Session) Retry() error {
	if !s.ResultsShown() {
		return ErrNoResults
	}
	s.cancelTimers()
	s.answers = make(map[int]AnswerRecord)
	s.numAnswered = 0
	s.current = 0
	s.hasBeenReset = true
	s.showResults = s.complete()
	s.progressChanged()
	return nil
}

// Close cancels any pending deferred transition. The session must not be
// used afterwards.
func (s *Session) Close() {
	s.cancelTimers()
}

func (s *Session) cancelAdvanceTimer() {
	if s.cancelAdvance != nil {
		s.cancelAdvance()
		s.cancelAdvance = nil
	}
}

func (s *Session) cancelTimers() {
	s.cancelAdvanceTimer()
	if s.cancelCapture != nil {
		s.cancelCapture()
		s.cancelCapture = nil
	}
}

func (s *Session) progressChanged() {
	s.stateChanged()
	if s.callbacks.Progressed != nil {
		s.callbacks.Progressed(s.current + 1)
	}
}

func (s *Session) stateChanged() {
	if s.callbacks.StateChanged != nil {
		s.callbacks.StateChanged()
	}
}
