package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"flashdeck/internal/credentials"
	"flashdeck/internal/engine"
	"flashdeck/internal/models"
	"flashdeck/internal/repository"
	"flashdeck/internal/security"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionService drives learner sessions. Live sessions are kept in memory
// keyed by session ID; on a cache miss the session is rehydrated from its
// persisted snapshot, so a restart never loses progress. All engine access
// happens under one mutex, including deferred auto-advance transitions.
type SessionService struct {
	deckRepo    *repository.DeckRepository
	sessionRepo *repository.SessionRepository
	eventRepo   *repository.EventRepository
	reports     *ReportService
	statements  *StatementService
	scheduler   engine.Scheduler

	mu   sync.Mutex
	live map[string]*liveSession
}

type liveSession struct {
	model  models.LearnerSession
	deck   models.Deck
	engine *engine.Session
}

// NewSessionService creates a new session service. reports and statements
// may be nil when those integrations are not configured; scheduler may be
// nil to use real timers.
func NewSessionService(
	deckRepo *repository.DeckRepository,
	sessionRepo *repository.SessionRepository,
	eventRepo *repository.EventRepository,
	reports *ReportService,
	statements *StatementService,
	scheduler engine.Scheduler,
) *SessionService {
	if scheduler == nil {
		scheduler = engine.TimerScheduler{}
	}
	return &SessionService{
		deckRepo:    deckRepo,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		reports:     reports,
		statements:  statements,
		scheduler:   scheduler,
		live:        make(map[string]*liveSession),
	}
}

// lockedScheduler makes deferred engine transitions take the service mutex
// before they run, since timers fire on their own goroutines
type lockedScheduler struct {
	svc   *SessionService
	inner engine.Scheduler
}

func (ls lockedScheduler) Schedule(delay time.Duration, fn func()) func() {
	return ls.inner.Schedule(delay, func() {
		ls.svc.mu.Lock()
		defer ls.svc.mu.Unlock()
		fn()
	})
}

// StartSession creates a new learner session over a deck. A snapshot saved
// by the embedding host may be passed to resume from it; an unreadable
// snapshot starts the session fresh instead of failing.
func (s *SessionService) StartSession(deckID int64, learnerID string, previousState []byte) (*SessionView, error) {
	deck, err := s.deckRepo.GetDeckWithCards(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}

	if learnerID == "" {
		alias, err := credentials.GenerateLearnerAlias()
		if err != nil {
			return nil, fmt.Errorf("failed to generate learner alias: %w", err)
		}
		learnerID = alias
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ls := &liveSession{
		model: models.LearnerSession{
			ID:        security.GenerateSessionID(),
			DeckID:    deckID,
			LearnerID: learnerID,
			StartedAt: time.Now(),
		},
		deck: deck.Deck,
	}

	var snapshot *engine.Snapshot
	if len(previousState) > 0 {
		snapshot, err = engine.ParseSnapshot(previousState)
		if err != nil {
			log.Printf("Ignoring unreadable previous state for deck %d: %v", deckID, err)
			snapshot = nil
		}
	}

	eng, err := engine.Hydrate(deck.Cards, sessionOptions(deck.Deck), snapshot, s.callbacksFor(ls), lockedScheduler{svc: s, inner: s.scheduler})
	if err != nil {
		return nil, err
	}
	ls.engine = eng
	ls.model.MaxScore = eng.MaxScore()
	ls.model.Score = eng.Score()

	if err := s.sessionRepo.CreateSession(&ls.model); err != nil {
		return nil, err
	}
	if err := s.saveSnapshot(ls); err != nil {
		return nil, err
	}

	s.live[ls.model.ID] = ls
	return s.viewLocked(ls), nil
}

// State returns the current view of a session
func (s *SessionService) State(sessionID string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}
	return s.viewLocked(ls), nil
}

// Snapshot returns the session's serialized engine state
func (s *SessionService) Snapshot(sessionID string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ls.engine)
}

// Submit checks an answer against the session's current card
func (s *SessionService) Submit(sessionID string, cardIndex int, input string) (*SubmitView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := ls.engine.Submit(cardIndex, input)
	if err != nil {
		return nil, err
	}

	view := &SubmitView{
		Counted:   result.Counted,
		Correct:   result.Correct,
		Completed: result.Completed,
		Session:   *s.viewLocked(ls),
	}
	if result.Counted {
		card, err := ls.engine.Card(cardIndex)
		if err == nil && card.HasAnswer() {
			view.Solutions = engine.Alternatives(card)
		}
	}
	return view, nil
}

// Navigate moves through the deck. Direction is one of next, previous or
// last.
func (s *SessionService) Navigate(sessionID, direction string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}

	switch direction {
	case "next":
		ls.engine.Next()
	case "previous":
		ls.engine.Previous()
	case "last":
		ls.engine.JumpToLast()
	default:
		return nil, fmt.Errorf("unknown direction: %s", direction)
	}
	return s.viewLocked(ls), nil
}

// ShowResults moves the session to the results screen
func (s *SessionService) ShowResults(sessionID string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}
	ls.engine.ShowResults()
	return s.viewLocked(ls), nil
}

// Results returns the per-card outcome summary
func (s *SessionService) Results(sessionID string) (engine.ResultSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return engine.ResultSummary{}, err
	}
	return ls.engine.Results(), nil
}

// Retry restarts the session from the results screen with answers cleared
func (s *SessionService) Retry(sessionID string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ls.engine.Retry(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.ReopenSession(sessionID); err != nil {
		log.Printf("Failed to reopen session %s: %v", sessionID, err)
	}
	if err := s.eventRepo.PurgeSessionEvents(sessionID); err != nil {
		log.Printf("Failed to purge events for session %s: %v", sessionID, err)
	}
	ls.model.CompletedAt = nil
	ls.model.Score = 0
	return s.viewLocked(ls), nil
}

// Close evicts a session from memory and cancels its pending timers. The
// persisted snapshot keeps it resumable.
func (s *SessionService) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.live[sessionID]; ok {
		ls.engine.Close()
		delete(s.live, sessionID)
	}
}

// CloseAll evicts every live session, for shutdown
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ls := range s.live {
		ls.engine.Close()
		delete(s.live, id)
	}
}

// loadLocked returns the live session, rehydrating it from the database
// when it is not in memory. Callers must hold s.mu.
func (s *SessionService) loadLocked(sessionID string) (*liveSession, error) {
	if ls, ok := s.live[sessionID]; ok {
		return ls, nil
	}

	model, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, ErrSessionNotFound
	}

	deck, err := s.deckRepo.GetDeckWithCards(model.DeckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}

	snapshot, err := engine.ParseSnapshot([]byte(model.Snapshot))
	if err != nil {
		log.Printf("Corrupt snapshot for session %s, starting from first card: %v", sessionID, err)
		snapshot = nil
	}

	ls := &liveSession{model: *model, deck: deck.Deck}
	eng, err := engine.Hydrate(deck.Cards, sessionOptions(deck.Deck), snapshot, s.callbacksFor(ls), lockedScheduler{svc: s, inner: s.scheduler})
	if err != nil {
		return nil, err
	}
	ls.engine = eng

	s.live[sessionID] = ls
	return ls, nil
}

func sessionOptions(deck models.Deck) engine.Options {
	return engine.Options{
		CaseSensitive:              deck.CaseSensitive,
		ShowSolutionsRequiresInput: deck.ShowSolutionsRequiresInput,
	}
}

// callbacksFor wires one session's engine notifications to persistence and
// the outbound integrations. The engine invokes these synchronously while
// s.mu is held.
func (s *SessionService) callbacksFor(ls *liveSession) engine.Callbacks {
	return engine.Callbacks{
		StateChanged: func() {
			if err := s.saveSnapshot(ls); err != nil {
				log.Printf("Failed to save snapshot for session %s: %v", ls.model.ID, err)
			}
		},
		Progressed: func(position int) {
			s.recordEvent(ls, models.EventProgressed, nil, fmt.Sprintf(`{"position":%d}`, position))
		},
		Interacted: func(cardIndex int) {
			idx := cardIndex
			s.recordEvent(ls, models.EventInteracted, &idx, "")
		},
		Answered: func(cardIndex int, correct bool, response string) {
			idx := cardIndex
			payload, _ := json.Marshal(map[string]interface{}{
				"correct":  correct,
				"response": response,
			})
			s.recordEvent(ls, models.EventAnswered, &idx, string(payload))

			if err := s.sessionRepo.UpdateScore(ls.model.ID, ls.engine.Score()); err != nil {
				log.Printf("Failed to update score for session %s: %v", ls.model.ID, err)
			}
			ls.model.Score = ls.engine.Score()
		},
		Completed: func(score, maxScore int) {
			if err := s.sessionRepo.CompleteSession(ls.model.ID, score); err != nil {
				log.Printf("Failed to complete session %s: %v", ls.model.ID, err)
			}
			now := time.Now()
			ls.model.Score = score
			ls.model.CompletedAt = &now

			payload, _ := json.Marshal(map[string]interface{}{
				"score":    score,
				"maxScore": maxScore,
			})
			s.recordEvent(ls, models.EventCompleted, nil, string(payload))

			// Outbound fan-out happens off the lock
			model := ls.model
			deck := ls.deck
			results := ls.engine.Results()
			if s.reports != nil {
				go s.reports.SendCompletionReport(model, deck, results)
			}
			if s.statements != nil {
				go s.statements.ForwardCompletion(model, deck, results)
			}
		},
		CaptureRequested: func() {
			if s.statements == nil {
				return
			}
			model := ls.model
			deck := ls.deck
			go s.statements.ForwardProgress(model, deck)
		},
	}
}

func (s *SessionService) saveSnapshot(ls *liveSession) error {
	data, err := json.Marshal(ls.engine)
	if err != nil {
		return err
	}
	ls.model.Snapshot = string(data)
	return s.sessionRepo.SaveSnapshot(ls.model.ID, string(data))
}

func (s *SessionService) recordEvent(ls *liveSession, kind string, cardIndex *int, payload string) {
	event := &models.SessionEvent{
		SessionID: ls.model.ID,
		Kind:      kind,
		CardIndex: cardIndex,
		Payload:   payload,
	}
	if err := s.eventRepo.RecordEvent(event); err != nil {
		log.Printf("Failed to record %s event for session %s: %v", kind, ls.model.ID, err)
	}
}
