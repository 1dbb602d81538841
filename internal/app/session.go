package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quizboard/internal/domain"
)

// SessionState is a step of a single quiz attempt.
type SessionState string

const (
	StateCollectingIdentity SessionState = "collecting_identity"
	StateInProgress         SessionState = "in_progress"
	StateSubmitting         SessionState = "submitting"
	StateSucceeded          SessionState = "succeeded"
	StateFailed             SessionState = "failed"
)

// Submitter turns a finished attempt into a stored result.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (domain.Result, error)
}

// Ticker is the part of time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock overrides the wall clock used for elapsed time.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithTicker overrides how countdown tickers are created.
func WithTicker(fn TickerFunc) SessionOption {
	return func(s *Session) { s.newTicker = fn }
}

// QuestionView is a question without its answer key.
type QuestionView struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
}

// PublicQuestion strips the correct option from q.
func PublicQuestion(q domain.Question) QuestionView {
	return QuestionView{ID: q.ID, Position: q.Position, Text: q.Text, Options: q.Options}
}

// SessionSnapshot is the externally visible state of a session.
type SessionSnapshot struct {
	SessionID        string        `json:"sessionId"`
	QuizID           string        `json:"quizId"`
	QuizTitle        string        `json:"quizTitle"`
	State            SessionState  `json:"state"`
	Position         int           `json:"position"`
	TotalQuestions   int           `json:"totalQuestions"`
	Question         *QuestionView `json:"question,omitempty"`
	SelectedOption   *int          `json:"selectedOption,omitempty"`
	Answered         int           `json:"answered"`
	Timed            bool          `json:"timed"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Submitting       bool          `json:"submitting"`
	ResultID         string        `json:"resultId,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// Session owns one participant's attempt at one quiz.
type Session struct {
	id        string
	quiz      domain.Quiz
	questions []domain.Question
	submitter Submitter
	now       func() time.Time
	newTicker TickerFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       SessionState
	identity    domain.Identity
	position    int
	answers     domain.AnswerSet
	remaining   int
	startedAt   time.Time
	lastActive  time.Time
	resultID    string
	lastErr     string
	stopTimer   chan struct{}
	closed      bool
	subscribers map[chan SessionSnapshot]struct{}
}

// NewSession prepares a session in the CollectingIdentity state. A quiz
// without questions is rejected.
func NewSession(id string, quiz domain.Quiz, questions []domain.Question, submitter Submitter, opts ...SessionOption) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.NewValidationError("questions", "quiz has no questions")
	}

	ordered := make([]domain.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	quiz.Questions = nil

	s := &Session{
		id:          id,
		quiz:        quiz,
		questions:   ordered,
		submitter:   submitter,
		now:         time.Now,
		newTicker:   NewStdTicker,
		state:       StateCollectingIdentity,
		answers:     domain.AnswerSet{},
		subscribers: make(map[chan SessionSnapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.lastActive = s.now()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Begin records the participant and starts the attempt.
func (s *Session) Begin(identity domain.Identity) (SessionSnapshot, error) {
	identity.Name = strings.TrimSpace(identity.Name)
	identity.Email = strings.TrimSpace(identity.Email)
	if err := validateStruct(identity); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateCollectingIdentity {
		return s.snapshotLocked(), domain.ErrInvalidState
	}

	s.identity = identity
	s.state = StateInProgress
	s.startedAt = s.now()
	s.lastActive = s.startedAt
	if s.quiz.Timed() {
		s.remaining = s.quiz.TimeLimitSeconds
		s.startCountdownLocked()
	}
	return s.broadcastLocked(), nil
}

// SelectAnswer records optionIndex for the current question, replacing any
// earlier choice.
func (s *Session) SelectAnswer(optionIndex int) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.snapshotLocked(), domain.ErrInvalidState
	}
	q := s.questions[s.position]
	if !q.HasOption(optionIndex) {
		return s.snapshotLocked(), domain.NewValidationError("optionIndex", "option does not exist")
	}
	s.answers[q.ID] = optionIndex
	s.lastActive = s.now()
	return s.broadcastLocked(), nil
}

// Advance moves to the next question unless already at the last one.
func (s *Session) Advance() (SessionSnapshot, error) {
	return s.move(1)
}

// Retreat moves to the previous question unless already at the first one.
func (s *Session) Retreat() (SessionSnapshot, error) {
	return s.move(-1)
}

func (s *Session) move(delta int) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.snapshotLocked(), domain.ErrInvalidState
	}
	next := s.position + delta
	if next >= 0 && next < len(s.questions) {
		s.position = next
	}
	s.lastActive = s.now()
	return s.broadcastLocked(), nil
}

// Submit finishes the attempt with the answers recorded so far and returns
// the created result ID. Only one submission runs at a time; a failed one can
// be retried.
func (s *Session) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return "", domain.ErrSubmissionInFlight
	case StateSucceeded:
		id := s.resultID
		s.mu.Unlock()
		return id, domain.ErrAlreadySubmitted
	case StateInProgress, StateFailed:
	default:
		s.mu.Unlock()
		return "", domain.ErrInvalidState
	}
	if s.closed {
		s.mu.Unlock()
		return "", domain.ErrInvalidState
	}
	sub := s.beginSubmitLocked()
	s.mu.Unlock()

	return s.complete(ctx, sub)
}

// beginSubmitLocked latches the Submitting state and tears down the countdown.
func (s *Session) beginSubmitLocked() Submission {
	s.state = StateSubmitting
	s.lastErr = ""
	s.stopCountdownLocked()
	now := s.now()
	s.lastActive = now

	elapsed := int(now.Sub(s.startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	s.broadcastLocked()
	return Submission{
		Quiz:             s.quiz,
		Questions:        s.questions,
		Identity:         s.identity,
		Answers:          s.answers.Clone(),
		TimeTakenSeconds: elapsed,
	}
}

func (s *Session) complete(ctx context.Context, sub Submission) (string, error) {
	result, err := s.submitter.Submit(ctx, sub)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
	if err != nil {
		s.state = StateFailed
		s.lastErr = err.Error()
		s.broadcastLocked()
		return "", err
	}
	s.state = StateSucceeded
	s.resultID = result.ID
	s.broadcastLocked()
	return result.ID, nil
}

func (s *Session) startCountdownLocked() {
	stop := make(chan struct{})
	s.stopTimer = stop
	ticker := s.newTicker(time.Second)
	go s.runCountdown(ticker, stop)
}

func (s *Session) stopCountdownLocked() {
	if s.stopTimer != nil {
		close(s.stopTimer)
		s.stopTimer = nil
	}
}

func (s *Session) runCountdown(ticker Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			sub, expired, done := s.tick(stop)
			if expired {
				// Forced submission. Failures land in StateFailed for a manual retry.
				_, _ = s.complete(s.ctx, sub)
				return
			}
			if done {
				return
			}
		}
	}
}

// tick decrements the countdown. It reports expired when the countdown hit
// zero and the session moved to Submitting.
func (s *Session) tick(stop <-chan struct{}) (Submission, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-stop:
		return Submission{}, false, true
	default:
	}
	if s.state != StateInProgress {
		return Submission{}, false, true
	}
	s.remaining--
	if s.remaining > 0 {
		s.broadcastLocked()
		return Submission{}, false, false
	}
	s.remaining = 0
	return s.beginSubmitLocked(), true, true
}

// Snapshot returns the current state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Finished reports whether the session produced a result.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateSucceeded
}

// Busy reports whether the session still owes a result on its own: a
// countdown is running or a submission is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	switch s.state {
	case StateSubmitting:
		return true
	case StateInProgress:
		return s.stopTimer != nil && s.remaining > 0
	default:
		return false
	}
}

// LastActive returns the time of the last state change or participant action.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan SessionSnapshot, func()) {
	ch := make(chan SessionSnapshot, 8)

	s.mu.Lock()
	if s.closed {
		ch <- s.snapshotLocked()
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown, cancels a pending forced submission and ends all
// subscriptions. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopCountdownLocked()
	s.cancel()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked() SessionSnapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow reader: drop the oldest snapshot so the newest one always fits.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		SessionID:        s.id,
		QuizID:           s.quiz.ID,
		QuizTitle:        s.quiz.Title,
		State:            s.state,
		Position:         s.position,
		TotalQuestions:   len(s.questions),
		Answered:         len(s.answers),
		Timed:            s.quiz.Timed(),
		RemainingSeconds: s.remaining,
		Submitting:       s.state == StateSubmitting,
		ResultID:         s.resultID,
		Error:            s.lastErr,
	}
	if s.state != StateCollectingIdentity {
		q := s.questions[s.position]
		view := PublicQuestion(q)
		snap.Question = &view
		if selected, ok := s.answers[q.ID]; ok {
			snap.SelectedOption = &selected
		}
	}
	return snap
}
