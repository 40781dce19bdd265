// Package examsession drives one proctored exam attempt from identity handoff
// to the scored result. It holds no UI; renderers subscribe to its events.
package examsession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
)

var (
	ErrNotActive      = errors.New("exam session is not active")
	ErrInvalidOption  = errors.New("option must be one of A, B, C or D")
	ErrAlreadyStarted = errors.New("exam session already started")
)

// Session is one exam attempt. Construct it with New, drive it with Start and
// then Tick, Signal and the navigation calls; discard it once terminal.
type Session struct {
	cfg Config
	log zerolog.Logger

	mu               sync.Mutex
	state            State
	identity         Identity
	questions        []model.SanitizedQuestion
	answers          []*model.Answer
	currentIndex     int
	remainingSeconds int
	warningCount     int
	warnings         []string
	lastWarning      time.Time
	warned           bool
	notice           string
	outcome          *Outcome

	clearOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
}

// New validates cfg and returns a session in StateInitializing.
func New(cfg Config) (*Session, error) {
	switch {
	case cfg.Identity == nil:
		return nil, errors.New("examsession: identity store is required")
	case cfg.Questions == nil:
		return nil, errors.New("examsession: question source is required")
	case cfg.Submitter == nil:
		return nil, errors.New("examsession: submitter is required")
	case cfg.Device == nil:
		return nil, errors.New("examsession: device probe is required")
	}
	cfg.applyDefaults()

	return &Session{
		cfg:              cfg,
		log:              cfg.Logger.With().Str("component", "exam_session").Logger(),
		state:            StateInitializing,
		remainingSeconds: int(cfg.Duration / time.Second),
		done:             make(chan struct{}),
	}, nil
}

// ─── Startup ────────────────────────────────────────────────────────────────

// Start walks Initializing, DeviceCheck and Loading and returns the state it
// settles in: Active, Aborted or Blocked.
func (s *Session) Start(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.state != StateInitializing {
		st := s.state
		s.mu.Unlock()
		return st, ErrAlreadyStarted
	}

	id, ok := s.cfg.Identity.Load()
	if !ok {
		evs := s.exitLocked(StateAborted, NoticeNoIdentity)
		s.mu.Unlock()
		s.emit(evs)
		s.log.Info().Msg("No identity handed over, aborting")
		return StateAborted, nil
	}
	s.identity = id

	evs := s.setStateLocked(StateDeviceCheck)
	vp := s.cfg.Device.Viewport()
	if !DeviceAllowed(vp, s.cfg.MinWidth, s.cfg.MinHeight) {
		if s.cfg.WarnOnDeviceFailure {
			evs = append(evs, s.countWarningLocked(NoticeDevice))
		}
		evs = append(evs, s.exitLocked(StateBlocked, NoticeDevice)...)
		s.mu.Unlock()
		s.emit(evs)
		s.log.Warn().
			Int("width", vp.Width).
			Int("height", vp.Height).
			Str("user_agent", vp.UserAgent).
			Msg("Device check failed")
		return StateBlocked, nil
	}

	evs = append(evs, s.setStateLocked(StateLoading)...)
	s.mu.Unlock()
	s.emit(evs)

	questions, err := s.cfg.Questions.Questions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load questions")
		return s.block(NoticeLoadFailed), nil
	}
	if len(questions) == 0 {
		s.log.Warn().Msg("Question set is empty")
		return s.block(NoticeNoQuestions), nil
	}

	if s.cfg.WebcamRequired {
		if s.cfg.Camera == nil {
			return s.block(NoticeCameraMissing), nil
		}
		if err := s.cfg.Camera.Available(); err != nil {
			s.log.Warn().Err(err).Msg("Camera unavailable")
			return s.block(NoticeCameraDenied), nil
		}
	}

	s.mu.Lock()
	if s.state != StateLoading {
		st := s.state
		s.mu.Unlock()
		return st, nil
	}
	s.questions = questions
	s.answers = make([]*model.Answer, len(questions))
	s.currentIndex = 0
	evs = s.setStateLocked(StateActive)
	evs = append(evs, Event{Kind: EventNavigated, State: StateActive, Index: 0, Total: len(questions)})
	remaining := s.remainingSeconds
	email := s.identity.Email
	s.mu.Unlock()
	s.emit(evs)

	s.log.Info().
		Str("email", email).
		Int("questions", len(questions)).
		Int("remaining_seconds", remaining).
		Msg("Exam started")
	return StateActive, nil
}

func (s *Session) block(notice string) State {
	s.mu.Lock()
	evs := s.exitLocked(StateBlocked, notice)
	s.mu.Unlock()
	s.emit(evs)
	return StateBlocked
}

// ─── Active phase ───────────────────────────────────────────────────────────

// Tick records one elapsed second. At zero the exam is submitted.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	if s.remainingSeconds > 0 {
		s.remainingSeconds--
	}
	remaining := s.remainingSeconds
	ev := Event{Kind: EventTick, State: s.state, RemainingSeconds: remaining}
	s.mu.Unlock()
	s.emit([]Event{ev})

	if remaining <= 0 {
		s.Finish(ctx, ReasonTimeUp)
	}
}

// Signal registers a suspicion signal. Repeats within the debounce window of
// the last counted warning are ignored. Reaching MaxWarnings submits the exam.
// It reports whether a warning was counted.
func (s *Session) Signal(ctx context.Context, sig Signal) bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return false
	}
	now := s.cfg.Clock.Now()
	if s.warned && now.Sub(s.lastWarning) < s.cfg.DebounceWindow {
		s.mu.Unlock()
		return false
	}
	ev := s.countWarningLocked(sig.Description())
	limit := s.warningCount >= s.cfg.MaxWarnings
	s.mu.Unlock()
	s.emit([]Event{ev})

	s.log.Warn().
		Int("warning_count", ev.WarningCount).
		Str("reason", ev.Reason).
		Msg("Suspicion signal counted")

	if limit {
		s.Finish(ctx, ReasonViolations)
	}
	return true
}

// Next moves forward one question, stopping at the last.
func (s *Session) Next() int { return s.move(1) }

// Prev moves back one question, stopping at the first.
func (s *Session) Prev() int { return s.move(-1) }

func (s *Session) move(delta int) int {
	s.mu.Lock()
	if s.state != StateActive {
		idx := s.currentIndex
		s.mu.Unlock()
		return idx
	}
	idx := s.currentIndex + delta
	if idx < 0 {
		idx = 0
	}
	if last := len(s.questions) - 1; idx > last {
		idx = last
	}
	changed := idx != s.currentIndex
	s.currentIndex = idx
	ev := Event{Kind: EventNavigated, State: s.state, Index: idx, Total: len(s.questions), Letter: s.selectedLocked(idx)}
	s.mu.Unlock()

	if changed {
		s.emit([]Event{ev})
	}
	return idx
}

// Select records letter as the answer to the current question, replacing any
// earlier choice.
func (s *Session) Select(letter string) error {
	letter = model.NormalizeLetter(letter)
	if !model.IsOptionLetter(letter) {
		return ErrInvalidOption
	}

	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrNotActive
	}
	idx := s.currentIndex
	s.answers[idx] = &model.Answer{QuestionID: s.questions[idx].ID, SelectedOption: &letter}
	ev := Event{Kind: EventAnswered, State: s.state, Index: idx, Total: len(s.questions), Letter: letter}
	s.mu.Unlock()

	s.emit([]Event{ev})
	return nil
}

// RequestSubmit asks confirm and, only on a yes, submits the exam. confirm is
// called without the session lock and may block on the user.
func (s *Session) RequestSubmit(ctx context.Context, confirm func() bool) bool {
	if s.State() != StateActive {
		return false
	}
	if confirm != nil && !confirm() {
		return false
	}
	return s.Finish(ctx, ReasonManual)
}

// ─── Finish ─────────────────────────────────────────────────────────────────

// Finish stops the countdown, submits the answers and enters Finished. Only
// the first call from Active does anything; it reports whether this call
// performed the submission.
func (s *Session) Finish(ctx context.Context, reason FinishReason) bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return false
	}
	evs := s.setStateLocked(StateFinishing)
	req := s.payloadLocked()
	s.mu.Unlock()
	s.emit(evs)

	result, err := s.cfg.Submitter.Submit(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to submit exam")
		result = nil
	}
	out := &Outcome{Reason: reason, Result: result, Err: err}

	s.mu.Lock()
	s.outcome = out
	s.notice = out.Message()
	evs = s.setStateLocked(StateFinished)
	evs = append(evs, Event{Kind: EventFinished, State: StateFinished, Notice: s.notice, Outcome: out})
	s.mu.Unlock()

	s.clearIdentity()
	s.markDone()
	s.emit(evs)

	if err == nil && result != nil {
		s.log.Info().
			Str("reason", string(reason)).
			Int("correct", result.Correct).
			Int("total", result.Total).
			Float64("percentage", result.Percentage).
			Msg("Exam finished")
	}
	return true
}

func (s *Session) payloadLocked() model.SubmitRequest {
	answers := make([]model.Answer, 0, len(s.answers))
	for _, a := range s.answers {
		if a != nil {
			answers = append(answers, *a)
		}
	}
	req := model.SubmitRequest{
		UserName: s.identity.UserName,
		Email:    s.identity.Email,
		Answers:  answers,
	}
	if s.cfg.IncludeWarnings && len(s.warnings) > 0 {
		req.Warnings = append([]string(nil), s.warnings...)
	}
	return req
}

// Run feeds ticks into the session until it reaches a terminal state or ctx
// is done.
func (s *Session) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticks:
			s.Tick(ctx)
		}
	}
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// ─── Accessors ──────────────────────────────────────────────────────────────

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the submission outcome, or nil before Finished.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return nil
	}
	out := *s.outcome
	return &out
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]string, len(s.answers))
	for i := range s.answers {
		selected[i] = s.selectedLocked(i)
	}
	return Snapshot{
		State:            s.state,
		Identity:         s.identity,
		Questions:        append([]model.SanitizedQuestion(nil), s.questions...),
		Selected:         selected,
		CurrentIndex:     s.currentIndex,
		RemainingSeconds: s.remainingSeconds,
		WarningCount:     s.warningCount,
		MaxWarnings:      s.cfg.MaxWarnings,
		Warnings:         append([]string(nil), s.warnings...),
		Notice:           s.notice,
	}
}

// ─── Internals (lock held) ──────────────────────────────────────────────────

func (s *Session) setStateLocked(st State) []Event {
	s.state = st
	return []Event{{Kind: EventStateChanged, State: st}}
}

func (s *Session) exitLocked(st State, notice string) []Event {
	s.notice = notice
	evs := s.setStateLocked(st)
	evs = append(evs, Event{Kind: EventNotice, State: st, Notice: notice})
	s.markDone()
	return evs
}

func (s *Session) countWarningLocked(reason string) Event {
	s.warningCount++
	s.warnings = append(s.warnings, reason)
	s.lastWarning = s.cfg.Clock.Now()
	s.warned = true
	return Event{
		Kind:         EventWarning,
		State:        s.state,
		WarningCount: s.warningCount,
		MaxWarnings:  s.cfg.MaxWarnings,
		Reason:       reason,
	}
}

func (s *Session) selectedLocked(i int) string {
	if i < 0 || i >= len(s.answers) || s.answers[i] == nil || s.answers[i].SelectedOption == nil {
		return ""
	}
	return *s.answers[i].SelectedOption
}

func (s *Session) clearIdentity() {
	s.clearOnce.Do(s.cfg.Identity.Clear)
}

func (s *Session) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) emit(evs []Event) {
	for _, ev := range evs {
		s.cfg.Listener(ev)
	}
}
