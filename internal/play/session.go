package play

import (
	"errors"
	"sync"
	"time"

	"globent-quiz-service/internal/domain"
)

// Phase is a state of the play state machine.
type Phase string

const (
	PhaseLobby  Phase = "lobby"
	PhaseActive Phase = "active"
	PhaseReveal Phase = "reveal"
	PhaseFinal  Phase = "final"
)

// Mode tells whether the session runs a player's or a host's view.
type Mode string

const (
	ModePlayer Mode = "player"
	ModeHost   Mode = "host"
)

const (
	// TimeUp is recorded as the selection when the countdown expires.
	TimeUp = "TIME_UP"
	// DefaultRevealDelay is how long the reveal phase lasts before advancing.
	DefaultRevealDelay = 3 * time.Second

	tickInterval = time.Second
	updateBuffer = 8
)

var (
	ErrNoPlayableQuestions = errors.New("quiz data has no playable questions")
	ErrAlreadyStarted      = errors.New("session already started")
	ErrNotActive           = errors.New("no question is waiting for an answer")
	ErrNotRevealing        = errors.New("session is not revealing an answer")
	ErrUnknownAnswer       = errors.New("answer does not belong to the current question")
	ErrHostCannotAnswer    = errors.New("host sessions do not answer questions")
	ErrClosed              = errors.New("session closed")
)

// Options configures a Session. The zero value runs a player session on the
// system clock with manual advancing out of the reveal phase.
type Options struct {
	Clock       Clock
	RevealDelay time.Duration
	Mode        Mode
	PlayerName  string
}

// AnswerView is an answer as shown while a question is open; correctness is hidden.
type AnswerView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the current question without its answer key.
type QuestionView struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	TimeLimit int          `json:"timeLimit"`
	Points    int          `json:"points"`
	Answers   []AnswerView `json:"answers"`
}

// Result is the outcome of a single question.
type Result struct {
	QuestionID       string `json:"questionId"`
	SelectedAnswerID string `json:"selectedAnswerId"`
	Correct          bool   `json:"correct"`
	TimedOut         bool   `json:"timedOut"`
	TimeRemaining    int    `json:"timeRemaining"`
	Awarded          int    `json:"awarded"`
}

// Snapshot is a read-only view of a session at one instant.
type Snapshot struct {
	Mode             Mode          `json:"mode"`
	PlayerName       string        `json:"playerName,omitempty"`
	QuizTitle        string        `json:"quizTitle"`
	Phase            Phase         `json:"phase"`
	QuestionIndex    int           `json:"questionIndex"`
	QuestionCount    int           `json:"questionCount"`
	Question         *QuestionView `json:"question,omitempty"`
	TimeRemaining    int           `json:"timeRemaining"`
	SelectedAnswerID string        `json:"selectedAnswerId,omitempty"`
	Result           *Result       `json:"result,omitempty"`
	CorrectAnswer    string        `json:"correctAnswer,omitempty"`
	Score            int           `json:"score"`
	Results          []Result      `json:"results,omitempty"`
}

// Session is one isolated play-through of a quiz. All transitions, including
// the ones triggered by timers, are serialized by mu.
type Session struct {
	quiz        Playable
	clock       Clock
	revealDelay time.Duration
	mode        Mode
	playerName  string

	mu        sync.Mutex
	phase     Phase
	index     int
	remaining int
	selected  string
	score     int
	results   []Result
	closed    bool

	// pending is the only scheduled action; gen invalidates callbacks that
	// were already firing when a transition replaced them.
	pending Timer
	gen     uint64

	updates chan Snapshot
}

// NewSession creates a session in the lobby phase.
func NewSession(quiz Playable, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Mode == "" {
		opts.Mode = ModePlayer
	}
	s := &Session{
		quiz:        quiz,
		clock:       opts.Clock,
		revealDelay: opts.RevealDelay,
		mode:        opts.Mode,
		playerName:  opts.PlayerName,
		phase:       PhaseLobby,
		index:       -1,
		updates:     make(chan Snapshot, updateBuffer),
	}
	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()
	return s
}

// Updates delivers a snapshot after every state change, starting with the
// lobby. Slow readers lose intermediate snapshots but always see the latest.
// The channel is closed by Close.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// Start moves the session from the lobby to the first question. It serves
// both the host's start action and the player's join action.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseLobby {
		return ErrAlreadyStarted
	}
	s.activateLocked(0)
	return nil
}

// Select answers the open question. The remaining time is frozen at the
// moment of selection and the session moves to the reveal phase.
func (s *Session) Select(answerID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, ErrClosed
	}
	if s.mode == ModeHost {
		return Result{}, ErrHostCannotAnswer
	}
	if s.phase != PhaseActive {
		return Result{}, ErrNotActive
	}
	q := s.quiz.Questions[s.index]
	answer, ok := q.FindAnswer(answerID)
	if !ok {
		return Result{}, ErrUnknownAnswer
	}

	res := Result{
		QuestionID:       q.ID,
		SelectedAnswerID: answer.ID,
		Correct:          answer.IsCorrect,
		TimeRemaining:    s.remaining,
	}
	if answer.IsCorrect {
		res.Awarded = Points(q.Points, s.remaining, q.TimeLimit)
	}
	s.revealLocked(res)
	return res, nil
}

// Next leaves the reveal phase early. Hosts may also use it to close an
// open question before its countdown ends.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	switch {
	case s.phase == PhaseReveal:
		s.advanceLocked()
		return nil
	case s.phase == PhaseActive && s.mode == ModeHost:
		s.revealLocked(Result{
			QuestionID:    s.quiz.Questions[s.index].ID,
			TimeRemaining: s.remaining,
		})
		return nil
	default:
		return ErrNotRevealing
	}
}

// Close cancels the pending timer and closes the updates channel. It is
// safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelPendingLocked()
	s.closed = true
	close(s.updates)
}

// QuizID identifies the quiz being played.
func (s *Session) QuizID() string {
	return s.quiz.QuizID
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Score returns the cumulative score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) activateLocked(i int) {
	s.phase = PhaseActive
	s.index = i
	s.remaining = s.quiz.Questions[i].TimeLimit
	s.selected = ""
	s.scheduleLocked(tickInterval, s.tickLocked)
	s.publishLocked()
}

func (s *Session) tickLocked() {
	if s.phase != PhaseActive {
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.scheduleLocked(tickInterval, s.tickLocked)
		s.publishLocked()
		return
	}
	s.remaining = 0
	s.revealLocked(Result{
		QuestionID:       s.quiz.Questions[s.index].ID,
		SelectedAnswerID: TimeUp,
		TimedOut:         true,
	})
}

// revealLocked applies the result exactly once, on entering the reveal phase.
func (s *Session) revealLocked(res Result) {
	s.cancelPendingLocked()
	s.phase = PhaseReveal
	s.selected = res.SelectedAnswerID
	if res.Awarded > 0 {
		s.score += res.Awarded
	}
	s.results = append(s.results, res)
	if s.revealDelay > 0 {
		s.scheduleLocked(s.revealDelay, s.advanceLocked)
	}
	s.publishLocked()
}

func (s *Session) advanceLocked() {
	s.cancelPendingLocked()
	if s.index+1 < len(s.quiz.Questions) {
		s.activateLocked(s.index + 1)
		return
	}
	s.phase = PhaseFinal
	s.publishLocked()
}

// scheduleLocked replaces any pending action with fn after d.
func (s *Session) scheduleLocked(d time.Duration, fn func()) {
	s.cancelPendingLocked()
	gen := s.gen
	s.pending = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.gen != gen {
			return
		}
		s.pending = nil
		fn()
	})
}

func (s *Session) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}

func (s *Session) publishLocked() {
	if s.closed {
		return
	}
	snap := s.snapshotLocked()
	select {
	case s.updates <- snap:
	default:
		// drop the oldest snapshot so the latest state is never lost
		select {
		case <-s.updates:
		default:
		}
		s.updates <- snap
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Mode:          s.mode,
		PlayerName:    s.playerName,
		QuizTitle:     s.quiz.Title,
		Phase:         s.phase,
		QuestionIndex: s.index,
		QuestionCount: len(s.quiz.Questions),
		TimeRemaining: s.remaining,
		Score:         s.score,
	}
	switch s.phase {
	case PhaseActive, PhaseReveal:
		q := s.quiz.Questions[s.index]
		snap.Question = viewOf(q)
		snap.SelectedAnswerID = s.selected
		if s.phase == PhaseReveal {
			res := s.results[len(s.results)-1]
			snap.Result = &res
			if correct, ok := q.CorrectAnswer(); ok {
				snap.CorrectAnswer = correct.Text
			}
		}
	case PhaseFinal:
		snap.Results = append([]Result(nil), s.results...)
	}
	return snap
}

func viewOf(q domain.Question) *QuestionView {
	answers := make([]AnswerView, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, AnswerView{ID: a.ID, Text: a.Text})
	}
	return &QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		TimeLimit: q.TimeLimit,
		Points:    q.Points,
		Answers:   answers,
	}
}
