package play

import (
	"testing"
	"time"

	"globent-quiz-service/internal/domain"
)

func sampleQuestion(id string, points, limit int) domain.Question {
	return domain.Question{
		ID:        id,
		Text:      "Question " + id,
		TimeLimit: limit,
		Points:    points,
		Answers: []domain.Answer{
			{ID: id + "-wrong", Text: "Wrong"},
			{ID: id + "-right", Text: "Right", IsCorrect: true},
		},
	}
}

func samplePlayable(questions ...domain.Question) Playable {
	return Playable{QuizID: "quiz-1", PIN: "AB12CD", Title: "Sample", Questions: questions}
}

func newTestSession(t *testing.T, revealDelay time.Duration, questions ...domain.Question) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s := NewSession(samplePlayable(questions...), Options{Clock: clock, RevealDelay: revealDelay})
	t.Cleanup(s.Close)
	return s, clock
}

func TestSessionVisitsEveryQuestionBeforeFinal(t *testing.T) {
	questions := []domain.Question{
		sampleQuestion("q1", 100, 20),
		sampleQuestion("q2", 100, 20),
		sampleQuestion("q3", 100, 20),
	}
	s, _ := newTestSession(t, 0, questions...)

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pairs := 0
	for s.Snapshot().Phase != PhaseFinal {
		snap := s.Snapshot()
		if snap.Phase != PhaseActive || snap.QuestionIndex != pairs {
			t.Fatalf("expected active(%d), got %s(%d)", pairs, snap.Phase, snap.QuestionIndex)
		}
		if _, err := s.Select(questions[pairs].ID + "-right"); err != nil {
			t.Fatalf("select: %v", err)
		}
		if got := s.Snapshot().Phase; got != PhaseReveal {
			t.Fatalf("expected reveal, got %s", got)
		}
		pairs++
		if err := s.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if pairs != len(questions) {
		t.Fatalf("expected %d active/reveal pairs, got %d", len(questions), pairs)
	}
	final := s.Snapshot()
	if len(final.Results) != len(questions) || final.Score != 300 {
		t.Fatalf("unexpected final snapshot: %+v", final)
	}
}

func TestSessionScoresBySpeed(t *testing.T) {
	s, clock := newTestSession(t, 0, sampleQuestion("q1", 100, 20))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(10 * time.Second)
	if got := s.Snapshot().TimeRemaining; got != 10 {
		t.Fatalf("expected 10s remaining, got %d", got)
	}

	res, err := s.Select("q1-right")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// round(100 * (0.25 + 0.75*0.5)) = round(62.5) = 63
	if res.Awarded != 63 || s.Score() != 63 {
		t.Fatalf("expected 63 points, got awarded=%d score=%d", res.Awarded, s.Score())
	}
	if res.TimeRemaining != 10 {
		t.Fatalf("expected remaining time frozen at 10, got %d", res.TimeRemaining)
	}
	clock.Advance(30 * time.Second)
	if got := s.Snapshot(); got.Phase != PhaseReveal || got.TimeRemaining != 10 {
		t.Fatalf("expected frozen reveal without auto-advance, got %s remaining=%d", got.Phase, got.TimeRemaining)
	}
}

func TestSessionImmediateCorrectAnswerEarnsFullPoints(t *testing.T) {
	s, _ := newTestSession(t, 0, sampleQuestion("q1", 100, 20))
	_ = s.Start()
	res, err := s.Select("q1-right")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Awarded != 100 {
		t.Fatalf("expected 100 points, got %d", res.Awarded)
	}
}

func TestSessionTimeoutAwardsNothing(t *testing.T) {
	s, clock := newTestSession(t, 0, sampleQuestion("q1", 100, 5), sampleQuestion("q2", 100, 5))
	_ = s.Start()
	_, _ = s.Select("q1-right")
	before := s.Score()
	_ = s.Next()

	clock.Advance(5 * time.Second)
	snap := s.Snapshot()
	if snap.Phase != PhaseReveal {
		t.Fatalf("expected reveal after timeout, got %s", snap.Phase)
	}
	if snap.SelectedAnswerID != TimeUp || snap.Result == nil || !snap.Result.TimedOut {
		t.Fatalf("expected timed-out result, got %+v", snap)
	}
	if snap.Result.Awarded != 0 || snap.Score != before {
		t.Fatalf("expected score to stay %d, got %d", before, snap.Score)
	}
	if snap.CorrectAnswer != "Right" {
		t.Fatalf("expected correct answer text to be revealed, got %q", snap.CorrectAnswer)
	}
	if _, err := s.Select("q2-right"); err != ErrNotActive {
		t.Fatalf("expected ErrNotActive after timeout, got %v", err)
	}
}

func TestSessionIncorrectAnswerAwardsNothing(t *testing.T) {
	s, _ := newTestSession(t, 0, sampleQuestion("q1", 100, 20))
	_ = s.Start()
	res, err := s.Select("q1-wrong")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Correct || res.Awarded != 0 || s.Score() != 0 {
		t.Fatalf("expected no points, got %+v score=%d", res, s.Score())
	}
}

func TestSessionScoreNeverDecreases(t *testing.T) {
	s, clock := newTestSession(t, time.Second,
		sampleQuestion("q1", 100, 10),
		sampleQuestion("q2", 50, 10),
		sampleQuestion("q3", 80, 10),
		sampleQuestion("q4", 100, 10),
	)
	_ = s.Start()
	picks := []string{"q1-right", "q2-wrong", "", "q4-right"}
	last := 0
	for _, pick := range picks {
		clock.Advance(3 * time.Second)
		if pick == "" {
			clock.Advance(10 * time.Second)
		} else if _, err := s.Select(pick); err != nil {
			t.Fatalf("select %s: %v", pick, err)
		}
		if s.Score() < last {
			t.Fatalf("score decreased from %d to %d", last, s.Score())
		}
		last = s.Score()
		clock.Advance(time.Second)
	}
	if got := s.Snapshot().Phase; got != PhaseFinal {
		t.Fatalf("expected final, got %s", got)
	}
}

func TestSelectionWinsOverStaleTick(t *testing.T) {
	s, clock := newTestSession(t, 0, sampleQuestion("q1", 100, 1))
	_ = s.Start()

	// The only pending timer is the tick that would expire the question.
	stale := clock.scheduled()
	if len(stale) != 1 {
		t.Fatalf("expected one pending tick, got %d", len(stale))
	}
	if _, err := s.Select("q1-right"); err != nil {
		t.Fatalf("select: %v", err)
	}
	// A tick that was already running when the selection landed must be ignored.
	stale[0].fn()

	snap := s.Snapshot()
	if snap.SelectedAnswerID != "q1-right" || snap.Result.TimedOut {
		t.Fatalf("expected selection to win, got %+v", snap.Result)
	}
	if snap.Score != 100 {
		t.Fatalf("expected 100 points, got %d", snap.Score)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no dangling timers, got %d", clock.Pending())
	}
}

func TestRevealAdvancesAfterDelay(t *testing.T) {
	s, clock := newTestSession(t, 3*time.Second, sampleQuestion("q1", 100, 20), sampleQuestion("q2", 100, 20))
	_ = s.Start()
	_, _ = s.Select("q1-right")

	clock.Advance(2 * time.Second)
	if got := s.Snapshot().Phase; got != PhaseReveal {
		t.Fatalf("expected reveal before delay elapses, got %s", got)
	}
	clock.Advance(time.Second)
	snap := s.Snapshot()
	if snap.Phase != PhaseActive || snap.QuestionIndex != 1 || snap.TimeRemaining != 20 {
		t.Fatalf("expected active(1) with fresh countdown, got %+v", snap)
	}

	_, _ = s.Select("q2-wrong")
	clock.Advance(3 * time.Second)
	if got := s.Snapshot().Phase; got != PhaseFinal {
		t.Fatalf("expected final after last reveal, got %s", got)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no timers in final, got %d", clock.Pending())
	}
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	s, _ := newTestSession(t, 0, sampleQuestion("q1", 100, 20))

	if _, err := s.Select("q1-right"); err != ErrNotActive {
		t.Fatalf("expected ErrNotActive in lobby, got %v", err)
	}
	if err := s.Next(); err != ErrNotRevealing {
		t.Fatalf("expected ErrNotRevealing in lobby, got %v", err)
	}
	_ = s.Start()
	if err := s.Start(); err != ErrAlreadyStarted {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	if err := s.Next(); err != ErrNotRevealing {
		t.Fatalf("expected player Next during active to fail, got %v", err)
	}
	if _, err := s.Select("missing"); err != ErrUnknownAnswer {
		t.Fatalf("expected ErrUnknownAnswer, got %v", err)
	}
	if got := s.Snapshot().Phase; got != PhaseActive {
		t.Fatalf("unknown answer must not transition, got %s", got)
	}
	_, _ = s.Select("q1-right")
	_ = s.Next()
	if err := s.Next(); err != ErrNotRevealing {
		t.Fatalf("expected final to be terminal, got %v", err)
	}
}

func TestHostSessionSkipsQuestions(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(samplePlayable(sampleQuestion("q1", 100, 20)), Options{Clock: clock, Mode: ModeHost})
	defer s.Close()

	_ = s.Start()
	if _, err := s.Select("q1-right"); err != ErrHostCannotAnswer {
		t.Fatalf("expected ErrHostCannotAnswer, got %v", err)
	}
	clock.Advance(4 * time.Second)
	if err := s.Next(); err != nil {
		t.Fatalf("host next: %v", err)
	}
	snap := s.Snapshot()
	if snap.Phase != PhaseReveal || snap.TimeRemaining != 16 || snap.CorrectAnswer != "Right" {
		t.Fatalf("unexpected host reveal: %+v", snap)
	}
	_ = s.Next()
	if got := s.Snapshot().Phase; got != PhaseFinal {
		t.Fatalf("expected final, got %s", got)
	}
}

func TestCloseStopsTimersAndUpdates(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(samplePlayable(sampleQuestion("q1", 100, 20)), Options{Clock: clock})
	_ = s.Start()
	s.Close()
	s.Close()

	if clock.Pending() != 0 {
		t.Fatalf("expected timers cancelled, got %d", clock.Pending())
	}
	if err := s.Start(); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	for range s.Updates() {
	}
}

func TestUpdatesKeepLatestSnapshot(t *testing.T) {
	s, clock := newTestSession(t, 0, sampleQuestion("q1", 100, 30))
	_ = s.Start()
	clock.Advance(20 * time.Second)

	var last Snapshot
	for len(s.Updates()) > 0 {
		last = <-s.Updates()
	}
	if last.Phase != PhaseActive || last.TimeRemaining != 10 {
		t.Fatalf("expected latest snapshot to show 10s left, got %s %d", last.Phase, last.TimeRemaining)
	}
}

func TestActiveSnapshotHidesAnswerKey(t *testing.T) {
	s, _ := newTestSession(t, 0, sampleQuestion("q1", 100, 20))
	_ = s.Start()
	snap := s.Snapshot()
	if snap.Question == nil || len(snap.Question.Answers) != 2 {
		t.Fatalf("expected question view, got %+v", snap.Question)
	}
	if snap.CorrectAnswer != "" || snap.Result != nil {
		t.Fatalf("answer key leaked while active: %+v", snap)
	}
}
