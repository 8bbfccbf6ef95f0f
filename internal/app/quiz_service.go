package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"globent-quiz-service/internal/domain"
	"globent-quiz-service/internal/play"
)

// QuizStore abstracts where quizzes live (memory, Mongo, Postgres).
// Insert must report a duplicate PIN as domain.ErrPINCollision.
type QuizStore interface {
	Insert(ctx context.Context, quiz domain.Quiz) error
	ByID(ctx context.Context, id string) (domain.Quiz, error)
	ByPIN(ctx context.Context, pin string) (domain.Quiz, error)
	List(ctx context.Context, query string) ([]domain.QuizSummary, error)
	ByOwner(ctx context.Context, ownerID string) ([]domain.QuizSummary, error)
	Delete(ctx context.Context, id string) error
}

// QuizCache serves PIN lookups in front of the store.
type QuizCache interface {
	GetQuiz(ctx context.Context, pin string) (domain.Quiz, error)
	Evict(ctx context.Context, pin string) error
}

// AdminChecker reports whether a user is on the admin allow-list.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// PINSource produces candidate quiz PINs.
type PINSource interface {
	NextPIN() string
}

// QuizService contains the quiz use cases.
type QuizService struct {
	quizzes QuizStore
	cache   QuizCache
	admins  AdminChecker
	pins    PINSource
	now     func() time.Time
	log     *slog.Logger
}

// NewQuizService wires the service; cache may be nil to read PINs straight
// from the store.
func NewQuizService(quizzes QuizStore, cache QuizCache, admins AdminChecker, log *slog.Logger) *QuizService {
	return NewQuizServiceWithPINs(quizzes, cache, admins, domain.NewPINGenerator(), time.Now, log)
}

// NewQuizServiceWithPINs lets tests script PINs and timestamps.
func NewQuizServiceWithPINs(quizzes QuizStore, cache QuizCache, admins AdminChecker, pins PINSource, now func() time.Time, log *slog.Logger) *QuizService {
	if log == nil {
		log = slog.Default()
	}
	return &QuizService{quizzes: quizzes, cache: cache, admins: admins, pins: pins, now: now, log: log}
}

// Create validates req, assigns a unique PIN and stores the quiz. Only PIN
// collisions are retried, up to domain.MaxPINAttempts times.
func (s *QuizService) Create(ctx context.Context, userID string, req domain.NewQuiz) (domain.Quiz, error) {
	admin, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !admin {
		return domain.Quiz{}, domain.ErrForbidden
	}

	quiz, err := domain.BuildQuiz(req, userID, s.now())
	if err != nil {
		return domain.Quiz{}, err
	}

	for attempt := 1; attempt <= domain.MaxPINAttempts; attempt++ {
		quiz.PIN = s.pins.NextPIN()
		err := s.quizzes.Insert(ctx, quiz)
		if err == nil {
			s.log.Info("quiz created", "quiz_id", quiz.ID, "pin", quiz.PIN, "attempts", attempt)
			return quiz, nil
		}
		if !errors.Is(err, domain.ErrPINCollision) {
			return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
		}
		s.log.Debug("pin collision, regenerating", "pin", quiz.PIN, "attempt", attempt)
	}
	return domain.Quiz{}, domain.ErrPINExhausted
}

func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	if !domain.ValidID(id) {
		return domain.Quiz{}, domain.ErrInvalidID
	}
	return s.quizzes.ByID(ctx, id)
}

// GetByPIN normalizes raw and rejects malformed PINs before any lookup.
func (s *QuizService) GetByPIN(ctx context.Context, raw string) (domain.Quiz, error) {
	pin, err := domain.ParsePIN(raw)
	if err != nil {
		return domain.Quiz{}, err
	}
	if s.cache != nil {
		return s.cache.GetQuiz(ctx, pin)
	}
	return s.quizzes.ByPIN(ctx, pin)
}

func (s *QuizService) List(ctx context.Context, query string) ([]domain.QuizSummary, error) {
	return s.quizzes.List(ctx, query)
}

func (s *QuizService) Mine(ctx context.Context, userID string) ([]domain.QuizSummary, error) {
	return s.quizzes.ByOwner(ctx, userID)
}

// Host returns a quiz for its owner. A quiz owned by someone else is
// ErrForbidden, distinct from a missing one.
func (s *QuizService) Host(ctx context.Context, userID, id string) (domain.Quiz, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.CreatedBy != userID {
		return domain.Quiz{}, domain.ErrForbidden
	}
	return quiz, nil
}

// Delete removes a quiz when userID owns it or is an admin.
func (s *QuizService) Delete(ctx context.Context, userID, id string) error {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if quiz.CreatedBy != userID {
		admin, err := s.admins.IsAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return domain.ErrForbidden
		}
	}
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Evict(ctx, quiz.PIN); err != nil {
			s.log.Warn("evict cached quiz", "pin", quiz.PIN, "err", err)
		}
	}
	s.log.Info("quiz deleted", "quiz_id", id, "by", userID)
	return nil
}

// Playable fetches a quiz by PIN or id and prepares it for a play session.
func (s *QuizService) Playable(ctx context.Context, pin, quizID string) (play.Playable, error) {
	var (
		quiz domain.Quiz
		err  error
	)
	switch {
	case pin != "":
		quiz, err = s.GetByPIN(ctx, pin)
	case quizID != "":
		quiz, err = s.Get(ctx, quizID)
	default:
		return play.Playable{}, domain.NewValidationError("pin", "pin or quiz id is required")
	}
	if err != nil {
		return play.Playable{}, err
	}
	p, err := play.Prepare(quiz)
	if err != nil {
		return play.Playable{}, err
	}
	if p.Dropped > 0 {
		s.log.Warn("skipped unplayable questions", "quiz_id", quiz.ID, "dropped", p.Dropped)
	}
	return p, nil
}
