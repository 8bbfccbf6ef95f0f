package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"globent-quiz-service/internal/domain"
)

// QuizStore keeps quizzes in process. It enforces the same PIN uniqueness
// the database backends enforce with an index.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
	pins    map[string]string
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		quizzes: make(map[string]domain.Quiz),
		pins:    make(map[string]string),
	}
}

func (s *QuizStore) Insert(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.pins[quiz.PIN]; taken {
		return domain.ErrPINCollision
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	s.pins[quiz.PIN] = quiz.ID
	return nil
}

func (s *QuizStore) ByID(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) ByPIN(_ context.Context, pin string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pins[pin]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(s.quizzes[id]), nil
}

// List returns summaries, newest first. A non-empty query keeps quizzes
// whose title or description contains it, ignoring case.
func (s *QuizStore) List(_ context.Context, query string) ([]domain.QuizSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	return s.filter(func(q domain.Quiz) bool {
		if query == "" {
			return true
		}
		return strings.Contains(strings.ToLower(q.Title), query) ||
			strings.Contains(strings.ToLower(q.Description), query)
	}), nil
}

func (s *QuizStore) ByOwner(_ context.Context, ownerID string) ([]domain.QuizSummary, error) {
	return s.filter(func(q domain.Quiz) bool { return q.CreatedBy == ownerID }), nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	delete(s.pins, quiz.PIN)
	return nil
}

func (s *QuizStore) filter(keep func(domain.Quiz) bool) []domain.QuizSummary {
	s.mu.RLock()
	out := make([]domain.QuizSummary, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		if keep(q) {
			out = append(out, q.Summary())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Answers = append([]domain.Answer(nil), question.Answers...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
