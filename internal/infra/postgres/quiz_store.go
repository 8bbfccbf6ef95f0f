package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"globent-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizStore keeps the full quiz document as JSONB next to the columns used
// for lookup and listing.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) Insert(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, pin, title, description, created_by, created_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		quiz.ID, quiz.PIN, quiz.Title, quiz.Description, quiz.CreatedBy, quiz.CreatedAt, raw)
	if err != nil {
		if violates(err, "quizzes_pin_key") {
			return domain.ErrPINCollision
		}
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) ByID(ctx context.Context, id string) (domain.Quiz, error) {
	return s.load(ctx, `SELECT data FROM quizzes WHERE id = $1`, id)
}

func (s *QuizStore) ByPIN(ctx context.Context, pin string) (domain.Quiz, error) {
	return s.load(ctx, `SELECT data FROM quizzes WHERE pin = $1`, pin)
}

func (s *QuizStore) List(ctx context.Context, query string) ([]domain.QuizSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.summaries(ctx, `TRUE`)
	}
	return s.summaries(ctx, `(title ILIKE $1 OR description ILIKE $1)`, "%"+escapeLike(query)+"%")
}

func (s *QuizStore) ByOwner(ctx context.Context, ownerID string) ([]domain.QuizSummary, error) {
	return s.summaries(ctx, `created_by = $1`, ownerID)
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) load(ctx context.Context, sql string, arg string) (domain.Quiz, error) {
	var raw []byte
	if err := s.pool.QueryRow(ctx, sql, arg).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) summaries(ctx context.Context, where string, args ...interface{}) ([]domain.QuizSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, title, description, pin, created_at, COALESCE(jsonb_array_length(data->'questions'), 0)
		 FROM quizzes WHERE `+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := []domain.QuizSummary{}
	for rows.Next() {
		var q domain.QuizSummary
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.PIN, &q.CreatedAt, &q.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		q.CreatedAt = q.CreatedAt.UTC()
		out = append(out, q)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
