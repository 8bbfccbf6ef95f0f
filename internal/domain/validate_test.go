package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"globent-quiz-service/internal/domain"
)

func intPtr(v int) *int { return &v }

func validRequest() domain.NewQuiz {
	return domain.NewQuiz{
		Title:       "  Capitals ",
		Description: "Geography warm-up",
		Questions: []domain.NewQuestion{
			{
				Text: "Capital of France?",
				Answers: []domain.NewAnswer{
					{Text: "Paris", IsCorrect: true},
					{Text: "Lyon"},
				},
			},
		},
	}
}

func TestBuildQuizAppliesDefaults(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	quiz, err := domain.BuildQuiz(validRequest(), "owner-1", now)
	if err != nil {
		t.Fatalf("build quiz: %v", err)
	}
	if quiz.Title != "Capitals" {
		t.Fatalf("expected trimmed title, got %q", quiz.Title)
	}
	if quiz.CreatedBy != "owner-1" || !quiz.CreatedAt.Equal(now) {
		t.Fatalf("unexpected ownership fields: %+v", quiz)
	}
	q := quiz.Questions[0]
	if q.TimeLimit != domain.DefaultTimeLimit || q.Points != domain.DefaultPoints {
		t.Fatalf("expected defaults 30s/100pts, got %ds/%dpts", q.TimeLimit, q.Points)
	}
	if !domain.ValidID(quiz.ID) || !domain.ValidID(q.ID) || !domain.ValidID(q.Answers[0].ID) {
		t.Fatalf("expected ids to be assigned: %+v", quiz)
	}
	if quiz.PIN != "" {
		t.Fatalf("pin must be left to the store, got %q", quiz.PIN)
	}
}

func TestBuildQuizRejectsInvalidQuestions(t *testing.T) {
	cases := map[string]struct {
		mutate func(*domain.NewQuiz)
		field  string
	}{
		"no questions": {
			mutate: func(r *domain.NewQuiz) { r.Questions = nil },
			field:  "questions",
		},
		"missing title": {
			mutate: func(r *domain.NewQuiz) { r.Title = " " },
			field:  "title",
		},
		"single answer": {
			mutate: func(r *domain.NewQuiz) { r.Questions[0].Answers = r.Questions[0].Answers[:1] },
			field:  "questions[0].answers",
		},
		"no correct answer": {
			mutate: func(r *domain.NewQuiz) { r.Questions[0].Answers[0].IsCorrect = false },
			field:  "questions[0].answers",
		},
		"time limit too short": {
			mutate: func(r *domain.NewQuiz) { r.Questions[0].TimeLimit = intPtr(4) },
			field:  "questions[0].timeLimit",
		},
		"time limit too long": {
			mutate: func(r *domain.NewQuiz) { r.Questions[0].TimeLimit = intPtr(121) },
			field:  "questions[0].timeLimit",
		},
		"negative points": {
			mutate: func(r *domain.NewQuiz) { r.Questions[0].Points = intPtr(-1) },
			field:  "questions[0].points",
		},
		"blank answer": {
			mutate: func(r *domain.NewQuiz) { r.Questions[0].Answers[1].Text = "" },
			field:  "questions[0].answers[1].text",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := domain.BuildQuiz(req, "owner-1", time.Now())
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestValidateSignupNormalizesEmail(t *testing.T) {
	s, err := domain.ValidateSignup(" alice ", " Alice@Example.COM ", "secret1")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s.Username != "alice" || s.Email != "alice@example.com" {
		t.Fatalf("unexpected normalization: %+v", s)
	}

	_, err = domain.ValidateSignup("bob", "not-an-email", "123")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["email"] == "" || verr.Fields["password"] == "" {
		t.Fatalf("expected email and password failures, got %v", verr.Fields)
	}
}

func TestValidateSignupRejectsOverlongPassword(t *testing.T) {
	_, err := domain.ValidateSignup("bob", "bob@example.com", strings.Repeat("p", domain.MaxPasswordBytes+8))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Fatalf("expected password field error, got %v", err)
	}

	if _, err := domain.ValidateSignup("bob", "bob@example.com", strings.Repeat("p", domain.MaxPasswordBytes)); err != nil {
		t.Fatalf("72 bytes should be accepted: %v", err)
	}
}
