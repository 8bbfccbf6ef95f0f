package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"globent-quiz-service/internal/client"
	"globent-quiz-service/internal/domain"
)

func TestListQuizzesTable(t *testing.T) {
	now := time.Date(2024, 11, 22, 12, 0, 0, 0, time.UTC)
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quiz/all" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode([]domain.QuizSummary{
			{ID: "1", PIN: "123456", Title: "Capitals", QuestionCount: 3, CreatedAt: now.Add(-2 * time.Hour)},
		})
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := listQuizzes(context.Background(), &out, client.New(server.URL), "cap", false, now); err != nil {
		t.Fatalf("listQuizzes: %v", err)
	}
	if gotQuery != "cap" {
		t.Fatalf("expected query forwarded, got %q", gotQuery)
	}
	for _, want := range []string{"PIN", "123456", "Capitals", "2 hours ago"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestListQuizzesEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := listQuizzes(context.Background(), &out, client.New(server.URL), "", false, time.Now()); err != nil {
		t.Fatalf("listQuizzes: %v", err)
	}
	if !strings.Contains(out.String(), "no quizzes found") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestListMineRequiresLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"missing bearer token"}`))
	}))
	defer server.Close()

	err := listQuizzes(context.Background(), &bytes.Buffer{}, client.New(server.URL), "", true, time.Now())
	if err == nil || !strings.Contains(err.Error(), "log in") {
		t.Fatalf("expected login hint, got %v", err)
	}
}
