package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"globent-quiz-service/internal/app"
	"globent-quiz-service/internal/auth"
	"globent-quiz-service/internal/domain"
	"globent-quiz-service/internal/infra/memory"
)

const adminEmail = "admin@example.com"

type testEnv struct {
	server   *httptest.Server
	store    *memory.QuizStore
	registry *memory.PlayRegistry
	accounts *app.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRegistry(t, memory.NewPlayRegistry(), nil)
}

// newTestEnvWithRegistry serves play sessions through reg, which must track
// sessions in local; a nil reg uses local directly.
func newTestEnvWithRegistry(t *testing.T, local *memory.PlayRegistry, reg PlayRegistry) *testEnv {
	t.Helper()
	if reg == nil {
		reg = local
	}
	users := memory.NewUserStore()
	quizzes := memory.NewQuizStore()
	cache := memory.NewQuizCache(memory.QuizLoaderFunc(quizzes.ByPIN), time.Minute)
	tokens := auth.NewTokens("test-secret", time.Hour)
	gate := auth.NewGate(tokens, users, []string{adminEmail})
	registry := local

	quizService := app.NewQuizService(quizzes, cache, gate, nil)
	accounts := app.NewAuthService(users, tokens, nil)
	ws := NewWSHandler(quizService, gate, reg, 0, nil)

	server := httptest.NewServer(NewRouter(Deps{
		Quizzes:  quizService,
		Accounts: accounts,
		Auth:     gate,
		Play:     ws,
	}))
	t.Cleanup(func() {
		registry.CloseAll()
		server.Close()
	})
	return &testEnv{server: server, store: quizzes, registry: registry, accounts: accounts}
}

// signup registers a user and returns its bearer token.
func (e *testEnv) signup(t *testing.T, username, email string) string {
	t.Helper()
	creds, err := e.accounts.Signup(context.Background(), username, email, "secret1")
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return creds.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) createQuiz(t *testing.T, token string) domain.Quiz {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/quiz/create", token, quizRequest())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quiz: status %d", resp.StatusCode)
	}
	var quiz domain.Quiz
	decode(t, resp, &quiz)
	return quiz
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func quizRequest() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Arithmetic",
		"description": "Warm-up",
		"questions": []map[string]interface{}{
			{
				"text":      "What is 2 + 2?",
				"timeLimit": 20,
				"answers": []map[string]interface{}{
					{"text": "3", "isCorrect": false},
					{"text": "4", "isCorrect": true},
				},
			},
			{
				"text": "What is 3 + 3?",
				"answers": []map[string]interface{}{
					{"text": "6", "isCorrect": true},
					{"text": "9", "isCorrect": false},
				},
			},
		},
	}
}
