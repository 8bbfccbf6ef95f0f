package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"globent-quiz-service/internal/domain"
)

// Credentials is returned by Login and Signup.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Client talks to the quiz REST API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &creds)
	return creds, err
}

func (c *Client) Signup(ctx context.Context, username, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username, "email": email, "password": password,
	}, &creds)
	return creds, err
}

// QuizByPIN normalizes raw and rejects a malformed PIN without a round trip.
func (c *Client) QuizByPIN(ctx context.Context, raw string) (domain.Quiz, error) {
	pin, err := domain.ParsePIN(raw)
	if err != nil {
		return domain.Quiz{}, &RequestError{Err: err}
	}
	var quiz domain.Quiz
	err = c.do(ctx, http.MethodGet, "/api/quiz/pin/"+pin, nil, &quiz)
	return quiz, err
}

func (c *Client) Quiz(ctx context.Context, id string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.do(ctx, http.MethodGet, "/api/quiz/"+url.PathEscape(id), nil, &quiz)
	return quiz, err
}

func (c *Client) HostQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.do(ctx, http.MethodGet, "/api/quiz/host/"+url.PathEscape(id), nil, &quiz)
	return quiz, err
}

func (c *Client) List(ctx context.Context, query string) ([]domain.QuizSummary, error) {
	path := "/api/quiz/all"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []domain.QuizSummary
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Mine(ctx context.Context) ([]domain.QuizSummary, error) {
	var out []domain.QuizSummary
	err := c.do(ctx, http.MethodGet, "/api/quiz/my-quizzes", nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, req domain.NewQuiz) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.do(ctx, http.MethodPost, "/api/quiz/create", req, &quiz)
	return quiz, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/quiz/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error   string            `json:"error"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		msg := payload.Error
		if msg == "" {
			msg = payload.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Details: payload.Details}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Status: resp.StatusCode, Err: err}
	}
	return nil
}
