package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// MinPasswordLength matches the signup rule of the web client.
	MinPasswordLength = 6
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// BuildQuiz validates an authoring request and turns it into a quiz document
// owned by ownerID. The PIN is left empty; the store assigns it on insert.
func BuildQuiz(req NewQuiz, ownerID string, now time.Time) (Quiz, error) {
	verr := &ValidationError{}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		verr.add("title", "quiz title is required")
	}
	if len(req.Questions) == 0 {
		verr.add("questions", "quiz must have at least one question")
	}

	questions := make([]Question, 0, len(req.Questions))
	for i, nq := range req.Questions {
		q, ok := buildQuestion(nq, fmt.Sprintf("questions[%d]", i), verr)
		if ok {
			questions = append(questions, q)
		}
	}
	if err := verr.orNil(); err != nil {
		return Quiz{}, err
	}

	return Quiz{
		ID:          NewID(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Questions:   questions,
		CreatedBy:   ownerID,
		CreatedAt:   now.UTC(),
	}, nil
}

func buildQuestion(nq NewQuestion, field string, verr *ValidationError) (Question, bool) {
	before := len(verr.Fields)

	text := strings.TrimSpace(nq.Text)
	if text == "" {
		verr.add(field+".text", "question text is required")
	}

	limit := DefaultTimeLimit
	if nq.TimeLimit != nil {
		limit = *nq.TimeLimit
	}
	if limit < MinTimeLimit || limit > MaxTimeLimit {
		verr.add(field+".timeLimit", fmt.Sprintf("time limit must be between %d and %d seconds", MinTimeLimit, MaxTimeLimit))
	}

	points := DefaultPoints
	if nq.Points != nil {
		points = *nq.Points
	}
	if points < 0 {
		verr.add(field+".points", "points cannot be negative")
	}

	if n := len(nq.Answers); n < MinAnswers || n > MaxAnswers {
		verr.add(field+".answers", fmt.Sprintf("must have between %d and %d answers", MinAnswers, MaxAnswers))
	}

	answers := make([]Answer, 0, len(nq.Answers))
	hasCorrect := false
	for j, na := range nq.Answers {
		answerText := strings.TrimSpace(na.Text)
		if answerText == "" {
			verr.add(fmt.Sprintf("%s.answers[%d].text", field, j), "answer text is required")
		}
		hasCorrect = hasCorrect || na.IsCorrect
		answers = append(answers, Answer{ID: NewID(), Text: answerText, IsCorrect: na.IsCorrect})
	}
	if len(nq.Answers) > 0 && !hasCorrect {
		verr.add(field+".answers", "at least one answer must be marked as correct")
	}

	if len(verr.Fields) != before {
		return Question{}, false
	}
	return Question{
		ID:        NewID(),
		Text:      text,
		TimeLimit: limit,
		Points:    points,
		Answers:   answers,
	}, true
}

// Signup is the normalized signup request.
type Signup struct {
	Username string
	Email    string
	Password string
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignup normalizes and checks a signup request.
func ValidateSignup(username, email, password string) (Signup, error) {
	verr := &ValidationError{}
	s := Signup{
		Username: strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
		Password: password,
	}
	if s.Username == "" {
		verr.add("username", "username is required")
	}
	switch {
	case s.Email == "":
		verr.add("email", "email is required")
	case !emailPattern.MatchString(s.Email):
		verr.add("email", "please use a valid email address")
	}
	switch {
	case s.Password == "":
		verr.add("password", "password is required")
	case len(s.Password) < MinPasswordLength:
		verr.add("password", fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	case len(s.Password) > MaxPasswordBytes:
		verr.add("password", fmt.Sprintf("password must be at most %d bytes long", MaxPasswordBytes))
	}
	if err := verr.orNil(); err != nil {
		return Signup{}, err
	}
	return s, nil
}

// ValidateLogin checks that both fields are present and normalizes the email.
func ValidateLogin(email, password string) (string, error) {
	verr := &ValidationError{}
	email = NormalizeEmail(email)
	if email == "" {
		verr.add("email", "email is required")
	}
	if strings.TrimSpace(password) == "" {
		verr.add("password", "password is required")
	}
	return email, verr.orNil()
}
