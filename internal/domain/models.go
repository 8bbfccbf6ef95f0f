package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeLimit is applied when a question omits its time limit.
	DefaultTimeLimit = 30
	// DefaultPoints is applied when a question omits its base points.
	DefaultPoints = 100

	MinTimeLimit = 5
	MaxTimeLimit = 120
	MinAnswers   = 2
	MaxAnswers   = 6
)

// Answer is one selectable option of a question.
type Answer struct {
	ID        string `json:"id" bson:"id"`
	Text      string `json:"text" bson:"text"`
	IsCorrect bool   `json:"isCorrect" bson:"isCorrect"`
}

// Question models an MCQ question with at least one correct answer.
type Question struct {
	ID        string   `json:"id" bson:"id"`
	Text      string   `json:"text" bson:"text"`
	TimeLimit int      `json:"timeLimit" bson:"timeLimit"` // seconds
	Points    int      `json:"points" bson:"points"`
	Answers   []Answer `json:"answers" bson:"answers"`
}

// CorrectAnswer returns the first answer flagged correct.
func (q Question) CorrectAnswer() (Answer, bool) {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a, true
		}
	}
	return Answer{}, false
}

// FindAnswer looks up an answer by id.
func (q Question) FindAnswer(id string) (Answer, bool) {
	for _, a := range q.Answers {
		if a.ID == id {
			return a, true
		}
	}
	return Answer{}, false
}

// Quiz is the stored document: metadata plus embedded questions.
type Quiz struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	PIN         string     `json:"pin" bson:"pin"`
	Questions   []Question `json:"questions" bson:"questions"`
	CreatedBy   string     `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
}

// Summary projects the quiz down to its discovery fields.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		PIN:           q.PIN,
		CreatedAt:     q.CreatedAt,
		QuestionCount: len(q.Questions),
	}
}

// QuizSummary is the listing view returned by discovery endpoints.
type QuizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PIN           string    `json:"pin"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
}

// User is a registered account. Admin status is never stored here.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// NewAnswer is an answer as submitted by the authoring form.
type NewAnswer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// NewQuestion is a question as submitted by the authoring form. Nil limits
// fall back to DefaultTimeLimit and DefaultPoints.
type NewQuestion struct {
	Text      string      `json:"text"`
	TimeLimit *int        `json:"timeLimit,omitempty"`
	Points    *int        `json:"points,omitempty"`
	Answers   []NewAnswer `json:"answers"`
}

// NewQuiz is the create-quiz request body.
type NewQuiz struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Questions   []NewQuestion `json:"questions"`
}

// NewID returns a fresh identifier for quizzes, questions, answers and users.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
