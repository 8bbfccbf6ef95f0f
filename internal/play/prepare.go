package play

import (
	"strings"

	"globent-quiz-service/internal/domain"
)

// Playable is a quiz reduced to the questions that can actually be played.
type Playable struct {
	QuizID      string
	PIN         string
	Title       string
	Description string
	Questions   []domain.Question
	// Dropped counts questions removed because their data was unusable.
	Dropped int
}

// Prepare filters a fetched quiz into its playable form. Questions with blank
// text, an answer count outside 2-6 after blank answers are discarded, or no
// correct answer are dropped rather than aborting the session; if nothing
// survives ErrNoPlayableQuestions is returned. Time limits are clamped to
// 5-120 seconds.
func Prepare(quiz domain.Quiz) (Playable, error) {
	p := Playable{
		QuizID:      quiz.ID,
		PIN:         quiz.PIN,
		Title:       quiz.Title,
		Description: quiz.Description,
	}
	for _, q := range quiz.Questions {
		if strings.TrimSpace(q.Text) == "" {
			p.Dropped++
			continue
		}
		answers := make([]domain.Answer, 0, len(q.Answers))
		for _, a := range q.Answers {
			if strings.TrimSpace(a.Text) == "" || a.ID == "" {
				continue
			}
			answers = append(answers, a)
		}
		if len(answers) < domain.MinAnswers || len(answers) > domain.MaxAnswers {
			p.Dropped++
			continue
		}
		q.Answers = answers
		if _, ok := q.CorrectAnswer(); !ok {
			p.Dropped++
			continue
		}
		switch {
		case q.TimeLimit <= 0:
			q.TimeLimit = domain.DefaultTimeLimit
		case q.TimeLimit < domain.MinTimeLimit:
			q.TimeLimit = domain.MinTimeLimit
		case q.TimeLimit > domain.MaxTimeLimit:
			q.TimeLimit = domain.MaxTimeLimit
		}
		if q.Points < 0 {
			q.Points = domain.DefaultPoints
		}
		p.Questions = append(p.Questions, q)
	}
	if len(p.Questions) == 0 {
		return Playable{}, ErrNoPlayableQuestions
	}
	return p, nil
}
