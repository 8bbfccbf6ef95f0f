package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"globent-quiz-service/internal/client"
	"globent-quiz-service/internal/domain"
	"globent-quiz-service/internal/play"
	"github.com/spf13/cobra"
)

// NewPlayCmd plays a quiz in the terminal. The session runs locally; the
// server is only asked for the quiz. With --host the owner steps through the
// questions without answering.
func NewPlayCmd() *cobra.Command {
	var (
		apiURL      string
		quizID      string
		name        string
		token       string
		host        bool
		revealDelay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "play [PIN]",
		Short: "Play a quiz in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin := ""
			if len(args) == 1 {
				pin = args[0]
			}
			api := client.New(apiURL).WithToken(token)
			quiz, err := fetchQuiz(cmd.Context(), api, pin, quizID, host)
			if err != nil {
				return err
			}
			opts := play.Options{RevealDelay: revealDelay, PlayerName: name}
			if host {
				opts.Mode = play.ModeHost
			}
			_, err = runPlay(cmd.Context(), os.Stdin, cmd.OutOrStdout(), quiz, opts)
			return err
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURLDefault(), "quiz API base URL")
	cmd.Flags().StringVar(&quizID, "quiz-id", "", "play by quiz id instead of PIN")
	cmd.Flags().StringVar(&name, "name", "", "player name")
	cmd.Flags().StringVar(&token, "token", os.Getenv(tokenEnv), "bearer token, required with --host")
	cmd.Flags().BoolVar(&host, "host", false, "host a quiz you own (requires --quiz-id)")
	cmd.Flags().DurationVar(&revealDelay, "reveal-delay", play.DefaultRevealDelay, "how long answers are shown; 0 waits for 'n'")
	return cmd
}

// fetchQuiz resolves the quiz to play. Hosting goes through the owner-only
// endpoint and therefore needs the quiz id.
func fetchQuiz(ctx context.Context, api *client.Client, pin, quizID string, host bool) (domain.Quiz, error) {
	var (
		quiz domain.Quiz
		err  error
	)
	switch {
	case host && quizID == "":
		return domain.Quiz{}, errors.New("--host requires --quiz-id")
	case host:
		quiz, err = api.HostQuiz(ctx, quizID)
	case pin != "":
		quiz, err = api.QuizByPIN(ctx, pin)
	case quizID != "":
		quiz, err = api.Quiz(ctx, quizID)
	default:
		return domain.Quiz{}, errors.New("a PIN argument or --quiz-id is required")
	}
	if err != nil {
		return domain.Quiz{}, errors.New(client.Describe(err))
	}
	return quiz, nil
}

// runPlay drives a session from line input: a number picks an answer, "n"
// moves on from a reveal, "q" quits. It returns the final score.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, quiz domain.Quiz, opts play.Options) (int, error) {
	playable, err := play.Prepare(quiz)
	if err != nil {
		return 0, err
	}
	session := play.NewSession(playable, opts)
	defer session.Close()

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()

	fmt.Fprintf(out, "%s (%d questions)\n", playable.Title, len(playable.Questions))
	if err := session.Start(); err != nil {
		return 0, err
	}

	r := renderer{out: out}
	updates := session.Updates()
	for {
		select {
		case <-ctx.Done():
			return session.Score(), ctx.Err()

		case snap, ok := <-updates:
			if !ok {
				return session.Score(), nil
			}
			r.render(snap)
			if snap.Phase == play.PhaseFinal {
				return snap.Score, nil
			}

		case line, ok := <-lines:
			if !ok {
				if snap := session.Snapshot(); snap.Phase == play.PhaseFinal {
					r.render(snap)
					return snap.Score, nil
				}
				return session.Score(), io.ErrUnexpectedEOF
			}
			if line == "q" {
				return session.Score(), nil
			}
			if err := handleInput(session, line); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
}

func handleInput(session *play.Session, line string) error {
	switch line {
	case "":
		return nil
	case "n", "next":
		return session.Next()
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return errors.New("type an answer number, n or q")
	}
	snap := session.Snapshot()
	if snap.Question == nil || n < 1 || n > len(snap.Question.Answers) {
		return fmt.Errorf("no answer %d", n)
	}
	_, err = session.Select(snap.Question.Answers[n-1].ID)
	return err
}

// renderer prints each phase once; countdown ticks only print every 5s.
type renderer struct {
	out       io.Writer
	lastPhase play.Phase
	lastIndex int
}

func (r *renderer) render(s play.Snapshot) {
	changed := s.Phase != r.lastPhase || s.QuestionIndex != r.lastIndex
	r.lastPhase, r.lastIndex = s.Phase, s.QuestionIndex

	switch s.Phase {
	case play.PhaseActive:
		if !changed {
			if s.TimeRemaining > 0 && s.TimeRemaining%5 == 0 {
				fmt.Fprintf(r.out, "  %ds left\n", s.TimeRemaining)
			}
			return
		}
		fmt.Fprintf(r.out, "\nQuestion %d/%d (%ds, %d pts): %s\n",
			s.QuestionIndex+1, s.QuestionCount, s.TimeRemaining, s.Question.Points, s.Question.Text)
		for i, a := range s.Question.Answers {
			fmt.Fprintf(r.out, "  %d) %s\n", i+1, a.Text)
		}
	case play.PhaseReveal:
		if !changed || s.Result == nil {
			return
		}
		switch {
		case s.Result.TimedOut:
			fmt.Fprintf(r.out, "Time's up! The answer was %q.\n", s.CorrectAnswer)
		case s.Result.Correct:
			fmt.Fprintf(r.out, "Correct! +%d points\n", s.Result.Awarded)
		case s.Result.SelectedAnswerID == "":
			fmt.Fprintf(r.out, "Skipped. The answer was %q.\n", s.CorrectAnswer)
		default:
			fmt.Fprintf(r.out, "Wrong. The answer was %q.\n", s.CorrectAnswer)
		}
		fmt.Fprintf(r.out, "Score: %d\n", s.Score)
	case play.PhaseFinal:
		correct := 0
		for _, res := range s.Results {
			if res.Correct {
				correct++
			}
		}
		fmt.Fprintf(r.out, "\nFinal score: %d (%d/%d correct)\n", s.Score, correct, len(s.Results))
	}
}
