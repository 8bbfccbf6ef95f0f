package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"globent-quiz-service/internal/client"
	"globent-quiz-service/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewQuizzesCmd lists quizzes from a running server.
func NewQuizzesCmd() *cobra.Command {
	var (
		apiURL string
		query  string
		token  string
		mine   bool
	)
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.New(apiURL).WithToken(token)
			return listQuizzes(cmd.Context(), cmd.OutOrStdout(), api, query, mine, time.Now())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURLDefault(), "quiz API base URL")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search title and description")
	cmd.Flags().StringVar(&token, "token", os.Getenv(tokenEnv), "bearer token, required with --mine")
	cmd.Flags().BoolVar(&mine, "mine", false, "only quizzes you created")
	cmd.AddCommand(newCreateQuizCmd(), newDeleteQuizCmd())
	return cmd
}

func newCreateQuizCmd() *cobra.Command {
	var apiURL, token, file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a quiz from a JSON file (admins only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return createQuiz(cmd.Context(), in, cmd.OutOrStdout(), client.New(apiURL).WithToken(token))
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURLDefault(), "quiz API base URL")
	cmd.Flags().StringVar(&token, "token", os.Getenv(tokenEnv), "bearer token")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "quiz JSON file, - for stdin")
	return cmd
}

func newDeleteQuizCmd() *cobra.Command {
	var apiURL, token string
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a quiz you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(apiURL).WithToken(token).Delete(cmd.Context(), args[0]); err != nil {
				return errors.New(client.Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURLDefault(), "quiz API base URL")
	cmd.Flags().StringVar(&token, "token", os.Getenv(tokenEnv), "bearer token")
	return cmd
}

// createQuiz posts the quiz read from in and prints its PIN. Field errors
// from the server are listed one per line.
func createQuiz(ctx context.Context, in io.Reader, out io.Writer, api *client.Client) error {
	var req domain.NewQuiz
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("read quiz: %w", err)
	}
	quiz, err := api.Create(ctx, req)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			keys := make([]string, 0, len(apiErr.Details))
			for k := range apiErr.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %s\n", k, apiErr.Details[k])
			}
		}
		return errors.New(client.Describe(err))
	}
	fmt.Fprintf(out, "created %q with PIN %s (id %s)\n", quiz.Title, quiz.PIN, quiz.ID)
	return nil
}

func listQuizzes(ctx context.Context, out io.Writer, api *client.Client, query string, mine bool, now time.Time) error {
	var (
		quizzes []domain.QuizSummary
		err     error
	)
	if mine {
		quizzes, err = api.Mine(ctx)
	} else {
		quizzes, err = api.List(ctx, query)
	}
	if err != nil {
		return errors.New(client.Describe(err))
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(out, "no quizzes found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PIN\tTITLE\tQUESTIONS\tCREATED")
	for _, q := range quizzes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.PIN, q.Title, humanize.Comma(int64(q.QuestionCount)), humanize.RelTime(q.CreatedAt, now, "ago", "from now"))
	}
	return w.Flush()
}
