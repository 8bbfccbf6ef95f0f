package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"globent-quiz-service/internal/client"
	"github.com/spf13/cobra"
)

// NewLoginCmd exchanges credentials for a bearer token.
func NewLoginCmd() *cobra.Command {
	var apiURL, email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token for QUIZ_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			creds, err := client.New(apiURL).Login(cmd.Context(), email, password)
			return printCredentials(cmd.OutOrStdout(), creds, err)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURLDefault(), "quiz API base URL")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

// NewSignupCmd creates an account and prints its token.
func NewSignupCmd() *cobra.Command {
	var apiURL, username, email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and print a token for QUIZ_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			creds, err := client.New(apiURL).Signup(cmd.Context(), username, email, password)
			return printCredentials(cmd.OutOrStdout(), creds, err)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURLDefault(), "quiz API base URL")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

// readPassword takes QUIZ_PASSWORD when set, otherwise the first line of in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if v := os.Getenv("QUIZ_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Fprint(prompt, "password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printCredentials(out io.Writer, creds client.Credentials, err error) error {
	if err != nil {
		return errors.New(client.Describe(err))
	}
	fmt.Fprintf(out, "logged in as %s <%s>\n", creds.Username, creds.Email)
	fmt.Fprintf(out, "export %s=%s\n", tokenEnv, creds.Token)
	return nil
}
