package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// tokenEnv holds the bearer token printed by login and signup.
const tokenEnv = "QUIZ_TOKEN"

var (
	port       string
	configPath string
)

// Execute runs the CLI. A .env file in the working directory, when present,
// is loaded before flags read their environment defaults.
func Execute() error {
	_ = godotenv.Load()
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz-service",
		Short:        "PIN based quiz service with live play over WebSocket",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (default server.port, then 8080)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewQuizzesCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewSignupCmd())
	return cmd
}

func apiURLDefault() string {
	if v := os.Getenv("QUIZ_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}
