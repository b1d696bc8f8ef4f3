package cmd

import (
	"fmt"
	"os"

	"github.com/edclient/edgo/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagVerbose bool
	flagBaseURL string
	flagStudent int

	cfg *config.Config
	env *config.Env
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edgo",
	Short: "Your school portal from the terminal",
	Long: `edgo logs into the EcoleDirecte portal and shows a learner's grades,
homework, schedule, and messages.

Credentials come from EDGO_USERNAME / EDGO_PASSWORD (or the --username
flag plus a prompt). After the first MFA verification the device tokens
are cached, so later logins skip the challenge.

Get started:
  edgo login                  Authenticate and list reachable learners
  edgo grades                 Show grades
  edgo schedule               Show this week's timetable`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		env, err = config.FromEnv()
		if err != nil {
			return fmt.Errorf("reading environment: %w", err)
		}

		level := zerolog.WarnLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every API call")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "server", "", "Override the API base URL")
	rootCmd.PersistentFlags().IntVar(&flagStudent, "student", 0, "Learner id to act on (family accounts)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// baseURL resolves the API root in flag > env > config order, empty meaning
// the SDK default.
func baseURL() string {
	switch {
	case flagBaseURL != "":
		return flagBaseURL
	case env.BaseURL != "":
		return env.BaseURL
	default:
		return cfg.BaseURL
	}
}
