package cmd

import (
	"fmt"

	"github.com/edclient/edgo/internal/config"
	"github.com/edclient/edgo/internal/output"
	"github.com/spf13/cobra"
)

var flagUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the portal",
	Long: `Authenticate and list the learners reachable through the account.

  edgo login --username jdupont
  EDGO_USERNAME=jdupont EDGO_PASSWORD=... edgo login

The first login on a new device usually triggers a verification question;
the accepted answer and the resulting device tokens are cached so later
logins are silent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, session, err := authenticate(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		username := flagUsername
		if username == "" {
			username = env.Username
		}
		if username != "" && username != cfg.Username {
			cfg.Username = username
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
		}

		if expiry, ok := client.TokenExpiry(); ok {
			fmt.Printf("Logged in; session valid until %s\n", expiry.Local().Format("15:04"))
		} else {
			fmt.Println("Logged in.")
		}
		if flagJSON {
			output.JSON(session.Students())
			return nil
		}
		output.StudentList(session.Students())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Portal username")
	rootCmd.AddCommand(loginCmd)
}
