package cmd

import (
	"fmt"

	"github.com/edclient/edgo/ecoledirecte"
	"github.com/edclient/edgo/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagSent    bool
	flagUnread  bool
	flagPage    int
	flagPerPage int
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Show mailbox messages",
	Long: `Show mailbox messages, newest first.

  edgo messages
  edgo messages --unread
  edgo messages --sent --page 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, session, err := authenticate(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		student, err := selectStudent(session)
		if err != nil {
			return err
		}

		messages, err := student.Messages(cmd.Context(), &ecoledirecte.MessageOptions{
			Sent:       flagSent,
			UnreadOnly: flagUnread,
			Page:       flagPage,
			PerPage:    flagPerPage,
		})
		if err != nil {
			return fmt.Errorf("fetching messages: %w", err)
		}

		if flagJSON {
			output.JSON(messages)
			return nil
		}
		output.MessageTable(messages)
		return nil
	},
}

func init() {
	messagesCmd.Flags().BoolVar(&flagSent, "sent", false, "Show the sent box instead")
	messagesCmd.Flags().BoolVar(&flagUnread, "unread", false, "Unread messages only")
	messagesCmd.Flags().IntVar(&flagPage, "page", 0, "Page number (zero-based)")
	messagesCmd.Flags().IntVar(&flagPerPage, "per-page", 20, "Messages per page")
	rootCmd.AddCommand(messagesCmd)
}
