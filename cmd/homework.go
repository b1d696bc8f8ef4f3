package cmd

import (
	"fmt"

	"github.com/edclient/edgo/internal/output"
	"github.com/spf13/cobra"
)

var homeworkCmd = &cobra.Command{
	Use:   "homework",
	Short: "Show the workbook",
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

		homework, err := student.Homework(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching homework: %w", err)
		}

		if flagJSON {
			output.JSON(homework)
			return nil
		}
		output.HomeworkTable(homework)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(homeworkCmd)
}
