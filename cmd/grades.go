package cmd

import (
	"fmt"

	"github.com/edclient/edgo/ecoledirecte"
	"github.com/edclient/edgo/internal/output"
	"github.com/spf13/cobra"
)

var flagPeriod string

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Show grades",
	Long: `Show the learner's grades, newest server order.

  edgo grades
  edgo grades --period A001      First term only
  edgo grades --student 101      Pick a learner on a family account`,
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

		var opts *ecoledirecte.GradeOptions
		if flagPeriod != "" {
			opts = &ecoledirecte.GradeOptions{Period: flagPeriod}
		}
		grades, err := student.Grades(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("fetching grades: %w", err)
		}

		if flagJSON {
			output.JSON(grades)
			return nil
		}
		output.GradeTable(grades)
		return nil
	},
}

func init() {
	gradesCmd.Flags().StringVar(&flagPeriod, "period", "", "Period id (A001, A002, ...)")
	rootCmd.AddCommand(gradesCmd)
}
