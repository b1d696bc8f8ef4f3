package cmd

import (
	"fmt"
	"time"

	"github.com/edclient/edgo/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagFrom string
	flagTo   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the timetable",
	Long: `Show timetable events, the current school week by default.

  edgo schedule
  edgo schedule --from 2024-01-15 --to 2024-01-19`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := dateRange()
		if err != nil {
			return err
		}

		client, session, err := authenticate(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		student, err := selectStudent(session)
		if err != nil {
			return err
		}

		events, err := student.Schedule(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("fetching schedule: %w", err)
		}

		if flagJSON {
			output.JSON(events)
			return nil
		}
		output.ScheduleTable(events)
		return nil
	},
}

// dateRange defaults to Monday through Friday of the current week.
func dateRange() (time.Time, time.Time, error) {
	if flagFrom == "" && flagTo == "" {
		now := time.Now()
		offset := (int(now.Weekday()) + 6) % 7 // Monday = 0
		monday := now.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 4), nil
	}
	from, err := time.Parse("2006-01-02", flagFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing --from: %w", err)
	}
	to, err := time.Parse("2006-01-02", flagTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing --to: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return from, to, nil
}

func init() {
	scheduleCmd.Flags().StringVar(&flagFrom, "from", "", "Range start (YYYY-MM-DD)")
	scheduleCmd.Flags().StringVar(&flagTo, "to", "", "Range end (YYYY-MM-DD)")
	rootCmd.AddCommand(scheduleCmd)
}
