package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/edclient/edgo/ecoledirecte"
)

// JSON prints v as indented JSON to stdout.
func JSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// GradeTable prints grades as a human-readable table.
func GradeTable(grades []ecoledirecte.Grade) {
	if len(grades) == 0 {
		fmt.Println("No grades found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tGRADE\tCOEF\tPERIOD\tDATE")
	for _, g := range grades {
		value := g.Value
		if g.OutOf != "" {
			value += "/" + g.OutOf
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", g.Subject, value, g.Coef, g.PeriodCode, g.Date)
	}
	w.Flush()
}

// HomeworkTable prints the workbook grouped by due date, soonest first.
func HomeworkTable(homework map[string][]ecoledirecte.HomeworkItem) {
	if len(homework) == 0 {
		fmt.Println("No homework found.")
		return
	}

	dates := make([]string, 0, len(homework))
	for d := range homework {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DUE\tSUBJECT\tDONE\tTEST")
	for _, d := range dates {
		for _, item := range homework[d] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d, item.Subject, mark(item.Done), mark(item.Test))
		}
	}
	w.Flush()
}

// ScheduleTable prints timetable events.
func ScheduleTable(events []ecoledirecte.ScheduleEvent) {
	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND\tSUBJECT\tTEACHER\tROOM\tCANCELLED")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Start, e.End, e.Subject, e.Teacher, e.Room, mark(e.Cancelled))
	}
	w.Flush()
}

// MessageTable prints mailbox entries.
func MessageTable(messages []ecoledirecte.Message) {
	if len(messages) == 0 {
		fmt.Println("No messages found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tFROM\tSUBJECT\tREAD")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Date, m.From.Name, m.Subject, mark(m.Read))
	}
	w.Flush()
}

// StudentList prints the learners reachable through a session.
func StudentList(students []*ecoledirecte.StudentSession) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, s := range students {
		fmt.Fprintf(w, "%d\t%s %s\n", s.ID, s.FirstName, s.LastName)
	}
	w.Flush()
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
