package ecoledirecte

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// GradeOptions narrows a grades fetch. Period is the portal's period id
// ("A001" for the first term); empty means every period.
type GradeOptions struct {
	Period string
}

// Grades fetches the learner's grades, optionally filtered to one period.
func (s *StudentSession) Grades(ctx context.Context, opts *GradeOptions) ([]Grade, error) {
	path := fmt.Sprintf("/eleves/%d/notes.awp", s.ID)
	data, err := s.client.Request(ctx, path, url.Values{"verbe": {"get"}}, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Notes []Grade `json:"notes"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding grades payload", Err: err}
	}

	if opts == nil || opts.Period == "" {
		return payload.Notes, nil
	}
	filtered := make([]Grade, 0, len(payload.Notes))
	for _, g := range payload.Notes {
		if g.PeriodCode == opts.Period {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

// GradePeriods fetches the per-period summaries the server returns alongside
// the grades. Match GradePeriod.Code against Grade.PeriodCode (or
// GradeOptions.Period) to pair a period with its grades.
func (s *StudentSession) GradePeriods(ctx context.Context) ([]GradePeriod, error) {
	path := fmt.Sprintf("/eleves/%d/notes.awp", s.ID)
	data, err := s.client.Request(ctx, path, url.Values{"verbe": {"get"}}, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Periodes []GradePeriod `json:"periodes"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding grades payload", Err: err}
	}
	return payload.Periodes, nil
}

// Homework fetches the workbook, keyed by due date ("2006-01-02").
func (s *StudentSession) Homework(ctx context.Context) (map[string][]HomeworkItem, error) {
	path := fmt.Sprintf("/Eleves/%d/cahierdetexte.awp", s.ID)
	data, err := s.client.Request(ctx, path, url.Values{"verbe": {"get"}}, nil)
	if err != nil {
		return nil, err
	}

	items := make(map[string][]HomeworkItem)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding homework payload", Err: err}
	}
	return items, nil
}

// Schedule fetches timetable events over [from, to], inclusive.
func (s *StudentSession) Schedule(ctx context.Context, from, to time.Time) ([]ScheduleEvent, error) {
	path := fmt.Sprintf("/E/%d/emploidutemps.awp", s.ID)
	args := map[string]any{
		"dateDebut": from.Format("2006-01-02"),
		"dateFin":   to.Format("2006-01-02"),
	}
	data, err := s.client.Request(ctx, path, url.Values{"verbe": {"get"}}, args)
	if err != nil {
		return nil, err
	}

	var events []ScheduleEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding schedule payload", Err: err}
	}
	return events, nil
}

// MessageOptions controls mailbox pagination and filtering.
type MessageOptions struct {
	// Sent selects the sent box instead of the received one.
	Sent bool
	// UnreadOnly keeps only unread received messages.
	UnreadOnly bool
	// Page is zero-based; PerPage defaults to 20.
	Page    int
	PerPage int
}

// Messages fetches one mailbox page, newest first.
func (s *StudentSession) Messages(ctx context.Context, opts *MessageOptions) ([]Message, error) {
	if opts == nil {
		opts = &MessageOptions{}
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	box := "received"
	if opts.Sent {
		box = "sent"
	}
	onlyRead := ""
	if opts.UnreadOnly {
		onlyRead = "0"
	}

	params := url.Values{
		"verbe":            {"getall"},
		"typeRecuperation": {box},
		"orderBy":          {"date"},
		"order":            {"desc"},
		"page":             {strconv.Itoa(opts.Page)},
		"itemsPerPage":     {strconv.Itoa(perPage)},
		"onlyRead":         {onlyRead},
		"query":            {""},
		"idClasseur":       {"0"},
	}

	path := fmt.Sprintf("/eleves/%d/messages.awp", s.ID)
	data, err := s.client.Request(ctx, path, params, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Messages struct {
			Received []Message `json:"received"`
			Sent     []Message `json:"sent"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding messages payload", Err: err}
	}
	if opts.Sent {
		return payload.Messages.Sent, nil
	}
	return payload.Messages.Received, nil
}
