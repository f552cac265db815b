// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package standups

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/ctxutil"
	"github.com/taibuivan/standup/internal/platform/validate"
)

// # Client Messages

const (
	MsgFutureDate     = "Cannot create standups for future dates"
	MsgDuplicateToday = "You have already created a standup today"
)

// MsgDuplicateDate formats the conflict message for an explicitly dated note.
func MsgDuplicateDate(day Day) string {
	return fmt.Sprintf("A standup for %s already exists", day)
}

// Service implements the standup use cases.
type Service struct {
	repository Repository
	clock      func() time.Time
}

// NewService constructs a new standups [Service]. clock decides what "today" is.
func NewService(repository Repository, clock func() time.Time) *Service {
	return &Service{repository: repository, clock: clock}
}

// today is the current calendar day in UTC.
func (service *Service) today() Day {
	return DayOf(service.clock().UTC())
}

// # Writing

// CreateInput holds a new note. A zero Date means today.
type CreateInput struct {
	Content string
	Date    Day
}

/*
Create records the user's note for a day.

Description: The day defaults to today and may not lie in the future. A user
has at most one note per day.

Parameters:
  - context: context.Context
  - userID: int64 (author)
  - input: CreateInput

Returns:
  - *Standup: The stored note
  - error: Validation, BadRequest (future date), Conflict (duplicate) or storage errors
*/
func (service *Service) Create(context context.Context, userID int64, input CreateInput) (*Standup, error) {

	// ── 1. Validate ──
	v := &validate.Validator{}
	v.Required(FieldContent, input.Content)
	v.MaxLen(FieldContent, input.Content, MaxContentLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// ── 2. Resolve the day ──
	today := service.today()
	explicit := !input.Date.IsZero()
	day := today
	if explicit {
		day = input.Date
	}

	if day.After(today) {
		return nil, apperr.BadRequest(MsgFutureDate)
	}

	duplicate := func(cause error) error {
		message := MsgDuplicateToday
		if explicit {
			message = MsgDuplicateDate(day)
		}
		return apperr.Conflict(message).WithCause(cause)
	}

	// ── 3. One note per day ──
	exists, err := service.repository.ExistsOn(context, userID, day)
	if err != nil {
		return nil, fmt.Errorf("standups_service_exists_failed: %w", err)
	}
	if exists {
		return nil, duplicate(nil)
	}

	// ── 4. Persist ──
	standup := &Standup{UserID: userID, Content: input.Content, Date: day}
	if err := service.repository.Create(context, standup); err != nil {
		// A concurrent insert for the same day lost the race at the constraint.
		if apperr.HasCode(err, "CONFLICT") {
			return nil, duplicate(err)
		}
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "standup_created",
		slog.Int64("user_id", userID),
		slog.Int64("standup_id", standup.ID),
		slog.String("date", day.String()),
	)

	return standup, nil
}

// # Reading

// ByDate returns the user's notes for one day.
func (service *Service) ByDate(context context.Context, userID int64, day Day) ([]*Standup, error) {
	return service.repository.ListOn(context, userID, day)
}

/*
SinceDays returns the user's notes dated from today minus days up to today,
oldest first.

Returns:
  - error: Validation when days is outside [0, MaxLookbackDays]
*/
func (service *Service) SinceDays(context context.Context, userID int64, days int) ([]*Standup, error) {
	v := &validate.Validator{}
	v.Range(FieldDays, days, 0, MaxLookbackDays)
	if err := v.Err(); err != nil {
		return nil, err
	}

	return service.repository.ListSince(context, userID, service.today().AddDays(-days))
}

// RenderPlain formats notes as "- content" lines for terminal output.
func RenderPlain(standups []*Standup) string {
	lines := make([]string, 0, len(standups))
	for _, standup := range standups {
		lines = append(lines, "- "+standup.Content)
	}
	return strings.Join(lines, "\n")
}
