// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package standups implements the daily standup notes of the Standup API.

Each user writes at most one note per calendar day and only ever reads their
own notes.

# Architecture

  - Entity: [Standup] and the calendar [Day] it belongs to.
  - Repository: [Repository], implemented by [PostgresRepository].
  - Service / Handler: date rules and the HTTP delivery layer.
*/
package standups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and URL format of a [Day].
const DateLayout = "2006-01-02"

// # Domain Entities

// Standup is a single daily note.
type Standup struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
	Date    Day    `json:"date"`
}

// # Calendar Day

// Day is a calendar date without a time of day, anchored at midnight UTC.
type Day struct {
	midnight time.Time
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	year, month, day := t.Date()
	return Day{midnight: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(raw string) (Day, error) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Day{}, fmt.Errorf("standups: invalid date %q: %w", raw, err)
	}
	return Day{midnight: parsed}, nil
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time { return d.midnight }

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool { return d.midnight.IsZero() }

// After reports whether d is later than other.
func (d Day) After(other Day) bool { return d.midnight.After(other.midnight) }

// AddDays moves the day by n calendar days.
func (d Day) AddDays(n int) Day { return Day{midnight: d.midnight.AddDate(0, 0, n)} }

func (d Day) String() string { return d.midnight.Format(DateLayout) }

// MarshalJSON encodes the day as "YYYY-MM-DD".
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string. null leaves the day unset.
func (d *Day) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseDay(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// # Field Identifiers

const (
	FieldContent = "content"
	FieldDate    = "date"
	FieldDays    = "days"
)

// # Limits

const (
	// MaxContentLength bounds a single note, in characters.
	MaxContentLength = 10000

	// MaxLookbackDays bounds the by-days listing.
	MaxLookbackDays = 3650
)
