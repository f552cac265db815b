// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "strings"

// StandupsTable represents the 'standups' table
type StandupsTable struct {
	Table   string
	ID      string
	UserID  string
	Content string
	Date    string

	// UniqueUserDate is the constraint guarding one standup per user per day.
	UniqueUserDate string
}

// Standups is the schema definition for standups
var Standups = StandupsTable{
	Table:          "standups",
	ID:             "id",
	UserID:         "user_id",
	Content:        "content",
	Date:           "date",
	UniqueUserDate: "standups_user_id_date_key",
}

// Columns returns all standard column names
func (t StandupsTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Content, t.Date}
}

// SelectList joins [StandupsTable.Columns] for use in a SELECT or RETURNING clause.
func (t StandupsTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
