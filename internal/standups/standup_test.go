// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package standups_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/standup/internal/standups"
)

/*
TestDay_Parse accepts only YYYY-MM-DD.
*/
func TestDay_Parse(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"2026-03-01", false},
		{"2024-02-29", false},
		{"2026-02-29", true},
		{"2026-3-1", true},
		{"01-03-2026", true},
		{"", true},
		{"2026-03-01T00:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			day, err := standups.ParseDay(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, day.String())
		})
	}
}

/*
TestDay_Arithmetic drops the time of day and crosses month boundaries.
*/
func TestDay_Arithmetic(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	day := standups.DayOf(time.Date(2026, 3, 1, 23, 59, 0, 0, tokyo))

	assert.Equal(t, "2026-03-01", day.String())
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), day.Time())
	assert.Equal(t, "2026-02-27", day.AddDays(-2).String())
	assert.True(t, day.AddDays(1).After(day))
	assert.False(t, day.After(day))
	assert.True(t, standups.Day{}.IsZero())
}

/*
TestDay_JSON encodes dates without a time component.
*/
func TestDay_JSON(t *testing.T) {
	day, err := standups.ParseDay("2026-03-01")
	require.NoError(t, err)

	encoded, err := json.Marshal(standups.Standup{ID: 1, UserID: 7, Content: "wrote tests", Date: day})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"user_id":7,"content":"wrote tests","date":"2026-03-01"}`, string(encoded))

	var decoded standups.Standup
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, day, decoded.Date)

	var empty standups.Standup
	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &empty))
	assert.True(t, empty.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &empty))
}

/*
TestRenderPlain prefixes every note with a dash.
*/
func TestRenderPlain(t *testing.T) {
	assert.Equal(t, "", standups.RenderPlain(nil))
	assert.Equal(t, "- first\n- second", standups.RenderPlain([]*standups.Standup{
		{Content: "first"},
		{Content: "second"},
	}))
}
