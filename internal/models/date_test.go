package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "iso date", in: "2025-01-01"},
		{name: "day first", in: "01-01-2025", wantErr: true},
		{name: "slashes", in: "2025/01/01", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "impossible day", in: "2025-02-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDate_AddDaysAndJSON(t *testing.T) {
	start := mustDate(t, "2025-01-01")
	end := start.AddDays(14)
	assert.Equal(t, "2025-01-15", end.String())
	assert.Equal(t, 14, start.DaysUntil(end))

	raw, err := json.Marshal(struct {
		End Date `json:"end"`
	}{End: end})
	require.NoError(t, err)
	assert.JSONEq(t, `{"end":"2025-01-15"}`, string(raw))

	var back struct {
		End Date `json:"end"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.End.Equal(end.Time))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-04", d.String())

	require.NoError(t, d.Scan("2025-03-05"))
	assert.Equal(t, "2025-03-05", d.String())

	assert.Error(t, d.Scan(42))
}

func TestLaterOf(t *testing.T) {
	a := mustDate(t, "2025-01-01")
	b := mustDate(t, "2025-01-31")
	assert.Equal(t, b, LaterOf(a, b))
	assert.Equal(t, b, LaterOf(b, a))
	assert.Equal(t, a, LaterOf(a, a))
}

func TestNewPlanResponse(t *testing.T) {
	plan := Plan{ID: 1, Name: "P1", DurationDays: 14}
	start := mustDate(t, "2025-01-01")

	t.Run("active plan", func(t *testing.T) {
		resp := NewPlanResponse(plan, start, mustDate(t, "2025-01-10"))
		assert.Equal(t, "2025-01-15", resp.EndDate.String())
		assert.False(t, resp.Expired)
		assert.Equal(t, 5, resp.DaysLeft)
	})

	t.Run("ends today is not expired", func(t *testing.T) {
		resp := NewPlanResponse(plan, start, mustDate(t, "2025-01-15"))
		assert.False(t, resp.Expired)
		assert.Equal(t, 0, resp.DaysLeft)
	})

	t.Run("expired plan", func(t *testing.T) {
		resp := NewPlanResponse(plan, start, mustDate(t, "2025-02-01"))
		assert.True(t, resp.Expired)
		assert.Equal(t, 0, resp.DaysLeft)
	})
}

func TestMember_IsMember(t *testing.T) {
	assert.True(t, Member{Role: "ROLE_MEMBER"}.IsMember())
	assert.True(t, Member{Role: "role_member"}.IsMember())
	assert.True(t, Member{Role: "MEMBER"}.IsMember())
	assert.False(t, Member{Role: "ROLE_TRAINER"}.IsMember())
	assert.False(t, Member{}.IsMember())
}
