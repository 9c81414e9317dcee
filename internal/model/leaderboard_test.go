package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"", PeriodAllTime},
		{"today", PeriodToday},
		{"week", PeriodWeek},
		{"month", PeriodMonth},
		{"alltime", PeriodAllTime},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePeriodUnknown(t *testing.T) {
	_, err := ParsePeriod("yearly")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScoreRecordBeats(t *testing.T) {
	prev := &ScoreRecord{Score: 300}

	assert.True(t, (&ScoreRecord{Score: 301}).Beats(prev))
	assert.False(t, (&ScoreRecord{Score: 300}).Beats(prev))
	assert.False(t, (&ScoreRecord{Score: 10}).Beats(prev))
	assert.True(t, (&ScoreRecord{Score: 0}).Beats(nil))
}

func TestIdentityDisplayName(t *testing.T) {
	assert.Equal(t, "Player", Identity{UserID: "u1"}.DisplayName())
	assert.Equal(t, "alice", Identity{UserID: "u1", Username: "alice"}.DisplayName())
}
