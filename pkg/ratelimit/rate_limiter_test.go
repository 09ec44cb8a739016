package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowCountsReadsRedisIntegers(t *testing.T) {
	current, remaining, err := parseWindowCounts([]interface{}{int64(7), int64(3)})
	require.NoError(t, err)
	assert.Equal(t, 7, current)
	assert.Equal(t, 3, remaining)
}

func TestParseWindowCountsAtLimit(t *testing.T) {
	// A rejected request reports one past the limit with nothing remaining.
	current, remaining, err := parseWindowCounts([]interface{}{int64(11), int64(0)})
	require.NoError(t, err)

	limit := 10
	assert.False(t, current <= limit)
	assert.Equal(t, 0, remaining)
}

func TestParseWindowCountsRejectsMalformedReplies(t *testing.T) {
	cases := []struct {
		name   string
		result interface{}
	}{
		{"not a slice", "7"},
		{"wrong length", []interface{}{int64(7)}},
		{"string elements", []interface{}{"7", "3"}},
		{"float elements", []interface{}{7.0, 3.0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseWindowCounts(tc.result)
			assert.Error(t, err)
		})
	}
}
