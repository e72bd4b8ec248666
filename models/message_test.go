package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSortKeyOrdersChronologically(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	// Fixed-width timestamps keep lexicographic order equal to time order,
	// including across second boundaries where a trimmed layout would not.
	cases := []struct {
		earlier, later time.Time
	}{
		{base, base.Add(time.Nanosecond)},
		{base.Add(900 * time.Millisecond), base.Add(time.Second + 100*time.Millisecond)},
		{base, base.Add(24 * time.Hour)},
	}
	for _, tc := range cases {
		earlier := MessageSortKey(tc.earlier, "m1")
		later := MessageSortKey(tc.later, "m2")
		assert.Less(t, earlier, later)
	}
}

func TestMessageSortKeyTieBreaksOnMessageID(t *testing.T) {
	at := time.Now()
	a := MessageSortKey(at, "aaa")
	b := MessageSortKey(at, "bbb")
	require.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
