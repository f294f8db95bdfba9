package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"uploaded", "analyzing", "analyzed", "enhanced"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		require.Equal(t, Status(s), got)
	}

	_, err := ParseStatus("UNKNOWN")
	require.Error(t, err)

	_, err = ParseStatus("")
	require.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusUploaded, StatusAnalyzing, true},
		{StatusAnalyzing, StatusAnalyzed, true},
		{StatusAnalyzing, StatusUploaded, true}, // rollback after a failed persist
		{StatusAnalyzed, StatusAnalyzing, true}, // re-analyze
		{StatusEnhanced, StatusAnalyzing, true}, // enhanced records can be re-analyzed

		// enhancement is reachable from every state
		{StatusUploaded, StatusEnhanced, true},
		{StatusAnalyzing, StatusEnhanced, true},
		{StatusAnalyzed, StatusEnhanced, true},
		{StatusEnhanced, StatusEnhanced, true},

		{StatusUploaded, StatusAnalyzed, false},
		{StatusUploaded, StatusUploaded, false},
		{StatusAnalyzed, StatusUploaded, false},
		{StatusEnhanced, StatusUploaded, false},
		{StatusEnhanced, StatusAnalyzed, false},
		{StatusAnalyzed, StatusAnalyzed, false},
	}

	for _, c := range cases {
		require.Equal(t, c.allowed, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestResumeTransition(t *testing.T) {
	r := &Resume{Status: StatusUploaded}

	require.NoError(t, r.Transition(StatusAnalyzing))
	require.Equal(t, StatusAnalyzing, r.Status)

	require.NoError(t, r.Transition(StatusAnalyzed))
	require.Equal(t, StatusAnalyzed, r.Status)

	err := r.Transition(StatusUploaded)
	require.Error(t, err)
	require.Equal(t, StatusAnalyzed, r.Status, "rejected transition must not change status")
}
