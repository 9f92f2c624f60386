package assignment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFromAnchor(t *testing.T) {
	testCases := []struct {
		name     string
		href     string
		expected Assignment
	}{
		{
			name: "Project Proposal Assignment",
			href: "https://moodle2.csis.ul.ie/mod/assign/view.php?id=1234",
			expected: Assignment{
				ID:   "1234",
				Name: "Project Proposal",
				Link: "https://moodle2.csis.ul.ie/mod/assign/view.php?id=1234",
			},
		},
		{
			name: "Short",
			href: "view.php?foo=bar",
			expected: Assignment{
				ID:   "",
				Name: "",
				Link: "view.php?foo=bar",
			},
		},
		{
			name: "Ünïcode Lab Assignment",
			href: "%zz?id=77",
			expected: Assignment{
				ID:   "77",
				Name: "Ünïcode Lab",
				Link: "%zz?id=77",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, NewFromAnchor(tc.name, tc.href))
		})
	}
}

func TestEnrichAppliesOnce(t *testing.T) {
	a := NewFromAnchor("Essay Assignment", "https://moodle.example/mod/assign/view.php?id=3")
	require.False(t, a.Classified())
	_, ok := a.Deadline()
	require.False(t, ok)

	require.True(t, a.Enrich(rows("x", "Submitted for grading", "Graded", "1 April 2024, 9:00 AM", "essay.pdf")))
	require.True(t, a.Classified())
	deadline, ok := a.Deadline()
	require.True(t, ok)
	require.Equal(t, "1 April 2024, 9:00 AM", deadline)
	require.Equal(t, "Submitted for grading", a.SubmissionStatus())
	require.Equal(t, "Graded", a.GradingStatus())
	require.Equal(t, "essay.pdf", a.Submission())

	require.False(t, a.Enrich(rows("a", "No attempt", "Not graded", "2 April 2024, 9:00 AM", "-")))
	require.Equal(t, "Submitted for grading", a.SubmissionStatus())
}

func TestEnrichLeavesUnreadableRecordsEmpty(t *testing.T) {
	a := NewFromAnchor("Quiz Assignment", "https://moodle.example/mod/assign/view.php?id=4")
	require.False(t, a.Enrich(rows("Grading summary", "Hidden from students", "No")))
	require.Nil(t, a.Status)
	require.Empty(t, a.SubmissionStatus())
	require.Empty(t, a.GradingStatus())
	require.Empty(t, a.Submission())
}

func TestEnrichKeepsIdentity(t *testing.T) {
	a := NewFromAnchor("Lab 2 Assignment", "https://moodle.example/mod/assign/view.php?id=9")
	before := Assignment{ID: a.ID, Name: a.Name, Link: a.Link}

	require.True(t, a.Enrich(rows("x", "No attempt", "Not graded", "3 May 2024, 9:00 AM", "-")))
	require.Equal(t, before.ID, a.ID)
	require.Equal(t, before.Name, a.Name)
	require.Equal(t, before.Link, a.Link)
}
