package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/igloo-cli/igloo/internal/assignment"
	"github.com/stretchr/testify/require"
)

func TestCredsRoundTrip(t *testing.T) {
	d := Dir(filepath.Join(t.TempDir(), "igloo"))

	_, err := d.LoadCreds()
	require.ErrorIs(t, err, os.ErrNotExist)

	want := Credentials{Username: "21012345@studentmail.ul.ie", Password: "hunter2"}
	require.NoError(t, d.SaveCreds(want))

	info, err := os.Stat(filepath.Join(string(d), credsFile))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := d.LoadCreds()
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, d.DeleteCreds())
	require.NoError(t, d.DeleteCreds())
	_, err = d.LoadCreds()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCredsCorrupt(t *testing.T) {
	d := Dir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(string(d), credsFile), []byte("not gob"), 0o600))

	_, err := d.LoadCreds()
	require.ErrorContains(t, err, "decode")
}

func TestSaveExport(t *testing.T) {
	due := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	todo := assignment.Assignment{
		ID:   "3",
		Name: "Lab 3",
		Link: "https://moodle.example.edu/mod/assign/view.php?id=3",
		Status: &assignment.Status{
			SubmissionStatus: assignment.SubmissionNoAttempt,
			GradingStatus:    "Not graded",
			Deadline:         "Friday, 15 March 2024, 12:00 AM",
			Due:              due,
			Submission:       "-",
		},
	}
	views := map[assignment.View][]assignment.Assignment{
		assignment.ViewTodo: {todo},
		assignment.ViewAll:  {todo},
	}
	at := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	path := filepath.Join(t.TempDir(), "out", "cs4004.json")
	require.NoError(t, SaveExport(path, NewExport("CS4004", views, at)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Export
	require.NoError(t, json.Unmarshal(data, &got))

	want := Export{
		Module:     "CS4004",
		ExportedAt: at,
		Todo:       []assignment.Assignment{todo},
		Graded:     []assignment.Assignment{},
		Completed:  []assignment.Assignment{},
		All:        []assignment.Assignment{todo},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExportEmptyViewsAreArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, SaveExport(path, NewExport("CS4004", nil, time.Unix(0, 0))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"graded": []`)
	require.NotContains(t, string(data), "null")
}
