package commands

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/igloo-cli/igloo/internal/config"
	"github.com/igloo-cli/igloo/internal/portal"
	"github.com/igloo-cli/igloo/internal/store"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		BaseURL:       "https://moodle.example.edu",
		LoginPath:     "/login/index.php",
		CoursePath:    "/course/view.php?id=",
		Timeout:       time.Second,
		PollInterval:  10 * time.Millisecond,
		LoginAttempts: 2,
		Selectors:     portal.DefaultSelectors(),
	}
}

func TestSessionUsesRememberedCredentials(t *testing.T) {
	dir := store.Dir(t.TempDir())
	require.NoError(t, dir.SaveCreds(store.Credentials{Username: "saved", Password: "pw"}))

	opts, page, err := session(testConfig(), dir)
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })

	require.Equal(t, store.Credentials{Username: "saved", Password: "pw"}, opts.Credentials)
	require.Equal(t, 2, opts.Attempts)
	require.Equal(t, "https://moodle.example.edu/login/index.php", opts.Portal.LoginURL())
}

func TestSessionPrefersEnvironmentCredentials(t *testing.T) {
	dir := store.Dir(t.TempDir())
	require.NoError(t, dir.SaveCreds(store.Credentials{Username: "saved", Password: "pw"}))

	cfg := testConfig()
	cfg.Username = "env-user"
	cfg.Password = "env-pw"

	opts, page, err := session(cfg, dir)
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })

	require.Equal(t, store.Credentials{Username: "env-user", Password: "env-pw"}, opts.Credentials)
}

func TestSessionRejectsRelativeBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "moodle.example.edu"

	_, _, err := session(cfg, store.Dir(t.TempDir()))
	require.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	require.Contains(t, names, "export")
	require.Contains(t, names, "logout")
	require.NotNil(t, exportCmd.Flags().Lookup("module"))
	require.NotNil(t, rootCmd.Flags().Lookup("remember"))
}

func TestLogoutForgetsRememberedCredentials(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	dir, err := store.DefaultDir()
	require.NoError(t, err)
	require.NoError(t, dir.SaveCreds(store.Credentials{Username: "saved", Password: "pw"}))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"logout"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "Remembered credentials removed.")
	_, err = dir.LoadCreds()
	require.ErrorIs(t, err, os.ErrNotExist)
}
