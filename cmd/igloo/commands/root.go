package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/igloo-cli/igloo/internal/browser"
	"github.com/igloo-cli/igloo/internal/config"
	"github.com/igloo-cli/igloo/internal/logging"
	"github.com/igloo-cli/igloo/internal/navigator"
	"github.com/igloo-cli/igloo/internal/portal"
	"github.com/igloo-cli/igloo/internal/prompt"
	"github.com/igloo-cli/igloo/internal/render"
	"github.com/igloo-cli/igloo/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	plain      bool
	remember   bool
)

var rootCmd = &cobra.Command{
	Use:           "igloo [--config path] [--verbose] [--plain] [--remember]",
	Short:         "igloo shows your moodle assignments from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		dir, err := store.DefaultDir()
		if err != nil {
			return err
		}

		opts, page, err := session(cfg, dir)
		if err != nil {
			return err
		}
		if remember {
			opts.OnLogin = dir.SaveCreds
		}

		var prompter prompt.Prompter = prompt.NewTUI()
		if plain {
			prompter = prompt.NewPlain(os.Stdin, os.Stdout)
		}

		nav := navigator.New(page, prompter, render.NewConsole(os.Stdout), opts)
		return nav.Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an igloo.json5 file (searched upward from the working directory by default).")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every navigation step to stderr.")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "Use line-based prompts instead of the full screen picker.")
	rootCmd.Flags().BoolVar(&remember, "remember", false, "Remember the credentials of a successful login.")
}

func setup() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logging.Init(verbose, cfg.LogLevel)
	if cfg.Source != "" {
		slog.Debug("loaded config", "path", cfg.Source)
	}
	return cfg, nil
}

// session builds the page and navigator options shared by every command.
// Credentials come from the environment first, then from a remembered login.
func session(cfg config.Config, dir store.Dir) (navigator.Options, browser.Page, error) {
	p, err := portal.New(cfg.BaseURL, cfg.LoginPath, cfg.CoursePath, cfg.Selectors)
	if err != nil {
		return navigator.Options{}, nil, err
	}

	creds := store.Credentials{Username: cfg.Username, Password: cfg.Password}
	if creds.Username == "" || creds.Password == "" {
		saved, err := dir.LoadCreds()
		switch {
		case err == nil:
			creds = saved
		case !errors.Is(err, os.ErrNotExist):
			slog.Warn("ignoring remembered credentials", "err", err)
		}
	}

	page, err := browser.NewHTTPPage(browser.Options{
		Timeout:          cfg.Timeout,
		PollInterval:     cfg.PollInterval,
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: cfg.CloudflareBypass,
		Logger:           slog.Default(),
	})
	if err != nil {
		return navigator.Options{}, nil, err
	}

	return navigator.Options{
		Portal:       p,
		Attempts:     cfg.LoginAttempts,
		Timeout:      cfg.Timeout,
		CacheModules: cfg.CacheModules,
		Credentials:  creds,
		Logger:       slog.Default(),
	}, page, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		render.Fatal(os.Stderr, err)
		os.Exit(1)
	}
}
