package commands

import (
	"log/slog"
	"time"

	"github.com/igloo-cli/igloo/internal/navigator"
	"github.com/igloo-cli/igloo/internal/prompt"
	"github.com/igloo-cli/igloo/internal/render"
	"github.com/igloo-cli/igloo/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportModule string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export --module <name> [--out <path>]",
	Short: "Writes every view of one module to a JSON file without the interactive menus.",
	Args:  cobra.NoArgs,
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

		// Progress goes to stderr so "--out -" stays clean JSON.
		out := render.NewConsole(cmd.ErrOrStderr())
		prompter := prompt.NewPlain(cmd.InOrStdin(), cmd.ErrOrStderr())

		module, views, err := navigator.New(page, prompter, out, opts).Export(cmd.Context(), exportModule)
		if err != nil {
			return err
		}

		if err := store.SaveExport(exportOut, store.NewExport(module.Name, views, time.Now())); err != nil {
			return err
		}
		slog.Info("export written", "module", module.Name, "path", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportModule, "module", "", "Module name or code, matched loosely against your enrolled modules.")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "assignments.json", "Where to write the export, - for stdout.")
	exportCmd.MarkFlagRequired("module")
	rootCmd.AddCommand(exportCmd)
}
