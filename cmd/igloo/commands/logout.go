package commands

import (
	"fmt"

	"github.com/igloo-cli/igloo/internal/store"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forgets credentials saved with --remember.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := store.DefaultDir()
		if err != nil {
			return err
		}
		if err := dir.DeleteCreds(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Remembered credentials removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
