package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(restoreCommand)
}

var restoreCommand = &cobra.Command{
	Use:   "restore ...ids",
	Short: "Restore soft-deleted items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		for _, ref := range args {
			rec, err := st.Resolve(ref)
			if err != nil {
				slog.Warn("skipping unresolved id", "id", ref, "error", err)
				continue
			}
			st.Restore(cmd.Context(), rec.ID)
		}
		return nil
	},
}
