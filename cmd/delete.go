package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	Command.AddCommand(deleteCommand)
}

var deleteCommand = &cobra.Command{
	Use:   "delete ...ids",
	Short: "Remove items from clipboard history",
	Example: `
  # Delete a single item
  dodoclip delete 3f2a91c4

  # Delete everything matching a query
  dodoclip search "BEGIN KEY" | awk '{ print $1 }' | xargs dodoclip delete
  `,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		n := 0
		for _, ref := range args {
			rec, err := st.Resolve(ref)
			if err != nil {
				slog.Warn("skipping unresolved id", "id", ref, "error", err)
				continue
			}
			st.SoftDelete(cmd.Context(), rec.ID)
			n++
		}
		slog.Info("Clipboard history deleted", "deleted-items", n)
		return nil
	},
}
