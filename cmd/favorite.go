package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(favoriteCommand)
}

var favoriteCommand = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle favorite on a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.Resolve(args[0])
		if err != nil {
			return err
		}
		st.ToggleFavorite(cmd.Context(), rec.ID)
		return nil
	},
}
