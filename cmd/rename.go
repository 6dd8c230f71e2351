package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(renameCommand)
}

var renameCommand = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Set a record's title",
	Args:  cobra.ExactArgs(2),
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
		st.Rename(cmd.Context(), rec.ID, args[1])
		return nil
	},
}
