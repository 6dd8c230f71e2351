package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(pinCommand)
}

var pinCommand = &cobra.Command{
	Use:   "pin <id>",
	Short: "Toggle pin on a record (pinned records survive retention)",
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
		st.TogglePin(cmd.Context(), rec.ID)
		return nil
	},
}
