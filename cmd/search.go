package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	searchCommand.Flags().Int("limit", 50, "max number of results")
	Command.AddCommand(searchCommand)
}

var searchCommand = &cobra.Command{
	Use:   "search <query>",
	Short: "Search clipboard history",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		matches := st.Search(args[0], viper.GetInt("limit"))
		for rec := range slices.Values(matches) {
			fmt.Println(formatRecord(rec))
		}
		return nil
	},
}
