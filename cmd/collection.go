package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	collectionCreateCommand.Flags().String("icon", "folder", "icon token for the collection")
	collectionCreateCommand.Flags().String("color", "blue", "color token for the collection")
	collectionCommand.AddCommand(
		collectionListCommand,
		collectionCreateCommand,
		collectionRenameCommand,
		collectionDeleteCommand,
		collectionAddCommand,
		collectionRemoveCommand,
	)
	Command.AddCommand(collectionCommand)
}

var collectionCommand = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Manage record collections",
}

var collectionListCommand = &cobra.Command{
	Use:   "list",
	Short: "List collections and their record counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		for _, col := range st.AllCollections() {
			kind := "custom"
			if col.IsSmart() {
				kind = "smart"
			}
			n := len(st.CollectionRecords(col.ID))
			fmt.Printf("%s\t%s\t%s\t%d\n", col.ID, kind, col.Name, n)
		}
		return nil
	},
}

var collectionCreateCommand = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a custom collection",
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

		col := st.CreateCollection(
			cmd.Context(),
			args[0],
			viper.GetString("icon"),
			viper.GetString("color"),
		)
		fmt.Println(col.ID)
		return nil
	},
}

var collectionRenameCommand = &cobra.Command{
	Use:   "rename <collection> <name>",
	Short: "Rename a custom collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		col, err := st.ResolveCollection(args[0])
		if err != nil {
			return err
		}
		return st.RenameCollection(cmd.Context(), col.ID, args[1])
	},
}

var collectionDeleteCommand = &cobra.Command{
	Use:   "delete <collection>",
	Short: "Delete a custom collection (records are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		col, err := st.ResolveCollection(args[0])
		if err != nil {
			return err
		}
		return st.DeleteCollection(cmd.Context(), col.ID)
	},
}

var collectionAddCommand = &cobra.Command{
	Use:   "add <collection> <record-id>",
	Short: "Add a record to a custom collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		col, err := st.ResolveCollection(args[0])
		if err != nil {
			return err
		}
		rec, err := st.Resolve(args[1])
		if err != nil {
			return err
		}
		return st.AddToCollection(cmd.Context(), rec.ID, col.ID)
	},
}

var collectionRemoveCommand = &cobra.Command{
	Use:   "remove <collection> <record-id>",
	Short: "Remove a record from a custom collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		col, err := st.ResolveCollection(args[0])
		if err != nil {
			return err
		}
		rec, err := st.Resolve(args[1])
		if err != nil {
			return err
		}
		return st.RemoveFromCollection(cmd.Context(), rec.ID, col.ID)
	},
}
