package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/duyg/dodoclip/internal/store"
)

func init() {
	Command.AddCommand(listCommand)
}

// formatRecord renders one history line: short id, flag markers, summary.
func formatRecord(rec *store.Record) string {
	var marks []string
	if rec.Pinned {
		marks = append(marks, "pin")
	}
	if rec.Favorite {
		marks = append(marks, "fav")
	}
	mark := ""
	if len(marks) > 0 {
		mark = "[" + strings.Join(marks, ",") + "] "
	}

	text := rec.Title
	if text == "" {
		text = rec.Content.Summary()
	}
	return fmt.Sprintf("%s\t%s%s", rec.ID[:8], mark, text)
}

var listCommand = &cobra.Command{
	Use:   "list [limit]",
	Short: "List clipboard history, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := 0
		if len(args) == 1 {
			n, err := cast.ToIntE(args[0])
			if err != nil {
				return err
			}
			limit = n
		}

		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		for i, rec := range st.Visible() {
			if limit > 0 && i >= limit {
				break
			}
			fmt.Println(formatRecord(rec))
		}
		return nil
	},
}
