package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/duyg/dodoclip/internal/clip"
	"github.com/duyg/dodoclip/internal/clipsvc"
	"github.com/duyg/dodoclip/internal/store"
)

func init() {
	Command.AddCommand(copyCommand)
}

var copyCommand = &cobra.Command{
	Use:   "copy <id>",
	Short: "Set content of given record back to the clipboard",
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

		var w clipsvc.Writer = clipsvc.NewWlClipboard()
		if err := w.Write(recordSnapshot(rec)); err != nil {
			return err
		}

		st.MarkUsed(cmd.Context(), rec.ID)
		return nil
	},
}

// recordSnapshot converts stored content back into a clipboard payload.
func recordSnapshot(rec *store.Record) clip.Snapshot {
	var snap clip.Snapshot
	switch rec.Content.Kind {
	case clip.KindImage:
		snap.Image = rec.Content.Image
	case clip.KindFile:
		if _, err := os.Stat(rec.Content.FilePath); err == nil {
			snap.FileURLs = []string{"file://" + rec.Content.FilePath}
		}
		snap.Text = rec.Content.FilePath
	case clip.KindRichText:
		snap.Text = rec.Content.Text
		snap.RTF = rec.Content.RTF
	default:
		snap.Text = rec.Content.Text
	}
	return snap
}
