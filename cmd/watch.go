package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duyg/dodoclip/internal/assets"
	"github.com/duyg/dodoclip/internal/capture"
	"github.com/duyg/dodoclip/internal/clipsvc"
	"github.com/duyg/dodoclip/internal/enrich"
)

func init() {
	Command.AddCommand(watchCommand)
}

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Watch for clipboard changes",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		slog.Info("dodoclip watch starting", "version", Command.Version)
		ctx := cmd.Context()

		st, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		cache, err := assets.New(0, 0, 0)
		if err != nil {
			return err
		}
		st.SetPurgeHook(cache.Invalidate)

		// Apply the configured limit and age policy to whatever was loaded.
		st.EnforceRetention(ctx)

		svc := clipsvc.NewWlClipboard()
		loop := capture.New(svc, st, cfg)
		loop.SetEnricher(enrich.New(st, loop.Post, nil, nil))

		return loop.Run(ctx)
	},
}
