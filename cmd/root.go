// Package cmd implements the dodoclip CLI.
package cmd

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duyg/dodoclip/internal/config"
)

func init() {
	pfset := Command.PersistentFlags()
	pfset.StringP("database", "d", "", "set database location directory")
	pfset.Int("history-limit", config.DefaultHistoryLimit, "max number of unpinned history records")
	pfset.Duration("poll-interval", config.DefaultPollInterval, "clipboard poll interval")
	pfset.Bool("ignore-password-managers", true, "skip clips copied from known password managers")
	pfset.StringSlice("ignored-apps", nil, "source application ids to never capture from")
	pfset.Int("auto-delete-days", 0, "purge unpinned records older than this many days (0 disables)")
	pfset.CountP("verbose", "v", "set log level")
	pfset.BoolP("quiet", "q", false, "suppress all the logs")

	viper.SetEnvPrefix("dodoclip")
	viper.AutomaticEnv()
}

// Command is the root command for dodoclip
var Command = &cobra.Command{
	Use:   "dodoclip",
	Short: "A clipboard history manager",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.BindPFlags(cmd.Flags())

		level := log.ErrorLevel - (log.Level(viper.GetInt("verbose") * 4))
		if viper.GetBool("quiet") {
			level = math.MaxInt
		}

		logger := log.NewWithOptions(os.Stderr, log.Options{
			TimeFormat: time.RFC822,
			Level:      level,
		})

		slog.SetDefault(slog.New(logger))

		viper.SetDefault("database", filepath.Join(xdg.DataHome, "dodoclip"))

		slog.Info("Logger is has been setup", "level", level)

		return nil
	},
}

// Execute runs the cobra cli
func Execute(version string) {
	err := fang.Execute(
		context.Background(),
		Command,
		fang.WithNotifySignal(syscall.SIGINT, syscall.SIGTERM),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
	)
	if err != nil {
		os.Exit(1)
	}
}
