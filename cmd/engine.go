package cmd

import (
	"errors"

	"github.com/duyg/dodoclip/internal/config"
	"github.com/duyg/dodoclip/internal/store"
)

// openStore opens the history database configured through viper.
func openStore() (*store.Store, config.Settings, error) {
	cfg := config.Load()
	if cfg.Database == "" {
		return nil, cfg, errors.New("database directory can not be empty")
	}
	st, err := store.Open(cfg.Database, store.Options{
		HistoryLimit:        cfg.HistoryLimit,
		AutoDeleteAfterDays: cfg.AutoDeleteAfterDays,
	})
	if err != nil {
		return nil, cfg, err
	}
	return st, cfg, nil
}
