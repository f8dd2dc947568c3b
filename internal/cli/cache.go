package cli

import (
	"errors"
	"fmt"

	"CursorAPI/internal/db"
	"CursorAPI/internal/logger"
	"CursorAPI/internal/model"

	"github.com/spf13/cobra"
)

func NewCacheCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached column catalogs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Remove every cached catalog from Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if cfg.RedisAddr == "" {
				return errors.New("REDIS_ADDR is not set")
			}
			db.InitRedis(cfg.RedisAddr)
			defer func() { _ = db.CloseRedis() }()
			if err := db.PingRedis(cmd.Context()); err != nil {
				return fmt.Errorf("redis: %w", err)
			}

			deleted, err := model.NewCatalogs(nil, db.RDB, cfg.CatalogCache.TTL, cfg.CatalogCache.MaxBytes).Flush(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("catalog_cache_flushed", map[string]any{"keys": deleted})
			fmt.Fprintf(cmd.OutOrStdout(), "flushed %d catalog keys\n", deleted)
			return nil
		},
	})
	return cmd
}
