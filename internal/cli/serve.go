package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/cache"
	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/server"
)

func NewServeCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			applog.SetOutput(cmd.OutOrStdout())
			return Serve(ctx, config.Load())
		},
	}
}

// Serve runs the storefront until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config) error {
	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Error(nil, "log.file.open.fail", err, map[string]any{"path": cfg.LogFile})
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}
	defer applog.Sync()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}

	app := server.New(cfg, db, store)

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()
	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	applog.Info(nil, "server.stop", nil)
	return app.ShutdownWithContext(shutdownCtx)
}

func openCache(ctx context.Context, cfg config.Config) (cache.Store, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(), nil
	}
	rdb, err := cache.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	applog.Info(nil, "cache.redis", nil)
	return cache.NewRedis(rdb, "storefront:"), nil
}
