// Command moviekit 加载电影目录并提供推荐与分析 HTTP 接口。
//
//	moviekit -config moviekit.yaml
//
// 配置也可以完全由 MOVIEKIT_* 环境变量给出，例如 MOVIEKIT_CATALOG_PATH=movies.xlsx。
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/moviekit/api"
	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/engine"
	"github.com/rushteam/moviekit/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: $MOVIEKIT_CONFIG or ./moviekit.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.FromAppConfig(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create engine")
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close cache store")
		}
	}()

	snap, err := eng.Reload(ctx)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("failed to load catalog")
	}
	logging.Info().
		Str("path", cfg.Catalog.Path).
		Int("movies", snap.Len()).
		Int("terms", snap.Index.Dims()).
		Msg("catalog loaded")

	if err := api.NewServer(eng, cfg.Server).ListenAndServe(ctx); err != nil {
		logging.Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}
}
