package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscout/internal/chain"
	"poolscout/internal/config"
	"poolscout/internal/dex"
	"poolscout/internal/discovery"
	"poolscout/internal/monitor"
	"poolscout/internal/poolindex"
	"poolscout/internal/storage/postgres"
	"poolscout/internal/token"
)

// refreshTick is how often serve polls RefreshIfStale; the staleness
// guard inside makes extra polls a mutex check and nothing more.
const refreshTick = time.Minute

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	scoring, err := config.LoadScoreParams(cfg.ScoreParamsFile)
	if err != nil {
		return err
	}

	registry, err := dex.DefaultRegistry().Filter(cfg.Protocols)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL)
	defer chainClient.Close()

	resolver, err := token.NewResolver(chainClient, cfg.DecimalsCache, logger)
	if err != nil {
		return err
	}

	idx := poolindex.New()

	snapshots := poolindex.NewSnapshotStore(cfg.Snapshot, cfg.SnapshotEnabled)
	if snap, ok, err := snapshots.Load(); err != nil {
		logger.Warn("snapshot load failed", zap.Error(err))
	} else if ok {
		restored := idx.Load(snap.Pools, snap.LastIndexed)
		logger.Info("snapshot restored", zap.Int("pools", restored))
	}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		pools, err := store.LoadPools(ctx)
		if err != nil {
			return fmt.Errorf("load pools: %w", err)
		}
		lastIndexed, _, err := store.LoadLastIndexed(ctx)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		restored := idx.Load(pools, lastIndexed)
		logger.Info("store restored", zap.Int("pools", restored))
	}

	promRegistry := prometheus.NewRegistry()
	metrics := discovery.NewMetrics(promRegistry)

	engine := discovery.NewEngine(discovery.Config{
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
		ScanDelay:       cfg.ScanDelay,
		RefreshInterval: cfg.RefreshInterval,
		RefreshTokenCap: cfg.RefreshTokenCap,
		FetchReserves:   cfg.FetchReserves,
		Scoring:         scoring,
	}, chainClient, registry, idx, resolver, metrics, logger)

	server := monitor.NewServer(cfg.Listen, engine, promRegistry, logger)
	server.Start()

	logger.Info("serve start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("listen", cfg.Listen),
		zap.Int("protocols", registry.Len()),
		zap.Int("pools", idx.Len()),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
	)

	ticker := time.NewTicker(refreshTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			engine.RefreshIfStale(ctx)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Stop(shutdownCtx); err != nil {
				logger.Warn("http shutdown failed", zap.Error(err))
			}

			pools := idx.All()
			if err := snapshots.Save(pools, idx.LastIndexed()); err != nil {
				logger.Warn("snapshot save failed", zap.Error(err))
			}
			if store != nil {
				if err := store.UpsertPools(shutdownCtx, pools); err != nil {
					logger.Warn("pool upsert failed", zap.Error(err))
				} else if err := store.SaveLastIndexed(shutdownCtx, idx.LastIndexed()); err != nil {
					logger.Warn("state save failed", zap.Error(err))
				}
			}

			logger.Info("serve stopped", zap.Int("pools", len(pools)))
			return nil
		}
	}
}
