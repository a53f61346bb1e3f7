package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscout/internal/chain"
	"poolscout/internal/config"
	"poolscout/internal/dex"
	"poolscout/internal/discovery"
	"poolscout/internal/storage"
	"poolscout/internal/storage/postgres"
	"poolscout/internal/token"
)

func runDiscover(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
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

	mints, err := parseMints(args)
	if err != nil {
		return err
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

	engine := discovery.NewEngine(discovery.Config{
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		ScanDelay:     cfg.ScanDelay,
		FetchReserves: cfg.FetchReserves,
		Scoring:       scoring,
	}, chainClient, registry, nil, resolver, nil, logger)

	logger.Info("discover start",
		zap.String("rpc", cfg.RPCURL),
		zap.Int("mints", len(mints)),
		zap.Int("protocols", registry.Len()),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	start := time.Now()
	for _, mint := range mints {
		if _, err := engine.DiscoverPoolsForToken(ctx, mint); err != nil {
			return err
		}
	}

	pools := engine.Index().All()

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutPoolBatch(pools); err != nil {
			return err
		}
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.UpsertPools(ctx, pools); err != nil {
			return fmt.Errorf("upsert pools: %w", err)
		}
		if err := store.SaveLastIndexed(ctx, engine.Index().LastIndexed()); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	logger.Info("discover complete",
		zap.Int("mints", len(mints)),
		zap.Int("pools", len(pools)),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}

func parseMints(args []string) ([]solana.PublicKey, error) {
	mints := make([]solana.PublicKey, 0, len(args))
	seen := make(map[solana.PublicKey]bool)
	for _, raw := range args {
		key, err := solana.PublicKeyFromBase58(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("parse mint %q: %w", raw, err)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		mints = append(mints, key)
	}
	return mints, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
