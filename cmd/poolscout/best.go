package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"poolscout/internal/chain"
	"poolscout/internal/config"
	"poolscout/internal/dex"
	"poolscout/internal/discovery"
	"poolscout/internal/token"
)

func runBest(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBest(cfgFile, cmd.Flags())
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

	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("parse mint %q: %w", args[0], err)
	}

	var quote solana.PublicKey
	if cfg.Quote != "" {
		if quote, err = solana.PublicKeyFromBase58(cfg.Quote); err != nil {
			return fmt.Errorf("parse quote %q: %w", cfg.Quote, err)
		}
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

	best, found, err := engine.BestPool(ctx, mint, quote)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no suitable pool for %s", mint)
	}

	out, err := json.MarshalIndent(best, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}
