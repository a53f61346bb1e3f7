package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscout",
		Short:        "Solana liquidity pool discovery",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	discoverCmd := &cobra.Command{
		Use:   "discover <mint> [mint...]",
		Short: "Discover pools trading the given token mints",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDiscover,
	}

	discoverCmd.Flags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC URL")
	discoverCmd.Flags().StringSlice("protocols", nil, "protocols to scan (comma-separated, default all)")
	discoverCmd.Flags().String("out", "./data/pools.jsonl", "output JSONL path")
	discoverCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	discoverCmd.Flags().Bool("fetch-reserves", true, "read vault balances for discovered pools")
	discoverCmd.Flags().Duration("scan-delay", 200*time.Millisecond, "pause between protocol scans")
	discoverCmd.Flags().Int("max-retries", 2, "retries per failed scan query")
	discoverCmd.Flags().Duration("retry-backoff", time.Second, "initial retry backoff")
	discoverCmd.Flags().Int("decimals-cache", 4096, "mint decimals cache size")
	discoverCmd.Flags().String("score-params", "", "scoring params JSON file (optional)")
	discoverCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(discoverCmd)

	bestCmd := &cobra.Command{
		Use:   "best <mint>",
		Short: "Print the best pool for a token mint",
		Args:  cobra.ExactArgs(1),
		RunE:  runBest,
	}

	bestCmd.Flags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC URL")
	bestCmd.Flags().String("quote", "", "preferred quote mint (base58, optional)")
	bestCmd.Flags().StringSlice("protocols", nil, "protocols to scan (comma-separated, default all)")
	bestCmd.Flags().Bool("fetch-reserves", true, "read vault balances for discovered pools")
	bestCmd.Flags().Duration("scan-delay", 200*time.Millisecond, "pause between protocol scans")
	bestCmd.Flags().Int("max-retries", 2, "retries per failed scan query")
	bestCmd.Flags().Duration("retry-backoff", time.Second, "initial retry backoff")
	bestCmd.Flags().Int("decimals-cache", 4096, "mint decimals cache size")
	bestCmd.Flags().String("score-params", "", "scoring params JSON file (optional)")
	bestCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(bestCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool API with background refresh",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	serveCmd.Flags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC URL")
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().StringSlice("protocols", nil, "protocols to scan (comma-separated, default all)")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	serveCmd.Flags().String("snapshot", "./data/pools_snapshot.json", "index snapshot file path")
	serveCmd.Flags().Bool("snapshot-enabled", true, "save/restore the index snapshot")
	serveCmd.Flags().Duration("refresh-interval", 10*time.Minute, "index staleness bound")
	serveCmd.Flags().Int("refresh-token-cap", 8, "max tokens re-discovered per refresh pass")
	serveCmd.Flags().Bool("fetch-reserves", true, "read vault balances for discovered pools")
	serveCmd.Flags().Duration("scan-delay", 200*time.Millisecond, "pause between protocol scans")
	serveCmd.Flags().Int("max-retries", 2, "retries per failed scan query")
	serveCmd.Flags().Duration("retry-backoff", time.Second, "initial retry backoff")
	serveCmd.Flags().Int("decimals-cache", 4096, "mint decimals cache size")
	serveCmd.Flags().String("score-params", "", "scoring params JSON file (optional)")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
