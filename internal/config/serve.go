package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	RPCURL          string
	Listen          string
	Protocols       []string
	PGDSN           string
	Snapshot        string
	SnapshotEnabled bool
	RefreshInterval time.Duration
	RefreshTokenCap int
	FetchReserves   bool
	ScanDelay       time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	DecimalsCache   int
	ScoreParamsFile string
	LogLevel        string
}

// LoadServe merges config file, environment variables, and flags into
// ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("listen", ":8080")
	v.SetDefault("snapshot", "./data/pools_snapshot.json")
	v.SetDefault("snapshot-enabled", true)
	v.SetDefault("refresh-interval", 10*time.Minute)
	v.SetDefault("refresh-token-cap", 8)
	v.SetDefault("fetch-reserves", true)
	v.SetDefault("scan-delay", 200*time.Millisecond)
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", time.Second)
	v.SetDefault("decimals-cache", 4096)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return ServeConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ServeConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return ServeConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := ServeConfig{
		RPCURL:          v.GetString("rpc"),
		Listen:          v.GetString("listen"),
		Protocols:       getStringSlice(v, "protocols"),
		PGDSN:           v.GetString("pg-dsn"),
		Snapshot:        v.GetString("snapshot"),
		SnapshotEnabled: v.GetBool("snapshot-enabled"),
		RefreshInterval: v.GetDuration("refresh-interval"),
		RefreshTokenCap: v.GetInt("refresh-token-cap"),
		FetchReserves:   v.GetBool("fetch-reserves"),
		ScanDelay:       v.GetDuration("scan-delay"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		DecimalsCache:   v.GetInt("decimals-cache"),
		ScoreParamsFile: v.GetString("score-params"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
