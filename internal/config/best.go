package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BestConfig holds configuration for the best command.
type BestConfig struct {
	RPCURL          string
	Quote           string
	Protocols       []string
	FetchReserves   bool
	ScanDelay       time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	DecimalsCache   int
	ScoreParamsFile string
	LogLevel        string
}

// LoadBest merges config file, environment variables, and flags into
// BestConfig.
func LoadBest(cfgFile string, flags *pflag.FlagSet) (BestConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("fetch-reserves", true)
	v.SetDefault("scan-delay", 200*time.Millisecond)
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", time.Second)
	v.SetDefault("decimals-cache", 4096)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return BestConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return BestConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return BestConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := BestConfig{
		RPCURL:          v.GetString("rpc"),
		Quote:           v.GetString("quote"),
		Protocols:       getStringSlice(v, "protocols"),
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
