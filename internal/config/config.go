package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolscout/internal/score"
)

// Config holds configuration values loaded from flags, env, or config file
// for the discover command.
type Config struct {
	RPCURL          string
	Protocols       []string
	Out             string
	PGDSN           string
	FetchReserves   bool
	ScanDelay       time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	DecimalsCache   int
	ScoreParamsFile string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("out", "./data/pools.jsonl")
	v.SetDefault("fetch-reserves", true)
	v.SetDefault("scan-delay", 200*time.Millisecond)
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", time.Second)
	v.SetDefault("decimals-cache", 4096)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		Protocols:       getStringSlice(v, "protocols"),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
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

// LoadScoreParams reads a scoring params JSON file and overlays it on the
// defaults. An empty path returns the defaults unchanged.
func LoadScoreParams(path string) (score.Params, error) {
	params := score.DefaultParams()
	if strings.TrimSpace(path) == "" {
		return params, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("read score params: %w", err)
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, fmt.Errorf("parse score params: %w", err)
	}
	return params, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
