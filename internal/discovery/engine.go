package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"poolscout/internal/chain"
	"poolscout/internal/dex"
	"poolscout/internal/model"
	"poolscout/internal/poolindex"
	"poolscout/internal/score"
	"poolscout/internal/token"
)

// refreshPassTimeout bounds a background refresh spawned off a lookup.
const refreshPassTimeout = 2 * time.Minute

// AccountQuerier is the slice of the chain client the engine depends on.
type AccountQuerier interface {
	ProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64, offset uint64, match []byte) ([]chain.KeyedAccount, error)
	MultipleAccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error)
}

// Config holds runtime settings for the discovery engine.
type Config struct {
	MaxRetries      int           // retries after the first attempt of each scan
	RetryBackoff    time.Duration // first retry delay, doubling per attempt
	ScanDelay       time.Duration // cooperative pause between protocol scans
	RefreshInterval time.Duration // index staleness bound
	RefreshTokenCap int           // max tokens re-discovered per refresh pass
	FetchReserves   bool          // read vault balances after discovery
	Scoring         score.Params
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 10 * time.Minute
	}
	if c.RefreshTokenCap <= 0 {
		c.RefreshTokenCap = 8
	}
	// Nil tier bonuses mark a zero-valued Params, under which nothing
	// could ever score positive.
	if c.Scoring.TierBonuses == nil {
		c.Scoring = score.DefaultParams()
	}
	return c
}

// Engine coordinates pool discovery: filtered scans per protocol, decode,
// enrichment, index merge and ranked selection.
type Engine struct {
	cfg      Config
	querier  AccountQuerier
	registry *dex.Registry
	index    *poolindex.Index
	resolver *token.Resolver
	metrics  *Metrics
	logger   *zap.Logger
}

// NewEngine builds an engine with its dependencies. The resolver may be
// nil, in which case assumed decimals are kept as decoded; nil metrics
// stay unregistered.
func NewEngine(cfg Config, querier AccountQuerier, registry *dex.Registry, index *poolindex.Index, resolver *token.Resolver, metrics *Metrics, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = dex.DefaultRegistry()
	}
	if index == nil {
		index = poolindex.New()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		querier:  querier,
		registry: registry,
		index:    index,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}
}

// Index exposes the engine's pool index for persistence and diagnostics.
func (e *Engine) Index() *poolindex.Index {
	return e.index
}

// Stats reports the current index summary.
func (e *Engine) Stats() model.IndexStats {
	return e.index.Stats()
}

// Refreshing reports whether a background refresh pass is running.
func (e *Engine) Refreshing() bool {
	return e.index.Refreshing()
}

// DiscoverPoolsForToken scans every registered protocol for pools trading
// the mint, enriches the finds and merges them into the index. A failed
// protocol scan is logged and skipped; the error return is non-nil only
// for unusable input or a dead context.
func (e *Engine) DiscoverPoolsForToken(ctx context.Context, mint solana.PublicKey) ([]model.PoolRecord, error) {
	if e.querier == nil {
		return nil, fmt.Errorf("account querier is nil")
	}
	if mint.IsZero() {
		return nil, fmt.Errorf("mint is the zero key")
	}

	start := time.Now()
	seen := make(map[solana.PublicKey]bool)
	var discovered []model.PoolRecord

	for i, p := range e.registry.All() {
		if i > 0 {
			if err := sleepCtx(ctx, e.cfg.ScanDelay); err != nil {
				break
			}
		}

		recs, err := e.scanProtocol(ctx, p, mint, seen)
		discovered = append(discovered, recs...)
		e.metrics.PoolsDiscovered.WithLabelValues(p.Name).Add(float64(len(recs)))
		if err != nil {
			e.metrics.ScanFailures.WithLabelValues(p.Name).Inc()
			e.logger.Warn("protocol scan failed",
				zap.String("protocol", p.Name),
				zap.String("mint", mint.String()),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
		}
	}

	e.resolveAssumedDecimals(ctx, discovered)
	if e.cfg.FetchReserves {
		e.fetchReserves(ctx, discovered)
	}

	added, updated := e.index.Merge(discovered)
	e.metrics.IndexPools.Set(float64(e.index.Len()))
	e.metrics.DiscoveryDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("discovery complete",
		zap.String("mint", mint.String()),
		zap.Int("pools", len(discovered)),
		zap.Int("added", added),
		zap.Int("updated", updated),
		zap.Duration("took", time.Since(start)))

	return discovered, ctx.Err()
}

// scanProtocol issues the two filtered queries for one protocol, once per
// pair side, and decodes the hits. Records decoded before a query error
// are returned alongside it.
func (e *Engine) scanProtocol(ctx context.Context, p dex.Protocol, mint solana.PublicKey, seen map[solana.PublicKey]bool) ([]model.PoolRecord, error) {
	var records []model.PoolRecord
	for _, offset := range [2]int{p.Layout.TokenA, p.Layout.TokenB} {
		e.metrics.Scans.WithLabelValues(p.Name).Inc()
		hits, err := e.programAccountsWithRetry(ctx, p, uint64(offset), mint.Bytes())
		if err != nil {
			return records, err
		}
		for _, hit := range hits {
			if seen[hit.Address] {
				continue
			}
			rec, err := p.DecodePool(hit.Address, hit.Data)
			if err != nil {
				e.metrics.DecodeRejects.WithLabelValues(p.Name, rejectReason(err)).Inc()
				e.logger.Debug("account rejected",
					zap.String("protocol", p.Name),
					zap.String("address", hit.Address.String()),
					zap.Error(err))
				continue
			}
			seen[hit.Address] = true
			records = append(records, rec)
		}
	}
	return records, nil
}

func (e *Engine) programAccountsWithRetry(ctx context.Context, p dex.Protocol, offset uint64, match []byte) ([]chain.KeyedAccount, error) {
	var hits []chain.KeyedAccount
	err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		hits, err = e.querier.ProgramAccounts(ctx, p.Program, uint64(p.Layout.Size), offset, match)
		if err != nil {
			e.logger.Warn("program accounts query failed",
				zap.String("protocol", p.Name),
				zap.Uint64("offset", offset),
				zap.Error(err))
		}
		return err
	})
	return hits, err
}

// resolveAssumedDecimals replaces defaulted decimals with values read from
// the mint accounts. The assumed flag clears only when both sides resolve.
func (e *Engine) resolveAssumedDecimals(ctx context.Context, records []model.PoolRecord) {
	if e.resolver == nil {
		return
	}
	var mints []solana.PublicKey
	for _, rec := range records {
		if rec.DecimalsAssumed {
			mints = append(mints, rec.TokenA, rec.TokenB)
		}
	}
	if len(mints) == 0 {
		return
	}

	resolved, err := e.resolver.Decimals(ctx, mints)
	if err != nil {
		e.logger.Warn("decimals resolution incomplete", zap.Error(err))
	}
	for i := range records {
		if !records[i].DecimalsAssumed {
			continue
		}
		a, okA := resolved[records[i].TokenA]
		b, okB := resolved[records[i].TokenB]
		if okA {
			records[i].DecimalsA = a
		}
		if okB {
			records[i].DecimalsB = b
		}
		records[i].DecimalsAssumed = !(okA && okB)
	}
}

// PoolsForToken returns the ranked pools trading the mint, running a
// discovery when the index has none.
func (e *Engine) PoolsForToken(ctx context.Context, mint, preferredQuote solana.PublicKey) ([]score.PoolScore, error) {
	if mint.IsZero() {
		return nil, fmt.Errorf("mint is the zero key")
	}
	e.EnsureFresh(ctx)

	pools := e.index.PoolsForToken(mint)
	if len(pools) == 0 {
		if _, err := e.DiscoverPoolsForToken(ctx, mint); err != nil {
			return nil, err
		}
		pools = e.index.PoolsForToken(mint)
	}
	return score.Rank(pools, preferredQuote, e.cfg.Scoring, time.Now()), nil
}

// BestPool returns the top-ranked pool trading the mint, discovering on an
// index miss. The boolean is false when no candidate scored positive.
func (e *Engine) BestPool(ctx context.Context, mint, preferredQuote solana.PublicKey) (model.PoolRecord, bool, error) {
	ranked, err := e.PoolsForToken(ctx, mint, preferredQuote)
	if err != nil {
		return model.PoolRecord{}, false, err
	}
	if len(ranked) == 0 {
		e.metrics.BestPoolRequests.WithLabelValues("miss").Inc()
		return model.PoolRecord{}, false, nil
	}
	e.metrics.BestPoolRequests.WithLabelValues("hit").Inc()
	return ranked[0].Pool, true, nil
}

// EnsureFresh triggers a bounded background refresh when the index has
// gone stale. Lookups are never blocked by it.
func (e *Engine) EnsureFresh(_ context.Context) {
	if !e.index.TryBeginRefresh(e.cfg.RefreshInterval, time.Now()) {
		return
	}
	go func() {
		defer e.index.EndRefresh()
		ctx, cancel := context.WithTimeout(context.Background(), refreshPassTimeout)
		defer cancel()
		e.refreshPass(ctx)
	}()
}

// RefreshIfStale runs a refresh pass synchronously when one is due,
// returning the number of tokens re-discovered. Periodic drivers call
// this; lookup paths use EnsureFresh.
func (e *Engine) RefreshIfStale(ctx context.Context) int {
	if !e.index.TryBeginRefresh(e.cfg.RefreshInterval, time.Now()) {
		return 0
	}
	defer e.index.EndRefresh()
	return e.refreshPass(ctx)
}

// refreshPass re-discovers the stalest indexed tokens. A full rescan of
// every known token would hammer the RPC provider, so the pass is capped
// and skips the ubiquitous quote mints whose scans span half the ledger.
func (e *Engine) refreshPass(ctx context.Context) int {
	e.metrics.RefreshPasses.Inc()
	refreshed := 0
	for _, mint := range e.index.OldestTokens(e.cfg.RefreshTokenCap) {
		if _, isQuote := e.cfg.Scoring.QuotePriorities[mint.String()]; isQuote {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if _, err := e.DiscoverPoolsForToken(ctx, mint); err != nil {
			e.logger.Warn("refresh discovery failed",
				zap.String("mint", mint.String()),
				zap.Error(err))
			continue
		}
		refreshed++
	}
	if refreshed > 0 {
		e.logger.Info("refresh pass complete", zap.Int("tokens", refreshed))
	}
	return refreshed
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, dex.ErrSizeMismatch):
		return "size_mismatch"
	case errors.Is(err, dex.ErrDiscriminator):
		return "discriminator"
	case errors.Is(err, dex.ErrNotInitialized):
		return "uninitialized"
	case errors.Is(err, dex.ErrNullMint):
		return "null_mint"
	case errors.Is(err, dex.ErrSameMint):
		return "same_mint"
	}
	return "other"
}
