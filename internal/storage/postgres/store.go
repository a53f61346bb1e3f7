package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolscout/internal/model"
)

// stateName keys the single index stamp in the discovery_state table.
const stateName = "pool-index"

// Store provides Postgres persistence for discovered pools.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool records keyed by address.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range pools {
		batch.Queue(`
			INSERT INTO pools (
				address, protocol, tag, mechanism, owner_program,
				token_a, token_b, vault_a, vault_b,
				decimals_a, decimals_b, decimals_assumed,
				reserve_a, reserve_b, liquidity_usd, volume_24h_usd,
				last_updated, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
			ON CONFLICT (address)
			DO UPDATE SET
				protocol = EXCLUDED.protocol,
				tag = EXCLUDED.tag,
				mechanism = EXCLUDED.mechanism,
				owner_program = EXCLUDED.owner_program,
				token_a = EXCLUDED.token_a,
				token_b = EXCLUDED.token_b,
				vault_a = EXCLUDED.vault_a,
				vault_b = EXCLUDED.vault_b,
				decimals_a = EXCLUDED.decimals_a,
				decimals_b = EXCLUDED.decimals_b,
				decimals_assumed = EXCLUDED.decimals_assumed,
				reserve_a = EXCLUDED.reserve_a,
				reserve_b = EXCLUDED.reserve_b,
				liquidity_usd = EXCLUDED.liquidity_usd,
				volume_24h_usd = EXCLUDED.volume_24h_usd,
				last_updated = EXCLUDED.last_updated,
				updated_at = now()
		`,
			rec.Address.String(),
			rec.Protocol,
			string(rec.Tag),
			string(rec.Mechanism),
			rec.OwnerProgram.String(),
			rec.TokenA.String(),
			rec.TokenB.String(),
			rec.VaultA.String(),
			rec.VaultB.String(),
			int16(rec.DecimalsA),
			int16(rec.DecimalsB),
			rec.DecimalsAssumed,
			int64(rec.ReserveA),
			int64(rec.ReserveB),
			rec.LiquidityUSD,
			rec.Volume24hUSD,
			rec.LastUpdated,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadPools returns every stored pool record. Rows come back in
// created_at order so a warm-started index keeps its first-insertion
// ordering across restarts.
func (s *Store) LoadPools(ctx context.Context) ([]model.PoolRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT address, protocol, tag, mechanism, owner_program,
		       token_a, token_b, vault_a, vault_b,
		       decimals_a, decimals_b, decimals_assumed,
		       reserve_a, reserve_b, liquidity_usd, volume_24h_usd,
		       last_updated
		FROM pools
		ORDER BY created_at, address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.PoolRecord
	for rows.Next() {
		var (
			address, protocol, tag, mechanism, owner string
			tokenA, tokenB, vaultA, vaultB           string
			decA, decB                               int16
			assumed                                  bool
			resA, resB                               int64
			liqUSD, volUSD                           float64
			lastUpdated                              time.Time
		)
		if err := rows.Scan(
			&address, &protocol, &tag, &mechanism, &owner,
			&tokenA, &tokenB, &vaultA, &vaultB,
			&decA, &decB, &assumed,
			&resA, &resB, &liqUSD, &volUSD,
			&lastUpdated,
		); err != nil {
			return nil, err
		}

		rec := model.PoolRecord{
			Protocol:        protocol,
			Tag:             model.ProtocolTag(tag),
			Mechanism:       model.Mechanism(mechanism),
			DecimalsA:       uint8(decA),
			DecimalsB:       uint8(decB),
			DecimalsAssumed: assumed,
			ReserveA:        uint64(resA),
			ReserveB:        uint64(resB),
			LiquidityUSD:    liqUSD,
			Volume24hUSD:    volUSD,
			LastUpdated:     lastUpdated,
		}
		if rec.Address, err = parseKey("address", address); err != nil {
			return nil, err
		}
		if rec.OwnerProgram, err = parseKey("owner_program", owner); err != nil {
			return nil, err
		}
		if rec.TokenA, err = parseKey("token_a", tokenA); err != nil {
			return nil, err
		}
		if rec.TokenB, err = parseKey("token_b", tokenB); err != nil {
			return nil, err
		}
		if rec.VaultA, err = parseKey("vault_a", vaultA); err != nil {
			return nil, err
		}
		if rec.VaultB, err = parseKey("vault_b", vaultB); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadLastIndexed returns the persisted index stamp.
func (s *Store) LoadLastIndexed(ctx context.Context) (time.Time, bool, error) {
	var at time.Time
	row := s.pool.QueryRow(ctx, `SELECT last_indexed FROM discovery_state WHERE name=$1`, stateName)
	if err := row.Scan(&at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}

// SaveLastIndexed upserts the index stamp.
func (s *Store) SaveLastIndexed(ctx context.Context, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO discovery_state (name, last_indexed, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_indexed = EXCLUDED.last_indexed, updated_at = now()
	`, stateName, at)
	return err
}

func parseKey(column, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse %s %q: %w", column, value, err)
	}
	return key, nil
}
