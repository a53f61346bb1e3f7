package discovery

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"poolscout/internal/model"
)

// SPL token account layout places the u64 amount after mint and owner.
const tokenAmountOffset = 64

// reserveBatchSize stays within the RPC limit for getMultipleAccounts.
const reserveBatchSize = 100

// fetchReserves reads vault token balances and patches them onto the
// records. Best effort: fetch errors leave reserves at zero.
func (e *Engine) fetchReserves(ctx context.Context, records []model.PoolRecord) {
	vaults := make([]solana.PublicKey, 0, len(records)*2)
	wanted := make(map[solana.PublicKey]bool)
	for _, rec := range records {
		for _, v := range [2]solana.PublicKey{rec.VaultA, rec.VaultB} {
			if v.IsZero() || wanted[v] {
				continue
			}
			wanted[v] = true
			vaults = append(vaults, v)
		}
	}
	if len(vaults) == 0 {
		return
	}

	amounts := make(map[solana.PublicKey]uint64, len(vaults))
	for startAt := 0; startAt < len(vaults); startAt += reserveBatchSize {
		end := startAt + reserveBatchSize
		if end > len(vaults) {
			end = len(vaults)
		}
		batch := vaults[startAt:end]

		data, err := e.querier.MultipleAccountData(ctx, batch)
		if err != nil {
			e.logger.Warn("reserve fetch failed",
				zap.Int("vaults", len(batch)),
				zap.Error(err))
			return
		}
		for i, d := range data {
			if len(d) < tokenAmountOffset+8 {
				continue
			}
			amounts[batch[i]] = binary.LittleEndian.Uint64(d[tokenAmountOffset : tokenAmountOffset+8])
		}
	}

	for i := range records {
		if amt, ok := amounts[records[i].VaultA]; ok {
			records[i].ReserveA = amt
		}
		if amt, ok := amounts[records[i].VaultB]; ok {
			records[i].ReserveB = amt
		}
	}
}
