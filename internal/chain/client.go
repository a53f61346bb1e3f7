package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// KeyedAccount pairs an account's address with its raw data.
type KeyedAccount struct {
	Address solana.PublicKey
	Data    []byte
}

// Client wraps the ledger RPC and provides the account queries the engine
// needs. It is stateless beyond the connection.
type Client struct {
	rpc *rpc.Client
}

// NewClient creates a client for the RPC endpoint.
func NewClient(endpoint string) *Client {
	return &Client{rpc: rpc.New(endpoint)}
}

// Close closes the underlying RPC client.
func (c *Client) Close() error {
	if c.rpc == nil {
		return nil
	}
	return c.rpc.Close()
}

// ProgramAccounts scans a program's accounts server-side, keeping only
// those of exactly dataSize bytes whose bytes at offset equal match. An
// empty match applies the size filter alone. Result order is not
// guaranteed by the ledger.
func (c *Client) ProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64, offset uint64, match []byte) ([]KeyedAccount, error) {
	filters := []rpc.RPCFilter{{DataSize: dataSize}}
	if len(match) > 0 {
		filters = append(filters, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{Offset: offset, Bytes: match},
		})
	}

	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
		Filters:    filters,
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]KeyedAccount, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{
			Address: keyed.Pubkey,
			Data:    keyed.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}

// MultipleAccountData fetches raw data for a batch of accounts, preserving
// input order, with nil at the position of any account that does not
// exist.
func (c *Client) MultipleAccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out, err := c.rpc.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, err
	}

	datas := make([][]byte, len(keys))
	if out == nil {
		return datas, nil
	}
	for i, acct := range out.Value {
		if i >= len(datas) || acct == nil || acct.Data == nil {
			continue
		}
		datas[i] = acct.Data.GetBinary()
	}
	return datas, nil
}
