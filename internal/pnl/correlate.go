package pnl

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/soltrack/soltrack/internal/ledger"
)

// Programs and instruction types that mark a wallet-level transaction
// as a trade or transfer of the tracked token.
const (
	programPump     = "pump"
	programSPLToken = "spl-token"
)

// Source is the slice of the ledger client the correlator consumes.
type Source interface {
	TokenAccounts(ctx context.Context, wallet, mint string) ([]ledger.TokenAccount, error)
	Transfers(ctx context.Context, wallet, tokenAccount, mint string) (ledger.TransfersPage, error)
	Transactions(ctx context.Context, address string) (ledger.TransactionsPage, error)
}

// Batch is the reconciled record set for one (wallet, mint) pair:
// all transfers (not deduplicated), the deduplicated transaction set,
// and the side-data discovered along the way.
type Batch struct {
	Accounts     []ledger.TokenAccount
	Transfers    []ledger.Transfer
	Transactions []ledger.Transaction
	TokenInfo    ledger.TokenInfo
	HasTokenInfo bool
	SolPriceUSD  float64
}

// Correlator merges the three upstream record streams into one Batch.
type Correlator struct {
	source Source
	pacing time.Duration
	logger *zap.Logger
}

// NewCorrelator creates a correlator. pacing is the courtesy delay
// between per-account fetch rounds; zero disables it.
func NewCorrelator(source Source, pacing time.Duration, logger *zap.Logger) *Correlator {
	return &Correlator{
		source: source,
		pacing: pacing,
		logger: logger.Named("correlator"),
	}
}

// Collect implements the reconciliation pass: per-account transfers and
// transactions, wallet-level transaction recovery via instruction
// classification, and transaction dedup by hash.
func (c *Correlator) Collect(ctx context.Context, wallet, mint string) (Batch, error) {
	accounts, err := c.source.TokenAccounts(ctx, wallet, mint)
	if err != nil {
		return Batch{}, fmt.Errorf("fetching token accounts: %w", err)
	}

	batch := Batch{Accounts: accounts}
	var allTransactions []ledger.Transaction

	for i, account := range accounts {
		if i > 0 {
			if err := c.pace(ctx); err != nil {
				return Batch{}, err
			}
		}

		page, err := c.source.Transfers(ctx, wallet, account.Address, mint)
		if err != nil {
			return Batch{}, fmt.Errorf("fetching transfers for %s: %w", account.Address, err)
		}
		batch.Transfers = append(batch.Transfers, page.Transfers...)
		if page.HasInfo && !batch.HasTokenInfo {
			batch.TokenInfo = page.TokenInfo
			batch.HasTokenInfo = true
		}
		if page.SolPriceUSD > 0 {
			batch.SolPriceUSD = page.SolPriceUSD
		}

		txPage, err := c.source.Transactions(ctx, account.Address)
		if err != nil {
			return Batch{}, fmt.Errorf("fetching transactions for %s: %w", account.Address, err)
		}
		allTransactions = append(allTransactions, txPage.Transactions...)
		if batch.SolPriceUSD == 0 && txPage.SolPriceUSD > 0 {
			batch.SolPriceUSD = txPage.SolPriceUSD
		}
	}

	// Swap and trade transactions are visible only at the wallet level,
	// not on the token account.
	walletPage, err := c.source.Transactions(ctx, wallet)
	if err != nil {
		return Batch{}, fmt.Errorf("fetching wallet transactions: %w", err)
	}
	if batch.SolPriceUSD == 0 && walletPage.SolPriceUSD > 0 {
		batch.SolPriceUSD = walletPage.SolPriceUSD
	}

	relevant := lo.Filter(walletPage.Transactions, func(tx ledger.Transaction, _ int) bool {
		return isRelevantTransaction(tx)
	})
	relevant = lo.Map(relevant, func(tx ledger.Transaction, _ int) ledger.Transaction {
		tx.RelevantForToken = true
		return tx
	})
	allTransactions = append(allTransactions, relevant...)

	batch.Transactions = dedupTransactions(allTransactions)

	c.logger.Debug("collected records",
		zap.String("wallet", wallet),
		zap.String("mint", mint),
		zap.Int("accounts", len(accounts)),
		zap.Int("transfers", len(batch.Transfers)),
		zap.Int("transactions", len(batch.Transactions)),
		zap.Float64("sol_price_usd", batch.SolPriceUSD))

	return batch, nil
}

func (c *Correlator) pace(ctx context.Context) error {
	if c.pacing <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.pacing):
		return nil
	}
}

// isRelevantTransaction reports whether a wallet-level transaction
// looks like a trade or transfer of the tracked token: a pump buy/sell
// or an SPL token transfer.
func isRelevantTransaction(tx ledger.Transaction) bool {
	for _, instr := range tx.Instructions {
		if instr.Program == programPump && (instr.Type == "buy" || instr.Type == "sell") {
			return true
		}
		if instr.Program == programSPLToken && instr.Type == "transfer" {
			return true
		}
	}
	return false
}

// dedupTransactions drops id-less records and collapses duplicates by
// transaction hash, last occurrence winning. Output order follows the
// first occurrence of each hash, so the pass is deterministic and
// idempotent.
func dedupTransactions(txs []ledger.Transaction) []ledger.Transaction {
	withID := lo.Filter(txs, func(tx ledger.Transaction, _ int) bool {
		return tx.TransactionID != ""
	})
	byID := lo.SliceToMap(withID, func(tx ledger.Transaction) (string, ledger.Transaction) {
		return tx.TransactionID, tx
	})

	seen := make(map[string]bool, len(byID))
	out := make([]ledger.Transaction, 0, len(byID))
	for _, tx := range withID {
		if !seen[tx.TransactionID] {
			seen[tx.TransactionID] = true
			out = append(out, byID[tx.TransactionID])
		}
	}
	return out
}
