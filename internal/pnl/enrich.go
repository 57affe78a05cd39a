package pnl

import (
	"github.com/samber/lo"

	"github.com/soltrack/soltrack/internal/ledger"
)

const lamportsPerSOL = 1e9

// Enrich joins each transfer with its causal transaction by hash to
// recover the SOL amount the transaction moved and its USD cost at the
// current SOL price. The join is best-effort: a transfer with no
// matching transaction passes through unmodified and is treated as a
// lower-confidence cost record downstream.
func Enrich(transfers []ledger.Transfer, transactions []ledger.Transaction, solPriceUSD float64) []ledger.Transfer {
	txByID := lo.SliceToMap(
		lo.Filter(transactions, func(tx ledger.Transaction, _ int) bool {
			return tx.TransactionID != ""
		}),
		func(tx ledger.Transaction) (string, ledger.Transaction) {
			return tx.TransactionID, tx
		})

	enriched := make([]ledger.Transfer, 0, len(transfers))
	for _, transfer := range transfers {
		if tx, ok := txByID[transfer.TransactionID]; ok {
			transfer.SolValue = tx.SolValue / lamportsPerSOL
			transfer.SolPriceUSD = solPriceUSD
			transfer.CostUSD = transfer.SolValue * solPriceUSD
		}
		enriched = append(enriched, transfer)
	}
	return enriched
}
