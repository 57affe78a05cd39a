package pnl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soltrack/soltrack/internal/ledger"
)

// fakeSource serves canned ledger responses keyed by address.
type fakeSource struct {
	accounts     []ledger.TokenAccount
	transfers    map[string]ledger.TransfersPage
	transactions map[string]ledger.TransactionsPage
	err          error
}

func (f *fakeSource) TokenAccounts(_ context.Context, _, _ string) ([]ledger.TokenAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

func (f *fakeSource) Transfers(_ context.Context, _, tokenAccount, _ string) (ledger.TransfersPage, error) {
	return f.transfers[tokenAccount], nil
}

func (f *fakeSource) Transactions(_ context.Context, address string) (ledger.TransactionsPage, error) {
	return f.transactions[address], nil
}

func TestCollectMergesAccountsAndWallet(t *testing.T) {
	source := &fakeSource{
		accounts: []ledger.TokenAccount{
			{Address: "acct1", TokenMint: "mint"},
			{Address: "acct2", TokenMint: "mint"},
		},
		transfers: map[string]ledger.TransfersPage{
			"acct1": {
				Transfers: []ledger.Transfer{
					{TransactionID: "tx1", Flow: "in", AmountRaw: 10},
				},
				TokenInfo:   ledger.TokenInfo{Symbol: "TST", Decimals: 6},
				HasInfo:     true,
				SolPriceUSD: 25,
			},
			"acct2": {
				Transfers: []ledger.Transfer{
					// Same identity as acct1's transfer: transfers are
					// not deduplicated.
					{TransactionID: "tx1", Flow: "in", AmountRaw: 10},
				},
				TokenInfo: ledger.TokenInfo{Symbol: "OTHER"},
				HasInfo:   true,
			},
		},
		transactions: map[string]ledger.TransactionsPage{
			"acct1": {Transactions: []ledger.Transaction{
				{TransactionID: "tx1", SolValue: 100},
			}},
			"acct2": {},
			"wallet": {Transactions: []ledger.Transaction{
				{
					TransactionID: "tx1",
					SolValue:      200,
					Instructions:  []ledger.Instruction{{Type: "buy", Program: "pump"}},
				},
				{
					TransactionID: "tx2",
					Instructions:  []ledger.Instruction{{Type: "transfer", Program: "spl-token"}},
				},
				{
					TransactionID: "irrelevant",
					Instructions:  []ledger.Instruction{{Type: "swap", Program: "jupiter"}},
				},
				{
					// No hash: dropped silently.
					Instructions: []ledger.Instruction{{Type: "buy", Program: "pump"}},
				},
			}},
		},
	}

	correlator := NewCorrelator(source, 0, zap.NewNop())
	batch, err := correlator.Collect(context.Background(), "wallet", "mint")
	require.NoError(t, err)

	// Transfers accumulate without dedup.
	assert.Len(t, batch.Transfers, 2)

	// tx1 seen at the account level and again at the wallet level:
	// last occurrence wins and carries the relevance tag.
	require.Len(t, batch.Transactions, 2)
	byID := make(map[string]ledger.Transaction)
	for _, tx := range batch.Transactions {
		byID[tx.TransactionID] = tx
	}
	require.Contains(t, byID, "tx1")
	require.Contains(t, byID, "tx2")
	assert.True(t, byID["tx1"].RelevantForToken)
	assert.InDelta(t, 200.0, byID["tx1"].SolValue, 1e-9)
	assert.NotContains(t, byID, "irrelevant")

	// First non-empty token info wins.
	assert.Equal(t, "TST", batch.TokenInfo.Symbol)
	assert.InDelta(t, 25.0, batch.SolPriceUSD, 1e-9)
}

func TestCollectPropagatesFetchErrors(t *testing.T) {
	source := &fakeSource{err: &ledger.UpstreamError{Endpoint: "/account/tokenaccounts", Status: 502}}

	correlator := NewCorrelator(source, 0, zap.NewNop())
	_, err := correlator.Collect(context.Background(), "wallet", "mint")

	var upstream *ledger.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 502, upstream.Status)
}

func TestCollectNoAccounts(t *testing.T) {
	source := &fakeSource{
		transactions: map[string]ledger.TransactionsPage{"wallet": {}},
	}

	correlator := NewCorrelator(source, 0, zap.NewNop())
	batch, err := correlator.Collect(context.Background(), "wallet", "mint")
	require.NoError(t, err)

	assert.Empty(t, batch.Transfers)
	assert.Empty(t, batch.Transactions)
	assert.False(t, batch.HasTokenInfo)
}

func TestIsRelevantTransaction(t *testing.T) {
	tests := []struct {
		name     string
		instr    ledger.Instruction
		relevant bool
	}{
		{"pump buy", ledger.Instruction{Type: "buy", Program: "pump"}, true},
		{"pump sell", ledger.Instruction{Type: "sell", Program: "pump"}, true},
		{"spl transfer", ledger.Instruction{Type: "transfer", Program: "spl-token"}, true},
		{"pump transfer", ledger.Instruction{Type: "transfer", Program: "pump"}, false},
		{"spl buy", ledger.Instruction{Type: "buy", Program: "spl-token"}, false},
		{"unrelated", ledger.Instruction{Type: "swap", Program: "jupiter"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ledger.Transaction{
				TransactionID: "tx",
				Instructions:  []ledger.Instruction{tt.instr},
			}
			assert.Equal(t, tt.relevant, isRelevantTransaction(tx))
		})
	}
}

func TestDedupTransactionsIdempotent(t *testing.T) {
	txs := []ledger.Transaction{
		{TransactionID: "a", SolValue: 1},
		{TransactionID: "b", SolValue: 2},
		{TransactionID: "a", SolValue: 3},
		{SolValue: 4}, // no hash, dropped
	}

	once := dedupTransactions(txs)
	require.Len(t, once, 2)
	assert.Equal(t, "a", once[0].TransactionID)
	assert.InDelta(t, 3.0, once[0].SolValue, 1e-9) // last occurrence wins

	twice := dedupTransactions(once)
	assert.Equal(t, once, twice)
}
