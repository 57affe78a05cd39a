package ledger

import "fmt"

// nativeSolMint is the pseudo-mint the indexing service uses to key the
// native SOL price inside response metadata. Wrapped SOL (…112) is a
// different key and is not consulted.
const nativeSolMint = "So11111111111111111111111111111111111111111"

// TokenAccount is one holding account for a token mint under a wallet.
type TokenAccount struct {
	Address   string `json:"address"`
	TokenMint string `json:"tokenAddress"`
}

// Transfer is a single inbound or outbound movement of token units as
// reported by the indexing service. The enrichment fields (SolValue,
// SolPriceUSD, CostUSD) are zero until the transfer is joined with its
// causal transaction.
type Transfer struct {
	TransactionID string  `json:"trans_id"`
	BlockTime     int64   `json:"block_time"`
	Flow          string  `json:"flow"` // "in" or "out"
	AmountRaw     int64   `json:"amount"`
	ValueUSD      float64 `json:"value"`

	SolValue    float64 `json:"-"`
	SolPriceUSD float64 `json:"-"`
	CostUSD     float64 `json:"-"`
}

// Instruction is one parsed instruction inside a transaction.
type Instruction struct {
	Type    string `json:"type"`
	Program string `json:"program"`
}

// Transaction is an on-chain operation identified by its globally
// unique hash. SolValue is denominated in lamports.
type Transaction struct {
	TransactionID string        `json:"txHash"`
	SolValue      float64       `json:"sol_value"`
	Instructions  []Instruction `json:"parsedInstruction"`

	// RelevantForToken marks wallet-level transactions recovered by the
	// instruction-classification heuristic.
	RelevantForToken bool `json:"-"`
}

// TokenInfo is token metadata discovered as a side-effect of transfer
// and transaction queries.
type TokenInfo struct {
	Symbol   string
	Name     string
	Decimals int
	PriceUSD float64
}

// Empty reports whether no metadata was discovered at all.
func (ti TokenInfo) Empty() bool {
	return ti.Symbol == "" && ti.Name == "" && ti.Decimals == 0 && ti.PriceUSD == 0
}

// TransfersPage is one accumulated transfer result set plus the
// side-data found in the same responses.
type TransfersPage struct {
	Transfers []Transfer
	TokenInfo TokenInfo
	HasInfo   bool
	// SolPriceUSD is the native SOL price in USD, zero when the
	// metadata never carried it.
	SolPriceUSD float64
}

// TransactionsPage is one accumulated transaction result set plus the
// native SOL price when the metadata carried it.
type TransactionsPage struct {
	Transactions []Transaction
	SolPriceUSD  float64
}

// UpstreamError reports a ledger query that did not succeed, either at
// the transport level or via an explicit success=false payload. It is
// fatal to the enclosing fetch step and is not retried by callers.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ledger query %s failed: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("ledger query %s failed: %s", e.Endpoint, e.Message)
}

// wire-level envelopes

type tokenAccountsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		TokenAccounts []TokenAccount `json:"tokenAccounts"`
	} `json:"data"`
}

type tokenMeta struct {
	Symbol   string  `json:"token_symbol"`
	Name     string  `json:"token_name"`
	Decimals int     `json:"token_decimals"`
	PriceUSD float64 `json:"price_usdt"`
}

type responseMetadata struct {
	Tokens map[string]tokenMeta `json:"tokens"`
}

type transfersResponse struct {
	Success  bool             `json:"success"`
	Data     []Transfer       `json:"data"`
	Metadata responseMetadata `json:"metadata"`
}

type transactionsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Transactions []Transaction `json:"transactions"`
	} `json:"data"`
	Metadata responseMetadata `json:"metadata"`
}
