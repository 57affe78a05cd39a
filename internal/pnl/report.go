package pnl

// TransferDetail is one row of the per-transfer breakdown behind a
// report. Amounts are in whole token units, SolValue in SOL.
type TransferDetail struct {
	Timestamp     string  `json:"timestamp"`
	TransactionID string  `json:"transaction_id"`
	Flow          string  `json:"flow"`
	Amount        float64 `json:"amount"`
	TokenValueUSD float64 `json:"token_value_usd"`
	SolValue      float64 `json:"sol_value"`
	CostUSD       float64 `json:"cost_usd"`
	PricePerToken float64 `json:"price_per_token"`
}

// Report is the point-in-time PnL snapshot for one (wallet, mint)
// pair. It is produced once per computation and never mutated.
type Report struct {
	TokenSymbol string `json:"token_symbol"`
	TokenName   string `json:"token_name"`

	TotalBought    float64 `json:"total_bought"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	TotalCostSOL   float64 `json:"total_cost_sol"`
	TotalSold      float64 `json:"total_sold"`
	TotalRevenue   float64 `json:"total_revenue"`
	CurrentBalance float64 `json:"current_balance"`
	CurrentValue   float64 `json:"current_value"`

	// RealizedPnL, UnrealizedPnL and TotalPnL are denominated in SOL.
	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	TotalPnL      float64 `json:"total_pnl"`
	ROIPercentage float64 `json:"roi_percentage"`

	// SolPriceUSD is the native SOL price the computation used, kept so
	// the presentation layer can convert SOL figures to USD.
	SolPriceUSD float64 `json:"sol_price_usd"`

	Transfers []TransferDetail `json:"transfers"`
}

// HasIdentity reports whether any token metadata was resolved. A
// report without identity means the token was never observed in the
// wallet, as opposed to a valid all-zero PnL.
func (r *Report) HasIdentity() bool {
	return r.TokenSymbol != "" || r.TokenName != ""
}
