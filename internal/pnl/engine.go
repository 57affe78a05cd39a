package pnl

import (
	"math"
	"sort"
	"time"

	"github.com/soltrack/soltrack/internal/ledger"
)

// Options tunes engine behavior that intentionally deviates between
// releases.
type Options struct {
	// LegacyBalanceRepair reproduces the historical negative-balance
	// repair, which priced the token shortfall at the SOL/USD rate and
	// added the product to the token-denominated buy total. Off by
	// default in favor of the unit-consistent repair that books the
	// shortfall as unobserved buys at the token's current price.
	LegacyBalanceRepair bool
}

// ComputePnL walks the enriched transfer set once, in block-time order,
// and produces the aggregate PnL report. It is a pure transform: all
// degenerate divisions yield zero and no input ever raises.
func ComputePnL(transfers []ledger.Transfer, info ledger.TokenInfo, solPriceUSD float64, opts Options) Report {
	if len(transfers) == 0 {
		return Report{SolPriceUSD: solPriceUSD, Transfers: []TransferDetail{}}
	}

	sorted := make([]ledger.Transfer, len(transfers))
	copy(sorted, transfers)
	// Stable: equal block times keep their input order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BlockTime < sorted[j].BlockTime
	})

	decimalFactor := math.Pow10(info.Decimals)

	var (
		totalBought    float64
		totalCostUSD   float64
		totalCostSOL   float64
		totalSold      float64
		totalSoldSOL   float64
		totalRevenue   float64
		currentBalance float64
	)

	details := make([]TransferDetail, 0, len(sorted))
	for _, transfer := range sorted {
		amount := float64(transfer.AmountRaw) / decimalFactor

		pricePerToken := 0.0
		if amount != 0 {
			pricePerToken = transfer.ValueUSD / amount
		}

		details = append(details, TransferDetail{
			Timestamp:     time.Unix(transfer.BlockTime, 0).UTC().Format("2006-01-02 15:04:05"),
			TransactionID: transfer.TransactionID,
			Flow:          transfer.Flow,
			Amount:        amount,
			TokenValueUSD: transfer.ValueUSD,
			SolValue:      transfer.SolValue,
			CostUSD:       transfer.CostUSD,
			PricePerToken: pricePerToken,
		})

		switch transfer.Flow {
		case "in":
			totalBought += amount
			if transfer.CostUSD > 0 {
				totalCostUSD += transfer.CostUSD
			} else {
				// No causal transaction recovered; fall back to the
				// transfer's own fiat value.
				totalCostUSD += transfer.ValueUSD
			}
			totalCostSOL += transfer.SolValue
			currentBalance += amount
		case "out":
			totalSoldSOL += transfer.SolValue
			totalSold += amount
			totalRevenue += transfer.ValueUSD
			currentBalance -= amount
		}
	}

	// A negative balance means the inbound history is under-observed
	// (sold more than we ever saw bought). Repair by booking the
	// shortfall as additional acquisitions, then clamp to zero.
	if currentBalance < 0 {
		shortfall := -currentBalance
		if opts.LegacyBalanceRepair {
			totalBought += shortfall * solPriceUSD
		} else {
			totalBought += shortfall
			totalCostUSD += shortfall * info.PriceUSD
		}
		currentBalance = 0
	}

	currentValue := currentBalance * info.PriceUSD

	realizedPnL := totalSoldSOL - totalCostSOL

	unrealizedPnL := 0.0
	if solPriceUSD > 0 {
		unrealizedPnL = currentValue / solPriceUSD
	}

	totalPnL := realizedPnL + unrealizedPnL

	roi := 0.0
	if totalCostSOL > 0 {
		roi = totalPnL / totalCostSOL * 100
	}

	return Report{
		TokenSymbol:    info.Symbol,
		TokenName:      info.Name,
		TotalBought:    totalBought,
		TotalCostUSD:   totalCostUSD,
		TotalCostSOL:   totalCostSOL,
		TotalSold:      totalSold,
		TotalRevenue:   totalRevenue,
		CurrentBalance: currentBalance,
		CurrentValue:   currentValue,
		RealizedPnL:    realizedPnL,
		UnrealizedPnL:  unrealizedPnL,
		TotalPnL:       totalPnL,
		ROIPercentage:  roi,
		SolPriceUSD:    solPriceUSD,
		Transfers:      details,
	}
}
