package pnl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrTokenNotFound is returned when the wallet never held the token:
// either no holding account matched the mint, or no token identity
// could be resolved from any response. Callers use it to distinguish
// "token never held" from a valid all-zero PnL.
var ErrTokenNotFound = errors.New("token not found in wallet")

// ServiceConfig tunes one PnL pipeline.
type ServiceConfig struct {
	// Pacing is the courtesy delay between per-account fetch rounds.
	Pacing time.Duration
	// Engine options, see Options.
	Engine Options
}

// Service runs the full pipeline for one (wallet, mint) pair:
// collect, enrich, compute. It holds no per-request state.
type Service struct {
	correlator *Correlator
	engine     Options
	logger     *zap.Logger
}

// NewService creates a PnL service over the given ledger source.
func NewService(source Source, cfg ServiceConfig, logger *zap.Logger) *Service {
	return &Service{
		correlator: NewCorrelator(source, cfg.Pacing, logger),
		engine:     cfg.Engine,
		logger:     logger.Named("pnl"),
	}
}

// Compute produces the PnL report for one (wallet, mint) pair.
// Fetch failures propagate as-is; a wallet that never held the token
// yields ErrTokenNotFound.
func (s *Service) Compute(ctx context.Context, wallet, mint string) (*Report, error) {
	batch, err := s.correlator.Collect(ctx, wallet, mint)
	if err != nil {
		return nil, err
	}

	enriched := Enrich(batch.Transfers, batch.Transactions, batch.SolPriceUSD)
	report := ComputePnL(enriched, batch.TokenInfo, batch.SolPriceUSD, s.engine)

	if !report.HasIdentity() {
		return nil, ErrTokenNotFound
	}

	s.logger.Info("computed pnl",
		zap.String("wallet", wallet),
		zap.String("mint", mint),
		zap.String("symbol", report.TokenSymbol),
		zap.Float64("total_pnl_sol", report.TotalPnL),
		zap.Float64("roi_pct", report.ROIPercentage))

	return &report, nil
}
