// Package walletstore persists the user-to-wallet-address mapping used
// by the command surface. It is the only state that outlives a single
// PnL computation.
package walletstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrNotFound is returned when no wallet is stored for a user.
var ErrNotFound = errors.New("wallet not found")

// Store maps user ids to Solana wallet addresses.
type Store interface {
	Set(ctx context.Context, userID, address string) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// ValidateAddress rejects strings that are not base58-encoded Solana
// public keys before they reach the store.
func ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid wallet address: %w", err)
	}
	return nil
}
