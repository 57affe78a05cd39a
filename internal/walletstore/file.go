package walletstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps the mapping in a single JSON file, rewritten
// atomically on every change.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore opens (or creates) the JSON wallet file at path.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	cleanPath := filepath.Clean(path)
	store := &FileStore{
		path:   cleanPath,
		logger: logger,
	}

	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		if err := store.write(map[string]string{}); err != nil {
			return nil, fmt.Errorf("initializing wallet file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking wallet file: %w", err)
	}

	return store, nil
}

func (s *FileStore) Set(ctx context.Context, userID, address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wallets, err := s.read()
	if err != nil {
		return err
	}
	wallets[userID] = address

	if err := s.write(wallets); err != nil {
		return err
	}
	s.logger.Info("wallet saved", zap.String("user_id", userID))
	return nil
}

func (s *FileStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallets, err := s.read()
	if err != nil {
		return "", err
	}
	address, ok := wallets[userID]
	if !ok {
		return "", ErrNotFound
	}
	return address, nil
}

func (s *FileStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallets, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := wallets[userID]; !ok {
		return ErrNotFound
	}
	delete(wallets, userID)
	return s.write(wallets)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading wallet file: %w", err)
	}
	wallets := make(map[string]string)
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing wallet file: %w", err)
	}
	return wallets, nil
}

func (s *FileStore) write(wallets map[string]string) error {
	data, err := json.MarshalIndent(wallets, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding wallet file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing wallet file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing wallet file: %w", err)
	}
	return nil
}
