package config

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LedgerBaseURL       string `mapstructure:"ledger_base_url"`
	AccountPageSize     int    `mapstructure:"account_page_size"`
	TransferPageSize    int    `mapstructure:"transfer_page_size"`
	TransactionPageSize int    `mapstructure:"transaction_page_size"`
	MaxPages            int    `mapstructure:"max_pages"`
	PacingDelayMs       int    `mapstructure:"pacing_delay_ms"`
	RequestTimeoutSec   int    `mapstructure:"request_timeout_sec"`
	Retries             int    `mapstructure:"retries"`
	WalletsFile         string `mapstructure:"wallets_file"`
	DebugLogging        bool   `mapstructure:"debug_logging"`
	LegacyBalanceRepair bool   `mapstructure:"legacy_balance_repair"`
}

const (
	DefaultLedgerBaseURL       = "https://api-v2.solscan.io/v2"
	DefaultAccountPageSize     = 480
	DefaultTransferPageSize    = 100
	DefaultTransactionPageSize = 40
	DefaultMaxPages            = 5
	DefaultPacingDelayMs       = 1000
	DefaultRequestTimeoutSec   = 30
	DefaultRetries             = 3
	DefaultWalletsFile         = "user_wallets.json"
)

// LoadConfig reads configuration from the given file, applying defaults
// and SOLTRACK_* environment overrides. The defaults form a complete
// configuration, so a missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"ledger_base_url":       DefaultLedgerBaseURL,
		"account_page_size":     DefaultAccountPageSize,
		"transfer_page_size":    DefaultTransferPageSize,
		"transaction_page_size": DefaultTransactionPageSize,
		"max_pages":             DefaultMaxPages,
		"pacing_delay_ms":       DefaultPacingDelayMs,
		"request_timeout_sec":   DefaultRequestTimeoutSec,
		"retries":               DefaultRetries,
		"wallets_file":          DefaultWalletsFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if err := validateBaseURL(cfg.LedgerBaseURL); err != nil {
		return err
	}
	if cfg.AccountPageSize <= 0 || cfg.TransferPageSize <= 0 || cfg.TransactionPageSize <= 0 {
		return errors.New("invalid page size")
	}
	if cfg.MaxPages <= 0 {
		return errors.New("invalid max_pages")
	}
	if cfg.PacingDelayMs < 0 {
		return errors.New("invalid pacing_delay_ms")
	}
	if cfg.RequestTimeoutSec <= 0 {
		return errors.New("invalid request_timeout_sec")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.WalletsFile == "" {
		return errors.New("missing wallets_file")
	}
	return nil
}

func validateBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid ledger_base_url format")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("ledger_base_url must use HTTP(S)")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("SOLTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envURL := v.GetString("LEDGER_BASE_URL"); envURL != "" {
		cfg.LedgerBaseURL = envURL
	}
	if envWallets := v.GetString("WALLETS_FILE"); envWallets != "" {
		cfg.WalletsFile = envWallets
	}
}
