package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	endpointTokenAccounts = "/account/tokenaccounts"
	endpointTransfers     = "/account/transfer"
	endpointTransactions  = "/account/transaction"
)

// Config holds the client knobs. Zero values fall back to defaults
// matching the public indexing service limits.
type Config struct {
	BaseURL             string
	AccountPageSize     int
	TransferPageSize    int
	TransactionPageSize int
	// MaxPages caps page traversal per query. 1 reproduces the
	// single-page behavior of early clients.
	MaxPages int
	Retries  int
	Timeout  time.Duration
}

// Client issues paginated read-only queries against the external
// ledger-indexing service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a ledger client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	// A zero page size would defeat the short-page termination check,
	// so every page size gets the service default.
	if cfg.AccountPageSize <= 0 {
		cfg.AccountPageSize = 480
	}
	if cfg.TransferPageSize <= 0 {
		cfg.TransferPageSize = 100
	}
	if cfg.TransactionPageSize <= 0 {
		cfg.TransactionPageSize = 40
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("ledger"),
	}
}

// TokenAccounts returns the wallet's holding accounts for the given
// mint. The service-side filter is advisory, so results are filtered
// by mint again here.
func (c *Client) TokenAccounts(ctx context.Context, wallet, mint string) ([]TokenAccount, error) {
	var accounts []TokenAccount

	for page := 1; page <= c.cfg.MaxPages; page++ {
		params := url.Values{}
		params.Set("address", wallet)
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.cfg.AccountPageSize))
		params.Set("type", "token")
		params.Set("hide_zero", "false")
		params.Set("filter", mint)

		var resp tokenAccountsResponse
		if err := c.getJSON(ctx, endpointTokenAccounts, params, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, &UpstreamError{Endpoint: endpointTokenAccounts, Message: "service reported failure"}
		}

		for _, account := range resp.Data.TokenAccounts {
			if account.TokenMint == mint {
				accounts = append(accounts, account)
			}
		}

		if len(resp.Data.TokenAccounts) < c.cfg.AccountPageSize {
			break
		}
	}

	c.logger.Debug("fetched token accounts",
		zap.String("wallet", wallet),
		zap.String("mint", mint),
		zap.Int("count", len(accounts)))
	return accounts, nil
}

// Transfers returns all transfers recorded against one token account,
// plus token metadata and the native SOL price when the response
// metadata carried them.
func (c *Client) Transfers(ctx context.Context, wallet, tokenAccount, mint string) (TransfersPage, error) {
	var result TransfersPage

	for page := 1; page <= c.cfg.MaxPages; page++ {
		params := url.Values{}
		params.Set("address", wallet)
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.cfg.TransferPageSize))
		params.Set("remove_spam", "true")
		params.Set("exclude_amount_zero", "true")
		params.Set("token_account", tokenAccount)

		var resp transfersResponse
		if err := c.getJSON(ctx, endpointTransfers, params, &resp); err != nil {
			return TransfersPage{}, err
		}
		if !resp.Success {
			return TransfersPage{}, &UpstreamError{Endpoint: endpointTransfers, Message: "service reported failure"}
		}

		result.Transfers = append(result.Transfers, resp.Data...)

		if meta, ok := resp.Metadata.Tokens[mint]; ok && !result.HasInfo {
			result.TokenInfo = TokenInfo{
				Symbol:   meta.Symbol,
				Name:     meta.Name,
				Decimals: meta.Decimals,
				PriceUSD: meta.PriceUSD,
			}
			result.HasInfo = true
		}
		if meta, ok := resp.Metadata.Tokens[nativeSolMint]; ok && meta.PriceUSD > 0 {
			result.SolPriceUSD = meta.PriceUSD
		}

		if len(resp.Data) < c.cfg.TransferPageSize {
			break
		}
	}

	return result, nil
}

// Transactions returns the transaction history of an address, which is
// either a wallet or a token account. Pages are chained by a "before"
// cursor on the last seen transaction hash.
func (c *Client) Transactions(ctx context.Context, address string) (TransactionsPage, error) {
	var result TransactionsPage
	before := ""

	for page := 1; page <= c.cfg.MaxPages; page++ {
		params := url.Values{}
		params.Set("address", address)
		params.Set("page_size", strconv.Itoa(c.cfg.TransactionPageSize))
		if before != "" {
			params.Set("before", before)
		}

		var resp transactionsResponse
		if err := c.getJSON(ctx, endpointTransactions, params, &resp); err != nil {
			return TransactionsPage{}, err
		}
		if !resp.Success {
			return TransactionsPage{}, &UpstreamError{Endpoint: endpointTransactions, Message: "service reported failure"}
		}

		result.Transactions = append(result.Transactions, resp.Data.Transactions...)

		if meta, ok := resp.Metadata.Tokens[nativeSolMint]; ok && meta.PriceUSD > 0 {
			result.SolPriceUSD = meta.PriceUSD
		}

		if len(resp.Data.Transactions) < c.cfg.TransactionPageSize {
			break
		}
		before = resp.Data.Transactions[len(resp.Data.Transactions)-1].TransactionID
	}

	return result, nil
}

// getJSON performs one GET with exponential-backoff retry on transient
// transport failures. Client errors other than 429 and an explicit
// success=false payload are terminal.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	requestURL := c.cfg.BaseURL + endpoint + "?" + params.Encode()

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", "soltrack/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
		default:
			return nil, backoff.Permanent(&UpstreamError{Endpoint: endpoint, Status: resp.StatusCode})
		}
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 500 * time.Millisecond
	backoffPolicy.MaxInterval = 10 * time.Second

	notify := func(err error, duration time.Duration) {
		c.logger.Warn("retrying ledger query",
			zap.String("endpoint", endpoint),
			zap.Error(err),
			zap.Duration("backoff", duration))
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(uint(c.cfg.Retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}
