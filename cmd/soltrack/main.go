package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/soltrack/soltrack/internal/config"
	"github.com/soltrack/soltrack/internal/format"
	"github.com/soltrack/soltrack/internal/ledger"
	"github.com/soltrack/soltrack/internal/logger"
	"github.com/soltrack/soltrack/internal/pnl"
	"github.com/soltrack/soltrack/internal/walletstore"
)

const defaultUserID = "default"

func main() {
	app := &cli.App{
		Name:  "soltrack",
		Usage: "realized/unrealized PnL for a token held in a Solana wallet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "configs/config.json",
				Usage: "configuration file path",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "wallet",
				Usage: "manage the stored wallet address",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "store a wallet address",
						ArgsUsage: "<wallet_address>",
						Flags:     []cli.Flag{userFlag()},
						Action:    walletSet,
					},
					{
						Name:   "show",
						Usage:  "print the stored wallet address",
						Flags:  []cli.Flag{userFlag()},
						Action: walletShow,
					},
				},
			},
			{
				Name:      "pnl",
				Usage:     "compute PnL for a token mint and print the card",
				ArgsUsage: "<token_mint>",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:  "wallet",
						Usage: "wallet address, overrides the stored one",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 5 * time.Minute,
						Usage: "overall computation timeout",
					},
					&cli.BoolFlag{
						Name:  "details",
						Usage: "print the per-transfer breakdown",
					},
				},
				Action: computePnL,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "user",
		Value: defaultUserID,
		Usage: "user id owning the stored wallet",
	}
}

// setup loads configuration and builds the shared logger.
func setup(c *cli.Context) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     "soltrack.log",
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging || c.Bool("debug"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	return cfg, log, nil
}

func walletSet(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: soltrack wallet set <wallet_address>", 2)
	}

	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	store, err := walletstore.NewFileStore(cfg.WalletsFile, log.WithComponent("walletstore"))
	if err != nil {
		return err
	}

	address := c.Args().First()
	if err := store.Set(c.Context, c.String("user"), address); err != nil {
		return err
	}
	fmt.Printf("wallet address set to %s\n", address)
	return nil
}

func walletShow(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	store, err := walletstore.NewFileStore(cfg.WalletsFile, log.WithComponent("walletstore"))
	if err != nil {
		return err
	}

	address, err := store.Get(c.Context, c.String("user"))
	if errors.Is(err, walletstore.ErrNotFound) {
		return cli.Exit("no wallet stored; run: soltrack wallet set <wallet_address>", 1)
	}
	if err != nil {
		return err
	}
	fmt.Println(address)
	return nil
}

func computePnL(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: soltrack pnl <token_mint>", 2)
	}
	mint := c.Args().First()

	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	wallet := c.String("wallet")
	if wallet == "" {
		store, err := walletstore.NewFileStore(cfg.WalletsFile, log.WithComponent("walletstore"))
		if err != nil {
			return err
		}
		wallet, err = store.Get(c.Context, c.String("user"))
		if errors.Is(err, walletstore.ErrNotFound) {
			return cli.Exit("no wallet stored; run: soltrack wallet set <wallet_address>", 1)
		}
		if err != nil {
			return err
		}
	}
	if err := walletstore.ValidateAddress(wallet); err != nil {
		return err
	}

	// One correlation id per computation, shared by every fetch the
	// pipeline issues.
	runLog := log.WithOperation("pnl")

	client := ledger.New(ledger.Config{
		BaseURL:             cfg.LedgerBaseURL,
		AccountPageSize:     cfg.AccountPageSize,
		TransferPageSize:    cfg.TransferPageSize,
		TransactionPageSize: cfg.TransactionPageSize,
		MaxPages:            cfg.MaxPages,
		Retries:             cfg.Retries,
		Timeout:             time.Duration(cfg.RequestTimeoutSec) * time.Second,
	}, runLog)

	service := pnl.NewService(client, pnl.ServiceConfig{
		Pacing: time.Duration(cfg.PacingDelayMs) * time.Millisecond,
		Engine: pnl.Options{LegacyBalanceRepair: cfg.LegacyBalanceRepair},
	}, runLog)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	runLog.Info("computing pnl", zap.String("wallet", wallet), zap.String("mint", mint))

	report, err := service.Compute(ctx, wallet, mint)
	if errors.Is(err, pnl.ErrTokenNotFound) {
		return cli.Exit("token not found in this wallet; check the mint address", 1)
	}
	if err != nil {
		return err
	}

	fmt.Println(format.Card(report, "@"+c.String("user")))
	if c.Bool("details") {
		fmt.Println(format.DetailTable(report))
	}
	return nil
}
