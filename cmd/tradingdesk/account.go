package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"tradingdesk/internal/broker"
	"tradingdesk/internal/config"
)

type accountCmd struct {
	cfg config.Config

	positions bool
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "show the live trading account state" }
func (*accountCmd) Usage() string {
	return `account [-positions]

  Prints cash, equity and buying power from the configured Alpaca account.
  With -positions, also lists every open holding.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.positions, "positions", false, "list open positions")
}

func (c *accountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cfg.Broker.APIKey == "" || c.cfg.Broker.APISecret == "" {
		fmt.Fprintln(os.Stderr, "Error: ALPACA_API_KEY and ALPACA_API_SECRET are not set.")
		return subcommands.ExitFailure
	}

	b := broker.NewAlpacaBroker(c.cfg.Broker)
	account, err := b.GetAccount(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	open, err := b.IsMarketOpen(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Account:      %s\n", account.ID)
	fmt.Printf("Cash:         %s\n", account.Cash.StringFixed(2))
	fmt.Printf("Equity:       %s\n", account.Equity.StringFixed(2))
	fmt.Printf("Buying power: %s\n", account.BuyingPower.StringFixed(2))
	fmt.Printf("Market open:  %v\n", open)
	if account.Blocked {
		fmt.Println("WARNING: trading is blocked on this account")
	}

	if c.positions {
		positions, err := b.GetPositions(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("\n%-8s %10s %12s %12s %14s\n", "SYMBOL", "QTY", "AVG ENTRY", "PRICE", "MARKET VALUE")
		for _, p := range positions {
			fmt.Printf("%-8s %10s %12s %12s %14s\n",
				p.Symbol, p.Qty, p.AvgEntry.StringFixed(2), p.CurrentPrice.StringFixed(2), p.MarketValue.StringFixed(2))
		}
	}
	return subcommands.ExitSuccess
}
