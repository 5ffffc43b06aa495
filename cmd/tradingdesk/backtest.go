package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"tradingdesk/internal/backtest"
	"tradingdesk/internal/config"
	"tradingdesk/internal/data"
	"tradingdesk/internal/notify"
	"tradingdesk/internal/repository"
	"tradingdesk/strategies/momentum"
	"tradingdesk/strategies/pairs"
)

type backtestCmd struct {
	cfg config.Config

	symbols   string
	start     string
	end       string
	strategy  string
	capital   string
	frequency string
	tradesOut string
	equityOut string
	notify    bool
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "run a walk-forward backtest over historical bars" }
func (*backtestCmd) Usage() string {
	return `backtest -symbols <csv> -start <date> -end <date> [-strategy momentum|pairs]

  Simulates the chosen strategy against daily bars from the database,
  rebalancing on the configured schedule, and prints a performance report.
  Dates are YYYY-MM-DD.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbols to trade (required)")
	f.StringVar(&c.start, "start", "", "simulation start date (required)")
	f.StringVar(&c.end, "end", "", "simulation end date (required)")
	f.StringVar(&c.strategy, "strategy", "momentum", "strategy to run: momentum or pairs")
	f.StringVar(&c.capital, "capital", "", "starting capital, defaults to BACKTEST_INITIAL_CAPITAL")
	f.StringVar(&c.frequency, "frequency", "", "rebalance frequency: daily, weekly or monthly")
	f.StringVar(&c.tradesOut, "trades-out", "", "write executed trades to this CSV file")
	f.StringVar(&c.equityOut, "equity-out", "", "write the equity curve to this CSV file")
	f.BoolVar(&c.notify, "notify", false, "post a summary to the configured Discord webhook")
}

func (c *backtestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbols == "" || c.start == "" || c.end == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbols, -start and -end are required.")
		return subcommands.ExitUsageError
	}
	start, err := time.Parse("2006-01-02", c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -start: %v\n", err)
		return subcommands.ExitUsageError
	}
	end, err := time.Parse("2006-01-02", c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -end: %v\n", err)
		return subcommands.ExitUsageError
	}

	var strategy backtest.Strategy
	switch c.strategy {
	case "momentum":
		strategy = momentum.Default()
	case "pairs":
		strategy = pairs.New(pairs.DefaultConfig())
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown strategy %q.\n", c.strategy)
		return subcommands.ExitUsageError
	}

	btCfg := c.cfg.Backtest
	if c.capital != "" {
		capital, err := decimal.NewFromString(c.capital)
		if err != nil || !capital.IsPositive() {
			fmt.Fprintf(os.Stderr, "Error: invalid -capital %q.\n", c.capital)
			return subcommands.ExitUsageError
		}
		btCfg.InitialCapital = capital
	}
	if c.frequency != "" {
		btCfg.RebalanceFrequency = c.frequency
	}

	if c.cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "Error: DATABASE_URL is not set.")
		return subcommands.ExitFailure
	}
	db, err := repository.NewDatabase(c.cfg.Database.URL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connect to database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	symbols := splitSymbols(c.symbols)
	engine := backtest.NewEngine(strategy, data.NewPostgresProvider(&db), btCfg, c.cfg.Risk)
	result, err := engine.Run(ctx, symbols, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: backtest failed: %v\n", err)
		return subcommands.ExitFailure
	}

	report := result.Report()
	fmt.Println(report)

	if c.tradesOut != "" {
		if err := result.WriteTradesCSVFile(c.tradesOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write trades: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.equityOut != "" {
		if err := result.WriteEquityCSVFile(c.equityOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write equity curve: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if c.notify {
		notifier := notify.NewDiscordNotifier(c.cfg.Notify)
		msg := fmt.Sprintf("%s %s %s..%s\n%s", strategy.Name(), c.symbols, c.start, c.end, report)
		if err := notifier.Send(ctx, msg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: discord notification failed: %v\n", err)
		}
	}
	return subcommands.ExitSuccess
}

func splitSymbols(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(strings.ToUpper(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
