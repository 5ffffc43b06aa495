// Package data provides historical price bars to the backtest engine. The
// provider contract is deliberately narrow: symbols or dates with no bars are
// skipped, never errors.
package data

import (
	"context"
	"time"

	"tradingdesk/types"
)

// HistoricalProvider returns per-symbol daily bars for a date range. Symbols
// without any data in the range are simply absent from the result.
type HistoricalProvider interface {
	UniverseHistorical(ctx context.Context, symbols []string, start, end time.Time) (map[string][]types.Bar, error)
}
