package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single daily price bar for one symbol.
type Bar struct {
	Symbol    string          `json:"symbol"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// Date returns the bar's trading date truncated to day granularity in UTC.
func (b Bar) Date() time.Time {
	y, m, d := b.Timestamp.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
