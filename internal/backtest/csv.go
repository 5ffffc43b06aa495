package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"tradingdesk/internal/core"
)

// WriteTradesCSVFile writes the executed orders to a CSV file at path.
func (r *Result) WriteTradesCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradesCSV(f, r.Orders)
}

// writeTradesCSV writes orders to any io.Writer as CSV. Pass os.Stdout for
// debugging, or a file.
func writeTradesCSV(w io.Writer, orders []*core.Order) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"symbol",
		"side",
		"type",
		"status",
		"quantity",
		"filled_qty",
		"avg_fill_price",
		"strategy",
		"reject_reason",
		"filled_at", // RFC3339
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, o := range orders {
		record := []string{
			o.Symbol,
			string(o.Side),
			string(o.Type),
			string(o.Status),
			o.Quantity.String(),
			o.FilledQuantity.String(),
			o.AvgFillPrice.String(),
			o.Strategy,
			o.Reason,
			o.FilledAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteEquityCSVFile writes the sampled equity curve to a CSV file at path.
func (r *Result) WriteEquityCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create equity file: %w", err)
	}
	defer f.Close()

	return writeEquityCSV(f, r.Snapshots)
}

func writeEquityCSV(w io.Writer, snapshots []Snapshot) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"date", "equity", "cash", "positions", "return_pct", "drawdown_pct"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range snapshots {
		record := []string{
			s.Date.Format("2006-01-02"),
			s.Equity.String(),
			s.Cash.String(),
			strconv.Itoa(s.Positions),
			strconv.FormatFloat(s.ReturnPct, 'f', 4, 64),
			strconv.FormatFloat(s.DrawdownPct, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
