package repository

import (
	"context"
	"time"

	"tradingdesk/types"
)

// GetDailyBars returns the daily bars for an asset within [start, end],
// oldest first.
func (db *Database) GetDailyBars(ctx context.Context, assetId int, symbol string, start, end time.Time) ([]types.Bar, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT open, high, low, close, volume, bucket
		 FROM daily_bars
		 WHERE asset_id = $1 AND bucket >= $2 AND bucket <= $3
		 ORDER BY bucket ASC`, assetId, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		bar := types.Bar{Symbol: symbol}
		if err := rows.Scan(&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &bar.Timestamp); err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	return bars, nil
}
