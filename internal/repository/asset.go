package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradingdesk/types"
)

// GetAssetBySymbol retrieves a types.Asset by its ticker symbol.
func (db *Database) GetAssetBySymbol(ctx context.Context, symbol string) (*types.Asset, error) {
	row := db.conn.QueryRow(ctx,
		`SELECT id, symbol, name, type, created_at, modified_at
		 FROM assets WHERE symbol = $1`, symbol)

	var asset types.Asset
	err := row.Scan(&asset.Id, &asset.Symbol, &asset.Name, &asset.Type, &asset.CreatedAt, &asset.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("symbol %s %w", symbol, ErrAssetNotFound)
		}
		return nil, err
	}
	return &asset, nil
}
