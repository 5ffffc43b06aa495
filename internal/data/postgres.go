package data

import (
	"context"
	"errors"
	"log"
	"time"

	"tradingdesk/internal/repository"
	"tradingdesk/types"
)

// PostgresProvider serves historical bars out of the repository's bar store.
type PostgresProvider struct {
	db *repository.Database
}

func NewPostgresProvider(db *repository.Database) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) UniverseHistorical(ctx context.Context, symbols []string, start, end time.Time) (map[string][]types.Bar, error) {
	out := make(map[string][]types.Bar)
	for _, symbol := range symbols {
		asset, err := p.db.GetAssetBySymbol(ctx, symbol)
		if err != nil {
			if errors.Is(err, repository.ErrAssetNotFound) {
				log.Printf("skipping %s: unknown asset", symbol)
				continue
			}
			return nil, err
		}
		bars, err := p.db.GetDailyBars(ctx, asset.Id, symbol, start, end)
		if err != nil {
			if errors.Is(err, repository.ErrNoBars) {
				log.Printf("skipping %s: no bars in range", symbol)
				continue
			}
			return nil, err
		}
		out[symbol] = bars
	}
	return out, nil
}
