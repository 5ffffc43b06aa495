package data

import (
	"context"
	"sort"
	"time"

	"tradingdesk/types"
)

// MemoryProvider serves pre-loaded bars. It backs tests and any caller that
// has already fetched its universe.
type MemoryProvider struct {
	bars map[string][]types.Bar
}

func NewMemoryProvider(bars map[string][]types.Bar) *MemoryProvider {
	return &MemoryProvider{bars: bars}
}

func (m *MemoryProvider) UniverseHistorical(_ context.Context, symbols []string, start, end time.Time) (map[string][]types.Bar, error) {
	out := make(map[string][]types.Bar)
	for _, symbol := range symbols {
		bars, ok := m.bars[symbol]
		if !ok {
			continue
		}
		var filtered []types.Bar
		for _, b := range bars {
			if b.Timestamp.Before(start) || b.Timestamp.After(end) {
				continue
			}
			filtered = append(filtered, b)
		}
		if len(filtered) == 0 {
			continue
		}
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].Timestamp.Before(filtered[j].Timestamp)
		})
		out[symbol] = filtered
	}
	return out, nil
}
