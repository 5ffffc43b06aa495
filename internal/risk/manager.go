package risk

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tradingdesk/internal/config"
	"tradingdesk/internal/core"
)

// Check is the outcome of a single risk evaluation. Produced fresh per
// evaluation and never mutated.
type Check struct {
	Passed  bool
	Reason  string
	Details map[string]float64
}

func pass(reason string) Check {
	return Check{Passed: true, Reason: reason}
}

func fail(reason string, details map[string]float64) Check {
	return Check{Passed: false, Reason: reason, Details: details}
}

// Manager validates trades and portfolio state against configured limits.
// All checks are pure reads: the Manager never mutates the portfolio.
type Manager struct {
	cfg       config.RiskConfig
	portfolio *core.Portfolio
}

func NewManager(cfg config.RiskConfig) *Manager {
	return &Manager{cfg: cfg}
}

// SetPortfolio binds the manager to the portfolio it monitors.
func (m *Manager) SetPortfolio(p *core.Portfolio) {
	m.portfolio = p
}

// CheckTrade validates a proposed trade of the given dollar value against
// position-size, position-count and leverage limits.
func (m *Manager) CheckTrade(symbol string, orderValue decimal.Decimal) Check {
	if m.portfolio == nil {
		return fail("portfolio not set", nil)
	}

	symbol = strings.ToUpper(symbol)
	totalEquity := m.portfolio.TotalEquity()
	if totalEquity.IsZero() {
		return fail("zero portfolio equity", nil)
	}

	positionPct := orderValue.Div(totalEquity).InexactFloat64()
	if positionPct > m.cfg.MaxPositionSizePct {
		return fail(
			fmt.Sprintf("position size %.1f%% exceeds limit %.1f%%", positionPct*100, m.cfg.MaxPositionSizePct*100),
			map[string]float64{"positionPct": positionPct, "limit": m.cfg.MaxPositionSizePct},
		)
	}

	// A new symbol must not push the portfolio past its position count cap.
	existing := m.portfolio.GetPosition(symbol)
	if existing == nil || existing.IsEmpty() {
		if m.portfolio.NumPositions() >= m.cfg.MaxPositions {
			return fail(
				fmt.Sprintf("max positions limit reached (%d)", m.cfg.MaxPositions),
				map[string]float64{"maxPositions": float64(m.cfg.MaxPositions)},
			)
		}
	}

	totalExposure := m.portfolio.TotalPositionValue().Add(orderValue)
	leverage := totalExposure.Div(totalEquity).InexactFloat64()
	if leverage > m.cfg.MaxLeverage {
		return fail(
			fmt.Sprintf("leverage %.2fx exceeds limit %.2fx", leverage, m.cfg.MaxLeverage),
			map[string]float64{"leverage": leverage, "limit": m.cfg.MaxLeverage},
		)
	}

	return pass("trade passed risk checks")
}

// CheckPortfolioLimits evaluates drawdown, position count and per-position
// weight limits independently, returning every violated check.
func (m *Manager) CheckPortfolioLimits() []Check {
	if m.portfolio == nil {
		return []Check{fail("portfolio not set", nil)}
	}

	var checks []Check

	drawdown := m.portfolio.DrawdownPct() / 100
	if drawdown < 0 {
		drawdown = -drawdown
	}
	if drawdown > m.cfg.MaxDrawdownPct {
		checks = append(checks, fail(
			fmt.Sprintf("drawdown %.1f%% exceeds limit %.1f%%", drawdown*100, m.cfg.MaxDrawdownPct*100),
			map[string]float64{"drawdown": drawdown, "limit": m.cfg.MaxDrawdownPct},
		))
	}

	numPositions := m.portfolio.NumPositions()
	if numPositions < m.cfg.MinPositions {
		checks = append(checks, fail(
			fmt.Sprintf("position count %d below minimum %d", numPositions, m.cfg.MinPositions),
			map[string]float64{"positions": float64(numPositions)},
		))
	} else if numPositions > m.cfg.MaxPositions {
		checks = append(checks, fail(
			fmt.Sprintf("position count %d exceeds maximum %d", numPositions, m.cfg.MaxPositions),
			map[string]float64{"positions": float64(numPositions)},
		))
	}

	for symbol, weight := range m.portfolio.PositionWeights() {
		if weight > m.cfg.MaxPositionSizePct {
			checks = append(checks, fail(
				fmt.Sprintf("position %s weight %.1f%% exceeds limit %.1f%%", symbol, weight*100, m.cfg.MaxPositionSizePct*100),
				map[string]float64{"weight": weight, "limit": m.cfg.MaxPositionSizePct},
			))
		}
	}

	return checks
}

// CheckSectorExposure flags any sector above its configured ceiling. A
// hypothetical pending trade can be added via newSymbol/newValue.
func (m *Manager) CheckSectorExposure(sectorMap map[string]string, newSymbol string, newValue decimal.Decimal) []Check {
	if m.portfolio == nil {
		return []Check{fail("portfolio not set", nil)}
	}

	exposures := m.portfolio.SectorExposure(sectorMap)

	if newSymbol != "" && newValue.IsPositive() {
		sector, ok := sectorMap[strings.ToUpper(newSymbol)]
		if !ok {
			sector = "UNKNOWN"
		}
		if totalEquity := m.portfolio.TotalEquity(); totalEquity.IsPositive() {
			exposures[sector] += newValue.Div(totalEquity).InexactFloat64()
		}
	}

	var checks []Check
	for sector, exposure := range exposures {
		if exposure > m.cfg.MaxSectorExposurePct {
			checks = append(checks, fail(
				fmt.Sprintf("sector %s exposure %.1f%% exceeds limit %.1f%%", sector, exposure*100, m.cfg.MaxSectorExposurePct*100),
				map[string]float64{"exposure": exposure, "limit": m.cfg.MaxSectorExposurePct},
			))
		}
	}
	return checks
}

// ValidateOrder checks a filled order's value against trade limits.
func (m *Manager) ValidateOrder(o *core.Order) Check {
	if m.portfolio == nil {
		return fail("portfolio not set", nil)
	}
	if !o.IsFilled() {
		return fail("order not filled", nil)
	}
	return m.CheckTrade(o.Symbol, o.FilledQuantity.Mul(o.AvgFillPrice))
}

// CanTrade reports whether no portfolio-level limit is currently violated.
func (m *Manager) CanTrade() bool {
	if m.portfolio == nil {
		return false
	}
	for _, check := range m.CheckPortfolioLimits() {
		if !check.Passed {
			return false
		}
	}
	return true
}
