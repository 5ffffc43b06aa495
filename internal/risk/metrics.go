package risk

import (
	"math"
	"sort"
)

// Performance and tail-risk statistics over periodic return series. Returns
// and equity values are plain floats: these are display ratios, not
// accounting quantities.

const tradingDaysPerYear = 252

// VaR returns the historical value-at-risk at the given confidence level
// (e.g. 0.95). The result is a (usually negative) return threshold.
func VaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * (1 - confidence))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// CVaR returns the mean return beyond the VaR threshold.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	threshold := VaR(returns, confidence)
	var sum float64
	var n int
	for _, r := range returns {
		if r <= threshold {
			sum += r
			n++
		}
	}
	if n == 0 {
		return threshold
	}
	return sum / float64(n)
}

// Sharpe annualizes the mean excess daily return over its standard deviation.
func Sharpe(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRF
	}
	mean := meanOf(excess)
	std := stddevOf(excess, mean)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// Sortino is Sharpe with only downside deviation in the denominator.
func Sortino(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	var downside []float64
	var excess []float64
	for _, r := range returns {
		e := r - dailyRF
		excess = append(excess, e)
		if e < 0 {
			downside = append(downside, e)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	downMean := meanOf(downside)
	downStd := stddevOf(downside, downMean)
	if downStd == 0 {
		return 0
	}
	return meanOf(excess) / downStd * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown returns the largest peak-to-trough decline of an equity curve
// as a negative fraction (-0.25 = 25% drawdown).
func MaxDrawdown(equityCurve []float64) float64 {
	if len(equityCurve) == 0 {
		return 0
	}
	peak := equityCurve[0]
	maxDD := 0.0
	for _, equity := range equityCurve {
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (equity - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Calmar is the annualized return divided by the magnitude of max drawdown.
func Calmar(returns []float64, equityCurve []float64) float64 {
	dd := math.Abs(MaxDrawdown(equityCurve))
	if dd == 0 || len(returns) == 0 {
		return 0
	}
	annualized := meanOf(returns) * tradingDaysPerYear
	return annualized / dd
}

// WinRate is the fraction of strictly positive returns.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// ProfitFactor is gross gains divided by gross losses.
func ProfitFactor(returns []float64) float64 {
	var gains, losses float64
	for _, r := range returns {
		if r > 0 {
			gains += r
		} else {
			losses -= r
		}
	}
	if losses == 0 {
		return 0
	}
	return gains / losses
}

// Beta regresses portfolio returns against benchmark returns.
func Beta(portfolioReturns, benchmarkReturns []float64) float64 {
	n := len(portfolioReturns)
	if n < 2 || n != len(benchmarkReturns) {
		return 0
	}
	pMean := meanOf(portfolioReturns)
	bMean := meanOf(benchmarkReturns)
	var cov, bVar float64
	for i := 0; i < n; i++ {
		cov += (portfolioReturns[i] - pMean) * (benchmarkReturns[i] - bMean)
		bVar += (benchmarkReturns[i] - bMean) * (benchmarkReturns[i] - bMean)
	}
	if bVar == 0 {
		return 0
	}
	return cov / bVar
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var varianceSum float64
	for _, x := range xs {
		diff := x - mean
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / float64(len(xs)-1))
}
