package pairs

import (
	"fmt"
	"math"
	"sort"
	"time"

	"tradingdesk/types"
)

// Config parameterizes a long/short pair plus optional satellite symbols
// that carry a fixed thesis score whenever they have enough history.
type Config struct {
	LongLeg  string
	ShortLeg string

	RSIPeriod   int
	MAFast      int
	MASlow      int
	PairsWindow int
	LongZ       float64 // ratio z-score below which the long leg is favored
	ExitZ       float64 // ratio z-score above which the pair unwinds

	Satellites map[string]float64
}

func DefaultConfig() Config {
	return Config{
		LongLeg:     "MU",
		ShortLeg:    "DELL",
		RSIPeriod:   14,
		MAFast:      50,
		MASlow:      200,
		PairsWindow: 60,
		LongZ:       -1.0,
		ExitZ:       2.0,
		Satellites:  map[string]float64{"AAPL": 62, "SMH": 58, "HPQ": 35},
	}
}

// Strategy trades the spread between two related symbols: when the price
// ratio's rolling z-score stretches low, the long leg is scored up and the
// short leg down. The long leg additionally earns trend and oversold credit
// from its own series.
type Strategy struct {
	cfg Config
}

func New(cfg Config) *Strategy {
	return &Strategy{cfg: cfg}
}

func (s *Strategy) Name() string {
	return fmt.Sprintf("Pairs(%s/%s)", s.cfg.LongLeg, s.cfg.ShortLeg)
}

func (s *Strategy) RequiredBars() int {
	n := s.cfg.MASlow
	if s.cfg.PairsWindow > n {
		n = s.cfg.PairsWindow
	}
	return n + 20
}

func (s *Strategy) GenerateSignals(data map[string][]types.Bar) map[string]float64 {
	signals := make(map[string]float64)

	longBars, okLong := data[s.cfg.LongLeg]
	shortBars, okShort := data[s.cfg.ShortLeg]
	if !okLong || !okShort {
		return signals
	}

	longCloses, shortCloses := alignCloses(longBars, shortBars)
	if len(longCloses) < s.cfg.PairsWindow {
		return signals
	}

	ratio := make([]float64, len(longCloses))
	for i := range longCloses {
		if shortCloses[i] == 0 {
			return signals
		}
		ratio[i] = longCloses[i] / shortCloses[i]
	}
	z := rollingZScore(ratio, s.cfg.PairsWindow)

	longScore := 50.0
	price := longCloses[len(longCloses)-1]
	if maSlow, ok := lastSMA(longCloses, s.cfg.MASlow); ok {
		if price > maSlow {
			longScore += 15
		}
		if maFast, ok := lastSMA(longCloses, s.cfg.MAFast); ok && maFast > maSlow {
			longScore += 10
		}
	}
	if rsi, ok := lastRSI(longCloses, s.cfg.RSIPeriod); ok && rsi < 35 {
		longScore += 15 // oversold bounce
	}
	if z < s.cfg.LongZ {
		longScore += 20
	}
	if z > s.cfg.ExitZ {
		longScore -= 25
	}
	signals[s.cfg.LongLeg] = clamp(longScore)

	shortScore := 50.0 - 10 // structural short bias
	if z < s.cfg.LongZ {
		shortScore -= 25
	}
	if z > s.cfg.ExitZ {
		shortScore += 15
	}
	signals[s.cfg.ShortLeg] = clamp(shortScore)

	for symbol, score := range s.cfg.Satellites {
		if bars, ok := data[symbol]; ok && len(bars) >= s.RequiredBars() {
			signals[symbol] = clamp(score)
		}
	}
	return signals
}

// alignCloses intersects the two bar series by date, returning paired close
// prices in chronological order.
func alignCloses(a, b []types.Bar) ([]float64, []float64) {
	byDate := make(map[time.Time]float64, len(b))
	for _, bar := range b {
		byDate[bar.Date()] = bar.Close.InexactFloat64()
	}

	type pair struct {
		date time.Time
		a, b float64
	}
	var pairs []pair
	for _, bar := range a {
		d := bar.Date()
		if other, ok := byDate[d]; ok {
			pairs = append(pairs, pair{d, bar.Close.InexactFloat64(), other})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].date.Before(pairs[j].date) })

	as := make([]float64, len(pairs))
	bs := make([]float64, len(pairs))
	for i, p := range pairs {
		as[i] = p.a
		bs[i] = p.b
	}
	return as, bs
}

// rollingZScore computes the z-score of the final value against the
// trailing window.
func rollingZScore(xs []float64, window int) float64 {
	if len(xs) < window || window < 2 {
		return 0
	}
	tail := xs[len(xs)-window:]
	mean := 0.0
	for _, x := range tail {
		mean += x
	}
	mean /= float64(window)

	variance := 0.0
	for _, x := range tail {
		variance += (x - mean) * (x - mean)
	}
	std := math.Sqrt(variance / float64(window-1))
	if std == 0 {
		return 0
	}
	return (xs[len(xs)-1] - mean) / std
}

func lastSMA(xs []float64, period int) (float64, bool) {
	if len(xs) < period || period <= 0 {
		return 0, false
	}
	sum := 0.0
	for _, x := range xs[len(xs)-period:] {
		sum += x
	}
	return sum / float64(period), true
}

// lastRSI is the simple-average RSI of the final bar.
func lastRSI(xs []float64, period int) (float64, bool) {
	if len(xs) < period+1 || period <= 0 {
		return 0, false
	}
	gains := 0.0
	losses := 0.0
	for i := len(xs) - period; i < len(xs); i++ {
		delta := xs[i] - xs[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100, true
	}
	rs := gains / losses
	return 100 - 100/(1+rs), true
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
