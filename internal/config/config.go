package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// RiskConfig holds externally supplied risk limits. Fractions are expressed
// as ratios (0.10 = 10%).
type RiskConfig struct {
	MaxPositionSizePct   float64
	MaxSectorExposurePct float64
	MaxLeverage          float64

	MinPositions int
	MaxPositions int

	MaxDrawdownPct    float64
	DailyLossLimitPct float64
}

// TradingConfig holds live execution parameters.
type TradingConfig struct {
	InitialCapital   decimal.Decimal
	MinTradeSize     decimal.Decimal
	MaxTradeSize     decimal.Decimal
	DefaultOrderType string
}

// BacktestConfig drives the walk-forward simulator.
type BacktestConfig struct {
	InitialCapital     decimal.Decimal
	RebalanceFrequency string // daily, weekly, monthly
	RebalanceWeekday   time.Weekday
	SnapshotEvery      int
}

// BrokerConfig carries trading venue credentials.
type BrokerConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Paper     bool
}

// DatabaseConfig points at the historical bar store.
type DatabaseConfig struct {
	URL string
}

// LoggingConfig controls the rotating log file.
type LoggingConfig struct {
	File       string
	MaxSizeMB  int64
	MaxBackups int
}

// NotifyConfig controls the Discord webhook notifier.
type NotifyConfig struct {
	DiscordWebhookURL string
	Enabled           bool
}

type Config struct {
	Risk     RiskConfig
	Trading  TradingConfig
	Backtest BacktestConfig
	Broker   BrokerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Notify   NotifyConfig
}

func DefaultRisk() RiskConfig {
	return RiskConfig{
		MaxPositionSizePct:   0.10,
		MaxSectorExposurePct: 0.30,
		MaxLeverage:          1.0,
		MinPositions:         5,
		MaxPositions:         30,
		MaxDrawdownPct:       0.15,
		DailyLossLimitPct:    0.03,
	}
}

func DefaultBacktest() BacktestConfig {
	return BacktestConfig{
		InitialCapital:     decimal.NewFromInt(100000),
		RebalanceFrequency: "weekly",
		RebalanceWeekday:   time.Monday,
		SnapshotEvery:      10,
	}
}

func DefaultTrading() TradingConfig {
	return TradingConfig{
		InitialCapital:   decimal.NewFromInt(100000),
		MinTradeSize:     decimal.NewFromInt(100),
		MaxTradeSize:     decimal.NewFromInt(10000),
		DefaultOrderType: "MARKET",
	}
}

// Load builds the full configuration from the environment, reading a .env
// file first when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg := Config{
		Risk:     DefaultRisk(),
		Trading:  DefaultTrading(),
		Backtest: DefaultBacktest(),
	}

	cfg.Risk.MaxPositionSizePct = getEnvFloat("RISK_MAX_POSITION_SIZE_PCT", cfg.Risk.MaxPositionSizePct)
	cfg.Risk.MaxSectorExposurePct = getEnvFloat("RISK_MAX_SECTOR_EXPOSURE_PCT", cfg.Risk.MaxSectorExposurePct)
	cfg.Risk.MaxLeverage = getEnvFloat("RISK_MAX_LEVERAGE", cfg.Risk.MaxLeverage)
	cfg.Risk.MinPositions = getEnvInt("RISK_MIN_POSITIONS", cfg.Risk.MinPositions)
	cfg.Risk.MaxPositions = getEnvInt("RISK_MAX_POSITIONS", cfg.Risk.MaxPositions)
	cfg.Risk.MaxDrawdownPct = getEnvFloat("RISK_MAX_DRAWDOWN_PCT", cfg.Risk.MaxDrawdownPct)
	cfg.Risk.DailyLossLimitPct = getEnvFloat("RISK_DAILY_LOSS_LIMIT_PCT", cfg.Risk.DailyLossLimitPct)

	cfg.Trading.InitialCapital = getEnvDecimal("TRADING_INITIAL_CAPITAL", cfg.Trading.InitialCapital)
	cfg.Backtest.InitialCapital = getEnvDecimal("BACKTEST_INITIAL_CAPITAL", cfg.Backtest.InitialCapital)
	cfg.Backtest.RebalanceFrequency = getEnv("BACKTEST_REBALANCE_FREQUENCY", cfg.Backtest.RebalanceFrequency)
	cfg.Backtest.RebalanceWeekday = time.Weekday(getEnvInt("BACKTEST_REBALANCE_WEEKDAY", int(cfg.Backtest.RebalanceWeekday)))
	cfg.Backtest.SnapshotEvery = getEnvInt("BACKTEST_SNAPSHOT_EVERY", cfg.Backtest.SnapshotEvery)

	cfg.Broker = BrokerConfig{
		APIKey:    getEnv("ALPACA_API_KEY", ""),
		APISecret: getEnv("ALPACA_API_SECRET", ""),
		BaseURL:   getEnv("ALPACA_BASE_URL", "https://paper-api.alpaca.markets"),
		Paper:     getEnvBool("ALPACA_PAPER", true),
	}

	cfg.Database = DatabaseConfig{
		URL: getEnv("DATABASE_URL", ""),
	}

	cfg.Logging = LoggingConfig{
		File:       getEnv("LOG_FILE", "tradingdesk.log"),
		MaxSizeMB:  int64(getEnvInt("LOG_MAX_SIZE_MB", 10)),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
	}

	cfg.Notify = NotifyConfig{
		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		Enabled:           getEnvBool("DISCORD_ENABLED", true),
	}

	return cfg
}
