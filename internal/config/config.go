package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the environment-driven process configuration. Secrets come
// from the environment (optionally via a .env file loaded in main).
type Config struct {
	Environment string
	Debug       bool

	Exchange struct {
		APIKey   string
		Secret   string
		Category string
		Testnet  bool
		Demo     bool
		DryRun   bool
	}

	Trading struct {
		Symbols         []string
		MonitorInterval time.Duration
	}

	Validator struct {
		MinScore          float64
		MinConfluence     float64
		MinRiskReward     float64
		MinWinProbability float64
	}

	Risk struct {
		InitialBalance  float64
		MaxRiskPerTrade float64
		MaxDailyLossPct float64
		MaxConcurrent   int
		MinConfidence   float64
		TrailingStop    bool
		TrailingStopPct float64
	}

	Monitoring struct {
		MetricsPort int
		HealthPort  int
	}

	Notifications struct {
		TelegramToken  string
		TelegramChatID string
	}

	Reporting struct {
		ExcelPath string
	}
}

// Load reads the configuration from the environment with defaults.
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		Debug:       getEnvBool("SENTRY_DEBUG", false),
	}

	cfg.Exchange.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Exchange.Secret = getEnv("BYBIT_API_SECRET", "")
	cfg.Exchange.Category = getEnv("BYBIT_CATEGORY", "spot")
	cfg.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", true)
	cfg.Exchange.Demo = getEnvBool("BYBIT_DEMO", false)
	cfg.Exchange.DryRun = getEnvBool("DRY_RUN", true)

	cfg.Trading.Symbols = getEnvList("TRADING_SYMBOLS", []string{"BTCUSDT"})
	cfg.Trading.MonitorInterval = getEnvDuration("MONITOR_INTERVAL", 5*time.Second)

	cfg.Validator.MinScore = getEnvFloat("VALIDATOR_MIN_SCORE", 0.75)
	cfg.Validator.MinConfluence = getEnvFloat("VALIDATOR_MIN_CONFLUENCE", 0.60)
	cfg.Validator.MinRiskReward = getEnvFloat("VALIDATOR_MIN_RISK_REWARD", 1.5)
	cfg.Validator.MinWinProbability = getEnvFloat("VALIDATOR_MIN_WIN_PROBABILITY", 0.65)

	cfg.Risk.InitialBalance = getEnvFloat("ACCOUNT_BALANCE", 1000.0)
	cfg.Risk.MaxRiskPerTrade = getEnvFloat("MAX_RISK_PER_TRADE", 0.02)
	cfg.Risk.MaxDailyLossPct = getEnvFloat("MAX_DAILY_LOSS_PCT", 0.10)
	cfg.Risk.MaxConcurrent = getEnvInt("MAX_CONCURRENT_POSITIONS", 3)
	cfg.Risk.MinConfidence = getEnvFloat("RISK_MIN_CONFIDENCE", 0.60)
	cfg.Risk.TrailingStop = getEnvBool("TRAILING_STOP", true)
	cfg.Risk.TrailingStopPct = getEnvFloat("TRAILING_STOP_PCT", 1.0)

	cfg.Monitoring.MetricsPort = getEnvInt("METRICS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	cfg.Reporting.ExcelPath = getEnv("REPORT_XLSX_PATH", "")

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		parsed, err := time.ParseDuration(val)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
