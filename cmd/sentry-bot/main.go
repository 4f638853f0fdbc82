package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tradesentry/signal-sentry-bot/internal/adaptive"
	"github.com/tradesentry/signal-sentry-bot/internal/config"
	"github.com/tradesentry/signal-sentry-bot/internal/exchange"
	"github.com/tradesentry/signal-sentry-bot/internal/logger"
	"github.com/tradesentry/signal-sentry-bot/internal/monitoring"
	"github.com/tradesentry/signal-sentry-bot/internal/notifications"
	"github.com/tradesentry/signal-sentry-bot/internal/orchestrator"
	"github.com/tradesentry/signal-sentry-bot/internal/reporting"
	"github.com/tradesentry/signal-sentry-bot/internal/risk"
	"github.com/tradesentry/signal-sentry-bot/internal/safety"
	"github.com/tradesentry/signal-sentry-bot/internal/validator"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

const barBufferSize = 120

func main() {
	godotenv.Load() //nolint:errcheck

	cfg := config.Load()

	log, err := logger.NewWithDebug("SENTRY", cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Status("Starting signal-sentry-bot (%s), symbols=%v dry_run=%v",
		cfg.Environment, cfg.Trading.Symbols, cfg.Exchange.DryRun)

	executor := buildExecutor(cfg, log)

	store := adaptive.NewThresholdStore(adaptive.DefaultThresholds())
	manager := adaptive.NewManager(store)
	history := adaptive.NewTradeHistory()

	vConfig := validator.DefaultConfig()
	vConfig.MinScore = cfg.Validator.MinScore
	vConfig.MinConfluence = cfg.Validator.MinConfluence
	vConfig.MinRiskReward = cfg.Validator.MinRiskReward
	vConfig.MinWinProbability = cfg.Validator.MinWinProbability
	v := validator.New(vConfig, manager, history)

	rConfig := risk.Config{
		AccountBalance:  cfg.Risk.InitialBalance,
		MaxRiskPerTrade: cfg.Risk.MaxRiskPerTrade,
		MaxDailyLossPct: cfg.Risk.MaxDailyLossPct,
		MaxConcurrent:   cfg.Risk.MaxConcurrent,
		MinConfidence:   cfg.Risk.MinConfidence,
		TrailingStop:    cfg.Risk.TrailingStop,
		TrailingStopPct: cfg.Risk.TrailingStopPct,
	}
	engine := risk.NewEngine(rConfig, executor)

	var notifier notifications.Notifier = notifications.NopNotifier{}
	if cfg.Notifications.TelegramToken != "" && cfg.Notifications.TelegramChatID != "" {
		notifier = notifications.NewTelegramNotifier(
			cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
		log.Info("Telegram notifications enabled")
	}

	journal := reporting.NewJournal()
	health := monitoring.NewHealth()

	orch := orchestrator.New(
		orchestrator.Config{MonitorInterval: cfg.Trading.MonitorInterval},
		v, engine, manager, history, notifier, journal, log, health,
	)

	metricsServer := serveHTTP(cfg.Monitoring.MetricsPort, "/metrics", monitoring.Handler(), log)
	healthServer := serveHTTP(cfg.Monitoring.HealthPort, "/health", health, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := orch.Start(); err != nil {
		log.Error("Failed to start orchestrator: %v", err)
		os.Exit(1)
	}

	bars := newBarBuffer(barBufferSize)
	streamDone := runPriceStream(ctx, cfg, log, func(ticker types.Ticker) {
		orch.HandleTicker(ticker)
		if series, ok := bars.append(ticker); ok {
			orch.ObserveMarket(ticker.Symbol, series)
		}
	})

	// Candidate signals come from an external generator. Whatever produces
	// them (strategy process, webhook receiver, message queue) feeds each
	// one to orch.SubmitCandidate with the entry and higher-timeframe
	// series it was derived from.

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Status("Received %s, shutting down", sig)
	case err := <-streamDone:
		if err != nil {
			log.Error("Price stream terminated: %v", err)
		}
	}

	cancel()
	orch.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsServer.Shutdown(shutdownCtx) //nolint:errcheck
	healthServer.Shutdown(shutdownCtx)  //nolint:errcheck

	journal.RenderConsole(os.Stdout)
	if path := cfg.Reporting.ExcelPath; path != "" {
		if err := journal.ExportExcel(path); err != nil {
			log.Error("Failed to export journal: %v", err)
		} else {
			log.Info("Journal exported to %s", path)
		}
	}

	log.Status("Shutdown complete, final balance %.2f", engine.Balance())
}

// buildExecutor assembles the order-execution chain: paper in dry-run,
// otherwise Bybit wrapped in retries, a rate limiter, and a circuit
// breaker.
func buildExecutor(cfg *config.Config, log *logger.Logger) risk.OrderExecutor {
	if cfg.Exchange.DryRun {
		log.Info("Dry-run mode: orders go to the paper executor")
		return exchange.NewPaperExecutor()
	}

	bybit := exchange.NewBybitExecutor(exchange.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.Secret,
		Category:  cfg.Exchange.Category,
		Testnet:   cfg.Exchange.Testnet,
		Demo:      cfg.Exchange.Demo,
	})
	retrying := exchange.NewRetryingExecutor(bybit, 3)

	breaker := safety.NewCircuitBreaker("order-execution", safety.CircuitBreakerConfig{})
	breaker.SetStateChangeCallback(func(from, to safety.CircuitBreakerState) {
		log.Warning("Order-execution circuit breaker: %s -> %s", from, to)
	})
	limiter := safety.NewRateLimiter("order-execution", 10, 5)

	return safety.NewGuardedExecutor(retrying, breaker, limiter)
}

// serveHTTP starts a single-handler HTTP server on the given port.
func serveHTTP(port int, path string, handler http.Handler, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		log.Info("Serving %s on %s", path, server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server %s failed: %v", server.Addr, err)
		}
	}()
	return server
}

// runPriceStream connects the ticker stream and pumps it until the context
// is cancelled. The returned channel yields the terminal error, if any.
func runPriceStream(ctx context.Context, cfg *config.Config, log *logger.Logger, onTicker func(types.Ticker)) <-chan error {
	done := make(chan error, 1)

	url := exchange.StreamURLSpot
	if cfg.Exchange.Category == "linear" {
		url = exchange.StreamURLLinear
	}
	if cfg.Exchange.Testnet {
		url = exchange.StreamURLTestnet
	}

	stream, err := exchange.NewPriceStream(url)
	if err != nil {
		done <- err
		return done
	}

	for _, symbol := range cfg.Trading.Symbols {
		if err := stream.Subscribe(symbol); err != nil {
			done <- err
			return done
		}
		log.Info("Subscribed to %s tickers", symbol)
	}

	go func() {
		done <- stream.Run(ctx, onTicker)
	}()
	return done
}

// barBuffer folds the tick stream into rolling one-minute bars per symbol
// so the adaptive manager sees a proper OHLCV series.
type barBuffer struct {
	mu      sync.Mutex
	size    int
	current map[string]*types.OHLCV
	series  map[string][]types.OHLCV
}

func newBarBuffer(size int) *barBuffer {
	return &barBuffer{
		size:    size,
		current: make(map[string]*types.OHLCV),
		series:  make(map[string][]types.OHLCV),
	}
}

// append folds a ticker into the in-progress bar. When a bar completes it
// returns the symbol's series snapshot and true.
func (b *barBuffer) append(ticker types.Ticker) ([]types.OHLCV, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	minute := ticker.Timestamp.Truncate(time.Minute)
	bar := b.current[ticker.Symbol]
	if bar == nil || bar.Timestamp.Before(minute) {
		var snapshot []types.OHLCV
		completed := false
		if bar != nil {
			series := append(b.series[ticker.Symbol], *bar)
			if len(series) > b.size {
				series = series[len(series)-b.size:]
			}
			b.series[ticker.Symbol] = series
			snapshot = make([]types.OHLCV, len(series))
			copy(snapshot, series)
			completed = true
		}
		b.current[ticker.Symbol] = &types.OHLCV{
			Timestamp: minute,
			Open:      ticker.Price,
			High:      ticker.Price,
			Low:       ticker.Price,
			Close:     ticker.Price,
			Volume:    ticker.Volume,
		}
		return snapshot, completed
	}

	if ticker.Price > bar.High {
		bar.High = ticker.Price
	}
	if ticker.Price < bar.Low {
		bar.Low = ticker.Price
	}
	bar.Close = ticker.Price
	bar.Volume = ticker.Volume
	return nil, false
}
