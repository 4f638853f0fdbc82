package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tradesentry/signal-sentry-bot/internal/adaptive"
	"github.com/tradesentry/signal-sentry-bot/internal/logger"
	"github.com/tradesentry/signal-sentry-bot/internal/monitoring"
	"github.com/tradesentry/signal-sentry-bot/internal/notifications"
	"github.com/tradesentry/signal-sentry-bot/internal/reporting"
	"github.com/tradesentry/signal-sentry-bot/internal/risk"
	"github.com/tradesentry/signal-sentry-bot/internal/validator"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// Config controls the orchestration loop.
type Config struct {
	MonitorInterval time.Duration
}

// Orchestrator wires candidate signals into the validator, validated
// signals into the risk engine, and closed trades out to the notifier,
// the trade history, and the journal.
type Orchestrator struct {
	config    Config
	validator *validator.Validator
	engine    *risk.Engine
	adaptive  *adaptive.Manager
	history   *adaptive.TradeHistory
	notifier  notifications.Notifier
	journal   *reporting.Journal
	log       *logger.Logger
	health    *monitoring.Health

	priceMu    sync.Mutex
	lastPrices map[string]float64

	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// New creates an orchestrator. The notifier may be nil.
func New(
	config Config,
	v *validator.Validator,
	engine *risk.Engine,
	manager *adaptive.Manager,
	history *adaptive.TradeHistory,
	notifier notifications.Notifier,
	journal *reporting.Journal,
	log *logger.Logger,
	health *monitoring.Health,
) *Orchestrator {
	if config.MonitorInterval == 0 {
		config.MonitorInterval = 5 * time.Second
	}
	if notifier == nil {
		notifier = notifications.NopNotifier{}
	}

	return &Orchestrator{
		config:     config,
		validator:  v,
		engine:     engine,
		adaptive:   manager,
		history:    history,
		notifier:   notifier,
		journal:    journal,
		log:        log,
		health:     health,
		lastPrices: make(map[string]float64),
		stopChan:   make(chan struct{}),
	}
}

// SubmitCandidate runs a candidate through validation and, if accepted,
// admission. A rejection is a normal outcome and returns (nil, nil).
func (o *Orchestrator) SubmitCandidate(ctx context.Context, candidate validator.CandidateSignal, entrySeries, higherSeries []types.OHLCV) (*risk.Position, error) {
	signal, rejection, err := o.validator.Validate(candidate, entrySeries, higherSeries)
	if err != nil {
		// Malformed input is fatal for this signal only.
		o.log.Error("Dropping malformed candidate: %v", err)
		return nil, err
	}
	if rejection != nil {
		monitoring.RecordSignalRejected(rejection.Symbol, rejection.Reasons[0].String())
		o.log.Info("Signal rejected: %s", rejection)
		return nil, nil
	}

	monitoring.RecordSignalAccepted(signal.Symbol, signal.Strength.String(), signal.Score)
	o.log.Info("Signal accepted: %s %s score=%.3f strength=%s rr=%.2f",
		signal.Symbol, signal.Side, signal.Score, signal.Strength, signal.RiskReward)
	o.notify(notifications.Event{
		Kind:   notifications.EventSignalAccepted,
		Symbol: signal.Symbol,
		Message: fmt.Sprintf("%s score %.2f (%s), entry %.4f stop %.4f target %.4f",
			signal.Side, signal.Score, signal.Strength, signal.Entry, signal.Stop, signal.Target),
	})

	position, err := o.engine.Admit(ctx, signal)
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrDailyLossExceeded):
			o.log.Warning("Trading halted: %v", err)
			o.notify(notifications.Event{
				Kind:    notifications.EventTradingHalted,
				Symbol:  signal.Symbol,
				Message: err.Error(),
			})
		case errors.Is(err, risk.ErrMaxPositionsReached),
			errors.Is(err, risk.ErrConfidenceTooLow),
			errors.Is(err, risk.ErrDegenerateStop):
			o.log.Info("Signal declined: %v", err)
		default:
			o.log.Error("Order execution failed: %v", err)
			o.notify(notifications.Event{
				Kind:    notifications.EventError,
				Symbol:  signal.Symbol,
				Message: err.Error(),
			})
		}
		return nil, err
	}

	monitoring.SetOpenPositions(o.engine.OpenCount())
	o.log.Trade("Opened %s %s qty=%.4f entry=%.4f stop=%.4f target=%.4f",
		position.Symbol, position.Side, position.Quantity, position.Entry, position.Stop, position.Target)
	o.notify(notifications.Event{
		Kind:    notifications.EventPositionOpened,
		Symbol:  position.Symbol,
		Message: fmt.Sprintf("%s qty %.4f @ %.4f", position.Side, position.Quantity, position.Entry),
	})

	return position, nil
}

// ObserveMarket feeds a fresh price series to the adaptive manager.
func (o *Orchestrator) ObserveMarket(symbol string, series []types.OHLCV) adaptive.MarketInsight {
	return o.adaptive.Observe(symbol, series)
}

// HandleTicker stores the latest price for the monitoring loop.
func (o *Orchestrator) HandleTicker(ticker types.Ticker) {
	o.priceMu.Lock()
	o.lastPrices[ticker.Symbol] = ticker.Price
	o.priceMu.Unlock()

	monitoring.UpdatePrice(ticker.Symbol, ticker.Price)
}

// Start launches the monitoring loop.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return fmt.Errorf("orchestrator already running")
	}
	o.running = true
	o.stopChan = make(chan struct{})

	o.wg.Add(1)
	go o.monitorLoop()

	o.log.Status("Monitoring loop started, interval %s", o.config.MonitorInterval)
	return nil
}

// Stop requests a clean shutdown and waits for the in-flight cycle to
// finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stopChan)
	o.mu.Unlock()

	o.wg.Wait()
	o.log.Status("Monitoring loop stopped")
}

func (o *Orchestrator) monitorLoop() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopChan:
			return
		case <-ticker.C:
			o.tickAll()
		}
	}
}

// tickAll re-evaluates every open position against the freshest prices.
func (o *Orchestrator) tickAll() {
	o.priceMu.Lock()
	prices := make(map[string]float64, len(o.lastPrices))
	for symbol, price := range o.lastPrices {
		prices[symbol] = price
	}
	o.priceMu.Unlock()

	for symbol, price := range prices {
		for _, trade := range o.engine.Tick(symbol, price) {
			o.handleClosedTrade(trade)
		}
	}

	monitoring.SetOpenPositions(o.engine.OpenCount())
	monitoring.SetDailyLoss(o.engine.DailyLoss())
	if o.health != nil {
		o.health.MarkCycle()
	}
}

// handleClosedTrade settles a closed trade into history, journal, metrics,
// and the notification channel.
func (o *Orchestrator) handleClosedTrade(trade risk.ClosedTrade) {
	o.history.Record(trade.Symbol, trade.PnL > 0, trade.ProfitPct)
	if o.journal != nil {
		o.journal.Append(trade)
	}
	monitoring.RecordTradeClosed(trade.Symbol, trade.Reason.String(), trade.PnL)

	o.log.Trade("Closed %s %s pnl=%+.2f (%+.2f%%) reason=%s held=%s",
		trade.Symbol, trade.Side, trade.PnL, trade.ProfitPct, trade.Reason, trade.HoldingTime.Round(time.Second))
	o.notify(notifications.Event{
		Kind:   notifications.EventPositionClosed,
		Symbol: trade.Symbol,
		Message: fmt.Sprintf("%s %+.2f (%+.2f%%) via %s",
			trade.Side, trade.PnL, trade.ProfitPct, trade.Reason),
	})
}

func (o *Orchestrator) notify(event notifications.Event) {
	if err := o.notifier.Notify(event); err != nil {
		o.log.Warning("Notification failed: %v", err)
	}
}
