package adaptive

import "sync"

// symbolRecord accumulates closed-trade outcomes for one symbol.
type symbolRecord struct {
	trades     int
	wins       int
	profitPcts []float64
}

// TradeHistory tracks per-symbol trade outcomes and exposes the historical
// win rate the validator's win-probability estimate blends in.
type TradeHistory struct {
	mu       sync.RWMutex
	bySymbol map[string]*symbolRecord
}

// NewTradeHistory creates an empty history.
func NewTradeHistory() *TradeHistory {
	return &TradeHistory{bySymbol: make(map[string]*symbolRecord)}
}

// Record stores the outcome of a closed trade.
func (h *TradeHistory) Record(symbol string, wasProfitable bool, profitPct float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.bySymbol[symbol]
	if !ok {
		rec = &symbolRecord{}
		h.bySymbol[symbol] = rec
	}

	rec.trades++
	if wasProfitable {
		rec.wins++
	}
	rec.profitPcts = append(rec.profitPcts, profitPct)
}

// WinRate returns the fraction of profitable trades for a symbol. Symbols
// with no recorded trades report 0.50, a neutral prior.
func (h *TradeHistory) WinRate(symbol string) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rec, ok := h.bySymbol[symbol]
	if !ok || rec.trades == 0 {
		return 0.50
	}
	return float64(rec.wins) / float64(rec.trades)
}

// TradeCount returns how many closed trades have been recorded for a symbol.
func (h *TradeHistory) TradeCount(symbol string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rec, ok := h.bySymbol[symbol]
	if !ok {
		return 0
	}
	return rec.trades
}
