package adaptive

import "sync"

// Thresholds holds the per-symbol parameters the validator and risk engine
// read. MinScore is on a 0-100 scale and gates the upstream generator
// confidence; the stop/target percentages size the protective levels when a
// candidate arrives without them.
type Thresholds struct {
	MinScore      float64 // minimum generator confidence, 0-100
	StopLossPct   float64 // protective stop distance, percent of entry
	TakeProfitPct float64 // profit target distance, percent of entry
}

// Bounds the adaptation rule may not push thresholds past.
const (
	minScoreFloor = 80.0
	minScoreCap   = 95.0

	stopLossFloor = 0.5
	stopLossCap   = 2.0

	takeProfitFloor = 1.5
	takeProfitCap   = 5.0
)

// DefaultThresholds returns the global defaults a symbol starts from.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:      85.0,
		StopLossPct:   1.0,
		TakeProfitPct: 3.0,
	}
}

// ThresholdStore owns the per-symbol threshold map. Entries are created
// lazily from the defaults on first access and live for the whole run.
// Readers always see a complete snapshot, never a half-updated entry.
type ThresholdStore struct {
	mu       sync.RWMutex
	defaults Thresholds
	bySymbol map[string]Thresholds
}

// NewThresholdStore creates a store seeded with the given defaults.
func NewThresholdStore(defaults Thresholds) *ThresholdStore {
	return &ThresholdStore{
		defaults: defaults,
		bySymbol: make(map[string]Thresholds),
	}
}

// Get returns the thresholds for a symbol, creating them from the defaults
// on first observation.
func (s *ThresholdStore) Get(symbol string) Thresholds {
	s.mu.RLock()
	th, ok := s.bySymbol[symbol]
	s.mu.RUnlock()
	if ok {
		return th
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if th, ok := s.bySymbol[symbol]; ok {
		return th
	}
	s.bySymbol[symbol] = s.defaults
	return s.defaults
}

// update applies fn to the symbol's thresholds under the write lock.
func (s *ThresholdStore) update(symbol string, fn func(*Thresholds)) Thresholds {
	s.mu.Lock()
	defer s.mu.Unlock()

	th, ok := s.bySymbol[symbol]
	if !ok {
		th = s.defaults
	}
	fn(&th)
	s.bySymbol[symbol] = th
	return th
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
