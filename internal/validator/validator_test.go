package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradesentry/signal-sentry-bot/internal/adaptive"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

func newTestValidator() *Validator {
	store := adaptive.NewThresholdStore(adaptive.DefaultThresholds())
	return New(DefaultConfig(), adaptive.NewManager(store), adaptive.NewTradeHistory())
}

// bullishSeries builds a steadily climbing zigzag series: two steps up, a
// small step back, closing on a strong full-bodied bull candle with a
// volume spike. Every confluence indicator aligns long on it.
func bullishSeries(n int) []types.OHLCV {
	data := make([]types.OHLCV, n)
	price := 80.0
	for i := range data {
		change := 1.0
		if i%2 == 1 {
			change = -0.4
		}
		open := price
		price += change
		bar := types.OHLCV{
			Open:      open,
			Close:     price,
			Volume:    1000,
			Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if change > 0 {
			bar.High = price + 0.05
			bar.Low = open - 0.05
		} else {
			bar.High = open + 0.05
			bar.Low = price - 0.05
		}
		data[i] = bar
	}

	// Strong closing candle on elevated volume
	last := &data[n-1]
	last.Open = data[n-2].Close
	last.Close = last.Open + 1.0
	last.High = last.Close + 0.05
	last.Low = last.Open - 0.05
	last.Volume = 1500
	return data
}

func bearishSeries(n int) []types.OHLCV {
	up := bullishSeries(n)
	data := make([]types.OHLCV, n)
	for i, bar := range up {
		data[i] = types.OHLCV{
			Open:      200 - bar.Open,
			Close:     200 - bar.Close,
			High:      200 - bar.Low,
			Low:       200 - bar.High,
			Volume:    bar.Volume,
			Timestamp: bar.Timestamp,
		}
	}
	return data
}

func TestValidate_StrongLongAccepted(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Stop:       entry - 1,
		Target:     entry + 4,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, rejection, "expected acceptance, got %v", rejection)
	require.NotNil(t, signal)

	assert.GreaterOrEqual(t, signal.Score, 0.85)
	assert.LessOrEqual(t, signal.Score, 1.0)
	assert.Contains(t, []SignalStrength{StrengthStrong, StrengthVeryStrong}, signal.Strength)
	assert.Len(t, signal.AlignedIndicators, 5)
	assert.Equal(t, 1.0, signal.ConfluenceScore)
	assert.InDelta(t, 4.0, signal.RiskReward, 1e-9)
	assert.True(t, signal.Flags.MarketContextValid)
	assert.True(t, signal.Flags.TimeframeConfirmed)
	assert.True(t, signal.Flags.PatternConfirmed)
	assert.True(t, signal.Flags.VolumeConfirmed)
	assert.GreaterOrEqual(t, signal.WinProbability, 0.65)
}

func TestValidate_StrongShortAccepted(t *testing.T) {
	v := newTestValidator()
	series := bearishSeries(60)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "ETHUSDT",
		Side:       types.SideShort,
		Entry:      entry,
		Stop:       entry + 1,
		Target:     entry - 4,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, rejection, "expected acceptance, got %v", rejection)
	assert.GreaterOrEqual(t, signal.Score, 0.75)
	assert.Equal(t, 1.0, signal.ConfluenceScore)
}

func TestValidate_PoorRiskRewardRejected(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      100,
		Stop:       98,
		Target:     101, // R:R = 0.5
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, signal)
	require.NotNil(t, rejection)
	assert.True(t, rejection.Has(ReasonPoorRiskReward))
}

func TestValidate_PriceSanityRejected(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)

	// Declared long but stop above entry and target below it
	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      100,
		Stop:       101,
		Target:     95,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, signal)
	require.NotNil(t, rejection)
	assert.True(t, rejection.Has(ReasonPriceSanity))
}

func TestValidate_LowConfidenceRejected(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Stop:       entry - 1,
		Target:     entry + 4,
		Confidence: 40, // below the adaptive minimum of 85
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, signal)
	require.NotNil(t, rejection)
	assert.True(t, rejection.Has(ReasonLowConfidence))
}

func TestValidate_ConfluenceAgainstSideRejected(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)
	entry := series[len(series)-1].Close

	// Shorting into a clean uptrend: every indicator disagrees
	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideShort,
		Entry:      entry,
		Stop:       entry + 1,
		Target:     entry - 4,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, signal)
	require.NotNil(t, rejection)
	assert.True(t, rejection.Has(ReasonLowConfluence))
}

func TestValidate_HigherTimeframeContradiction(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)
	higher := bearishSeries(60)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Stop:       entry - 1,
		Target:     entry + 4,
		Confidence: 90,
	}, series, higher)
	require.NoError(t, err)

	// The contradiction costs the timeframe weight; whether that alone
	// rejects depends on the remaining layers, but the flag must be off.
	if signal != nil {
		assert.False(t, signal.Flags.TimeframeConfirmed)
	} else {
		require.NotNil(t, rejection)
	}
}

func TestValidate_MissingHigherTimeframePasses(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Stop:       entry - 1,
		Target:     entry + 4,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, rejection)
	assert.True(t, signal.Flags.TimeframeConfirmed)
}

func TestValidate_MalformedSignal(t *testing.T) {
	v := newTestValidator()

	_, _, err := v.Validate(CandidateSignal{Symbol: "", Entry: 100}, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedSignal)

	_, _, err = v.Validate(CandidateSignal{Symbol: "BTCUSDT", Entry: 0}, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedSignal)
}

func TestValidate_ShortHistoryDoesNotPanic(t *testing.T) {
	v := newTestValidator()

	// Three bars is below every indicator minimum; the pipeline must
	// degrade, not crash, and the score must stay in range.
	series := bullishSeries(3)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Stop:       entry - 1,
		Target:     entry + 4,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	if signal != nil {
		assert.GreaterOrEqual(t, signal.Score, 0.0)
		assert.LessOrEqual(t, signal.Score, 1.0)
	} else {
		require.NotNil(t, rejection)
	}
}

func TestValidate_DerivesProtectiveLevels(t *testing.T) {
	v := newTestValidator()
	series := bullishSeries(60)
	entry := series[len(series)-1].Close

	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Confidence: 90, // no stop or target supplied
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, rejection, "expected acceptance, got %v", rejection)

	// Defaults: 1% stop, 3% target
	assert.InDelta(t, entry*0.99, signal.Stop, 1e-9)
	assert.InDelta(t, entry*1.03, signal.Target, 1e-9)
	assert.InDelta(t, 3.0, signal.RiskReward, 1e-6)
}

func TestValidate_WinProbabilityUsesHistory(t *testing.T) {
	store := adaptive.NewThresholdStore(adaptive.DefaultThresholds())
	history := adaptive.NewTradeHistory()
	v := New(DefaultConfig(), adaptive.NewManager(store), history)

	for i := 0; i < 10; i++ {
		history.Record("BTCUSDT", true, 2.0)
	}

	series := bullishSeries(60)
	entry := series[len(series)-1].Close
	signal, rejection, err := v.Validate(CandidateSignal{
		Symbol:     "BTCUSDT",
		Side:       types.SideLong,
		Entry:      entry,
		Stop:       entry - 1,
		Target:     entry + 4,
		Confidence: 90,
	}, series, nil)

	require.NoError(t, err)
	require.Nil(t, rejection)

	// base 0.50 + confluence 1.0*0.20 + (1.0-0.50)*0.15
	assert.InDelta(t, 0.775, signal.WinProbability, 1e-9)
}

func TestStrengthFromScore(t *testing.T) {
	assert.Equal(t, StrengthVeryStrong, StrengthFromScore(0.92))
	assert.Equal(t, StrengthVeryStrong, StrengthFromScore(0.90))
	assert.Equal(t, StrengthStrong, StrengthFromScore(0.85))
	assert.Equal(t, StrengthModerate, StrengthFromScore(0.72))
	assert.Equal(t, StrengthWeak, StrengthFromScore(0.50))
}

func TestRejection_Reporting(t *testing.T) {
	r := &Rejection{Symbol: "BTCUSDT"}
	r.add(ReasonPoorRiskReward, "risk/reward %.2f below %.2f", 0.5, 1.5)
	r.add(ReasonLowScore, "score %.3f below %.3f", 0.6, 0.75)

	assert.True(t, r.Has(ReasonPoorRiskReward))
	assert.False(t, r.Has(ReasonPriceSanity))
	assert.Contains(t, r.String(), "BTCUSDT")
	assert.Contains(t, r.String(), "risk/reward")
}
