package validator

import (
	"fmt"
	"math"

	"github.com/tradesentry/signal-sentry-bot/internal/adaptive"
	"github.com/tradesentry/signal-sentry-bot/internal/indicators"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// Config holds the validation floors and ceilings. Zero values are replaced
// by the defaults from DefaultConfig.
type Config struct {
	MinConfluence     float64 // fraction of aligned indicators, default 0.60
	MinCandleStrength float64 // directional body / range, default 0.50
	MinRiskReward     float64 // default 1.5
	MinWinProbability float64 // default 0.65
	MinScore          float64 // composite acceptance floor, default 0.75
	MaxVolatility     float64 // short-horizon return stdev ceiling, default 0.05
	MinMASeparation   float64 // short/medium SMA distance floor, default 0.01
}

// DefaultConfig returns the stock validation parameters.
func DefaultConfig() Config {
	return Config{
		MinConfluence:     0.60,
		MinCandleStrength: 0.50,
		MinRiskReward:     1.5,
		MinWinProbability: 0.65,
		MinScore:          0.75,
		MaxVolatility:     0.05,
		MinMASeparation:   0.01,
	}
}

// Layer weights of the composite score. Market context is a hard gate but
// still carries weight so the bands line up with the strength tiers.
const (
	weightConfluence = 0.25
	weightContext    = 0.10
	weightTimeframe  = 0.10
	weightCandle     = 0.15
	weightVolume     = 0.10
	weightWinProb    = 0.20
	weightPullback   = 0.05
	weightDivergence = 0.05
)

// Indicator windows.
const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	bandPeriod       = 20
	bandStdDev       = 2.0
	volumePeriod     = 20
	maShortPeriod    = 10
	maMediumPeriod   = 20
	maLongPeriod     = 50
	momentumPeriod   = 10
	pullbackWindow   = 10
	divergenceShift  = 5
	contextVolWindow = 10
)

// Validator runs a candidate signal through the ten-layer scoring pipeline.
// It never mutates its price-series inputs.
type Validator struct {
	config     Config
	thresholds *adaptive.Manager
	history    *adaptive.TradeHistory

	rsi      *indicators.RSI
	macd     *indicators.MACD
	bands    *indicators.BollingerBands
	momentum *indicators.Momentum
}

// New creates a validator reading adaptive thresholds and trade history
// from the given manager.
func New(config Config, thresholds *adaptive.Manager, history *adaptive.TradeHistory) *Validator {
	def := DefaultConfig()
	if config.MinConfluence == 0 {
		config.MinConfluence = def.MinConfluence
	}
	if config.MinCandleStrength == 0 {
		config.MinCandleStrength = def.MinCandleStrength
	}
	if config.MinRiskReward == 0 {
		config.MinRiskReward = def.MinRiskReward
	}
	if config.MinWinProbability == 0 {
		config.MinWinProbability = def.MinWinProbability
	}
	if config.MinScore == 0 {
		config.MinScore = def.MinScore
	}
	if config.MaxVolatility == 0 {
		config.MaxVolatility = def.MaxVolatility
	}
	if config.MinMASeparation == 0 {
		config.MinMASeparation = def.MinMASeparation
	}

	return &Validator{
		config:     config,
		thresholds: thresholds,
		history:    history,
		rsi:        indicators.NewRSI(rsiPeriod),
		macd:       indicators.NewMACD(macdFastPeriod, macdSlowPeriod),
		bands:      indicators.NewBollingerBands(bandPeriod, bandStdDev),
		momentum:   indicators.NewMomentum(momentumPeriod),
	}
}

// ErrMalformedSignal marks a candidate missing required fields. It is a
// per-signal configuration fault, not a validation rejection.
var ErrMalformedSignal = fmt.Errorf("malformed candidate signal")

// Validate scores a candidate against the entry-timeframe and
// higher-timeframe series. It returns exactly one of: a validated signal,
// a structured rejection, or an error for malformed input.
func (v *Validator) Validate(candidate CandidateSignal, entrySeries, higherSeries []types.OHLCV) (*ValidatedSignal, *Rejection, error) {
	if candidate.Symbol == "" || candidate.Entry <= 0 {
		return nil, nil, fmt.Errorf("%w: symbol=%q entry=%.4f", ErrMalformedSignal, candidate.Symbol, candidate.Entry)
	}

	thresholds := v.thresholds.ThresholdsFor(candidate.Symbol)
	candidate = v.fillProtectiveLevels(candidate, thresholds)

	rejection := &Rejection{Symbol: candidate.Symbol}
	closes := types.Closes(entrySeries)

	// Layer 0: the adaptive confidence gate on the generator's own score.
	if candidate.Confidence < thresholds.MinScore {
		rejection.add(ReasonLowConfidence, "confidence %.1f below adaptive minimum %.1f",
			candidate.Confidence, thresholds.MinScore)
	}

	// Layer 1: entry strictly between stop and target per side.
	if !priceSanityValid(candidate) {
		rejection.add(ReasonPriceSanity, "%s entry=%.4f stop=%.4f target=%.4f",
			candidate.Side, candidate.Entry, candidate.Stop, candidate.Target)
	}

	// Layer 2: indicator confluence.
	confluence, aligned := v.confluence(candidate.Side, closes)
	if confluence.evaluated > 0 && confluence.score < v.config.MinConfluence {
		rejection.add(ReasonLowConfluence, "confluence %.2f below %.2f (%d/%d aligned)",
			confluence.score, v.config.MinConfluence, len(aligned), confluence.evaluated)
	}

	// Layer 3: higher-timeframe confirmation.
	timeframeOK := v.timeframeConfirms(candidate.Side, higherSeries)

	// Layer 4: market context.
	contextOK, contextDetail := v.marketContextValid(closes)
	if !contextOK {
		rejection.add(ReasonMarketContext, "%s", contextDetail)
	}

	// Layer 5: candle pattern strength.
	candleStrength := candlePatternStrength(candidate.Side, entrySeries)
	if candleStrength < v.config.MinCandleStrength {
		rejection.add(ReasonWeakCandle, "candle strength %.2f below %.2f",
			candleStrength, v.config.MinCandleStrength)
	}

	// Layer 6: volume confirmation.
	volumeOK, volumeScore := v.volumeConfirms(entrySeries)

	// Layer 7: risk/reward.
	riskReward := riskRewardRatio(candidate)
	if riskReward < v.config.MinRiskReward {
		rejection.add(ReasonPoorRiskReward, "risk/reward %.2f below %.2f",
			riskReward, v.config.MinRiskReward)
	}

	// Layer 8: win-probability estimate.
	winRate := v.history.WinRate(candidate.Symbol)
	winProb := clamp(0.50+confluence.score*0.20+(winRate-0.50)*0.15, 0.50, 0.95)
	if winProb < v.config.MinWinProbability {
		rejection.add(ReasonLowWinProbability, "win probability %.2f below %.2f",
			winProb, v.config.MinWinProbability)
	}

	// Layers 9 and 10: pullback and divergence, both pass-by-default.
	pullbackOK := pullbackValid(candidate.Side, entrySeries)
	divergenceOK := v.divergenceClean(candidate.Side, closes)

	score := weightConfluence*confluence.score +
		boolWeight(contextOK, weightContext) +
		boolWeight(timeframeOK, weightTimeframe) +
		weightCandle*candleStrength +
		weightVolume*volumeScore +
		weightWinProb*winProb +
		boolWeight(pullbackOK, weightPullback) +
		boolWeight(divergenceOK, weightDivergence)
	score = clamp(score, 0, 1)

	if score < v.config.MinScore {
		rejection.add(ReasonLowScore, "score %.3f below %.3f", score, v.config.MinScore)
	}

	if len(rejection.Reasons) > 0 {
		return nil, rejection, nil
	}

	return &ValidatedSignal{
		Symbol:            candidate.Symbol,
		Side:              candidate.Side,
		Entry:             candidate.Entry,
		Stop:              candidate.Stop,
		Target:            candidate.Target,
		Score:             score,
		Strength:          StrengthFromScore(score),
		AlignedIndicators: aligned,
		ConfluenceScore:   confluence.score,
		WinProbability:    winProb,
		RiskReward:        riskReward,
		Flags: LayerFlags{
			MarketContextValid: contextOK,
			TimeframeConfirmed: timeframeOK,
			PatternConfirmed:   candleStrength >= v.config.MinCandleStrength,
			VolumeConfirmed:    volumeOK,
		},
	}, nil, nil
}

// fillProtectiveLevels derives stop and target from the adaptive
// percentages when the generator supplied none.
func (v *Validator) fillProtectiveLevels(c CandidateSignal, th adaptive.Thresholds) CandidateSignal {
	if c.Stop == 0 {
		if c.Side == types.SideLong {
			c.Stop = c.Entry * (1 - th.StopLossPct/100)
		} else {
			c.Stop = c.Entry * (1 + th.StopLossPct/100)
		}
	}
	if c.Target == 0 {
		if c.Side == types.SideLong {
			c.Target = c.Entry * (1 + th.TakeProfitPct/100)
		} else {
			c.Target = c.Entry * (1 - th.TakeProfitPct/100)
		}
	}
	return c
}

func priceSanityValid(c CandidateSignal) bool {
	if c.Side == types.SideLong {
		return c.Stop < c.Entry && c.Entry < c.Target
	}
	return c.Target < c.Entry && c.Entry < c.Stop
}

func riskRewardRatio(c CandidateSignal) float64 {
	risk := math.Abs(c.Entry - c.Stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(c.Target-c.Entry) / risk
}

func boolWeight(ok bool, weight float64) float64 {
	if ok {
		return weight
	}
	return 0
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
