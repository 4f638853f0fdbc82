package validator

import (
	"fmt"

	"github.com/tradesentry/signal-sentry-bot/internal/indicators"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// confluenceResult is the outcome of the five-indicator alignment check.
type confluenceResult struct {
	score     float64
	evaluated int
}

// confluence evaluates up to five independent indicators against the
// proposed side. Indicators without enough history are skipped and reduce
// the denominator instead of counting against the candidate. With nothing
// evaluable the score is neutral.
func (v *Validator) confluence(side types.Side, closes []float64) (confluenceResult, []string) {
	var aligned []string
	evaluated := 0
	long := side == types.SideLong

	if rsi, err := v.rsi.Calculate(closes); err == nil {
		evaluated++
		// Momentum without exhaustion: above the midline but not blown out.
		if (long && rsi > 45 && rsi < 80) || (!long && rsi < 55 && rsi > 20) {
			aligned = append(aligned, "rsi")
		}
	}

	if macd, err := v.macd.Calculate(closes); err == nil {
		evaluated++
		if (long && macd > 0) || (!long && macd < 0) {
			aligned = append(aligned, "macd")
		}
	}

	if position, err := v.bands.Calculate(closes); err == nil {
		evaluated++
		if (long && position >= 0.5) || (!long && position <= 0.5) {
			aligned = append(aligned, "bands")
		}
	}

	if short, err := indicators.SMA(closes, maShortPeriod); err == nil {
		if longMA, err := indicators.SMA(closes, maLongPeriod); err == nil {
			evaluated++
			if (long && short > longMA) || (!long && short < longMA) {
				aligned = append(aligned, "ma_alignment")
			}
		}
	}

	if mom, err := v.momentum.Calculate(closes); err == nil {
		evaluated++
		accel, _ := v.momentum.Acceleration(closes)
		if (long && (mom > 0 || accel > 0)) || (!long && (mom < 0 || accel < 0)) {
			aligned = append(aligned, "momentum")
		}
	}

	if evaluated == 0 {
		return confluenceResult{score: 0.5, evaluated: 0}, nil
	}
	return confluenceResult{
		score:     float64(len(aligned)) / float64(evaluated),
		evaluated: evaluated,
	}, aligned
}

// timeframeConfirms checks that the higher-timeframe trend and oscillator
// range do not contradict the proposed side. Missing data passes.
func (v *Validator) timeframeConfirms(side types.Side, higher []types.OHLCV) bool {
	if len(higher) == 0 {
		return true
	}

	closes := types.Closes(higher)
	long := side == types.SideLong

	trendKnown := false
	trendUp := false
	if short, err := indicators.SMA(closes, maShortPeriod); err == nil {
		if longMA, err := indicators.SMA(closes, maLongPeriod); err == nil {
			trendKnown = true
			trendUp = short > longMA
		}
	}
	if !trendKnown {
		if mom, err := v.momentum.Calculate(closes); err == nil {
			trendKnown = true
			trendUp = mom > 0
		}
	}
	if trendKnown && (long != trendUp) {
		return false
	}

	if rsi, err := v.rsi.Calculate(closes); err == nil {
		// An exhausted higher timeframe contradicts a continuation entry.
		if (long && rsi > 80) || (!long && rsi < 20) {
			return false
		}
	}

	return true
}

// marketContextValid rejects trading in violently volatile or directionless
// markets. Series too short for either reading pass.
func (v *Validator) marketContextValid(closes []float64) (bool, string) {
	if len(closes) > contextVolWindow {
		window := closes[len(closes)-contextVolWindow-1:]
		volatility := indicators.StdDev(indicators.Returns(window))
		if volatility > v.config.MaxVolatility {
			return false, fmt.Sprintf("volatility %.4f above ceiling %.4f", volatility, v.config.MaxVolatility)
		}
	}

	short, errShort := indicators.SMA(closes, maShortPeriod)
	medium, errMedium := indicators.SMA(closes, maMediumPeriod)
	if errShort == nil && errMedium == nil && medium != 0 {
		separation := absFloat(short-medium) / medium
		if separation < v.config.MinMASeparation {
			return false, fmt.Sprintf("moving averages %.4f apart, directionless market", separation)
		}
	}

	return true, ""
}

// candlePatternStrength is the directional body of the most recent candle
// relative to its full range. A candle against the proposed side scores
// zero; a missing or zero-range candle is neutral.
func candlePatternStrength(side types.Side, series []types.OHLCV) float64 {
	if len(series) == 0 {
		return 0.5
	}

	last := series[len(series)-1]
	fullRange := last.High - last.Low
	if fullRange <= 0 {
		return 0.5
	}

	body := last.Close - last.Open
	if side == types.SideShort {
		body = -body
	}
	if body < 0 {
		return 0
	}
	return clamp(body/fullRange, 0, 1)
}

// volumeConfirms compares the latest volume against its trailing average.
// Missing volume data passes with a neutral score.
func (v *Validator) volumeConfirms(series []types.OHLCV) (bool, float64) {
	ratio, err := indicators.VolumeRatio(types.Volumes(series), volumePeriod)
	if err != nil {
		return true, 0.5
	}
	return ratio > 1.2, clamp(ratio/2, 0, 1)
}

// pullbackValid checks that recent price action retraced and resumed in the
// proposed direction. Ambiguous or short windows pass.
func pullbackValid(side types.Side, series []types.OHLCV) bool {
	if len(series) < pullbackWindow {
		return true
	}

	window := series[len(series)-pullbackWindow:]
	high := window[0].High
	low := window[0].Low
	for _, bar := range window {
		if bar.High > high {
			high = bar.High
		}
		if bar.Low < low {
			low = bar.Low
		}
	}
	if high <= low {
		return true
	}

	midpoint := (high + low) / 2
	close := window[len(window)-1].Close
	if side == types.SideLong {
		return close >= midpoint
	}
	return close <= midpoint
}

// divergenceClean checks that the oscillator trend over a short window does
// not diverge against the proposed direction. Insufficient data passes.
func (v *Validator) divergenceClean(side types.Side, closes []float64) bool {
	if len(closes) < v.rsi.RequiredBars()+divergenceShift {
		return true
	}

	now, errNow := v.rsi.Calculate(closes)
	prev, errPrev := v.rsi.Calculate(closes[:len(closes)-divergenceShift])
	if errNow != nil || errPrev != nil {
		return true
	}

	priceNow := closes[len(closes)-1]
	pricePrev := closes[len(closes)-1-divergenceShift]

	if side == types.SideLong {
		// Price pushing up while the oscillator decays is bearish divergence.
		return !(priceNow > pricePrev && now < prev-10)
	}
	return !(priceNow < pricePrev && now > prev+10)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
