package validator

import (
	"fmt"
	"strings"

	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// CandidateSignal is a raw trade proposal from the upstream generator.
// Stop and Target may be zero, in which case the validator derives them
// from the symbol's adaptive stop/target percentages.
type CandidateSignal struct {
	Symbol     string
	Side       types.Side
	Entry      float64
	Stop       float64
	Target     float64
	Confidence float64 // generator confidence, 0-100
}

// SignalStrength buckets a validated signal's score.
type SignalStrength int

const (
	StrengthWeak SignalStrength = iota
	StrengthModerate
	StrengthStrong
	StrengthVeryStrong
)

func (s SignalStrength) String() string {
	switch s {
	case StrengthWeak:
		return "WEAK"
	case StrengthModerate:
		return "MODERATE"
	case StrengthStrong:
		return "STRONG"
	case StrengthVeryStrong:
		return "VERY_STRONG"
	default:
		return "UNKNOWN"
	}
}

// StrengthFromScore maps a composite score to its strength tier.
func StrengthFromScore(score float64) SignalStrength {
	switch {
	case score >= 0.90:
		return StrengthVeryStrong
	case score >= 0.80:
		return StrengthStrong
	case score >= 0.70:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// LayerFlags records which boolean validation layers passed.
type LayerFlags struct {
	MarketContextValid bool
	TimeframeConfirmed bool
	PatternConfirmed   bool
	VolumeConfirmed    bool
}

// ValidatedSignal is the immutable output of a successful validation run.
type ValidatedSignal struct {
	Symbol            string
	Side              types.Side
	Entry             float64
	Stop              float64
	Target            float64
	Score             float64
	Strength          SignalStrength
	AlignedIndicators []string
	ConfluenceScore   float64
	WinProbability    float64
	RiskReward        float64
	Flags             LayerFlags
}

// RejectReason identifies the validation layer that declined a candidate.
type RejectReason int

const (
	ReasonLowConfidence RejectReason = iota
	ReasonPriceSanity
	ReasonLowConfluence
	ReasonMarketContext
	ReasonWeakCandle
	ReasonPoorRiskReward
	ReasonLowWinProbability
	ReasonLowScore
)

func (r RejectReason) String() string {
	switch r {
	case ReasonLowConfidence:
		return "generator confidence below adaptive minimum"
	case ReasonPriceSanity:
		return "entry not between stop and target"
	case ReasonLowConfluence:
		return "indicator confluence below floor"
	case ReasonMarketContext:
		return "market context invalid"
	case ReasonWeakCandle:
		return "candle pattern too weak"
	case ReasonPoorRiskReward:
		return "risk/reward ratio below minimum"
	case ReasonLowWinProbability:
		return "win probability below floor"
	case ReasonLowScore:
		return "composite score below acceptance floor"
	default:
		return "unknown"
	}
}

// Rejection carries every reason a candidate failed, with the numeric
// context needed to reproduce the decision.
type Rejection struct {
	Symbol  string
	Reasons []RejectReason
	Details []string
}

func (r *Rejection) add(reason RejectReason, format string, args ...interface{}) {
	r.Reasons = append(r.Reasons, reason)
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// Has reports whether the rejection includes the given reason.
func (r *Rejection) Has(reason RejectReason) bool {
	for _, got := range r.Reasons {
		if got == reason {
			return true
		}
	}
	return false
}

func (r *Rejection) String() string {
	if len(r.Details) == 0 {
		return fmt.Sprintf("%s: rejected", r.Symbol)
	}
	return fmt.Sprintf("%s: %s", r.Symbol, strings.Join(r.Details, "; "))
}
