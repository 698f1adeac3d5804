package domain

import "fmt"

type Tier string

const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// Tiers lists every tier from highest to lowest.
var Tiers = []Tier{TierCritical, TierHigh, TierMedium, TierLow}

func ParseTier(raw string) (Tier, error) {
	for _, tier := range Tiers {
		if string(tier) == raw {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown tier %q", raw)
}

// Rank orders tiers, critical being 4 and low 1. Unknown tiers rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierCritical:
		return 4
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	case TierLow:
		return 1
	default:
		return 0
	}
}

type TierThresholds struct {
	Critical float64 `mapstructure:"critical" toml:"critical"`
	High     float64 `mapstructure:"high" toml:"high"`
	Medium   float64 `mapstructure:"medium" toml:"medium"`
}

// TierFor maps a score onto exactly one tier.
func (t TierThresholds) TierFor(score float64) Tier {
	switch {
	case score >= t.Critical:
		return TierCritical
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

func (t TierThresholds) Validate() error {
	if t.Critical > 1 || t.Medium <= 0 {
		return fmt.Errorf("%w: tier thresholds must lie in (0,1]", ErrConfiguration)
	}
	if !(t.Critical > t.High && t.High > t.Medium) {
		return fmt.Errorf("%w: tier thresholds must be strictly decreasing (critical %.3f, high %.3f, medium %.3f)",
			ErrConfiguration, t.Critical, t.High, t.Medium)
	}
	return nil
}

type TierWeights struct {
	Critical float64 `mapstructure:"critical" toml:"critical"`
	High     float64 `mapstructure:"high" toml:"high"`
	Medium   float64 `mapstructure:"medium" toml:"medium"`
	Low      float64 `mapstructure:"low" toml:"low"`
}

func (w TierWeights) For(tier Tier) float64 {
	switch tier {
	case TierCritical:
		return w.Critical
	case TierHigh:
		return w.High
	case TierMedium:
		return w.Medium
	default:
		return w.Low
	}
}

func (w TierWeights) Validate() error {
	for _, tier := range Tiers {
		if v := w.For(tier); v <= 0 || v > 1 {
			return fmt.Errorf("%w: tier weight for %s must lie in (0,1], got %.3f", ErrConfiguration, tier, v)
		}
	}
	return nil
}

// BoostRange bounds the intensity multiplier applied to a tier's focus candidates.
type BoostRange struct {
	Min float64 `mapstructure:"min" toml:"min"`
	Max float64 `mapstructure:"max" toml:"max"`
}

// At interpolates the range; position is clamped to [0,1].
func (r BoostRange) At(position float64) float64 {
	return r.Min + (r.Max-r.Min)*Clamp(position, 0, 1)
}

type TierBoosts struct {
	Critical BoostRange `mapstructure:"critical" toml:"critical"`
	High     BoostRange `mapstructure:"high" toml:"high"`
}

func (b TierBoosts) For(tier Tier) (BoostRange, bool) {
	switch tier {
	case TierCritical:
		return b.Critical, true
	case TierHigh:
		return b.High, true
	default:
		return BoostRange{Min: 1, Max: 1}, false
	}
}

func (b TierBoosts) Validate() error {
	for _, tier := range []Tier{TierCritical, TierHigh} {
		r, _ := b.For(tier)
		if r.Min <= 0 || r.Max < r.Min {
			return fmt.Errorf("%w: %s boost range [%.2f, %.2f] is invalid", ErrConfiguration, tier, r.Min, r.Max)
		}
	}
	return nil
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
