package services

import (
	"math/rand/v2"
	"sync"
	"time"

	"call-sentinel/internal/domain/entities"
)

// ModulatorConfig is the stochastic-threshold strategy. Deterministic disables
// the noise and both flips, which makes Adjust a pure function of its inputs and the clock.
type ModulatorConfig struct {
	Deterministic     bool
	NoiseMagnitude    float64
	FalseNegativeRate float64
	FalsePositiveRate float64
	BusinessShift     float64
	EveningShift      float64
	NightShift        float64
}

func DefaultModulatorConfig() ModulatorConfig {
	return ModulatorConfig{
		NoiseMagnitude:    0.10,
		FalseNegativeRate: 0.02,
		FalsePositiveRate: 0.01,
		BusinessShift:     -0.05,
		EveningShift:      0,
		NightShift:        0.10,
	}
}

// ConfidenceModulator turns a raw classifier score into a spam decision. It is the
// only place in the triage pipeline where randomness enters.
type ConfidenceModulator struct {
	Config ModulatorConfig
	Now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewConfidenceModulator seeds its own source when rng is nil.
func NewConfidenceModulator(cfg ModulatorConfig, rng *rand.Rand) *ConfidenceModulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ConfidenceModulator{Config: cfg, Now: time.Now, rng: rng}
}

// Adjust applies, in order: bounded noise, the time-of-day threshold shift, the
// threshold comparison and the two low-probability flips.
func (cm *ConfidenceModulator) Adjust(raw, baseThreshold float64) entities.ClassificationResult {
	raw = clamp(raw, 0, 1)

	noise := 0.0
	if !cm.Config.Deterministic && cm.Config.NoiseMagnitude > 0 {
		noise = raw * cm.uniform(-cm.Config.NoiseMagnitude, cm.Config.NoiseMagnitude)
	}
	adjusted := clamp(raw+noise, 0, 1)

	shift := cm.timeShift(cm.Now().Hour())
	threshold := clamp(baseThreshold+shift, 0.1, 0.9)

	result := entities.ClassificationResult{
		RawConfidence:      raw,
		AdjustedConfidence: adjusted,
		BaseThreshold:      baseThreshold,
		AdjustedThreshold:  threshold,
		ThresholdDelta:     threshold - baseThreshold,
		ConfidenceDelta:    adjusted - raw,
		IsSpam:             adjusted > threshold,
	}

	if cm.Config.Deterministic {
		return result
	}
	switch {
	case adjusted > 0.9 && cm.chance(cm.Config.FalseNegativeRate):
		result.IsSpam = false
		result.Flipped = entities.FlipFalseNegative
	case adjusted < 0.1 && cm.chance(cm.Config.FalsePositiveRate):
		result.IsSpam = true
		result.Flipped = entities.FlipFalsePositive
	}
	return result
}

// timeShift is negative (more sensitive) during business hours and positive at night.
func (cm *ConfidenceModulator) timeShift(hour int) float64 {
	switch {
	case hour >= 9 && hour <= 17:
		return cm.Config.BusinessShift
	case hour >= 18 && hour <= 21:
		return cm.Config.EveningShift
	default:
		return cm.Config.NightShift
	}
}

func (cm *ConfidenceModulator) uniform(low, high float64) float64 {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return low + cm.rng.Float64()*(high-low)
}

func (cm *ConfidenceModulator) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.rng.Float64() < p
}
