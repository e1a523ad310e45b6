package analysis

import (
	"fflogs_phase_ranker/dataset"

	"github.com/pkg/errors"
)

const (
	// rates are expressed per rateInterval milliseconds
	rateInterval = 1000

	calculationModeTotal  = 0
	calculationModeCombat = 1
)

// ErrNonPositiveDuration is returned when the effective duration of a phase is zero or
// negative, so no rate can be computed.
var ErrNonPositiveDuration = errors.New("analysis: effective duration is not positive")

// EffectiveDuration selects the duration measure named by the descriptor's calculation
// mode and clamps it to the descriptor's upper combat time. A nil descriptor selects
// total time without a cap.
func EffectiveDuration(timing Timing, d *dataset.Descriptor) (float64, error) {
	duration := timing.TotalTime - timing.Downtime

	if d != nil {
		if d.CalculationMode != calculationModeTotal {
			duration = timing.CombatTime - timing.CombatDowntime
		}
		if d.UpperCombatTime > 0 && duration > d.UpperCombatTime {
			duration = d.UpperCombatTime
		}
	}

	if !(duration > 0) {
		return duration, errors.WithStack(ErrNonPositiveDuration)
	}

	return duration, nil
}

// Normalize converts a cumulative amount into a rate per 1000 ms over the effective
// duration. The duration is returned for display.
func Normalize(raw float64, timing Timing, d *dataset.Descriptor) (rate float64, duration float64, err error) {
	duration, err = EffectiveDuration(timing, d)
	if err != nil {
		return 0, duration, err
	}

	return perInterval(raw, duration), duration, nil
}

func perInterval(raw float64, duration float64) float64 {
	return raw / duration * rateInterval
}
