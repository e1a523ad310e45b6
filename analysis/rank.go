package analysis

import (
	"fflogs_phase_ranker/dataset"
	"fflogs_phase_ranker/fflogs"
	"fflogs_phase_ranker/ffxiv"
)

// NewSnapshot maps a damage-done table into the typed records of one phase. The combat
// time shares the window's downtime.
func NewSnapshot(phase Phase, table *fflogs.DamageTable) *PhaseSnapshot {
	s := &PhaseSnapshot{
		Phase: phase,
		Timing: Timing{
			TotalTime:      table.TotalTime,
			Downtime:       table.Downtime,
			CombatTime:     table.CombatTime,
			CombatDowntime: table.Downtime,
		},
		players: make([]Player, 0, len(table.Entries)),
	}

	for _, entry := range table.Entries {
		s.players = append(
			s.players,
			Player{
				ID:                entry.ID,
				Name:              entry.Name,
				Role:              entry.Type,
				Category:          ffxiv.Category(entry.Type),
				ActiveTime:        entry.ActiveTime,
				ActiveTimeReduced: entry.ActiveTimeReduced,
				RawReduced:        entry.TotalRD,
				RawAdjusted:       entry.TotalAD,
				RawNormal:         entry.TotalND,
			},
		)
	}

	return s
}

// Rank computes rates and percentile estimates for a fresh copy of the snapshot's
// players. With a nil descriptor or table no estimate is made and the ranking duration
// is total time less downtime. Calling Rank again with another dataset never sees the
// previous results.
func Rank(s *PhaseSnapshot, d *dataset.Descriptor, t *dataset.Table) *PhaseResult {
	r := &PhaseResult{
		Phase:   s.Phase,
		Timing:  s.Timing,
		Dataset: d,
		Players: s.Players(),
	}
	if t == nil {
		d = nil
		r.Dataset = nil
	}

	shown, err := EffectiveDuration(s.Timing, nil)
	if err != nil {
		return r.fail(err)
	}
	duration, err := EffectiveDuration(s.Timing, d)
	if err != nil {
		return r.fail(err)
	}
	r.Duration = duration

	for i := range r.Players {
		p := &r.Players[i]

		p.Rates = Rates{
			Reduced:  perInterval(p.RawReduced, shown),
			Adjusted: perInterval(p.RawAdjusted, shown),
			Normal:   perInterval(p.RawNormal, shown),
		}
		p.RankRate = perInterval(p.RawReduced, duration)

		if t == nil {
			continue
		}
		if v, ok := Interpolate(p.RankRate, p.Role, t); ok {
			p.Percentile = &v
		}
	}

	return r
}
