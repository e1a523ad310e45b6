package analysis

import (
	"fflogs_phase_ranker/dataset"
	"fflogs_phase_ranker/fflogs"
)

type Phase = fflogs.Phase

// Timing holds the durations of one phase window, in milliseconds.
type Timing struct {
	TotalTime      float64 `json:"total_time"`
	Downtime       float64 `json:"downtime"`
	CombatTime     float64 `json:"combat_time"`
	CombatDowntime float64 `json:"combat_downtime"`
}

type Rates struct {
	Reduced  float64 `json:"rdps"`
	Adjusted float64 `json:"adps"`
	Normal   float64 `json:"ndps"`
}

// Player is one participant of a phase. The Raw* counters are cumulative over the phase;
// the rest is derived by Rank. Rates are over total time less downtime, as FFLogs shows
// them. RankRate is the reduced rate over the dataset's duration and is the value the
// percentile is estimated from.
type Player struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Category string `json:"category"`

	ActiveTime        float64 `json:"active_time"`
	ActiveTimeReduced float64 `json:"active_time_reduced"`

	RawReduced  float64 `json:"total_rd"`
	RawAdjusted float64 `json:"total_ad"`
	RawNormal   float64 `json:"total_nd"`

	Rates      Rates    `json:"rates"`
	RankRate   float64  `json:"rank_rate"`
	Percentile *float64 `json:"percentile,omitempty"`
}

// PhaseSnapshot is the data of one phase exactly as ingested. It is never modified;
// Rank works on copies of its players.
type PhaseSnapshot struct {
	Phase   Phase
	Timing  Timing
	players []Player
}

// Players returns a copy of the ingested players.
func (s *PhaseSnapshot) Players() []Player {
	r := make([]Player, len(s.players))
	copy(r, s.players)
	for i := range r {
		r[i].Rates = Rates{}
		r[i].RankRate = 0
		r[i].Percentile = nil
	}
	return r
}

type PhaseResult struct {
	Phase      Phase                 `json:"phase"`
	Timing     Timing                `json:"timing"`
	Candidates []*dataset.Descriptor `json:"candidates"`
	Dataset    *dataset.Descriptor   `json:"dataset,omitempty"`
	Duration   float64               `json:"duration"` // RankRate is over this
	Players    []Player              `json:"players"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func (r *PhaseResult) fail(err error) *PhaseResult {
	r.Err = err
	r.Error = err.Error()
	r.Players = nil
	return r
}

type FightResult struct {
	ReportCode string         `json:"report"`
	Title      string         `json:"title"`
	Fight      *fflogs.Fight  `json:"fight"`
	Phases     []*PhaseResult `json:"phases"`
}
