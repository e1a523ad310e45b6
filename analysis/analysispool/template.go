package analysispool

import (
	"bytes"
	_ "embed"
	"html/template"
	"sort"

	"fflogs_phase_ranker/analysis"
	"fflogs_phase_ranker/ffxiv"
	"fflogs_phase_ranker/share"

	"github.com/dustin/go-humanize"
)

//go:embed resources/result.tmpl.htm
var tmplResultText string

var tmplResult = template.Must(
	template.New("result.tmpl.htm").
		Funcs(share.TemplateFuncMap).
		Funcs(
			template.FuncMap{
				"label": func(v *float64) string {
					if v == nil {
						return "-"
					}
					return analysis.Label(*v)
				},
				"color": func(v *float64) string {
					if v == nil {
						return ""
					}
					return analysis.LogColor(*v)
				},
				"duration": func(ms float64) string {
					return humanize.FtoaWithDigits(ms/1000, 1) + "s"
				},
			},
		).
		Parse(tmplResultText),
)

type resultPhase struct {
	*analysis.PhaseResult
	Players []analysis.Player
}

// renderResult writes the result page. Players of each phase are grouped by job.
func renderResult(buf *bytes.Buffer, res *analysis.FightResult) error {
	data := struct {
		*analysis.FightResult
		Phases []resultPhase
	}{
		FightResult: res,
		Phases:      make([]resultPhase, len(res.Phases)),
	}

	for i, phase := range res.Phases {
		players := make([]analysis.Player, len(phase.Players))
		copy(players, phase.Players)
		sort.SliceStable(
			players,
			func(a, b int) bool {
				return ffxiv.Order(players[a].Role) < ffxiv.Order(players[b].Role)
			},
		)

		data.Phases[i] = resultPhase{
			PhaseResult: phase,
			Players:     players,
		}
	}

	return tmplResult.Execute(buf, &data)
}
