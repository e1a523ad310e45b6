package analysis

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"fflogs_phase_ranker/fflogs"
)

const maxSelections = 16

// RequestData is one queued ranking request. Report accepts a report link or code.
type RequestData struct {
	Report   string         `json:"report"`
	Fight    int            `json:"fight"`
	APIKey   string         `json:"api_key"`
	Datasets map[int]string `json:"datasets"`
}

// Validate normalizes the request in place. A fight named by the report link is used
// when Fight is not set.
func (r *RequestData) Validate() bool {
	r.APIKey = strings.TrimSpace(r.APIKey)

	code, fightID, ok := fflogs.ParseReportURL(r.Report)
	if !ok {
		return false
	}
	r.Report = code
	if r.Fight == 0 {
		r.Fight = fightID
	}

	for phase, name := range r.Datasets {
		name = strings.TrimSpace(name)
		if name == "" {
			delete(r.Datasets, phase)
		} else {
			r.Datasets[phase] = name
		}
	}

	switch {
	case r.APIKey == "":
	case r.Fight < 0:
	case len(r.Datasets) > maxSelections:
	default:
		return true
	}

	return false
}

// Hash identifies the result of the request. The api key does not change the result and
// is left out.
func (r *RequestData) Hash() uint64 {
	phases := make([]int, 0, len(r.Datasets))
	for phase := range r.Datasets {
		phases = append(phases, phase)
	}
	sort.Ints(phases)

	h := fnv.New64a()
	fmt.Fprint(h, r.Report, "|||", r.Fight, "|||")
	for _, phase := range phases {
		fmt.Fprint(h, phase, "=", r.Datasets[phase], "|||")
	}

	return h.Sum64()
}
