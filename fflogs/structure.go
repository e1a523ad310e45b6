package fflogs

// Wire shapes of the v1 report API. They never leave this package: fflogs.go maps them
// into the typed records below.

type respError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

type respFights struct {
	respError

	Title  string `json:"title"`
	Fights []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		Kill      bool   `json:"kill"`
		StartTime int64  `json:"start_time"`
		EndTime   int64  `json:"end_time"`
		Phases    []struct {
			ID        int   `json:"id"`
			StartTime int64 `json:"startTime"`
		} `json:"phases"`
	} `json:"fights"`
	Friendlies []struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Server string `json:"server"`
		Type   string `json:"type"`
		Fights []struct {
			ID int `json:"id"`
		} `json:"fights"`
	} `json:"friendlies"`
}

type respDamageDone struct {
	respError

	TotalTime  float64 `json:"totalTime"`
	Downtime   float64 `json:"downtime"`
	CombatTime float64 `json:"combatTime"`
	Entries    []struct {
		ID                int     `json:"id"`
		Name              string  `json:"name"`
		Type              string  `json:"type"`
		ActiveTime        float64 `json:"activeTime"`
		ActiveTimeReduced float64 `json:"activeTimeReduced"`
		// cumulative amounts despite the names
		TotalRDPS float64 `json:"totalRDPS"`
		TotalADPS float64 `json:"totalADPS"`
		TotalNDPS float64 `json:"totalNDPS"`
	} `json:"entries"`
}

////////////////////////////////////////////////////////////////////////////////////////////////////

type Report struct {
	Code       string     `json:"code"`
	Title      string     `json:"title"`
	Fights     []*Fight   `json:"fights"`
	Friendlies []Friendly `json:"friendlies"`
}

// Fight returns the fight with the given id.
func (r *Report) Fight(id int) (*Fight, bool) {
	for _, f := range r.Fights {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// LastKill returns the last fight that ended in a kill.
func (r *Report) LastKill() (*Fight, bool) {
	for i := len(r.Fights) - 1; i >= 0; i-- {
		if r.Fights[i].Kill {
			return r.Fights[i], true
		}
	}
	return nil, false
}

type Fight struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Kill       bool       `json:"kill"`
	StartTime  int64      `json:"start_time"`
	EndTime    int64      `json:"end_time"`
	Phases     []Phase    `json:"phases"`
	Friendlies []Friendly `json:"friendlies"`
}

// Phase is a contiguous window of a fight. ID correlates with dataset phase numbers.
type Phase struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

type Friendly struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Server string `json:"server"`
	Type   string `json:"type"`
	Fights []int  `json:"fights"`
}

// DamageTable is the damage-done table of one time window. Times are milliseconds.
type DamageTable struct {
	TotalTime  float64       `json:"total_time"`
	Downtime   float64       `json:"downtime"`
	CombatTime float64       `json:"combat_time"`
	Entries    []DamageEntry `json:"entries"`
}

type DamageEntry struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	ActiveTime        float64 `json:"active_time"`
	ActiveTimeReduced float64 `json:"active_time_reduced"`
	TotalRD           float64 `json:"total_rd"`
	TotalAD           float64 `json:"total_ad"`
	TotalND           float64 `json:"total_nd"`
}
