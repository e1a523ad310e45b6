package fflogs

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"sort"
	"strconv"
)

const limitBreakType = "LimitBreak"

// FetchReport fetches the encounter structure of the configured report.
func (c *Client) FetchReport(ctx context.Context) (*Report, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	var resp respFights
	err := c.call(ctx, "report/fights", nil, &resp, &resp.respError)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Code:       c.opt.ReportID,
		Title:      resp.Title,
		Fights:     make([]*Fight, 0, len(resp.Fights)),
		Friendlies: make([]Friendly, 0, len(resp.Friendlies)),
	}

	for _, respFriendly := range resp.Friendlies {
		friendly := Friendly{
			ID:     respFriendly.ID,
			Name:   respFriendly.Name,
			Server: respFriendly.Server,
			Type:   respFriendly.Type,
			Fights: make([]int, len(respFriendly.Fights)),
		}
		for i, f := range respFriendly.Fights {
			friendly.Fights[i] = f.ID
		}
		r.Friendlies = append(r.Friendlies, friendly)
	}

	for _, respFight := range resp.Fights {
		fight := &Fight{
			ID:        respFight.ID,
			Name:      respFight.Name,
			Kill:      respFight.Kill,
			StartTime: respFight.StartTime,
			EndTime:   respFight.EndTime,
		}
		if fight.Name == "" {
			fight.Name = fmt.Sprintf("Fight %d", fight.ID)
		}

		for i, respPhase := range respFight.Phases {
			phase := Phase{
				ID:        respPhase.ID,
				Name:      fmt.Sprintf("Phase %d", i+1),
				StartTime: respPhase.StartTime,
				EndTime:   respFight.EndTime,
			}
			if i+1 < len(respFight.Phases) {
				phase.EndTime = respFight.Phases[i+1].StartTime
			}
			fight.Phases = append(fight.Phases, phase)
		}

		// fights without phase markers are ranked as a single phase
		if len(fight.Phases) == 0 {
			fight.Phases = []Phase{
				{
					ID:        1,
					Name:      "Phase 1",
					StartTime: fight.StartTime,
					EndTime:   fight.EndTime,
				},
			}
		}

		for _, friendly := range r.Friendlies {
			for _, id := range friendly.Fights {
				if id == fight.ID {
					fight.Friendlies = append(fight.Friendlies, friendly)
					break
				}
			}
		}

		r.Fights = append(r.Fights, fight)
	}

	return r, nil
}

// FetchDamageDone fetches the damage-done table for the window [start, end]. Limit
// break entries are dropped and entries are ordered by cumulative rDPS, highest first.
func (c *Client) FetchDamageDone(ctx context.Context, start, end int64) (*DamageTable, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	key := c.damageDoneKey(start, end)

	var r DamageTable
	if c.opt.Cache != nil && c.opt.Cache.Load(key, &r) {
		return &r, nil
	}

	query := url.Values{
		"start": []string{strconv.FormatInt(start, 10)},
		"end":   []string{strconv.FormatInt(end, 10)},
	}

	var resp respDamageDone
	err := c.call(ctx, "report/tables/damage-done", query, &resp, &resp.respError)
	if err != nil {
		return nil, err
	}

	r = DamageTable{
		TotalTime:  resp.TotalTime,
		Downtime:   resp.Downtime,
		CombatTime: resp.CombatTime,
		Entries:    make([]DamageEntry, 0, len(resp.Entries)),
	}
	for _, entry := range resp.Entries {
		if entry.Type == limitBreakType {
			continue
		}
		r.Entries = append(
			r.Entries,
			DamageEntry{
				ID:                entry.ID,
				Name:              entry.Name,
				Type:              entry.Type,
				ActiveTime:        entry.ActiveTime,
				ActiveTimeReduced: entry.ActiveTimeReduced,
				TotalRD:           entry.TotalRDPS,
				TotalAD:           entry.TotalADPS,
				TotalND:           entry.TotalNDPS,
			},
		)
	}
	sort.SliceStable(
		r.Entries,
		func(i, k int) bool {
			return r.Entries[i].TotalRD > r.Entries[k].TotalRD
		},
	)

	if c.opt.Cache != nil {
		c.opt.Cache.Save(key, &r)
	}

	return &r, nil
}

func (c *Client) damageDoneKey(start, end int64) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(
		h,
		"%s|%s_st_%d_et_%d",
		c.opt.BaseURL, c.opt.ReportID, start, end,
	)
	return h.Sum64()
}
