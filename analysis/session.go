package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"fflogs_phase_ranker/dataset"
	"fflogs_phase_ranker/fflogs"
	"fflogs_phase_ranker/share"
	"fflogs_phase_ranker/share/parallel"

	"github.com/pkg/errors"
)

const defaultWorkers = 4

var (
	ErrFightNotFound  = errors.New("analysis: fight not found in report")
	ErrPhaseNotFound  = errors.New("analysis: phase not found in fight")
	ErrUnknownDataset = errors.New("analysis: dataset does not apply to this phase")
)

// Reporter fetches report data. *fflogs.Client implements it.
type Reporter interface {
	FetchReport(ctx context.Context) (*fflogs.Report, error)
	FetchDamageDone(ctx context.Context, start, end int64) (*fflogs.DamageTable, error)
}

// Datasets resolves and loads reference tables. *dataset.Library implements it.
type Datasets interface {
	Resolve(ctx context.Context, encounter string, phase int) ([]*dataset.Descriptor, error)
	Table(ctx context.Context, ref string) (*dataset.Table, error)
}

type snapshotKey struct {
	fight int
	phase int
}

// Session ranks the fights of one report. Fetched phase data is kept for the lifetime
// of the session so switching datasets never refetches.
type Session struct {
	reporter Reporter
	datasets Datasets
	workers  int

	lock      sync.Mutex
	report    *fflogs.Report
	snapshots map[snapshotKey]*PhaseSnapshot
}

func NewSession(reporter Reporter, datasets Datasets) *Session {
	return &Session{
		reporter:  reporter,
		datasets:  datasets,
		workers:   defaultWorkers,
		snapshots: make(map[snapshotKey]*PhaseSnapshot),
	}
}

// Report returns the encounter structure, fetching it on first use.
func (s *Session) Report(ctx context.Context) (*fflogs.Report, error) {
	s.lock.Lock()
	report := s.report
	s.lock.Unlock()
	if report != nil {
		return report, nil
	}

	report, err := s.reporter.FetchReport(ctx)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	if s.report == nil {
		s.report = report
	}
	report = s.report
	s.lock.Unlock()

	return report, nil
}

func (s *Session) fight(ctx context.Context, fightID int) (*fflogs.Report, *fflogs.Fight, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, nil, err
	}

	fight, ok := report.Fight(fightID)
	if !ok {
		return nil, nil, errors.Wrapf(ErrFightNotFound, "fight %d", fightID)
	}

	return report, fight, nil
}

// RankFight ranks every phase of a fight. selection maps phase ids to dataset names;
// phases without an entry use the most recent applicable dataset. Each phase succeeds
// or fails on its own; progress, when set, is told about every finished phase.
func (s *Session) RankFight(ctx context.Context, fightID int, selection map[int]string, progress func(string)) (*FightResult, error) {
	report, fight, err := s.fight(ctx, fightID)
	if err != nil {
		return nil, err
	}

	res := &FightResult{
		ReportCode: report.Code,
		Title:      report.Title,
		Fight:      fight,
		Phases:     make([]*PhaseResult, len(fight.Phases)),
	}

	var done int32

	pp := parallel.New(s.workers)
	pp.Reset(ctx)
	for i, phase := range fight.Phases {
		i, phase := i, phase
		pp.Add(func(ctx context.Context) error {
			res.Phases[i] = s.rankPhase(ctx, fight, phase, selection[phase.ID])

			if progress != nil {
				progress(fmt.Sprintf("%s (%d / %d)", phase.Name, atomic.AddInt32(&done, 1), len(fight.Phases)))
			}
			return nil
		})
	}
	pp.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

// Rerank recomputes one phase with the named dataset. The phase data comes from the
// session, so the result is the same as ranking the pristine data with that dataset.
func (s *Session) Rerank(ctx context.Context, fightID, phaseID int, name string) (*PhaseResult, error) {
	_, fight, err := s.fight(ctx, fightID)
	if err != nil {
		return nil, err
	}

	for _, phase := range fight.Phases {
		if phase.ID == phaseID {
			return s.rankPhase(ctx, fight, phase, name), nil
		}
	}

	return nil, errors.Wrapf(ErrPhaseNotFound, "fight %d phase %d", fightID, phaseID)
}

func (s *Session) rankPhase(ctx context.Context, fight *fflogs.Fight, phase Phase, name string) *PhaseResult {
	failed := func(err error) *PhaseResult {
		capture(err)
		r := &PhaseResult{Phase: phase}
		return r.fail(err)
	}

	snapshot, err := s.snapshot(ctx, fight, phase)
	if err != nil {
		return failed(err)
	}

	candidates, err := s.datasets.Resolve(ctx, fight.Name, phase.ID)
	if err != nil {
		return failed(err)
	}

	var d *dataset.Descriptor
	switch {
	case name != "":
		for _, c := range candidates {
			if c.Name == name {
				d = c
				break
			}
		}
		if d == nil {
			return failed(errors.Wrapf(ErrUnknownDataset, "%q", name))
		}

	case len(candidates) > 0:
		d = candidates[0]
	}

	var t *dataset.Table
	if d != nil {
		t, err = s.datasets.Table(ctx, d.DataFile)
		if err != nil {
			return failed(err)
		}
	}

	r := Rank(snapshot, d, t)
	r.Candidates = candidates
	if r.Err != nil {
		capture(r.Err)
	}

	return r
}

func (s *Session) snapshot(ctx context.Context, fight *fflogs.Fight, phase Phase) (*PhaseSnapshot, error) {
	key := snapshotKey{fight: fight.ID, phase: phase.ID}

	s.lock.Lock()
	snapshot, ok := s.snapshots[key]
	s.lock.Unlock()
	if ok {
		return snapshot, nil
	}

	table, err := s.reporter.FetchDamageDone(ctx, phase.StartTime, phase.EndTime)
	if err != nil {
		return nil, err
	}
	snapshot = NewSnapshot(phase, table)

	s.lock.Lock()
	s.snapshots[key] = snapshot
	s.lock.Unlock()

	return snapshot, nil
}

// capture reports errors that are neither remote failures, data errors nor expected
// pipeline outcomes.
func capture(err error) {
	var (
		remoteErr *fflogs.RemoteError
		loadErr   *dataset.LoadError
		parseErr  *dataset.ParseError
	)
	switch {
	case errors.As(err, &remoteErr):
	case errors.As(err, &loadErr):
	case errors.As(err, &parseErr):
	case errors.Is(err, ErrNonPositiveDuration):
	case errors.Is(err, ErrUnknownDataset):
	default:
		share.CaptureError(err)
	}
}
