package fflogs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fflogs_phase_ranker/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testReport = "a1b2c3d4e5f6g7h8"
	testKey    = "secret"
)

func newTestServer(t *testing.T, calls *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/report/fights/"+testReport, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.URL.Query().Get("api_key"))
		w.Write([]byte(`{
			"title": "static night",
			"fights": [
				{"id": 1, "name": "", "kill": false, "start_time": 0, "end_time": 50000},
				{
					"id": 2, "name": "Futures Rewritten", "kill": true,
					"start_time": 100000, "end_time": 500000,
					"phases": [{"id": 1, "startTime": 100000}, {"id": 2, "startTime": 230000}]
				}
			],
			"friendlies": [
				{"id": 7, "name": "Tank", "server": "Tonberry", "type": "Warrior", "fights": [{"id": 2}]},
				{"id": 8, "name": "Bard", "server": "Tonberry", "type": "Bard", "fights": [{"id": 1}, {"id": 2}]}
			]
		}`))
	})
	mux.HandleFunc("/v1/report/tables/damage-done/"+testReport, func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, "100000", r.URL.Query().Get("start"))
		assert.Equal(t, "230000", r.URL.Query().Get("end"))
		w.Write([]byte(`{
			"totalTime": 130000, "downtime": 10000, "combatTime": 125000,
			"entries": [
				{"id": 8, "name": "Bard", "type": "Bard", "totalRDPS": 100000, "totalADPS": 90000, "totalNDPS": 95000},
				{"id": 0, "name": "Limit Break", "type": "LimitBreak", "totalRDPS": 900000},
				{"id": 7, "name": "Tank", "type": "Warrior", "totalRDPS": 150000, "activeTime": 129000}
			]
		}`))
	})
	mux.HandleFunc("/v1/report/fights/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": 400, "error": "This report does not exist or is private."}`))
	})
	mux.HandleFunc("/v1/report/fights/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestFetchReport(t *testing.T) {
	ts := newTestServer(t, nil)
	c := New(Options{ReportID: testReport, Credential: testKey, BaseURL: ts.URL})

	r, err := c.FetchReport(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Fights, 2)
	assert.Equal(t, "static night", r.Title)
	assert.Equal(t, testReport, r.Code)

	unnamed := r.Fights[0]
	assert.Equal(t, "Fight 1", unnamed.Name)
	assert.Equal(t, []Phase{{ID: 1, Name: "Phase 1", StartTime: 0, EndTime: 50000}}, unnamed.Phases)
	require.Len(t, unnamed.Friendlies, 1)
	assert.Equal(t, "Bard", unnamed.Friendlies[0].Name)

	fight, ok := r.Fight(2)
	require.True(t, ok)
	assert.Equal(
		t,
		[]Phase{
			{ID: 1, Name: "Phase 1", StartTime: 100000, EndTime: 230000},
			{ID: 2, Name: "Phase 2", StartTime: 230000, EndTime: 500000},
		},
		fight.Phases,
	)
	assert.Len(t, fight.Friendlies, 2)

	last, ok := r.LastKill()
	require.True(t, ok)
	assert.Equal(t, 2, last.ID)
}

func TestFetchDamageDone_DropsLimitBreakAndSorts(t *testing.T) {
	ts := newTestServer(t, nil)
	c := New(Options{ReportID: testReport, Credential: testKey, BaseURL: ts.URL})

	table, err := c.FetchDamageDone(context.Background(), 100000, 230000)
	require.NoError(t, err)

	assert.Equal(t, float64(130000), table.TotalTime)
	assert.Equal(t, float64(10000), table.Downtime)
	assert.Equal(t, float64(125000), table.CombatTime)
	require.Len(t, table.Entries, 2)
	assert.Equal(t, "Tank", table.Entries[0].Name)
	assert.Equal(t, float64(150000), table.Entries[0].TotalRD)
	assert.Equal(t, "Bard", table.Entries[1].Name)
	assert.Equal(t, float64(90000), table.Entries[1].TotalAD)
}

func TestFetchDamageDone_Cached(t *testing.T) {
	var calls int32
	ts := newTestServer(t, &calls)

	storage, err := cache.NewStorage(t.TempDir(), 0, "test")
	require.NoError(t, err)

	c := New(Options{ReportID: testReport, Credential: testKey, BaseURL: ts.URL, Cache: storage})
	ctx := context.Background()

	first, err := c.FetchDamageDone(ctx, 100000, 230000)
	require.NoError(t, err)
	second, err := c.FetchDamageDone(ctx, 100000, 230000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemoteErrorsPassThrough(t *testing.T) {
	ts := newTestServer(t, nil)

	_, err := New(Options{ReportID: "missing", Credential: testKey, BaseURL: ts.URL}).FetchReport(context.Background())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.Status)
	assert.Equal(t, "This report does not exist or is private.", err.Error())

	_, err = New(Options{ReportID: "broken", Credential: testKey, BaseURL: ts.URL}).FetchReport(context.Background())
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.Status)
}

func TestMissingOptions(t *testing.T) {
	_, err := New(Options{ReportID: testReport}).FetchReport(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = New(Options{Credential: testKey}).FetchDamageDone(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrMissingReport)
}

func TestParseReportURL(t *testing.T) {
	cases := []struct {
		in    string
		code  string
		fight int
		ok    bool
	}{
		{"https://cn.fflogs.com/reports/a1b2c3d4e5f6g7h8?fight=12", "a1b2c3d4e5f6g7h8", 12, true},
		{"https://www.fflogs.com/reports/a1b2c3d4e5f6g7h8#fight=3&type=damage-done", "a1b2c3d4e5f6g7h8", 3, true},
		{"fflogs.com/reports/a1b2c3d4e5f6g7h8/", "a1b2c3d4e5f6g7h8", 0, true},
		{" a1b2c3d4e5f6g7h8 ", "a1b2c3d4e5f6g7h8", 0, true},
		{"https://example.com/reports/a1b2c3d4e5f6g7h8", "", 0, false},
		{"short", "", 0, false},
	}
	for _, c := range cases {
		code, fight, ok := ParseReportURL(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.code, code, c.in)
		assert.Equal(t, c.fight, fight, c.in)
	}
}
