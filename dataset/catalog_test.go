package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() *DirSource {
	return &DirSource{
		FS: fstest.MapFS{
			"config.json": {Data: []byte(`[
				{"version": "v72", "fileName": "v72/config.json"},
				{"version": "v73", "fileName": "v73/config.yaml"}
			]`)},
			"v72/config.json": {Data: []byte(`[
				{
					"datasetName": "7.2 FRU P1",
					"creationDate": "2024-01-01",
					"raidMatchNames": ["Futures Rewritten"],
					"raidLogsPhase": 1,
					"dataFileName": "eden7.2p1_glb.csv",
					"calculationMode": 1
				},
				{
					"datasetName": "7.2 FRU P5",
					"creationDate": "2024-01-01",
					"raidMatchNames": ["Futures Rewritten", "FRU"],
					"raidLogsPhase": 5,
					"dataFileName": "eden7.2p5_glb.csv",
					"upperCombatTime": 273000
				}
			]`)},
			"v73/config.yaml": {Data: []byte(`
- datasetName: 7.3 FRU P1
  creationDate: "2024-06-01"
  raidMatchNames: [Futures Rewritten]
  raidLogsPhase: 1
  dataFileName: eden_p1_240601.csv
- datasetName: 7.3 TOP P6
  creationDate: "2024-06-01"
  raidMatchNames: [The Omega Protocol]
  raidLogsPhase: 6
  dataFileName: omega_p6_240601.csv
  upperCombatTime: 268200
`)},
		},
	}
}

func TestLoadCatalog_MergesSubCollectionsWithVersionPrefix(t *testing.T) {
	c, err := LoadCatalog(context.Background(), testSource(), "config.json")
	require.NoError(t, err)
	require.Len(t, c.Descriptors, 4)

	assert.Equal(t, "v72/eden7.2p1_glb.csv", c.Descriptors[0].DataFile)
	assert.Equal(t, "v72", c.Descriptors[0].Version)
	assert.Equal(t, 1, c.Descriptors[0].CalculationMode)
	assert.Equal(t, float64(273000), c.Descriptors[1].UpperCombatTime)
	assert.Equal(t, "v73/eden_p1_240601.csv", c.Descriptors[2].DataFile)
	assert.Equal(t, float64(268200), c.Descriptors[3].UpperCombatTime)
}

func TestLoadCatalog_MissingSubCollection_ReturnsLoadError(t *testing.T) {
	src := &DirSource{
		FS: fstest.MapFS{
			"config.json": {Data: []byte(`[{"version": "v1", "fileName": "v1/missing.json"}]`)},
		},
	}

	_, err := LoadCatalog(context.Background(), src, "config.json")

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "v1/missing.json", le.Resource)
}

func TestLoadCatalog_MalformedManifest_ReturnsLoadError(t *testing.T) {
	src := &DirSource{
		FS: fstest.MapFS{
			"config.json": {Data: []byte(`{not json`)},
		},
	}

	_, err := LoadCatalog(context.Background(), src, "config.json")

	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestLoadCatalog_EmptyManifest_ReturnsLoadError(t *testing.T) {
	cases := []struct {
		manifest string
		resource string
		files    fstest.MapFS
	}{
		{"config.json", "config.json", fstest.MapFS{"config.json": {Data: []byte("")}}},
		{"config.yaml", "config.yaml", fstest.MapFS{"config.yaml": {Data: []byte("")}}},
		{
			"config.json", "v1.json",
			fstest.MapFS{
				"config.json": {Data: []byte(`[{"version": "v1", "fileName": "v1.json"}]`)},
				"v1.json":     {Data: []byte("  \n")},
			},
		},
		{
			"config.json", "v1.yml",
			fstest.MapFS{
				"config.json": {Data: []byte(`[{"version": "v1", "fileName": "v1.yml"}]`)},
				"v1.yml":      {Data: []byte("")},
			},
		},
	}

	for _, c := range cases {
		catalog, err := LoadCatalog(context.Background(), &DirSource{FS: c.files}, c.manifest)
		assert.Nil(t, catalog, c.resource)

		var le *LoadError
		if assert.True(t, errors.As(err, &le), c.resource) {
			assert.Equal(t, c.resource, le.Resource)
		}
		assert.ErrorIs(t, err, ErrEmptyFile, c.resource)
	}
}

func TestLoadCatalog_BadCreationDate_ReturnsLoadError(t *testing.T) {
	src := &DirSource{
		FS: fstest.MapFS{
			"config.json": {Data: []byte(`[{"version": "v1", "fileName": "v1.json"}]`)},
			"v1.json":     {Data: []byte(`[{"datasetName": "x", "creationDate": "yesterday", "raidMatchNames": ["a"], "raidLogsPhase": 1, "dataFileName": "a.csv"}]`)},
		},
	}

	_, err := LoadCatalog(context.Background(), src, "config.json")

	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestResolve_MostRecentFirst(t *testing.T) {
	c, err := LoadCatalog(context.Background(), testSource(), "config.json")
	require.NoError(t, err)

	r := c.Resolve("Futures Rewritten", 1)

	require.Len(t, r, 2)
	assert.Equal(t, "2024-06-01", r[0].CreationDate)
	assert.Equal(t, "2024-01-01", r[1].CreationDate)
}

func TestResolve_ExactCaseSensitiveMatch(t *testing.T) {
	c, err := LoadCatalog(context.Background(), testSource(), "config.json")
	require.NoError(t, err)

	assert.Len(t, c.Resolve("FRU", 5), 1)
	assert.Empty(t, c.Resolve("fru", 5))
	assert.Empty(t, c.Resolve("Futures", 5))
	assert.Empty(t, c.Resolve("Futures Rewritten", 2))
}

func TestResolve_TiesKeepCatalogOrder(t *testing.T) {
	a := &Descriptor{Name: "a", CreationDate: "2024-01-01", MatchNames: []string{"X"}, Phase: 1}
	b := &Descriptor{Name: "b", CreationDate: "2024-01-01", MatchNames: []string{"X"}, Phase: 1}
	require.NoError(t, a.prepare())
	require.NoError(t, b.prepare())

	c := &Catalog{Descriptors: []*Descriptor{a, b}}

	r := c.Resolve("X", 1)
	require.Len(t, r, 2)
	assert.Equal(t, "a", r[0].Name)
	assert.Equal(t, "b", r[1].Name)
}

func TestCatalog_EncountersAndPhases(t *testing.T) {
	c, err := LoadCatalog(context.Background(), testSource(), "config.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"Futures Rewritten", "FRU", "The Omega Protocol"}, c.Encounters())
	assert.Equal(t, []int{1, 5}, c.Phases("Futures Rewritten"))

	d, ok := c.Find("7.3 TOP P6")
	require.True(t, ok)
	assert.Equal(t, 6, d.Phase)

	_, ok = c.Find("nope")
	assert.False(t, ok)
}

func TestHTTPSource_ServesCatalog(t *testing.T) {
	files := map[string]string{
		"/data/config.json": `[{"version": "v1", "fileName": "v1/config.json"}]`,
		"/data/v1/config.json": `[{"datasetName": "d", "creationDate": "2024-01-01",
			"raidMatchNames": ["E"], "raidLogsPhase": 2, "dataFileName": "e.csv"}]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewSource(srv.URL+"/data/", srv.Client())

	c, err := LoadCatalog(context.Background(), src, "config.json")
	require.NoError(t, err)
	require.Len(t, c.Descriptors, 1)
	assert.Equal(t, "v1/e.csv", c.Descriptors[0].DataFile)

	_, err = LoadTable(context.Background(), src, "v1/e.csv")
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}
