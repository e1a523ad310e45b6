package dataset

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"fflogs_phase_ranker/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var creationDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Descriptor identifies one reference percentile table and the encounter / phase it
// applies to.
type Descriptor struct {
	Name            string   `json:"datasetName" yaml:"datasetName"`
	CreationDate    string   `json:"creationDate" yaml:"creationDate"`
	MatchNames      []string `json:"raidMatchNames" yaml:"raidMatchNames"`
	Phase           int      `json:"raidLogsPhase" yaml:"raidLogsPhase"`
	DataFile        string   `json:"dataFileName" yaml:"dataFileName"`
	UpperCombatTime float64  `json:"upperCombatTime,omitempty" yaml:"upperCombatTime,omitempty"`
	CalculationMode int      `json:"calculationMode,omitempty" yaml:"calculationMode,omitempty"`

	// Version is the sub-collection the descriptor was merged from.
	Version string `json:"version" yaml:"-"`

	CreatedAt time.Time `json:"-" yaml:"-"`
	aliases   []string
}

// Matches reports whether encounter is one of the descriptor's aliases. Comparison is
// exact and case-sensitive.
func (d *Descriptor) Matches(encounter string) bool {
	return share.StringInSortedSlice(d.aliases, encounter)
}

func (d *Descriptor) prepare() error {
	var err error
	for _, layout := range creationDateLayouts {
		d.CreatedAt, err = time.Parse(layout, d.CreationDate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return errors.Errorf("dataset %q: creationDate %q", d.Name, d.CreationDate)
	}

	d.aliases = make([]string, len(d.MatchNames))
	copy(d.aliases, d.MatchNames)
	sort.Strings(d.aliases)

	return nil
}

type manifestEntry struct {
	Version  string `json:"version" yaml:"version"`
	FileName string `json:"fileName" yaml:"fileName"`
}

type Catalog struct {
	Descriptors []*Descriptor
}

// LoadCatalog reads the manifest and every sub-collection it lists. Each descriptor's
// DataFile is prefixed with its sub-collection version so that it resolves against the
// same Source as the manifest.
func LoadCatalog(ctx context.Context, src Source, manifest string) (*Catalog, error) {
	var entries []manifestEntry
	if err := decodeFile(ctx, src, manifest, &entries); err != nil {
		return nil, err
	}

	c := &Catalog{
		Descriptors: make([]*Descriptor, 0, len(entries)*8),
	}
	for _, entry := range entries {
		var list []*Descriptor
		if err := decodeFile(ctx, src, entry.FileName, &list); err != nil {
			return nil, err
		}

		for _, d := range list {
			if d == nil {
				continue
			}
			if err := d.prepare(); err != nil {
				return nil, &LoadError{Resource: entry.FileName, Err: err}
			}
			d.Version = entry.Version
			d.DataFile = path.Join(entry.Version, d.DataFile)

			c.Descriptors = append(c.Descriptors, d)
		}
	}

	return c, nil
}

func decodeFile(ctx context.Context, src Source, name string, v interface{}) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return &LoadError{Resource: name, Err: err}
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return &LoadError{Resource: name, Err: errors.WithStack(err)}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return &LoadError{Resource: name, Err: errors.WithStack(ErrEmptyFile)}
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	default:
		err = jsoniter.Unmarshal(b, v)
	}
	if err != nil {
		return &LoadError{Resource: name, Err: errors.WithStack(err)}
	}

	return nil
}

// Resolve returns the descriptors that apply to the encounter / phase pair, most recent
// first. An empty result means no reference data exists for the phase.
func (c *Catalog) Resolve(encounter string, phase int) []*Descriptor {
	var r []*Descriptor
	for _, d := range c.Descriptors {
		if d.Phase == phase && d.Matches(encounter) {
			r = append(r, d)
		}
	}

	sort.SliceStable(
		r,
		func(i, k int) bool {
			return r[i].CreatedAt.After(r[k].CreatedAt)
		},
	)

	return r
}

// Find returns the descriptor with the given dataset name.
func (c *Catalog) Find(name string) (*Descriptor, bool) {
	for _, d := range c.Descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Encounters lists every encounter alias in catalog order.
func (c *Catalog) Encounters() []string {
	seen := make(map[string]bool)

	var r []string
	for _, d := range c.Descriptors {
		for _, name := range d.MatchNames {
			if !seen[name] {
				seen[name] = true
				r = append(r, name)
			}
		}
	}
	return r
}

// Phases lists the phase numbers that have reference data for encounter, ascending.
func (c *Catalog) Phases(encounter string) []int {
	seen := make(map[int]bool)

	var r []int
	for _, d := range c.Descriptors {
		if d.Matches(encounter) && !seen[d.Phase] {
			seen[d.Phase] = true
			r = append(r, d.Phase)
		}
	}
	sort.Ints(r)

	return r
}
