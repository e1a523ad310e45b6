package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Library serves the catalog and the tables of one Source. The catalog is kept after the
// first successful load until it is older than expires; failed loads are returned to the
// caller and tried again on the next call. Tables are kept per reference and dropped
// whenever the catalog is reloaded.
type Library struct {
	src      Source
	manifest string
	expires  time.Duration
	now      func() time.Time

	catalogLock sync.Mutex
	catalog     *Catalog
	loadedAt    time.Time

	tablesLock sync.Mutex
	tables     map[string]*Table
}

// NewLibrary returns a Library over src. An expires of zero keeps the catalog forever.
func NewLibrary(src Source, manifest string, expires time.Duration) *Library {
	return &Library{
		src:      src,
		manifest: manifest,
		expires:  expires,
		now:      time.Now,
		tables:   make(map[string]*Table),
	}
}

func (l *Library) Catalog(ctx context.Context) (*Catalog, error) {
	l.catalogLock.Lock()
	defer l.catalogLock.Unlock()

	if l.catalog != nil {
		if l.expires <= 0 || l.now().Sub(l.loadedAt) < l.expires {
			return l.catalog, nil
		}
		logrus.Infof("dataset catalog expired after %s", l.expires)
	}

	c, err := LoadCatalog(ctx, l.src, l.manifest)
	if err != nil {
		return nil, err
	}
	logrus.Infof("dataset catalog loaded: %d descriptors", len(c.Descriptors))

	if l.catalog != nil {
		l.tablesLock.Lock()
		l.tables = make(map[string]*Table)
		l.tablesLock.Unlock()
	}

	l.catalog = c
	l.loadedAt = l.now()
	return c, nil
}

// Resolve is Catalog(ctx).Resolve(encounter, phase).
func (l *Library) Resolve(ctx context.Context, encounter string, phase int) ([]*Descriptor, error) {
	c, err := l.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return c.Resolve(encounter, phase), nil
}

func (l *Library) Table(ctx context.Context, ref string) (*Table, error) {
	l.tablesLock.Lock()
	t, ok := l.tables[ref]
	l.tablesLock.Unlock()
	if ok {
		return t, nil
	}

	t, err := LoadTable(ctx, l.src, ref)
	if err != nil {
		return nil, err
	}

	l.tablesLock.Lock()
	l.tables[ref] = t
	l.tablesLock.Unlock()

	return t, nil
}

// Reset drops the cached catalog and tables.
func (l *Library) Reset() {
	l.catalogLock.Lock()
	l.catalog = nil
	l.catalogLock.Unlock()

	l.tablesLock.Lock()
	l.tables = make(map[string]*Table)
	l.tablesLock.Unlock()
}
