package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fflogs_phase_ranker/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Storage keeps JSON encoded values in one file per key under dir.
type Storage struct {
	dir     string
	expires time.Duration

	savingLock sync.RWMutex
	saving     map[uint64]struct{}
}

// NewStorage prepares dir. A zero expires keeps entries forever. When the version
// strings differ from the ones dir was created with, its content is discarded.
func NewStorage(dir string, expires time.Duration, version ...string) (*Storage, error) {
	err := cleanUpWithHash(dir, version...)
	if err != nil {
		return nil, err
	}

	return &Storage{
		dir:     dir,
		expires: expires,
		saving:  make(map[uint64]struct{}, 32),
	}, nil
}

func (s *Storage) path(key uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%016x.json", key))
}

func (s *Storage) lock(key uint64) bool {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	_, ok := s.saving[key]
	if !ok {
		s.saving[key] = struct{}{}
	}
	return !ok
}

func (s *Storage) unlock(key uint64) {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	delete(s.saving, key)
}

func (s *Storage) checkSkip(key uint64) bool {
	s.savingLock.RLock()
	defer s.savingLock.RUnlock()

	_, ok := s.saving[key]
	return ok
}

// Load decodes the entry for key into v. It reports false on a miss, an expired entry
// or an entry that is being written.
func (s *Storage) Load(key uint64, v interface{}) bool {
	if s.checkSkip(key) {
		return false
	}

	path := s.path(key)

	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	if s.expires > 0 && time.Since(fi.ModTime()) > s.expires {
		os.Remove(path)
		return false
	}

	fs, err := os.Open(path)
	if err != nil {
		return false
	}
	defer fs.Close()

	err = jsoniter.NewDecoder(fs).Decode(v)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		return false
	}

	return true
}

// Save stores v for key. Concurrent saves of one key keep the first writer.
func (s *Storage) Save(key uint64, v interface{}) bool {
	if !s.lock(key) {
		return false
	}
	defer s.unlock(key)

	path := s.path(key)
	tmp := path + ".tmp"

	fs, err := os.Create(tmp)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		return false
	}

	err = jsoniter.NewEncoder(fs).Encode(v)
	fs.Close()
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		os.Remove(tmp)
		return false
	}

	err = os.Rename(tmp, path)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		os.Remove(tmp)
		return false
	}

	return true
}
