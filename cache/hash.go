package cache

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// cleanUpWithHash empties dir when the stamp written by the previous run does not match
// the hash of version.
func cleanUpWithHash(dir string, version ...string) error {
	newHash := hashVersion(version...)

	hashFile := filepath.Join(dir, "hash")

	b, err := os.ReadFile(hashFile)
	if err == nil && len(b) == 4 && binary.BigEndian.Uint32(b) == newHash {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}

	err = os.RemoveAll(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return errors.WithStack(err)
	}

	b = make([]byte, 4)
	binary.BigEndian.PutUint32(b, newHash)

	return errors.WithStack(os.WriteFile(hashFile, b, 0600))
}

func hashVersion(version ...string) uint32 {
	h := fnv.New32a()
	for _, v := range version {
		fmt.Fprint(h, v, "|")
	}
	return h.Sum32()
}
