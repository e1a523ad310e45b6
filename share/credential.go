package share

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DefaultCredentialPath is where the CLI keeps the api key between runs.
func DefaultCredentialPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "fflogs_phase_ranker", "credential")
}

// LoadCredential returns the stored api key, or "" when none was saved.
func LoadCredential(path string) (string, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.WithStack(err)
	}
	return strings.TrimSpace(string(b)), nil
}

func SaveCredential(path string, credential string) error {
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, []byte(credential+"\n"), 0600))
}
