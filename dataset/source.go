package dataset

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Source retrieves reference data files by slash separated relative name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSource returns an HTTPSource for http(s) locations and a DirSource otherwise.
func NewSource(location string, client *http.Client) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{BaseURL: location, Client: client}
	}
	return &DirSource{FS: os.DirFS(location)}
}

type DirSource struct {
	FS fs.FS
}

func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.FS.Open(path.Clean(name))
}

type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	url := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(name, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %s", url, resp.Status)
	}

	return resp.Body, nil
}
