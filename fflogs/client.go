package fflogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fflogs_phase_ranker/cache"
	"fflogs_phase_ranker/share/semaphore"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://cn.fflogs.com"

	defaultConcurrency = 4
)

var (
	ErrMissingCredential = errors.New("fflogs: missing api key")
	ErrMissingReport     = errors.New("fflogs: missing report id")
)

// RemoteError carries the message of a failed reporting API call unchanged.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Options configures a Client. ReportID and Credential are required.
type Options struct {
	ReportID   string
	Credential string
	BaseURL    string

	HTTPClient  *http.Client
	Cache       *cache.Storage
	Concurrency int
}

type Client struct {
	opt  Options
	sema *semaphore.Semaphore
}

func New(opt Options) *Client {
	if opt.BaseURL == "" {
		opt.BaseURL = DefaultBaseURL
	}
	opt.BaseURL = strings.TrimSuffix(opt.BaseURL, "/")
	if opt.HTTPClient == nil {
		opt.HTTPClient = http.DefaultClient
	}
	if opt.Concurrency <= 0 {
		opt.Concurrency = defaultConcurrency
	}

	return &Client{
		opt:  opt,
		sema: semaphore.New(opt.Concurrency),
	}
}

func (c *Client) ReportID() string {
	return c.opt.ReportID
}

func (c *Client) check() error {
	if c.opt.Credential == "" {
		return ErrMissingCredential
	}
	if c.opt.ReportID == "" {
		return ErrMissingReport
	}
	return nil
}

func (c *Client) call(ctx context.Context, path string, query url.Values, respData interface{}, respErr *respError) error {
	if err := c.sema.Acquire(ctx); err != nil {
		return err
	}
	defer c.sema.Release()

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.opt.Credential)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/v1/%s/%s?%s", c.opt.BaseURL, path, url.PathEscape(c.opt.ReportID), query.Encode()),
		nil,
	)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := c.opt.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	err = jsoniter.NewDecoder(resp.Body).Decode(respData)
	if err != nil && err != io.EOF {
		if resp.StatusCode != http.StatusOK {
			return &RemoteError{Status: resp.StatusCode, Message: resp.Status}
		}
		return errors.WithStack(err)
	}

	if respErr.Error != "" {
		status := respErr.Status
		if status == 0 {
			status = resp.StatusCode
		}
		return &RemoteError{Status: status, Message: respErr.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Message: resp.Status}
	}

	return nil
}
