package cmd

import (
	"os"
	"path/filepath"
	"time"

	"fflogs_phase_ranker/cache"
	"fflogs_phase_ranker/dataset"
	"fflogs_phase_ranker/fflogs"
	"fflogs_phase_ranker/share"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const cacheVersion = "1"

// config collects the settings shared by every command. Values come from flags, then
// the environment (optionally loaded from .env), then the defaults below.
type config struct {
	LogLevel   string
	APIKey     string
	ReportID   string
	BaseURL    string
	Data       string
	Manifest   string
	Listen     string
	CacheDir   string
	SentryDSN  string
	Recaptcha  string
	ProxyProbe string
}

var cfg config

type setting struct {
	value *string
	flag  string
	env   string
	def   string
	usage string
}

func settings() []setting {
	return []setting{
		{&cfg.LogLevel, "log", "LOG_LEVEL", "info", "Log level (trace, debug, info, warn, error, fatal, panic)"},
		{&cfg.APIKey, "api-key", "FFLOGS_API_KEY", "", "FFLogs v1 api key"},
		{&cfg.ReportID, "report", "FFLOGS_REPORT_ID", "", "Default report code"},
		{&cfg.BaseURL, "base-url", "FFLOGS_BASE_URL", fflogs.DefaultBaseURL, "FFLogs site"},
		{&cfg.Data, "data", "PHASE_RANKER_DATA", "data", "Directory or http(s) base URL of the reference data"},
		{&cfg.Manifest, "manifest", "PHASE_RANKER_MANIFEST", "config.json", "Dataset manifest file, relative to --data"},
		{&cfg.Listen, "listen", "PHASE_RANKER_LISTEN", "127.0.0.1:5555", "Address the server listens on"},
		{&cfg.CacheDir, "cache", "PHASE_RANKER_CACHE", "", "Response cache directory, empty disables"},
		{&cfg.SentryDSN, "sentry-dsn", "SENTRY_DSN", "", "Sentry dsn, empty disables"},
		{&cfg.Recaptcha, "recaptcha-secret", "GOOGLE_RECAPTCHA_V3_SECRET", "", "reCAPTCHA v3 secret, empty disables the check"},
		{&cfg.ProxyProbe, "proxy-probe", "HTTP_PROXY_PROBE", "", "Use the debugging proxy at this address when it is up"},
	}
}

func bindFlags(c *cobra.Command) {
	for _, s := range settings() {
		c.PersistentFlags().StringVar(s.value, s.flag, s.def, s.usage)
	}
}

// loadConfig fills every setting whose flag was not given from the environment.
func loadConfig(c *cobra.Command) error {
	err := godotenv.Load(".env")
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}

	for _, s := range settings() {
		if c.Flags().Changed(s.flag) {
			continue
		}
		if v, ok := os.LookupEnv(s.env); ok && v != "" {
			*s.value = v
		}
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	logrus.SetLevel(level)

	return share.InitSentry(cfg.SentryDSN)
}

// library opens the dataset library. An expires of zero keeps the catalog for the life
// of the process.
func (c *config) library(expires time.Duration) *dataset.Library {
	return dataset.NewLibrary(dataset.NewSource(c.Data, share.NewHTTPClient(c.ProxyProbe)), c.Manifest, expires)
}

// storage opens the cache directory name under CacheDir, or returns nil when caching
// is disabled.
func (c *config) storage(name string, expires time.Duration) *cache.Storage {
	if c.CacheDir == "" {
		return nil
	}

	s, err := cache.NewStorage(filepath.Join(c.CacheDir, name), expires, cacheVersion)
	if err != nil {
		share.CaptureError(err)
		logrus.Warnf("cache %s disabled", name)
		return nil
	}
	return s
}

// newReporter returns the constructor of report clients used by every command.
func (c *config) newReporter() func(reportID, credential string) *fflogs.Client {
	httpClient := share.NewHTTPClient(c.ProxyProbe)
	storage := c.storage("fflogs", 24*time.Hour)

	return func(reportID, credential string) *fflogs.Client {
		return fflogs.New(fflogs.Options{
			ReportID:   reportID,
			Credential: credential,
			BaseURL:    c.BaseURL,
			HTTPClient: httpClient,
			Cache:      storage,
		})
	}
}
