package share

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

var sentryEnabled bool

// InitSentry enables error reporting. An empty dsn leaves it disabled.
func InitSentry(dsn string) error {
	if dsn == "" {
		return nil
	}

	err := sentry.Init(
		sentry.ClientOptions{
			Dsn:           dsn,
			HTTPTransport: new(http.Transport),
		},
	)
	if err != nil {
		return err
	}

	sentryEnabled = true
	return nil
}

// CaptureError logs err with its stack and reports it to sentry when enabled.
// Cancelled requests are ignored.
func CaptureError(err error) {
	if err == nil || IsContextClosedError(err) {
		return
	}

	logrus.Errorf("%+v", err)
	if sentryEnabled {
		sentry.CaptureException(err)
	}
}
