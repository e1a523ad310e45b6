package share

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient returns the client used for every outgoing call. When proxyProbe is set
// and something listens there (a local debugging proxy), requests go through it.
func NewHTTPClient(proxyProbe string) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxConnsPerHost:       0,
		MaxIdleConns:          0,
		MaxIdleConnsPerHost:   64,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 30 * time.Second,
	}

	if proxyProbe != "" {
		if conn, err := net.DialTimeout("tcp", proxyProbe, time.Second); err == nil {
			conn.Close()

			u, _ := url.Parse("http://" + proxyProbe)
			tr.Proxy = http.ProxyURL(u)
		}
	}

	return &http.Client{
		Timeout:   1 * time.Minute,
		Transport: tr,
	}
}
