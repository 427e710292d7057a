package util

import (
	"crypto/tls"
	"net/http"
	"time"
)

// UserAgent is sent by every adapter; several listing sites reject
// non-browser agents.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func NewHTTPClient(timeout time.Duration, insecureSkipVerify bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // per-source opt-in
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}
