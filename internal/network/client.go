package network

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// NewHTTPClient returns the client every MangaDex request goes through. When
// socksProxy is set the transport dials through that SOCKS5 endpoint.
func NewHTTPClient(timeout time.Duration, socksProxy string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	socksProxy = strings.TrimSpace(socksProxy)
	if socksProxy == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	dialer, err := proxy.SOCKS5("tcp", socksProxy, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("unable to configure socks5 proxy %s: %w", socksProxy, err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = contextDialer.DialContext
	} else {
		transport.Dial = dialer.Dial //nolint:staticcheck
	}

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
