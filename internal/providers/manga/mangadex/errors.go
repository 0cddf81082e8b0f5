package mangadex

import (
	"fmt"
	"net/http"
)

// TransportError reports a request that never produced a 2xx response.
// StatusCode is zero when the request failed before a response arrived.
type TransportError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (err *TransportError) Error() string {
	if err.StatusCode == 0 {
		return fmt.Sprintf("request %s failed: %v", err.URL, err.Err)
	}
	status := err.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", err.StatusCode, http.StatusText(err.StatusCode))
	}
	return fmt.Sprintf("request %s failed: %s", err.URL, status)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

// ParseError reports a response body that was not valid JSON.
type ParseError struct {
	URL string
	Err error
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("error parsing response from %s: %v", err.URL, err.Err)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}
