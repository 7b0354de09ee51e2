package httpclient

import (
	"fmt"
	"net/http"
)

// StatusError is returned by PostJSON when the server answers with anything
// other than 200 OK
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func newStatusError(code int, status, url string) error {
	if status == "" {
		status = fmt.Sprintf("%d %s", code, http.StatusText(code))
	}
	return &StatusError{StatusCode: code, Status: status, URL: url}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("POST %s: %s", e.URL, e.Status)
}

// Class returns the status family, e.g. "4xx" or "5xx"
func (e *StatusError) Class() string {
	return fmt.Sprintf("%dxx", e.StatusCode/100)
}

// Temporary reports whether the same request may succeed later: the server
// throttled the client or failed on its own side.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
