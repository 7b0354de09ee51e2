// Package registry provides clients for package registry search APIs.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/toolhive-badge-sync/internal/artifact"
	"github.com/stacklok/toolhive-badge-sync/internal/httpclient"
)

const (
	// DefaultEndpoint is the Sonatype Central component search endpoint
	DefaultEndpoint = "https://central.sonatype.com/api/internal/browse/components"

	// DefaultPageSize is the number of components requested per page
	DefaultPageSize = 20
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client fetches pages of recently published components, newest first
type Client interface {
	// FetchPage returns the raw component records of the given zero-based page.
	// An empty slice with a nil error means the registry has no more data.
	// Any failure returns a *FetchError and no records.
	FetchPage(ctx context.Context, page, size int) ([]artifact.RawComponent, error)
}

// FailureKind classifies why a page could not be fetched
type FailureKind string

const (
	// FailureTransport means the request never produced an HTTP response
	FailureTransport FailureKind = "transport"

	// FailureHTTPStatus means the registry answered with a non-200 status
	FailureHTTPStatus FailureKind = "http-status"

	// FailureMalformedBody means the response body was not a valid search envelope
	FailureMalformedBody FailureKind = "malformed-body"
)

// FetchError is returned by Client.FetchPage when a page cannot be retrieved
type FetchError struct {
	Kind FailureKind
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching page %d failed (%s): %v", e.Page, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether a later run may fetch the same page: the request
// never got an answer, or the registry throttled or failed on its side. A
// malformed body or a client-side status is not expected to heal by itself.
func (e *FetchError) Temporary() bool {
	switch e.Kind {
	case FailureTransport:
		return true
	case FailureHTTPStatus:
		var statusErr *httpclient.StatusError
		return errors.As(e.Err, &statusErr) && statusErr.Temporary()
	default:
		return false
	}
}
