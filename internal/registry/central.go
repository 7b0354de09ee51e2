package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/stacklok/toolhive-badge-sync/internal/artifact"
	"github.com/stacklok/toolhive-badge-sync/internal/httpclient"
)

const (
	sortFieldPublished = "publishedDate"
	sortDirectionDesc  = "desc"

	envelopeSchemaURL = "https://stacklok.dev/schemas/central-search-envelope.json"

	// Only the envelope is ours to check. Component records stay raw, whatever
	// their JSON type, so one bad record cannot cost the rest of the page.
	envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["components"],
  "properties": {
    "components": {"type": "array"}
  }
}`
)

// SearchRequest is the body of a Sonatype Central component search
type SearchRequest struct {
	Page          int      `json:"page"`
	Size          int      `json:"size"`
	SearchTerm    string   `json:"searchTerm"`
	SortField     string   `json:"sortField"`
	SortDirection string   `json:"sortDirection"`
	Filter        []string `json:"filter"`
}

// NewSearchRequest builds the fixed "everything, newest first" query for a page
func NewSearchRequest(page, size int) SearchRequest {
	return SearchRequest{
		Page:          page,
		Size:          size,
		SearchTerm:    "",
		SortField:     sortFieldPublished,
		SortDirection: sortDirectionDesc,
		Filter:        []string{},
	}
}

type searchEnvelope struct {
	Components []json.RawMessage `json:"components"`
}

// centralClient implements Client against the Sonatype Central search API
type centralClient struct {
	httpClient httpclient.Client
	endpoint   string
	schema     *jsonschema.Schema
}

// NewCentralClient creates a Client for the Sonatype Central search endpoint.
// If endpoint is empty, DefaultEndpoint is used.
func NewCentralClient(httpClient httpclient.Client, endpoint string) (Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	schema, err := compileEnvelopeSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile search envelope schema: %w", err)
	}

	return &centralClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		schema:     schema,
	}, nil
}

func compileEnvelopeSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(envelopeSchema))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(envelopeSchemaURL, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(envelopeSchemaURL)
}

// FetchPage issues one search request for the given page
func (c *centralClient) FetchPage(ctx context.Context, page, size int) ([]artifact.RawComponent, error) {
	body, err := c.httpClient.PostJSON(ctx, c.endpoint, NewSearchRequest(page, size))
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			slog.WarnContext(ctx, "Registry returned an error status",
				"page", page,
				"status", statusErr.StatusCode,
				"status_class", statusErr.Class(),
				"temporary", statusErr.Temporary(),
				"endpoint", c.endpoint)
			return nil, &FetchError{Kind: FailureHTTPStatus, Page: page, Err: err}
		}
		slog.WarnContext(ctx, "Registry request failed",
			"page", page, "endpoint", c.endpoint, "error", err)
		return nil, &FetchError{Kind: FailureTransport, Page: page, Err: err}
	}

	components, err := c.decode(body)
	if err != nil {
		slog.WarnContext(ctx, "Registry response is malformed",
			"page", page, "bytes", len(body), "error", err)
		return nil, &FetchError{Kind: FailureMalformedBody, Page: page, Err: err}
	}

	slog.DebugContext(ctx, "Fetched registry page", "page", page, "components", len(components))
	return components, nil
}

func (c *centralClient) decode(body []byte) ([]artifact.RawComponent, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := c.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("unexpected search envelope: %w", err)
	}

	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode search envelope: %w", err)
	}

	components := make([]artifact.RawComponent, 0, len(env.Components))
	for _, raw := range env.Components {
		components = append(components, artifact.RawComponent(raw))
	}
	return components, nil
}
