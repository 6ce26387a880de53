package pledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatusClient fetches snapshots from GET {BaseURL}/pledges/{id}/status.
type StatusClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewStatusClient returns a client with a 10s timeout when httpClient is nil.
func NewStatusClient(baseURL string, httpClient *http.Client) *StatusClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &StatusClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: httpClient}
}

// Fetch loads the current snapshot for pledgeID.
func (c *StatusClient) Fetch(ctx context.Context, pledgeID string) (*Snapshot, error) {
	ctx, span := otel.Tracer("pledge/StatusClient").Start(ctx, "Fetch",
		trace.WithAttributes(attribute.String("pledge.id", pledgeID)),
	)
	defer span.End()

	endpoint := c.BaseURL + "/pledges/" + url.PathEscape(pledgeID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode pledge status: %w", err)
	}
	return &snap, nil
}

// FetchFunc adapts the client for Poller.Track.
func (c *StatusClient) FetchFunc() FetchFunc { return c.Fetch }
