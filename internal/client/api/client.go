// Package api implements the HTTP client side of the sync protocol.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/campkeeper/internal/models"
	"github.com/iudanet/campkeeper/pkg/api"
)

// Doer executes one HTTP request. The host application supplies an
// authenticated implementation (its "authenticated fetch"); the engine never
// handles credentials itself.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SyncAPI is the surface the sync coordinator needs from the server.
type SyncAPI interface {
	// PushChanges sends the whole outbox batch in one request.
	PushChanges(ctx context.Context, campaign string, changes []models.Change) error

	// PullCollection requests every document of a collection updated after
	// the given cursor.
	PullCollection(ctx context.Context, campaign, path string, since int64) ([]models.Doc, error)
}

// Client is the HTTP implementation of SyncAPI.
type Client struct {
	doer    Doer
	baseURL string
}

var _ SyncAPI = (*Client)(nil)

// NewClient creates a sync API client. If doer is nil a plain http.Client
// with a 30 second timeout is used (no authentication).
func NewClient(baseURL string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		doer:    doer,
	}
}

// PushChanges POSTs the outbox batch to /sync/{campaign}. Any non-2xx
// response is an error; the caller keeps the outbox for the next attempt.
func (c *Client) PushChanges(ctx context.Context, campaign string, changes []models.Change) error {
	wireChanges := make([]api.Change, 0, len(changes))
	for _, ch := range changes {
		wireChanges = append(wireChanges, api.Change{
			Op:       string(ch.Op),
			Entity:   ch.Entity,
			EntityID: ch.EntityID,
			Payload:  ch.Payload,
			TS:       ch.TS,
		})
	}

	path := fmt.Sprintf("/sync/%s", campaign)
	if err := c.doRequest(ctx, http.MethodPost, path, wireChanges, nil); err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}

	return nil
}

// PullCollection GETs /sync/{campaign}/{path}/since/{ts}.
func (c *Client) PullCollection(ctx context.Context, campaign, path string, since int64) ([]models.Doc, error) {
	url := fmt.Sprintf("/sync/%s/%s/since/%d", campaign, path, since)

	var docs []models.Doc
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &docs); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}

	return docs, nil
}

// doRequest executes one JSON request against the server.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
