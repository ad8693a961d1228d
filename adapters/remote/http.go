// Package remote provides a remote system client over a JSON HTTP API.
//
// The API contract is GET {base}/{resourceType}/{id} returning either a
// single JSON object or a JSON array of candidate matches. Status codes map
// onto the error taxonomy: 404 is NOT_FOUND, 408/429/5xx are TRANSIENT,
// anything else 4xx fails unretried.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

// Client fetches remote objects over HTTP
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates an HTTP remote client
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetByID retrieves the raw attributes of one remote object
func (c *Client) GetByID(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL,
		url.PathEscape(resourceType), url.PathEscape(id.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Internal("cannot build remote request", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// transport failures and client timeouts are retryable
		return nil, errors.Transient("remote request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transient("cannot read remote response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFound(resourceType, id.String())
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return nil, errors.Transient(
			fmt.Sprintf("remote returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, errors.Newf(errors.TypeInternal,
			"remote returned status %d: %s", resp.StatusCode, string(body))
	}

	return decodeObject(resourceType, id, body)
}

// decodeObject handles the two response shapes: one object, or an array of
// candidate matches whose cardinality must be exactly one
func decodeObject(resourceType string, id types.ExternalID, body []byte) (types.RawObject, error) {
	var candidates []map[string]interface{}
	if err := json.Unmarshal(body, &candidates); err == nil {
		switch len(candidates) {
		case 0:
			return nil, errors.NotFound(resourceType, id.String())
		case 1:
			return types.RawObject(candidates[0]), nil
		default:
			return nil, errors.AmbiguousID(resourceType, id.String(), len(candidates))
		}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.Parsing("malformed remote response", err)
	}
	return types.RawObject(obj), nil
}
