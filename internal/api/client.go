// internal/api/client.go
//
// HTTP client for the five backend operations. Every failure surfaces
// as a single human-readable error; callers never branch on status
// codes, only on success versus failure.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"
)

const errBodySnippet = 200

// Client talks to the generation backend at a configurable base URL
// (ending in /api, e.g. http://localhost:8000/api).
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client. A zero timeout leaves the call bounded
// only by the backend.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Analyze classifies the initial request and returns clarifying
// questions alongside a new session id.
func (c *Client) Analyze(ctx context.Context, prompt string) (AnalyzeResult, error) {
	var result AnalyzeResult
	err := c.postJSON(ctx, "analyze", analyzeRequest{Prompt: prompt}, &result)
	if err != nil {
		return AnalyzeResult{}, err
	}
	if result.SessionID == "" {
		return AnalyzeResult{}, oops.In("api").Errorf("analyze response missing session id")
	}
	return result, nil
}

// DiscoverContext searches historical documents for material relevant
// to the session context.
func (c *Client) DiscoverContext(ctx context.Context, sessionID string, sessionCtx map[string]string) (DiscoveryResult, error) {
	var result DiscoveryResult
	err := c.postJSON(ctx, "discover-context", discoverRequest{SessionID: sessionID, Context: sessionCtx}, &result)
	if err != nil {
		return DiscoveryResult{}, err
	}
	return result, nil
}

// Generate produces the full section bundle for the session.
func (c *Client) Generate(ctx context.Context, sessionID string, sessionCtx map[string]string) (rfp.Bundle, error) {
	var result generateResponse
	err := c.postJSON(ctx, "generate", generateRequest{SessionID: sessionID, Context: sessionCtx}, &result)
	if err != nil {
		return rfp.Bundle{}, err
	}
	return result.Sections, nil
}

// Regenerate produces a fresh version of one section. Only the named
// section is returned.
func (c *Client) Regenerate(ctx context.Context, req RegenerateRequest) (rfp.Section, error) {
	var result regenerateResponse
	err := c.postJSON(ctx, "regenerate", req, &result)
	if err != nil {
		return rfp.Section{}, err
	}
	return result.Section, nil
}

// Export retrieves the assembled document as an opaque binary artifact.
func (c *Client) Export(ctx context.Context, sessionID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/export?session_id=%s", c.baseURL, url.QueryEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, oops.In("api").With("operation", "export").Wrapf(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, oops.In("api").With("operation", "export").Wrapf(err, "call backend")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failureFromResponse("export", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.In("api").With("operation", "export").Wrapf(err, "read artifact")
	}
	return data, nil
}

// Health pings the backend root health endpoint. The base URL's /api
// suffix is stripped, matching the backend's route layout.
func (c *Client) Health(ctx context.Context) error {
	endpoint := strings.TrimSuffix(c.baseURL, "/api") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return oops.In("api").With("operation", "health").Wrapf(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return oops.In("api").With("operation", "health").Wrapf(err, "call backend")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromResponse("health", resp)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return oops.In("api").With("operation", "health").Wrapf(err, "decode response")
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, operation string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return oops.In("api").With("operation", operation).Wrapf(err, "encode request")
	}
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return oops.In("api").With("operation", operation).Wrapf(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return oops.In("api").With("operation", operation).Wrapf(err, "call backend")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromResponse(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oops.In("api").With("operation", operation).Wrapf(err, "decode response")
	}
	return nil
}

func failureFromResponse(operation string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodySnippet))
	detail := strings.TrimSpace(string(snippet))
	if detail == "" {
		detail = resp.Status
	}
	return oops.In("api").
		With("operation", operation).
		With("status", resp.StatusCode).
		Errorf("%s failed: %s", operation, detail)
}
