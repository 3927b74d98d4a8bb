// Package runs brackets delivery attempts with audit records in the external
// runs-service. The tracker is a best-effort side channel: completion
// failures are the caller's to log and discard, never to propagate into the
// send result.
package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RunStatus is the terminal state reported for a run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunParams describes the delivery attempt a run brackets.
type RunParams struct {
	ClerkOrgID  string
	ClerkUserID string
	AppID       string
	BrandID     string
	CampaignID  string
	TaskName    string
}

// Tracker records audit runs around delivery attempts.
type Tracker interface {
	// StartRun opens a run and returns its ID.
	StartRun(ctx context.Context, params RunParams) (string, error)
	// CompleteRun closes a run with the given status.
	CompleteRun(ctx context.Context, runID string, status RunStatus) error
}

const serviceName = "lifecycle-emails"

// Config configures the runs-service client.
type Config struct {
	// BaseURL is the runs-service endpoint.
	BaseURL string
	// APIKey authenticates against the runs-service.
	APIKey string
	// Timeout bounds each call. Zero means 10s.
	Timeout time.Duration
}

// Client is an HTTP Tracker backed by the runs-service.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a runs-service client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

type createRunRequest struct {
	ClerkOrgID  string `json:"clerkOrgId"`
	ClerkUserID string `json:"clerkUserId,omitempty"`
	AppID       string `json:"appId"`
	BrandID     string `json:"brandId,omitempty"`
	CampaignID  string `json:"campaignId,omitempty"`
	ServiceName string `json:"serviceName"`
	TaskName    string `json:"taskName"`
}

type runResponse struct {
	ID string `json:"id"`
}

// StartRun opens a run via POST /v1/runs.
func (c *Client) StartRun(ctx context.Context, params RunParams) (string, error) {
	body := createRunRequest{
		ClerkOrgID:  params.ClerkOrgID,
		ClerkUserID: params.ClerkUserID,
		AppID:       params.AppID,
		BrandID:     params.BrandID,
		CampaignID:  params.CampaignID,
		ServiceName: serviceName,
		TaskName:    params.TaskName,
	}

	var run runResponse
	if err := c.do(ctx, http.MethodPost, "/v1/runs", body, &run); err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return run.ID, nil
}

// CompleteRun closes a run via PATCH /v1/runs/{id}.
func (c *Client) CompleteRun(ctx context.Context, runID string, status RunStatus) error {
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/v1/runs/"+runID, body, nil); err != nil {
		return fmt.Errorf("complete run %s: %w", runID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("runs-service %s %s: status %d: %s", method, path, resp.StatusCode, respBody)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Noop is a Tracker that records nothing. Used when run tracking is not
// configured.
type Noop struct{}

// StartRun returns an empty run ID.
func (Noop) StartRun(context.Context, RunParams) (string, error) { return "", nil }

// CompleteRun does nothing.
func (Noop) CompleteRun(context.Context, string, RunStatus) error { return nil }
