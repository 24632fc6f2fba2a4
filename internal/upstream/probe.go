package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// Status is what an unauthenticated probe learned about a service
type Status struct {
	URL     string
	Alive   bool
	Version string
}

type healthResponse struct {
	Status string `json:"status"`
}

type versionResponse struct {
	Version string `json:"version"`
}

// Probe checks that an Ory admin endpoint is reachable and reports its version.
// Both /health/alive and /version are unauthenticated.
func Probe(ctx context.Context, serverURL string) (Status, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	status := Status{URL: serverURL}

	client := &http.Client{
		Timeout: probeTimeout,
	}

	var health healthResponse
	if err := getJSON(ctx, client, serverURL+"/health/alive", &health); err != nil {
		return status, fmt.Errorf("health check failed: %w", err)
	}
	status.Alive = health.Status == "ok"
	if !status.Alive {
		return status, fmt.Errorf("service reported status %q", health.Status)
	}

	// Version is informational; older servers may not expose it
	var version versionResponse
	if err := getJSON(ctx, client, serverURL+"/version", &version); err == nil {
		status.Version = version.Version
	}

	return status, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
