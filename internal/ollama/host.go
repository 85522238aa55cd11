package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/theopenlane/httpsling"

	"github.com/theopenlane/policypeek/internal/ai"
)

// tagsResponse lists locally available models
type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// pullRequest starts a streamed model download
type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// pullStatus is one line of the streamed pull progress
type pullStatus struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// Availability reports ready when the model is installed, downloading while
// a pull is in progress, downloadable otherwise. An unreachable runtime is
// unavailable.
func (c *Client) Availability(ctx context.Context) (ai.Availability, error) {
	if c.pulling.Load() {
		return ai.AvailabilityDownloading, nil
	}

	installed, err := c.installed(ctx)
	if err != nil {
		return ai.AvailabilityUnavailable, err
	}

	if installed {
		return ai.AvailabilityReady, nil
	}

	return ai.AvailabilityDownloadable, nil
}

// Create pulls the model if needed and returns a chat session
func (c *Client) Create(ctx context.Context, cfg ai.SessionConfig, monitor ai.Monitor) (ai.Session, error) {
	installed, err := c.installed(ctx)
	if err != nil {
		return nil, err
	}

	if !installed {
		if err := c.pull(ctx, monitor); err != nil {
			return nil, err
		}
	}

	return &session{client: c, systemPrompt: cfg.SystemPrompt}, nil
}

func (c *Client) installed(ctx context.Context) (bool, error) {
	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL("tags")),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	var tags tagsResponse
	if err := decodeJSON(resp, &tags); err != nil {
		return false, err
	}

	for _, m := range tags.Models {
		if sameModel(m.Name, c.model) || sameModel(m.Model, c.model) {
			return true, nil
		}
	}

	return false, nil
}

// sameModel compares model names treating a missing tag as ":latest"
func sameModel(a, b string) bool {
	withTag := func(s string) string {
		if s != "" && !strings.Contains(s, ":") {
			return s + ":latest"
		}

		return s
	}

	return a != "" && withTag(a) == withTag(b)
}

// pull downloads the model, reporting progress from the streamed status lines
func (c *Client) pull(ctx context.Context, monitor ai.Monitor) error {
	if !c.pulling.CompareAndSwap(false, true) {
		return ErrPullInProgress
	}
	defer c.pulling.Store(false)

	log.Info().Str("model", c.model).Msg("pulling model")

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL("pull")),
		httpsling.Post(),
		httpsling.JSONBody(pullRequest{Model: c.model, Stream: true}),
		httpsling.WithHTTPClient(c.pullClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var status pullStatus
		if err := json.Unmarshal(scanner.Bytes(), &status); err != nil {
			continue
		}

		if status.Error != "" {
			return fmt.Errorf("%w: %s", ErrPullFailed, status.Error)
		}

		if status.Total > 0 && monitor != nil {
			monitor(float64(status.Completed) / float64(status.Total))
		}

		if status.Status == "success" {
			if monitor != nil {
				monitor(1)
			}

			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPullFailed, err)
	}

	return fmt.Errorf("%w: stream ended before success", ErrPullFailed)
}
