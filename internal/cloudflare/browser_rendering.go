package cloudflare

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"
)

// browserContentPath is the API path for the browser rendering content endpoint
const browserContentPath = "browser-rendering/content"

// gotoOptions configures page navigation in the browser rendering API
type gotoOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int    `json:"timeout"`
}

// contentRequest is the request body for the browser rendering content API
type contentRequest struct {
	URL         string       `json:"url"`
	GotoOptions *gotoOptions `json:"gotoOptions,omitempty"`
}

// contentResponse is the Cloudflare API response wrapper for rendered content
type contentResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

// RenderHTML loads pageURL in a headless browser and returns the rendered
// HTML, for policy pages whose text is produced by client-side scripts
func (c *Client) RenderHTML(ctx context.Context, pageURL string) (string, error) {
	body := contentRequest{
		URL:         pageURL,
		GotoOptions: &gotoOptions{WaitUntil: "networkidle2", Timeout: int(c.navTimeout.Milliseconds())},
	}

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL(browserContentPath)),
		httpsling.Post(),
		httpsling.BearerAuth(c.apiToken),
		httpsling.JSONBody(body),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var cfResp contentResponse

	resp, err := requester.ReceiveWithContext(ctx, &cfResp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !cfResp.Success {
		return "", ErrRenderingFailed
	}

	return cfResp.Result, nil
}
