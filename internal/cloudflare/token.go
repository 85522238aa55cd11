package cloudflare

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"
)

const (
	verifyPath  = "tokens/verify"
	tokenActive = "active"
)

// verifyResponse is the Cloudflare API response for token verification
type verifyResponse struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"result"`
}

// VerifyToken checks that the API token is active
func (c *Client) VerifyToken(ctx context.Context) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.userURL(verifyPath)),
		httpsling.Method(http.MethodGet),
		httpsling.BearerAuth(c.apiToken),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var cfResp verifyResponse

	resp, err := requester.ReceiveWithContext(ctx, &cfResp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrTokenInactive, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	case !cfResp.Success || cfResp.Result.Status != tokenActive:
		return fmt.Errorf("%w: %q", ErrTokenInactive, cfResp.Result.Status)
	}

	return nil
}
