package cloudflare

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	client, err := New("account-123", "token-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.accountID != "account-123" {
		t.Errorf("expected account ID account-123, got %s", client.accountID)
	}

	if client.Model() != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, client.Model())
	}

	if client.httpClient == nil {
		t.Fatal("expected default HTTP client to be set")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		apiToken  string
		wantErr   error
	}{
		{name: "missing account", apiToken: "token-abc", wantErr: ErrMissingAccountID},
		{name: "missing token", accountID: "account-123", wantErr: ErrMissingAPIToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.accountID, tt.apiToken)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_Options(t *testing.T) {
	customClient := &http.Client{Timeout: 5 * time.Second}

	client, err := New("account-123", "token-abc",
		WithHTTPClient(customClient),
		WithModel("@cf/mistral/mistral-7b-instruct-v0.1"),
		WithBaseURL("http://localhost:9999"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.httpClient != customClient {
		t.Error("expected custom HTTP client to be set")
	}

	if client.Model() != "@cf/mistral/mistral-7b-instruct-v0.1" {
		t.Errorf("unexpected model %s", client.Model())
	}

	if client.baseURL != "http://localhost:9999" {
		t.Errorf("unexpected base URL %s", client.baseURL)
	}
}

func TestNew_EmptyOptionsKeepDefaults(t *testing.T) {
	client, err := New("account-123", "token-abc", WithHTTPClient(nil), WithModel(""), WithBaseURL(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.httpClient == nil {
		t.Fatal("expected default HTTP client to remain when nil is passed")
	}

	if client.Model() != DefaultModel || client.baseURL != defaultBaseURL {
		t.Error("expected defaults to remain when empty values are passed")
	}
}

func TestAPIURL(t *testing.T) {
	client, err := New("my-account", "my-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := client.apiURL(runPath + client.Model())
	expected := "https://api.cloudflare.com/client/v4/accounts/my-account/ai/run/@cf/meta/llama-3.1-8b-instruct"

	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}
