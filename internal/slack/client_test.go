package slack

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	client, err := New("https://hooks.slack.com/services/T123/B456/xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.webhookURL != "https://hooks.slack.com/services/T123/B456/xyz" {
		t.Errorf("expected webhook URL to be set, got %s", client.webhookURL)
	}

	if client.username != defaultUsername || client.iconEmoji != defaultIconEmoji {
		t.Errorf("expected default identity, got %s %s", client.username, client.iconEmoji)
	}

	if client.httpClient == nil {
		t.Fatal("expected default HTTP client to be set")
	}
}

func TestNew_InvalidWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "empty", url: "", wantErr: ErrMissingWebhookURL},
		{name: "relative", url: "/services/T123", wantErr: ErrInvalidWebhookURL},
		{name: "wrong scheme", url: "ftp://hooks.slack.com/services/T123", wantErr: ErrInvalidWebhookURL},
		{name: "no host", url: "https:///services/T123", wantErr: ErrInvalidWebhookURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_Options(t *testing.T) {
	customClient := &http.Client{Timeout: 30 * time.Second}

	client, err := New("https://hooks.slack.com/test",
		WithHTTPClient(customClient),
		WithUsername("Policy Bot"),
		WithIconEmoji(":scroll:"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.httpClient != customClient {
		t.Error("expected custom HTTP client to be set")
	}

	if client.username != "Policy Bot" || client.iconEmoji != ":scroll:" {
		t.Errorf("unexpected identity %s %s", client.username, client.iconEmoji)
	}
}

func TestNew_EmptyOptionsKeepDefaults(t *testing.T) {
	client, err := New("https://hooks.slack.com/test", WithHTTPClient(nil), WithUsername(""), WithIconEmoji(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.httpClient == nil {
		t.Fatal("expected default HTTP client to remain when nil is passed")
	}

	if client.username != defaultUsername || client.iconEmoji != defaultIconEmoji {
		t.Error("expected defaults to remain when empty values are passed")
	}
}
