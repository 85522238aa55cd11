package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/policypeek/internal/ai"
)

func newTestServer(t *testing.T, models []string, pullLines []string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		type model struct {
			Name string `json:"name"`
		}

		out := struct {
			Models []model `json:"models"`
		}{}

		for _, m := range models {
			out.Models = append(out.Models, model{Name: m})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		var req pullRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")

		for _, line := range pullLines {
			_, _ = fmt.Fprintln(w, line)
		}
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		last := req.Messages[len(req.Messages)-1]

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: fmt.Sprintf("%d messages, echo: %s", len(req.Messages), last.Content)},
			Done:    true,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "llama3.2")
	require.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = New(DefaultBaseURL, "")
	require.ErrorIs(t, err, ErrMissingModel)

	c, err := New("http://localhost:11434/", "llama3.2")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/api/tags", c.apiURL("tags"))
	assert.Equal(t, "llama3.2", c.Model())
}

func TestSameModel(t *testing.T) {
	assert.True(t, sameModel("llama3.2:latest", "llama3.2"))
	assert.True(t, sameModel("llama3.2", "llama3.2:latest"))
	assert.False(t, sameModel("llama3.2:1b", "llama3.2"))
	assert.False(t, sameModel("", ""))
}

func TestAvailability(t *testing.T) {
	tests := []struct {
		name   string
		models []string
		want   ai.Availability
	}{
		{name: "installed", models: []string{"mistral:latest", "llama3.2:latest"}, want: ai.AvailabilityReady},
		{name: "not installed", models: []string{"mistral:latest"}, want: ai.AvailabilityDownloadable},
		{name: "empty", want: ai.AvailabilityDownloadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.models, nil)

			c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			got, err := c.Availability(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailability_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL, "llama3.2")
	require.NoError(t, err)

	got, err := c.Availability(context.Background())
	require.Error(t, err)
	assert.Equal(t, ai.AvailabilityUnavailable, got)
}

func TestCreate_PullsWithProgress(t *testing.T) {
	srv := newTestServer(t, nil, []string{
		`{"status":"pulling manifest"}`,
		`{"status":"downloading","total":200,"completed":50}`,
		`{"status":"downloading","total":200,"completed":200}`,
		`{"status":"success"}`,
	})

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	var progress []float64

	session, err := c.Create(context.Background(), ai.DefaultSessionConfig(), func(loaded float64) {
		progress = append(progress, loaded)
	})
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, []float64{0.25, 1, 1}, progress)
	assert.False(t, c.pulling.Load())
}

func TestCreate_PullError(t *testing.T) {
	srv := newTestServer(t, nil, []string{
		`{"status":"pulling manifest"}`,
		`{"error":"pull model manifest: file does not exist"}`,
	})

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Create(context.Background(), ai.DefaultSessionConfig(), nil)
	require.ErrorIs(t, err, ErrPullFailed)
}

func TestCreate_StreamEndsEarly(t *testing.T) {
	srv := newTestServer(t, nil, []string{`{"status":"pulling manifest"}`})

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Create(context.Background(), ai.DefaultSessionConfig(), nil)
	require.ErrorIs(t, err, ErrPullFailed)
}

func TestSessionPrompt(t *testing.T) {
	srv := newTestServer(t, []string{"llama3.2:latest"}, nil)

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	session, err := c.Create(context.Background(), ai.SessionConfig{SystemPrompt: "be brief"}, nil)
	require.NoError(t, err)

	reply, err := session.Prompt(context.Background(), "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "2 messages, echo: summarize this", reply)
}

func TestChat_NoSystemPrompt(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	reply, err := c.Chat(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "1 messages, echo: hello", reply)
}

func TestManagerWithOllama(t *testing.T) {
	srv := newTestServer(t, nil, []string{
		`{"status":"downloading","total":4,"completed":1}`,
		`{"status":"success"}`,
	})

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	var percents []int

	m := ai.NewManager(ai.Supported(c), ai.WithProgress(func(p int) { percents = append(percents, p) }))

	_, err = m.RequestSession(context.Background(), ai.TriggerAutomatic)
	require.ErrorIs(t, err, ai.ErrNeedsUserGesture)

	_, err = m.RequestSession(context.Background(), ai.TriggerUser)
	require.NoError(t, err)
	assert.Equal(t, []int{25, 100}, percents)
}

func TestNonJSONResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.Handler
		wantErr error
	}{
		{
			name:    "plain not found",
			handler: http.NotFoundHandler(),
			wantErr: ErrUnexpectedStatus,
		},
		{
			name: "plain text ok",
			handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = fmt.Fprint(w, "Ollama is running")
			}),
			wantErr: ErrUnexpectedContentType,
		},
		{
			name: "truncated json",
			handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = fmt.Fprint(w, `{"models":[`)
			}),
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			c, err := New(srv.URL, "llama3.2", WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			got, err := c.Availability(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ai.AvailabilityUnavailable, got)

			_, err = c.Chat(context.Background(), "", "hello")
			require.ErrorIs(t, err, tt.wantErr)

			m := ai.NewManager(ai.Supported(c))
			assert.Equal(t, ai.AvailabilityUnavailable, m.CheckAvailability(context.Background()))
		})
	}
}

func TestPull_OutlivesClientTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"models":[]}`)
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")

		_, _ = fmt.Fprintln(w, `{"status":"downloading","total":10,"completed":4}`)
		w.(http.Flusher).Flush()

		time.Sleep(300 * time.Millisecond)

		_, _ = fmt.Fprintln(w, `{"status":"success"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	short := &http.Client{Transport: srv.Client().Transport, Timeout: 100 * time.Millisecond}

	c, err := New(srv.URL, "llama3.2", WithHTTPClient(short))
	require.NoError(t, err)

	m := ai.NewManager(ai.Supported(c))

	session, err := m.RequestSession(context.Background(), ai.TriggerUser)
	require.NoError(t, err)
	require.NotNil(t, session)

	status := m.Status()
	assert.Equal(t, ai.StateReady, status.State)
	assert.False(t, status.Failed)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 100*time.Millisecond, c.httpClient.Timeout)
}
