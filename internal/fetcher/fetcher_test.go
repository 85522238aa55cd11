package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const policyHTML = `<html><head><title>Privacy Policy</title><style>p{}</style></head>
<body><h1>Privacy Policy</h1><p>We collect information you provide &amp; data about your device.</p>
<script>track()</script><p>We never sell personal data to third parties under any circumstances.</p></body></html>`

type tabs map[string]string

func (t tabs) TabText(_ context.Context, pageURL string) (string, bool) {
	text, ok := t[pageURL]
	return text, ok
}

type renderer struct {
	html  string
	err   error
	calls int
}

func (r *renderer) RenderHTML(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.html, r.err
}

func newServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}

		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}

		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestFetch_Network(t *testing.T) {
	server := newServer(t, http.StatusOK, policyHTML, nil)

	f := New(WithHTTPClient(server.Client()))

	doc, err := f.Fetch(context.Background(), server.URL+"/privacy")
	require.NoError(t, err)

	assert.Equal(t, SourceNetwork, doc.Source)
	assert.Equal(t, "Privacy Policy", doc.Title)
	assert.Contains(t, doc.Text, "We collect information you provide & data about your device.")
	assert.NotContains(t, doc.Text, "track()")
	assert.NotContains(t, doc.Text, "p{}")
}

func TestFetch_PrefersTabText(t *testing.T) {
	var hits int32

	server := newServer(t, http.StatusOK, policyHTML, &hits)
	target := server.URL + "/privacy"

	long := strings.Repeat("Tab text about privacy. ", 10)
	f := New(WithHTTPClient(server.Client()), WithTabSource(tabs{target: long}))

	doc, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, SourceTab, doc.Source)
	assert.Equal(t, long, doc.Text)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetch_ShortTabTextFallsBackToNetwork(t *testing.T) {
	var hits int32

	server := newServer(t, http.StatusOK, policyHTML, &hits)
	target := server.URL + "/privacy"

	f := New(WithHTTPClient(server.Client()), WithTabSource(tabs{target: "Loading..."}))

	doc, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, SourceNetwork, doc.Source)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetch_Non2xx(t *testing.T) {
	server := newServer(t, http.StatusNotFound, "not found", nil)

	f := New(WithHTTPClient(server.Client()))

	_, err := f.Fetch(context.Background(), server.URL+"/privacy")
	require.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New()

	for _, u := range []string{"", "ftp://example.com/privacy", "/relative", "http://"} {
		_, err := f.Fetch(context.Background(), u)
		require.ErrorIs(t, err, ErrInvalidURL, u)
	}
}

func TestFetch_RendererForScriptPages(t *testing.T) {
	server := newServer(t, http.StatusOK, `<html><body><div id="app"></div><script>render()</script></body></html>`, nil)

	r := &renderer{html: "<html><head><title>Terms</title></head><body><p>" + strings.Repeat("Rendered terms of service text. ", 5) + "</p></body></html>"}
	f := New(WithHTTPClient(server.Client()), WithRenderer(r))

	doc, err := f.Fetch(context.Background(), server.URL+"/terms")
	require.NoError(t, err)

	assert.Equal(t, SourceRendered, doc.Source)
	assert.Equal(t, "Terms", doc.Title)
	assert.Contains(t, doc.Text, "Rendered terms of service text.")
	assert.Equal(t, 1, r.calls)
}

func TestFetch_EmptyDocument(t *testing.T) {
	server := newServer(t, http.StatusOK, `<html><body><script>render()</script></body></html>`, nil)

	f := New(WithHTTPClient(server.Client()), WithRenderer(&renderer{err: errors.New("render failed")}))

	_, err := f.Fetch(context.Background(), server.URL+"/terms")
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestFetch_CancelledContext(t *testing.T) {
	server := newServer(t, http.StatusOK, policyHTML, nil)

	f := New(WithHTTPClient(server.Client()), WithRateLimit(0.001, 1))

	ctx, cancel := context.WithCancel(context.Background())

	_, err := f.Fetch(ctx, server.URL+"/a")
	require.NoError(t, err)

	cancel()

	_, err = f.Fetch(ctx, server.URL+"/b")
	require.ErrorIs(t, err, ErrFetchFailed)
}

func TestHTML(t *testing.T) {
	server := newServer(t, http.StatusOK, policyHTML, nil)

	html, err := New().HTML(context.Background(), server.URL+"/privacy")
	require.NoError(t, err)
	assert.Equal(t, policyHTML, html)

	_, err = New().HTML(context.Background(), "mailto:legal@acme.test")
	require.ErrorIs(t, err, ErrInvalidURL)
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{max: 5}

	n, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = b.Write([]byte("defgh"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, "abcde", b.String())
	assert.True(t, b.truncated)
}
