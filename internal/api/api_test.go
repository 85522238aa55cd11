package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/analysis"
	"github.com/theopenlane/policypeek/internal/background"
	"github.com/theopenlane/policypeek/internal/discovery"
	"github.com/theopenlane/policypeek/internal/fetcher"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/page"
	"github.com/theopenlane/policypeek/internal/store"
)

const testPage = `<html><head><title>Acme</title></head><body>
<p>Welcome to Acme.</p>
<footer>
  <a href="/privacy">Privacy Policy</a>
  <a href="/legal/terms-of-service">Terms of Service</a>
  <a href="/careers">Careers</a>
</footer>
</body></html>`

const policyText = "We collect personal information when you use our services. " +
	"We use cookies to remember your preferences. We may share data with third party partners. " +
	"You have the right to request deletion of your data."

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, pageURL string) (fetcher.Document, error) {
	return fetcher.Document{URL: pageURL, Text: policyText, Source: fetcher.SourceNetwork}, nil
}

// stubProber serves a homepage linking to its privacy policy and a terms page
type stubProber struct{}

func (stubProber) HTML(_ context.Context, pageURL string) (string, error) {
	switch pageURL {
	case "https://acme.test/":
		return testPage, nil
	case "https://acme.test/terms":
		return `<html><head><title>Terms of Service</title></head><body>These terms govern your use.</body></html>`, nil
	}

	return "", errors.New("not found")
}

type stubSession struct{}

func (stubSession) Prompt(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Detailed breakdown") {
		return "## Data Collection\nDetailed findings.", nil
	}

	return "- Collects personal information\n- Uses cookies", nil
}

type stubHost struct {
	availability ai.Availability
}

func (h *stubHost) Availability(_ context.Context) (ai.Availability, error) {
	return h.availability, nil
}

func (h *stubHost) Create(_ context.Context, _ ai.SessionConfig, _ ai.Monitor) (ai.Session, error) {
	h.availability = ai.AvailabilityReady

	return stubSession{}, nil
}

type fixture struct {
	router http.Handler
	store  *store.Store
	tabs   *page.Registry
}

func newFixture(t *testing.T, availability ai.Availability) *fixture {
	t.Helper()

	st, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bus := messaging.NewBus(messaging.WithTimeout(2 * time.Second))
	models := ai.NewManager(ai.Supported(&stubHost{availability: availability}))

	bg := background.New(bus, st, stubFetcher{}, models)
	bg.Start()
	t.Cleanup(bg.Stop)

	tabs := page.NewRegistry(bus, st, page.WithQuietWindow(20*time.Millisecond))
	t.Cleanup(tabs.CloseAll)

	controller := analysis.New(bus, models, st)
	h := NewHandler(bus, controller, tabs, st, models, discovery.New(stubProber{}))

	return &fixture{
		router: NewRouter(h, 0, 0),
		store:  st,
		tabs:   tabs,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

// decode unmarshals the envelope and its data into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) Response {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *Error          `json:"error"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))

	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}

	return Response{Success: raw.Success, Error: raw.Error}
}

func TestPing(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodGet, "/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ".", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodOptions, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	f := newFixture(t, ai.AvailabilityDownloadable)

	w := f.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "policypeek", resp.Service)
	assert.Equal(t, ai.AvailabilityDownloadable, resp.Availability)
}

func TestOpenPage_DetectsAndStoresLinks(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPost, "/api/tabs/7/page", OpenPageRequest{URL: "https://acme.test/", HTML: testPage})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pageResp PageResponse
	env := decode(t, w, &pageResp)

	assert.True(t, env.Success)
	assert.Equal(t, "7", pageResp.TabID)
	assert.Equal(t, "Acme", pageResp.Title)
	require.Len(t, pageResp.Links, 2)
	assert.Equal(t, "https://acme.test/privacy", pageResp.Links[0].URL)
	assert.Len(t, pageResp.Badges, 2)

	w = f.do(t, http.MethodGet, "/api/tabs/7/stored", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored struct {
		Count int `json:"count"`
	}
	decode(t, w, &stored)
	assert.Equal(t, 2, stored.Count)
}

func TestOpenPage_Validation(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	tests := []struct {
		name string
		body any
		code string
	}{
		{name: "missing url", body: OpenPageRequest{HTML: testPage}, code: errCodeValidation},
		{name: "missing html", body: OpenPageRequest{URL: "https://acme.test/"}, code: errCodeValidation},
		{name: "unknown field", body: `{"url":"https://acme.test/","html":"<p></p>","extra":1}`, code: errCodeInvalidRequest},
		{name: "two objects", body: `{"url":"a"}{"url":"b"}`, code: errCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/tabs/1/page", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			env := decode(t, w, nil)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestLinks(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPost, "/api/tabs/3/page", OpenPageRequest{URL: "https://acme.test/", HTML: testPage})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("live", func(t *testing.T) {
		var resp LinksResponse
		decode(t, f.do(t, http.MethodGet, "/api/tabs/3/links", nil), &resp)

		assert.Equal(t, "page", resp.Source)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("filtered by kind", func(t *testing.T) {
		var resp LinksResponse
		decode(t, f.do(t, http.MethodGet, "/api/tabs/3/links?kind=privacy_policy", nil), &resp)

		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "Privacy Policy", resp.Links[0].Text)
	})

	t.Run("markdown", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/tabs/3/links?format=markdown", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
		assert.Contains(t, w.Body.String(), "https://acme.test/privacy")
	})

	t.Run("stored fallback after page closes", func(t *testing.T) {
		require.NoError(t, f.tabs.Close("3"))

		var resp LinksResponse
		decode(t, f.do(t, http.MethodGet, "/api/tabs/3/links", nil), &resp)

		assert.Equal(t, "stored", resp.Source)
		assert.Equal(t, 2, resp.Count)
	})
}

func TestLinks_UnknownTab(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodGet, "/api/tabs/404/links", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMutation(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPost, "/api/tabs/5/page", OpenPageRequest{
		URL:  "https://acme.test/",
		HTML: `<html><body><footer></footer></body></html>`,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/tabs/5/mutations", MutationRequest{
		Selector: "footer",
		HTML:     `<a href="/cookie-policy">Cookie Policy</a>`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MutationResponse
	decode(t, w, &resp)
	assert.Equal(t, 1, resp.AddedAnchors)
	assert.True(t, resp.RescanQueued)

	assert.Eventually(t, func() bool {
		var links LinksResponse
		decode(t, f.do(t, http.MethodGet, "/api/tabs/5/links", nil), &links)

		return links.Count == 1
	}, 2*time.Second, 20*time.Millisecond)

	w = f.do(t, http.MethodPost, "/api/tabs/5/mutations", MutationRequest{Selector: "aside", HTML: "<p>x</p>"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPost, "/api/tabs/6/mutations", MutationRequest{HTML: "<p>x</p>"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRescanAndClose(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPost, "/api/tabs/9/page", OpenPageRequest{URL: "https://acme.test/", HTML: testPage})
	require.Equal(t, http.StatusOK, w.Code)

	var rescan RescanResponse
	w = f.do(t, http.MethodPost, "/api/tabs/9/rescan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &rescan)
	assert.Equal(t, 2, rescan.Count)

	w = f.do(t, http.MethodDelete, "/api/tabs/9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, found, err := f.store.Links(context.Background(), "9")
	require.NoError(t, err)
	assert.False(t, found)

	w = f.do(t, http.MethodPost, "/api/tabs/9/rescan", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettings(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	var settings struct {
		ShowMagnifyingGlass  bool `json:"showMagnifyingGlass"`
		NotificationsEnabled bool `json:"notificationsEnabled"`
		AutoScan             bool `json:"autoScan"`
	}

	decode(t, f.do(t, http.MethodGet, "/api/settings", nil), &settings)
	assert.True(t, settings.ShowMagnifyingGlass)
	assert.True(t, settings.NotificationsEnabled)
	assert.True(t, settings.AutoScan)

	w := f.do(t, http.MethodPut, "/api/settings", `{"autoScan":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &settings)
	assert.False(t, settings.AutoScan)
	assert.True(t, settings.NotificationsEnabled)

	stored, err := f.store.Settings(context.Background())
	require.NoError(t, err)
	assert.False(t, stored.AutoScan)

	w = f.do(t, http.MethodPut, "/api/settings", `{"darkMode":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettings_PushedToOpenPages(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPost, "/api/tabs/7/page", OpenPageRequest{URL: "https://acme.test/", HTML: testPage})
	require.Equal(t, http.StatusOK, w.Code)

	pc, err := f.tabs.Get("7")
	require.NoError(t, err)
	require.Len(t, pc.Badges(), 2)

	w = f.do(t, http.MethodPut, "/api/settings", `{"showMagnifyingGlass":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, pc.Badges())
	assert.False(t, pc.Settings().ShowMagnifyingGlass)
}

func TestDraft(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPut, "/api/draft", DraftRequest{Draft: "We collect"})
	require.Equal(t, http.StatusOK, w.Code)

	var draft DraftResponse
	decode(t, f.do(t, http.MethodGet, "/api/draft", nil), &draft)
	assert.Equal(t, "We collect", draft.Draft)

	w = f.do(t, http.MethodDelete, "/api/draft", nil)
	require.Equal(t, http.StatusOK, w.Code)

	draft = DraftResponse{}
	decode(t, f.do(t, http.MethodGet, "/api/draft", nil), &draft)
	assert.Empty(t, draft.Draft)
}

func TestAnalysis_URL(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodGet, "/api/analysis?url=https://acme.test/privacy&title=Privacy", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view analysis.View
	decode(t, w, &view)

	require.Equal(t, analysis.PhaseResult, view.Phase)
	require.NotNil(t, view.Result)
	assert.True(t, view.Result.UsedAI)
	assert.Equal(t, "https://acme.test/privacy", view.Result.SourceURL)
	assert.True(t, view.CanDeep)

	w = f.do(t, http.MethodGet, "/api/analysis/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Policy Analysis: Privacy")
}

func TestAnalysis_ManualAndDeep(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodPost, "/api/analysis/deep", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/analysis", AnalyzeTextRequest{Text: "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decode(t, w, nil)
	assert.Equal(t, analysis.ErrEmptyText.Error(), env.Error.Message)

	w = f.do(t, http.MethodPost, "/api/analysis", AnalyzeTextRequest{Text: policyText})
	require.Equal(t, http.StatusOK, w.Code)

	var view analysis.View
	decode(t, w, &view)
	require.NotNil(t, view.Result)
	assert.False(t, view.Result.IsDeepAnalysis)

	w = f.do(t, http.MethodPost, "/api/analysis/deep", nil)
	require.Equal(t, http.StatusOK, w.Code)

	decode(t, w, &view)
	assert.True(t, view.Result.IsDeepAnalysis)
	assert.Contains(t, view.Result.Summary, "Data Collection")

	w = f.do(t, http.MethodDelete, "/api/analysis", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view = analysis.View{}
	decode(t, w, &view)
	assert.Equal(t, analysis.PhaseInput, view.Phase)
	assert.False(t, view.CanDeep)
}

func TestAnalysis_ReportWithoutResult(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	w := f.do(t, http.MethodGet, "/api/analysis/report", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAI_DownloadPromptFlow(t *testing.T) {
	f := newFixture(t, ai.AvailabilityDownloadable)

	var view analysis.View
	decode(t, f.do(t, http.MethodGet, "/api/analysis?url=https://acme.test/privacy", nil), &view)

	require.Equal(t, analysis.PhaseDownloadPrompt, view.Phase)
	require.NotNil(t, view.Pending)
	assert.Equal(t, "https://acme.test/privacy", view.Pending.URL)

	var status AIStatusResponse
	decode(t, f.do(t, http.MethodGet, "/api/ai/status", nil), &status)
	assert.Equal(t, ai.AvailabilityDownloadable, status.Availability)
	assert.False(t, status.Status.HasSession)

	w := f.do(t, http.MethodPost, "/api/ai/download", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view = analysis.View{}
	decode(t, w, &view)
	require.Equal(t, analysis.PhaseResult, view.Phase)
	assert.True(t, view.Result.UsedAI)
	assert.Nil(t, view.Pending)
}

func TestAI_Skip(t *testing.T) {
	f := newFixture(t, ai.AvailabilityDownloadable)

	decode(t, f.do(t, http.MethodGet, "/api/analysis?url=https://acme.test/privacy", nil), nil)

	w := f.do(t, http.MethodPost, "/api/ai/skip", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view analysis.View
	decode(t, w, &view)

	require.Equal(t, analysis.PhaseResult, view.Phase)
	assert.False(t, view.Result.UsedAI)
	assert.True(t, view.AI.Skipped)
}

func TestDiscover(t *testing.T) {
	f := newFixture(t, ai.AvailabilityReady)

	t.Run("finds linked and probed pages", func(t *testing.T) {
		var resp DiscoverResponse

		w := f.do(t, http.MethodGet, "/api/discover?site=acme.test", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)

		require.Equal(t, 3, resp.Count)
		assert.Equal(t, "https://acme.test/privacy", resp.Links[0].URL)
		assert.Equal(t, "https://acme.test/legal/terms-of-service", resp.Links[1].URL)
		assert.Equal(t, "https://acme.test/terms", resp.Links[2].URL)
		assert.Equal(t, "Terms of Service", resp.Links[2].Text)
	})

	t.Run("markdown", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/discover?site=acme.test&format=markdown", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "https://acme.test/terms")
	})

	t.Run("errors", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/discover", nil).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/discover?site=ftp://acme.test", nil).Code)
		assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodGet, "/api/discover?site=other.test", nil).Code)
	})
}

func TestWantsMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   bool
	}{
		{name: "json by default", target: "/x", want: false},
		{name: "format query", target: "/x?format=markdown", want: true},
		{name: "accept header", target: "/x", accept: "text/markdown; charset=utf-8", want: true},
		{name: "accept list", target: "/x", accept: "application/json, text/markdown", want: true},
		{name: "other accept", target: "/x", accept: "text/html", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}

			assert.Equal(t, tc.want, wantsMarkdown(req))
		})
	}
}
