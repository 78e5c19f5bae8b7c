package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmacdonald/folio/internal/article"
	"github.com/dmacdonald/folio/internal/config"
	"github.com/dmacdonald/folio/internal/doc"
	"github.com/dmacdonald/folio/internal/editor"
	"github.com/dmacdonald/folio/internal/events"
	"github.com/dmacdonald/folio/internal/log"
	"github.com/dmacdonald/folio/internal/status"
	"github.com/dmacdonald/folio/internal/storage"
	"github.com/dmacdonald/folio/internal/style"
	"github.com/dmacdonald/folio/internal/webhook"
)

const (
	testSecret = "hook-secret"
	testToken  = "admin-token"
)

const testArticle = "---\ntitle: Field Notes\n---\n\nHello from the article.\n\n```go\nfunc main() {}\n```\n"

type fixture struct {
	server *Server
	hub    *events.Hub
	store  *storage.DeliveryStore
	dir    string
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	dir := t.TempDir()
	articlePath := filepath.Join(dir, "article.md")
	require.NoError(t, os.WriteFile(articlePath, []byte(testArticle), 0o644))

	db, err := storage.OpenSQLite(context.Background(), filepath.Join(dir, "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewDeliveryStore(db)

	logger := log.Discard()
	hub := events.NewHub(64)
	ed, _ := editor.New(editor.DefaultStyle)

	cfg := Config{
		AdminToken:  testToken,
		ArticlePath: articlePath,
		Site:        config.Defaults().Site,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s := New(cfg,
		webhook.New(webhook.Config{Secret: testSecret}, store, hub, logger),
		status.NewHandler(status.NewChecker(status.DefaultThreshold).WithDraw(func() int { return 9 }), hub, logger),
		article.NewRenderer(ed, style.NewConverter(style.DefaultPtPerRem), logger),
		doc.NewRenderer(doc.Options{}, logger),
		store,
		hub,
		logger,
	)
	return &fixture{server: s, hub: hub, store: store, dir: dir}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return f.do(req)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthzResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.Deliveries)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, int64(0))
}

func TestSitePage(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	d, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "David MacDonald", d.Find("title").Text())

	rec = f.get("/?format=pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = f.get("/?format=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	var renders []RenderEvent
	for _, ev := range f.hub.SnapshotSince(0) {
		if ev.Type == events.TopicRender {
			var re RenderEvent
			require.NoError(t, json.Unmarshal(ev.Data, &re))
			renders = append(renders, re)
		}
	}
	require.Len(t, renders, 2)
	assert.Equal(t, "html", renders[0].Format)
	assert.Equal(t, "pdf", renders[1].Format)
	assert.Equal(t, "site", renders[1].Page)
	assert.Positive(t, renders[1].Bytes)
}

func TestArticlePage(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/w")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))

	d, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Field Notes", d.Find("title").Text())
	assert.True(t, d.Find("p").First().HasClass("py-2"))
	assert.Equal(t, 1, d.Find("pre.editor").Length())

	rec = f.get("/w", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec = f.get("/w?format=pdf", "If-None-Match", etag)
	require.Equal(t, http.StatusOK, rec.Code, "pdf has its own entity tag")
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "article.pdf")

	rec = f.get("/w?format=docx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticleMissing(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.ArticlePath = "/does/not/exist.md" })
	rec := f.get("/w")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHooksRoutes(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/api/hooks")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello there!", rec.Body.String())

	body := `{"action":"opened"}`
	req := httptest.NewRequest(http.MethodPost, "/api/hooks", strings.NewReader(body))
	req.Header.Set("x-hub-signature-256", webhook.Sign([]byte(body), testSecret))
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Authorised!", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/hooks", strings.NewReader(body))
	rec = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorised", rec.Body.String())

	var health HealthzResponse
	require.NoError(t, json.NewDecoder(f.get("/healthz").Body).Decode(&health))
	assert.Equal(t, 2, health.Deliveries)

	rec = f.get("/admin/deliveries?limit=1", "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var list DeliveriesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Deliveries, 1)
	assert.NotContains(t, rec.Body.String(), "opened")
}

func TestServicesRoute(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/api/services/search")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Unavailable", rec.Body.String())
}

func TestAdminAuth(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusUnauthorized, f.get("/admin/deliveries").Code)
	assert.Equal(t, http.StatusUnauthorized, f.get("/admin/deliveries", "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, f.get("/admin/events", "Authorization", "Basic "+testToken).Code)
	assert.Equal(t, http.StatusOK, f.get("/admin/deliveries", "Authorization", "Bearer "+testToken).Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/admin/deliveries?limit=0", "Authorization", "Bearer "+testToken).Code)

	disabled := newFixture(t, func(c *Config) { c.AdminToken = "" })
	assert.Equal(t, http.StatusUnauthorized, disabled.get("/admin/deliveries", "Authorization", "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, disabled.get("/admin/deliveries", "Authorization", "Bearer anything").Code)
}

func TestAdminEvents(t *testing.T) {
	f := newFixture(t, nil)
	f.get("/api/services/a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: service.status")
}

func TestCORS(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.AllowedOrigins = []string{"https://example.com"} })

	rec := f.get("/api/hooks", "Origin", "https://example.com")
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.get("/api/hooks", "Origin", "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/hooks", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = f.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.get("/", "Origin", "https://example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), "pages carry no CORS headers")
}

func TestOpenAPI(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var d struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, "3.1.0", d.OpenAPI)
	for _, p := range []string{"/", "/w", "/healthz", "/api/hooks", "/api/services/{id}", "/admin/events", "/admin/deliveries"} {
		assert.Contains(t, d.Paths, p)
	}
	assert.Contains(t, d.Paths["/api/hooks"], "post")
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("static hello"), 0o644))

	f := newFixture(t, func(c *Config) { c.StaticDir = dir })
	rec := f.get("/static/hello.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "static hello", rec.Body.String())
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, err := ExtractBearer(req)
		if !tt.ok {
			assert.Error(t, err, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateToken(t *testing.T) {
	assert.True(t, ValidateToken("abc", "abc"))
	assert.False(t, ValidateToken("abc", "abd"))
	assert.False(t, ValidateToken("ab", "abc"))
	assert.False(t, ValidateToken("", ""))
	assert.False(t, ValidateToken("abc", ""))
}

func TestETagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(`"x", W/"a"`, `"a"`))
	assert.True(t, etagMatches(`*`, `"a"`))
	assert.False(t, etagMatches(``, `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}
