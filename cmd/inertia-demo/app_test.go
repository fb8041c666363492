package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Props     map[string]any `json:"props"`
	Component string         `json:"component"`
	Version   string         `json:"version"`
	URL       string         `json:"url"`
}

func newTestApp(t *testing.T, cfg *config) http.Handler {
	t.Helper()

	if cfg == nil {
		cfg = &config{AssetVersion: "test", ViteEntry: "resources/js/app.tsx"} //nolint:exhaustruct
	}

	a, err := newApp(cfg, slog.New(slog.DiscardHandler), prometheus.NewRegistry())
	require.NoError(t, err)

	t.Cleanup(func() { _ = a.Close() })

	return a.handler
}

func inertiaRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	r.Header.Set("X-Requested-With", "XMLHttpRequest")
	r.Header.Set("X-Inertia", "true")
	r.Header.Set("X-Inertia-Version", "test")

	return r
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) page {
	t.Helper()

	var p page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))

	return p
}

func TestApp_Home(t *testing.T) {
	t.Parallel()

	h := newTestApp(t, nil)

	t.Run("html", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `<div id="app" data-page="`)
		assert.Contains(t, w.Body.String(), "Hello from Go")
		assert.Contains(t, w.Body.String(), "<title>Home · Inertia Demo</title>")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, inertiaRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)

		p := decodePage(t, w)
		assert.Equal(t, "Home", p.Component)
		assert.Equal(t, "test", p.Version)
		assert.Equal(t, "Inertia Demo", p.Props["appName"])
		assert.Equal(t, "Hello from Go", p.Props["greeting"])
		assert.NotEmpty(t, p.Props["serverTime"])
	})
}

func TestApp_UserPartialReload(t *testing.T) {
	t.Parallel()

	h := newTestApp(t, nil)

	r := inertiaRequest(http.MethodGet, "/users/1", nil)
	r.Header.Set("X-Inertia-Partial-Component", "Users/Show")
	r.Header.Set("X-Inertia-Partial-Data", "activity")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	p := decodePage(t, w)
	assert.Len(t, p.Props, 2)
	assert.Contains(t, p.Props, "activity")
	assert.Contains(t, p.Props, "userId")
}

func TestApp_UpdateUser(t *testing.T) {
	t.Parallel()

	h := newTestApp(t, nil)

	form := url.Values{"name": {"Grace Hopper"}}
	r := inertiaRequest(http.MethodPut, "/users/2", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users/2", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, inertiaRequest(http.MethodGet, "/users/2", nil))

	p := decodePage(t, w)
	u, ok := p.Props["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Grace Hopper", u["name"])
	assert.Equal(t, "alan@example.com", u["email"])
}

func TestApp_ProtocolBranches(t *testing.T) {
	t.Parallel()

	h := newTestApp(t, nil)

	t.Run("stale version", func(t *testing.T) {
		t.Parallel()

		r := inertiaRequest(http.MethodGet, "/about", nil)
		r.Header.Set("X-Inertia-Version", "old")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "http://example.com/about", w.Header().Get("X-Inertia-Location"))
	})

	t.Run("missing inertia header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Requested-With", "XMLHttpRequest")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("external location", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, inertiaRequest(http.MethodGet, "/external", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "https://inertiajs.com", w.Header().Get("X-Inertia-Location"))
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, inertiaRequest(http.MethodGet, "/users/404", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
		assert.Equal(t, "true", w.Header().Get("X-Inertia"))
		assert.Contains(t, w.Body.String(), "<title>Inertia Demo</title>")

		w = httptest.NewRecorder()
		h.ServeHTTP(w, inertiaRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "true", w.Header().Get("X-Inertia"))
	})

	t.Run("encrypted history", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, inertiaRequest(http.MethodGet, "/about", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"encryptHistory":true`)
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestApp_VersionFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "version")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o644))

	h := newTestApp(t, &config{VersionFile: path}) //nolint:exhaustruct

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "from-file")
}

func TestApp_ViteManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"resources/js/app.tsx":{"file":"assets/app-1.js","css":["assets/app-1.css"]}}`), 0o644))

	//nolint:exhaustruct
	h := newTestApp(t, &config{ViteManifest: path, ViteEntry: "resources/js/app.tsx"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<script type="module" src="/build/assets/app-1.js"></script>`)
	assert.Contains(t, w.Body.String(), `<link rel="stylesheet" href="/build/assets/app-1.css">`)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("INERTIA_ADDR", ":9090")
	t.Setenv("INERTIA_ASSET_VERSION", "abc")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "abc", cfg.AssetVersion)
	assert.Equal(t, "text", cfg.LogFormat)
}
