package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.segfaultmedaddy.com/inertia-adapter"
	"go.segfaultmedaddy.com/inertia-adapter/contrib/versionfile"
	"go.segfaultmedaddy.com/inertia-adapter/contrib/vite"
)

//go:embed templates/app.html
var templates embed.FS

const ssrTimeout = 5 * time.Second

// app is the demo HTTP application.
type app struct {
	handler http.Handler
	closers []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

func newApp(cfg *config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{handler: nil, closers: nil}

	assets, manifest, err := loadAssets(cfg)
	if err != nil {
		return nil, err
	}

	version, err := a.versionProvider(cfg, manifest, logger)
	if err != nil {
		return nil, err
	}

	rendererConfig := &inertia.Config{
		Version: version,
		SharedProps: inertia.PropsProviderFunc(func(context.Context, *inertia.RequestContext) (map[string]any, error) {
			return map[string]any{"appName": cfg.AppName}, nil
		}),
		Scripts: assets.Scripts,
		Links:   assets.Links,
	}

	if cfg.SSRURL != "" {
		rendererConfig.SSRClient = inertia.NewHTTPSSRClient(cfg.SSRURL, &http.Client{Timeout: ssrTimeout})
	}

	renderer, err := inertia.FromFS(templates, "templates/app.html", rendererConfig)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	metrics, err := inertia.NewMetrics(reg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	users := newUserStore()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	inertiaMiddleware := inertia.NewMiddleware(renderer, func(c *inertia.MiddlewareConfig) {
		c.Logger = logger
		c.Metrics = metrics
	})

	// Unknown routes still answer in the Inertia.js protocol.
	r.NotFound(inertiaMiddleware(http.NotFoundHandler()).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(inertiaMiddleware)

		r.Get("/", handleHome)
		r.Get("/about", handleAbout)
		r.Get("/external", handleExternal)
		r.Get("/users", users.handleIndex)
		r.Get("/users/{id}", users.handleShow)
		r.Put("/users/{id}", users.handleUpdate)
	})

	a.handler = r

	return a, nil
}

func loadAssets(cfg *config) (*vite.Assets, *vite.Manifest, error) {
	var manifest *vite.Manifest

	if cfg.ViteManifest != "" {
		m, err := vite.ParseManifestFromFS(os.DirFS(filepath.Dir(cfg.ViteManifest)), filepath.Base(cfg.ViteManifest))
		if err != nil {
			return nil, nil, err //nolint:wrapcheck
		}

		manifest = m
	}

	if !cfg.ViteDev && manifest == nil {
		return &vite.Assets{Scripts: nil, Links: nil}, nil, nil
	}

	//nolint:exhaustruct
	assets, err := vite.Resolve(cfg.ViteEntry, &vite.Config{Manifest: manifest, Dev: cfg.ViteDev})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return assets, manifest, nil
}

// versionProvider picks the asset version source, most specific first.
func (a *app) versionProvider(
	cfg *config,
	manifest *vite.Manifest,
	logger *slog.Logger,
) (inertia.VersionProvider, error) {
	switch {
	case cfg.VersionFile != "":
		w, err := versionfile.New(cfg.VersionFile)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		a.closers = append(a.closers, w)

		return w, nil
	case cfg.AssetVersion != "":
		return inertia.StaticVersion(cfg.AssetVersion), nil
	case manifest != nil:
		return inertia.StaticVersion(manifest.Version()), nil
	default:
		// Every restart makes clients reload the page.
		v := uuid.NewString()
		logger.Info("using boot asset version", slog.String("version", v))

		return inertia.StaticVersion(v), nil
	}
}

func handleHome(w http.ResponseWriter, r *http.Request) {
	inertia.MustRender(w, r, "Home", inertia.Props{
		inertia.NewProp("greeting", "Hello from Go"),
		inertia.NewConcurrent("serverTime", inertia.LazyFunc(func(context.Context) (any, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		})),
	}, inertia.WithTemplateData(map[string]string{"title": "Home"}))
}

func handleAbout(w http.ResponseWriter, r *http.Request) {
	inertia.MustRender(w, r, "About", aboutProps(),
		inertia.WithTemplateData(map[string]string{"title": "About"}),
		inertia.WithEncryptHistory(),
	)
}

func handleExternal(w http.ResponseWriter, r *http.Request) {
	inertia.Location(w, r, "https://inertiajs.com")
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
	}

	http.Error(w, fmt.Sprintf("%d %s", status, http.StatusText(status)), status)
}
