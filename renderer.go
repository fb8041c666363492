package inertia

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiabase"
)

const (
	// DefaultRootViewID is the default root HTML element ID to which
	// the Inertia.js app is mounted.
	DefaultRootViewID = "app"
)

var _ PropsProvider = (PropsProviderFunc)(nil)

type (
	// Page represents an Inertia.js page that is sent to the client.
	Page = inertiabase.Page

	// PageProps is the ordered set of encoded props of a Page.
	PageProps = inertiabase.Props
)

// PropsProvider supplies props shared by every page, such as the current user.
//
// Shared props are merged underneath the props of the page: on a key
// collision the page's own value wins.
type PropsProvider interface {
	SharedProps(context.Context, *RequestContext) (map[string]any, error)
}

// PropsProviderFunc adapts a function to PropsProvider.
type PropsProviderFunc func(context.Context, *RequestContext) (map[string]any, error)

func (fn PropsProviderFunc) SharedProps(ctx context.Context, req *RequestContext) (map[string]any, error) {
	return fn(ctx, req)
}

// Config configures the Renderer behavior and capabilities.
type Config struct {
	// Version identifies the current asset version (e.g., build hash or timestamp).
	//
	// Defaults to an empty static version.
	Version VersionProvider

	// SharedProps supplies props merged into every page.
	SharedProps PropsProvider

	// SSRClient enables server-side rendering of Inertia pages.
	//
	// If nil, only client-side rendering is used.
	SSRClient SSRClient

	// RootViewAttrs are HTML attributes applied to the root element.
	RootViewAttrs map[string]string

	// RootViewID is the HTML element ID where the Inertia app mounts.
	//
	// Defaults to "app" if not specified.
	RootViewID string

	// Scripts are script URLs made available to the HTML template.
	Scripts []string

	// Links are stylesheet URLs made available to the HTML template.
	Links []string

	// JSONMarshalOptions configures JSON serialization for page props and data.
	JSONMarshalOptions []json.Options

	// Concurrency sets the maximum number of props resolved concurrently by Render.
	//
	// Defaults to runtime.GOMAXPROCS(0).
	Concurrency int
}

func (c *Config) defaults() {
	c.RootViewID = cmp.Or(c.RootViewID, DefaultRootViewID)
	c.Concurrency = cmp.Or(c.Concurrency, DefaultConcurrency)

	if c.Version == nil {
		c.Version = StaticVersion("")
	}

	debug.Assert(c.RootViewID != "", "RootViewID must be non-empty string")
}

// Renderer builds page objects and renders them as JSON or HTML documents.
//
// A Renderer is immutable after creation and safe for concurrent use.
// Create a Renderer using New or FromFS constructor functions.
type Renderer struct {
	version            VersionProvider
	sharedProps        PropsProvider
	ssrClient          SSRClient
	t                  *template.Template
	rootViewID         string
	rootViewAttrs      []pair[string, string]
	scripts            []string
	links              []string
	jsonMarshalOptions []json.Options
	concurrency        int
}

// New creates a Renderer with the provided HTML template and configuration.
//
// If config is nil, default values are used:
//   - RootViewID: "app"
//   - Concurrency: GOMAXPROCS(0)
//   - Version: ""
func New(t *template.Template, config *Config) *Renderer {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	attrs := make([]pair[string, string], 0, len(config.RootViewAttrs))
	for _, key := range slices.Sorted(maps.Keys(config.RootViewAttrs)) {
		// The data-page attribute is owned by the renderer.
		if key == "data-page" || key == "id" {
			continue
		}

		attrs = append(attrs, pair[string, string]{key, config.RootViewAttrs[key]})
	}

	r := &Renderer{
		t:                  t,
		version:            config.Version,
		sharedProps:        config.SharedProps,
		ssrClient:          config.SSRClient,
		rootViewID:         config.RootViewID,
		rootViewAttrs:      attrs,
		scripts:            slices.Clone(config.Scripts),
		links:              slices.Clone(config.Links),
		jsonMarshalOptions: config.JSONMarshalOptions,
		concurrency:        config.Concurrency,
	}

	debug.Assert(r.t != nil, "expected t to be defined")
	debug.Assert(r.rootViewID != "", "expected RootViewID to be defined")

	return r
}

// FromFS creates a Renderer by loading an HTML template from a file system.
//
// If config is nil, default values are used.
func FromFS(fsys fs.FS, path string, config *Config) (*Renderer, error) {
	debug.Assert(fsys != nil, "expected fsys to be defined")
	debug.Assert(path != "", "expected path to be defined")

	// The template is named after the first matching file.
	t, err := template.ParseFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to parse templates: %w", err)
	}

	return New(t, config), nil
}

// MustFromFS is like FromFS, but panics if an error occurs.
func MustFromFS(fsys fs.FS, path string, config *Config) *Renderer {
	return must.Must(FromFS(fsys, path, config))
}

// FromFile creates a Renderer from an HTML template file on disk.
//
// The file is read once; later changes are not picked up.
func FromFile(path string, config *Config) (*Renderer, error) {
	return FromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path), config)
}

// Version resolves the current asset version.
func (r *Renderer) Version(ctx context.Context) (string, error) {
	return resolveVersion(ctx, r.version)
}

// PageSource describes the page to build from a downstream response.
type PageSource struct {
	// Component is the page component name.
	Component string

	// Version is the resolved asset version.
	Version string

	// Props is the JSON object written by the downstream handler.
	Props []byte

	// Always lists keys never dropped by a partial reload.
	Always []string

	// Partial enables partial reload filtering.
	Partial bool

	// EncryptHistory and ClearHistory are copied to the page object.
	EncryptHistory bool
	ClearHistory   bool
}

// NewPage builds the page object for req.
//
// Shared props are merged underneath the page props, then, if enabled,
// the props are filtered down to the keys of a matching partial reload.
func (r *Renderer) NewPage(ctx context.Context, req *RequestContext, src PageSource) (*Page, error) {
	own, err := inertiabase.ParseProps(src.Props)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProps, err)
	}

	props := make(PageProps, 0, len(own))

	if r.sharedProps != nil {
		shared, err := r.sharedProps.SharedProps(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("inertia: failed to resolve shared props: %w", err)
		}

		for _, key := range slices.Sorted(maps.Keys(shared)) {
			val, err := json.Marshal(shared[key], r.jsonMarshalOptions...)
			if err != nil {
				return nil, fmt.Errorf("inertia: failed to encode shared prop %s: %w", key, err)
			}

			props.Set(key, jsontext.Value(val))
		}
	}

	for _, prop := range own {
		props.Set(prop.Key, prop.Value)
	}

	if src.Partial {
		props = filterPartial(req, src.Component, props, src.Always)
	}

	return &Page{
		Component:      src.Component,
		Version:        src.Version,
		Props:          props,
		URL:            req.Path,
		EncryptHistory: src.EncryptHistory,
		ClearHistory:   src.ClearHistory,
	}, nil
}

// Render encodes the page as JSON or, if asHTML is true, renders it into
// the HTML template. tdata is exposed to the template as TemplateData.T.
func (r *Renderer) Render(ctx context.Context, page *Page, asHTML bool, tdata any) ([]byte, error) {
	pageBytes, err := json.Marshal(page, r.jsonMarshalOptions...)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to encode page: %w", err)
	}

	if !asHTML {
		return pageBytes, nil
	}

	//nolint:exhaustruct
	data := TemplateData{
		T:       tdata,
		Page:    string(pageBytes),
		Scripts: r.scripts,
		Links:   r.links,
	}

	if r.ssrClient != nil {
		ssrData, err := r.ssrClient.Render(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("inertia: failed to render SSR data: %w", err)
		}

		data.InertiaHead = template.HTML(strings.Join(ssrData.Head, "\n")) //nolint:gosec
		data.InertiaBody = template.HTML(ssrData.Body)                     //nolint:gosec
	} else {
		data.InertiaBody = r.makeRootView(pageBytes)
	}

	return r.execute(&data)
}

// RenderDocument renders a response body that is not a page, such as the
// output of http.NotFound, into the HTML template. The escaped body takes
// the place of the root view.
func (r *Renderer) RenderDocument(body []byte, tdata any) ([]byte, error) {
	//nolint:exhaustruct
	data := TemplateData{
		T:           tdata,
		InertiaBody: template.HTML(template.HTMLEscapeString(string(body))), //nolint:gosec
		Body:        string(body),
		Scripts:     r.scripts,
		Links:       r.links,
	}

	return r.execute(&data)
}

func (r *Renderer) execute(data *TemplateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("inertia: failed to execute HTML template: %w", err)
	}

	return buf.Bytes(), nil
}

// makeRootView creates a root view element with the given page data.
func (r *Renderer) makeRootView(pageBytes []byte) template.HTML {
	var w strings.Builder

	_ = must.Must(w.WriteString(`<div id="`))
	template.HTMLEscape(&w, []byte(r.rootViewID))
	_ = must.Must(w.WriteString(`" data-page="`))
	template.HTMLEscape(&w, pageBytes)
	_ = must.Must(w.WriteRune('"'))

	for _, kv := range r.rootViewAttrs {
		_ = must.Must(w.WriteRune(' '))
		_ = must.Must(w.WriteString(kv.key))
		_ = must.Must(w.WriteString(`="`))
		template.HTMLEscape(&w, []byte(kv.value))
		_ = must.Must(w.WriteRune('"'))
	}

	_ = must.Must(w.WriteString(`></div>`))

	//nolint:gosec
	return template.HTML(w.String())
}

// filterPartial keeps the requested props of a matching partial reload.
func filterPartial(req *RequestContext, component string, props PageProps, always []string) PageProps {
	partial, ok := req.PartialReload()
	if !ok || !partial.Matches(component) {
		return props
	}

	d("Partial reload of %s: %v", component, partial.Keys)

	return props.Filter(func(key string) bool {
		return slices.Contains(partial.Keys, key) || slices.Contains(always, key)
	})
}

// TemplateData contains the data passed to the HTML template during rendering.
type TemplateData struct {
	// T is the data passed to Render with WithTemplateData.
	T any

	// InertiaHead contains SSR-generated head elements (title, meta tags, etc.).
	InertiaHead template.HTML

	// InertiaBody contains the root view element carrying the page object,
	// or the SSR-rendered markup.
	InertiaBody template.HTML

	// Page is the JSON-encoded page object.
	// It is empty when the response is not a page.
	Page string

	// Body is the raw response body of a response that is not a page.
	Body string

	// Scripts are the configured script URLs.
	Scripts []string

	// Links are the configured stylesheet URLs.
	Links []string
}

// pair is a key-value pair.
type pair[K any, V any] struct {
	key   K
	value V
}
