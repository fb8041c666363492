// Package vite provides a minimal integration for Vite.
// It adds support for Vite Client and Vite React Refresh in development mode.
// It also provides a support for bundling Vite resources declared
// in the Vite manifest file.
package vite

import (
	"cmp"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	pathpkg "path"
	"strings"

	"go.inout.gg/foundations/must"
)

const (
	DefaultViteAddress = "http://localhost:5173"
	DefaultBase        = "/build/"
)

var errNoManifest = errors.New("inertia: vite manifest is not configured")

type Config struct {
	// Manifest resolves resources in production mode.
	Manifest *Manifest

	// TemplateName is the name of the resulting template.
	TemplateName string

	// ViteAddress is the address of the Vite dev server.
	ViteAddress string

	// Base is the public path the build output is served from.
	Base string

	// Dev enables the Vite dev server: resources are loaded from ViteAddress
	// and the client and React Refresh templates are rendered.
	Dev bool
}

func (c *Config) defaults() {
	c.ViteAddress = strings.TrimSuffix(cmp.Or(c.ViteAddress, DefaultViteAddress), "/")
	c.TemplateName = cmp.Or(c.TemplateName, "inertia")
	c.Base = cmp.Or(c.Base, DefaultBase)
}

const (
	clientTemplate = `{{ define "viteClient" }}{{ if viteDev }}` +
		`<script type="module" src="{{ viteAddress }}/@vite/client"></script>{{ end }}{{ end }}`

	reactRefreshTemplate = `{{ define "viteReactRefresh" }}{{ if viteDev }}<script type="module">
import RefreshRuntime from "{{ viteAddress }}/@react-refresh"
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>{{ end }}{{ end }}`
)

// newTemplate creates a template with the Vite helpers defined.
func newTemplate(config *Config) *template.Template {
	t := template.New(config.TemplateName).Funcs(template.FuncMap{
		"viteDev":      func() bool { return config.Dev },
		"viteAddress":  func() string { return config.ViteAddress },
		"viteResource": func(name string) (string, error) { return resource(config, name) },
	})

	must.Must(t.Parse(clientTemplate))
	must.Must(t.Parse(reactRefreshTemplate))

	return t
}

// resource returns the URL of a source file.
func resource(config *Config, name string) (string, error) {
	if config.Dev {
		return config.ViteAddress + "/" + strings.TrimPrefix(name, "/"), nil
	}

	if config.Manifest == nil {
		return "", errNoManifest
	}

	return config.Manifest.File(name, config.Base)
}

// Resolve returns the script and stylesheet URLs of an entry point,
// ready to be used as inertia.Config Scripts and Links.
//
// In development mode the entry is served by the Vite dev server.
func Resolve(entry string, config *Config) (*Assets, error) {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	if config.Dev {
		//nolint:exhaustruct
		return &Assets{
			Scripts: []string{
				config.ViteAddress + "/@vite/client",
				must.Must(resource(config, entry)),
			},
		}, nil
	}

	if config.Manifest == nil {
		return nil, errNoManifest
	}

	return config.Manifest.Resolve(entry, config.Base)
}

// NewTemplate creates a new template from a string.
//
// The resulting template will have built-in support for Vite.
// To include Vite React Refresh, use {{template "viteReactRefresh"}}
// and Vite client, use {{template "viteClient"}}.
// To include a Vite resource, use {{viteResource "path/to/resource.js"}}.
// Unless Dev is set, "viteClient" and "viteReactRefresh" templates are blank.
func NewTemplate(content string, config *Config) (*template.Template, error) {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	t := newTemplate(config)
	if _, err := t.Parse(content); err != nil {
		return nil, fmt.Errorf("inertia: failed to parse template: %w", err)
	}

	return t, nil
}

// Must is like NewTemplate but panics on error.
func Must(content string, c *Config) *template.Template {
	return must.Must(NewTemplate(content, c))
}

// ErrNoTemplate is returned by FromFS when the pattern matches no file.
var ErrNoTemplate = errors.New("inertia: no template matches")

// FromFS creates a new template from a file system.
// See NewTemplate for more information.
func FromFS(fsys fs.FS, path string, cfg *Config) (*template.Template, error) {
	if cfg == nil {
		//nolint:exhaustruct
		cfg = &Config{}
	}

	cfg.defaults()

	matches, err := fs.Glob(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("inertia: invalid template pattern %s: %w", path, err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, path)
	}

	t := newTemplate(cfg)
	if _, err := t.ParseFS(fsys, path); err != nil {
		return nil, fmt.Errorf("inertia: failed to parse template: %w", err)
	}

	// Templates parsed from files are named after the first file.
	return t.Lookup(pathpkg.Base(matches[0])), nil
}
