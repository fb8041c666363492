package vite

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"path"

	"github.com/go-json-experiment/json"
)

type rawManifest = map[string]*ManifestEntry

// Manifest represents a parsed Vite build manifest (manifest.json).
// It maps entry points to their compiled assets and dependencies.
type Manifest struct {
	raw     rawManifest
	version string
}

// ManifestEntry describes a single asset in the Vite build manifest.
// It contains the asset's output path, dependencies, and metadata.
type ManifestEntry struct {
	Source         string   `json:"src,omitempty"`
	File           string   `json:"file"`
	Name           string   `json:"name,omitempty"`
	CSS            []string `json:"css,omitempty"`
	Assets         []string `json:"assets,omitempty"`
	Imports        []string `json:"imports,omitempty"`
	DynamicImports []string `json:"dynamicImports,omitempty"`
	IsEntry        bool     `json:"isEntry,omitempty"`
	IsDynamicEntry bool     `json:"isDynamicEntry,omitempty"`
}

// Assets are the URLs required by an entry point.
type Assets struct {
	// Scripts are module script URLs, the entry itself first.
	Scripts []string

	// Links are stylesheet URLs.
	Links []string
}

// Resolve returns the script and stylesheet URLs of the entry, prefixed with base.
//
// It recursively walks the static import graph to include all dependencies.
func (m *Manifest) Resolve(name string, base string) (*Assets, error) {
	entry, ok := m.raw[name]
	if !ok {
		return nil, fmt.Errorf("inertia: entry %s not found in manifest", name)
	}

	seen := make(map[string]bool)
	assets := &Assets{} //nolint:exhaustruct

	var walk func(string, *ManifestEntry)

	walk = func(key string, e *ManifestEntry) {
		if e == nil || seen[key] {
			return
		}

		seen[key] = true

		if path.Ext(e.File) == ".css" {
			assets.Links = append(assets.Links, base+e.File)
		} else {
			assets.Scripts = append(assets.Scripts, base+e.File)
		}

		for _, link := range e.CSS {
			assets.Links = append(assets.Links, base+link)
		}

		for _, i := range e.Imports {
			walk(i, m.raw[i])
		}
	}

	walk(name, entry)

	return assets, nil
}

// HTML resolves a manifest entry and returns all required CSS and JS tags.
//
// Returns (css, js, error) where css and js are ready-to-use HTML tags.
func (m *Manifest) HTML(name string, base string) ([]template.HTML, []template.HTML, error) {
	assets, err := m.Resolve(name, base)
	if err != nil {
		return nil, nil, err
	}

	css := make([]template.HTML, 0, len(assets.Links))
	for _, link := range assets.Links {
		//nolint:gosec
		css = append(css, template.HTML(fmt.Sprintf(
			`<link rel="stylesheet" href="%s" />`, template.HTMLEscapeString(link))))
	}

	js := make([]template.HTML, 0, len(assets.Scripts))
	for _, src := range assets.Scripts {
		//nolint:gosec
		js = append(js, template.HTML(fmt.Sprintf(
			`<script type="module" src="%s"></script>`, template.HTMLEscapeString(src))))
	}

	return css, js, nil
}

// File returns the output file of the entry, prefixed with base.
func (m *Manifest) File(name string, base string) (string, error) {
	entry, ok := m.raw[name]
	if !ok {
		return "", fmt.Errorf("inertia: entry %s not found in manifest", name)
	}

	return base + entry.File, nil
}

// Version is a content hash of the manifest. It changes whenever a build
// produces different assets, so it can serve as the Inertia asset version.
func (m *Manifest) Version() string { return m.version }

// ParseManifest parses a Vite build manifest from JSON bytes.
//
// The manifest maps entry point names to their compiled assets and dependencies.
func ParseManifest(b []byte) (*Manifest, error) {
	var raw rawManifest

	err := json.Unmarshal(b, &raw)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to unmarshal manifest: %w", err)
	}

	sum := sha256.Sum256(b)

	return &Manifest{raw: raw, version: hex.EncodeToString(sum[:8])}, nil
}

// ParseManifestFromFS reads and parses a Vite manifest from a file system.
func ParseManifestFromFS(fsys fs.FS, name string) (*Manifest, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to read manifest file: %w", err)
	}

	return ParseManifest(b)
}
