// Package inertiaprops provides map-based prop collections.
package inertiaprops

import (
	"maps"
	"slices"

	"go.segfaultmedaddy.com/inertia-adapter"
)

var (
	_ inertia.Proper = (*Map)(nil)
	_ inertia.Proper = (*AlwaysMap)(nil)
)

// Map is a convenient map-based Proper implementation for simple key-value props.
// All values are treated as regular props (not lazy, optional, or always).
// Props are emitted in key order, so the page object is stable across requests.
//
// For advanced prop options (lazy loading, always-include), use inertia.NewProp
// and friends instead.
type Map map[string]any

func (m Map) Props() []inertia.Prop {
	props := make([]inertia.Prop, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		props = append(props, inertia.NewProp(k, m[k]))
	}

	return props
}

func (m Map) Len() int { return len(m) }

// AlwaysMap is like Map, but its props survive partial reloads.
type AlwaysMap map[string]any

func (m AlwaysMap) Props() []inertia.Prop {
	props := make([]inertia.Prop, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		props = append(props, inertia.NewAlways(k, m[k]))
	}

	return props
}

func (m AlwaysMap) Len() int { return len(m) }
