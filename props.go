package inertia

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"slices"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
)

var (
	_ Proper = (Props)(nil)
	_ Proper = (*Prop)(nil)
)

// DefaultConcurrency is the default concurrency level for props resolution
// marked as concurrently resolvable.
var DefaultConcurrency = runtime.GOMAXPROCS(0) //nolint:gochecknoglobals

// Prop represents a single property passed to an Inertia page component.
//
// Create props using constructor functions:
//   - NewProp: Standard prop, included on initial render
//   - NewAlways: Always included, ignores partial reload filters
//   - NewOptional: Lazy-loaded, only resolved when explicitly requested
//   - NewConcurrent: Lazy-evaluated on every render, resolved in parallel
type Prop struct {
	val        any
	valFn      Lazy
	key        string
	lazy       bool // optional
	ignorable  bool // false if always prop
	concurrent bool
}

type (
	// Lazy represents a prop value that is resolved on-demand rather than eagerly.
	Lazy interface {
		// Value resolves and returns the prop's value.
		// The returned value must be JSON-serializable.
		Value(context.Context) (any, error)
	}

	// LazyFunc is a function adapter that implements the Lazy interface.
	// The returned value must be JSON-serializable.
	LazyFunc func(context.Context) (any, error)
)

// Value calls `fn()`.
func (fn LazyFunc) Value(ctx context.Context) (any, error) { return fn(ctx) }

// NewProp creates a standard prop included on initial page load and partial reloads.
func NewProp(key string, val any) Prop {
	//nolint:exhaustruct
	return Prop{
		ignorable: true, // important
		key:       key,
		val:       val,
	}
}

// NewAlways creates a prop that is always included in responses.
// Unlike regular props, it survives partial reload filtering.
// Use for critical data that must always be present, such as authentication state.
func NewAlways(key string, value any) Prop {
	//nolint:exhaustruct
	return Prop{
		ignorable: false, // important
		key:       key,
		val:       value,
	}
}

// NewOptional creates a lazily-evaluated prop included only during partial reloads when explicitly requested.
// The value function is only called when the client specifically requests this prop.
func NewOptional(key string, fn Lazy) Prop {
	//nolint:exhaustruct
	return Prop{
		ignorable: true, // important
		lazy:      true, // important
		key:       key,
		valFn:     fn,
	}
}

// NewConcurrent creates a prop resolved on every render, in parallel with the
// other concurrent props of the page, up to the renderer's concurrency limit.
func NewConcurrent(key string, fn Lazy) Prop {
	//nolint:exhaustruct
	return Prop{
		ignorable:  true,
		concurrent: true,
		key:        key,
		valFn:      fn,
	}
}

func (p Prop) Props() []Prop { return []Prop{p} }
func (p Prop) Len() int      { return 1 }

// value returns the prop value.
func (p Prop) value(ctx context.Context) (any, error) {
	if p.valFn != nil {
		v, err := p.valFn.Value(ctx)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return v, nil
	}

	return p.val, nil
}

// Proper represents a collection of props that can be rendered.
// Implemented by both individual Prop and Props slice types.
type Proper interface {
	// Props returns the underlying prop slice.
	Props() []Prop

	// Len returns the number of props in the collection.
	Len() int
}

// Props is a collection of props.
type Props []Prop

func (p Props) Len() int      { return len(p) }
func (p Props) Props() []Prop { return p }

// Render responds with the page component and its props.
//
// The response body carries the resolved props only; the middleware turns it
// into a JSON page object or an HTML document depending on the request.
//
// This function requires the Inertia middleware to be installed in the request chain.
func Render(w http.ResponseWriter, r *http.Request, component string, props Proper, opts ...Option) error {
	return RenderStatus(w, r, http.StatusOK, component, props, opts...)
}

// MustRender is like Render, but panics if an error occurs.
func MustRender(w http.ResponseWriter, r *http.Request, component string, props Proper, opts ...Option) {
	must.Must1(Render(w, r, component, props, opts...))
}

// RenderStatus is like Render, but responds with the given status code,
// e.g. to render an error page.
func RenderStatus(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	component string,
	props Proper,
	opts ...Option,
) error {
	renderer, ok := r.Context().Value(kCtxKey).(*Renderer)
	if !ok {
		return ErrMiddlewareNotFound
	}

	return renderer.writeProps(w, r, status, component, props, newRenderOptions(opts))
}

// MustRenderStatus is like RenderStatus, but panics if an error occurs.
func MustRenderStatus(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	component string,
	props Proper,
	opts ...Option,
) {
	must.Must1(RenderStatus(w, r, status, component, props, opts...))
}

func (r *Renderer) writeProps(
	w http.ResponseWriter,
	req *http.Request,
	status int,
	component string,
	props Proper,
	opts renderOptions,
) error {
	debug.Assert(component != "", "component must be non-empty")

	var raw []Prop
	if props != nil {
		raw = props.Props()
	}

	partial, _ := partialReloadFromHeader(req.Header)
	requested := func(key string) bool {
		return partial.Matches(component) && slices.Contains(partial.Keys, key)
	}

	resolved, always, err := r.resolveProps(req.Context(), raw, requested, opts.concurrency)
	if err != nil {
		return err
	}

	h := w.Header()
	h.Set(inertiaheader.HeaderXInertiaInternalComponent, component)

	if len(always) > 0 {
		h.Set(inertiaheader.HeaderXInertiaInternalAlways, strings.Join(always, ","))
	}

	if history := opts.history(); len(history) > 0 {
		h.Set(inertiaheader.HeaderXInertiaInternalHistory, strings.Join(history, ","))
	}

	if opts.templateData != nil {
		b, err := json.Marshal(opts.templateData, r.jsonMarshalOptions...)
		if err != nil {
			return fmt.Errorf("inertia: failed to encode template data: %w", err)
		}

		h.Set(inertiaheader.HeaderXInertiaInternalContext, string(b))
	}

	h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, resolved, r.jsonMarshalOptions...); err != nil {
		return fmt.Errorf("inertia: failed to encode props: %w", err)
	}

	return nil
}

// resolveProps evaluates the props of a page in declaration order and
// reports the keys of always props.
func (r *Renderer) resolveProps(
	ctx context.Context,
	props []Prop,
	requested func(key string) bool,
	concurrency int,
) (PageProps, []string, error) {
	out := make(PageProps, 0, len(props))
	pending := make([]Prop, 0)

	var always []string

	for _, prop := range props {
		// Skip lazy (optional) props unless the client asked for them.
		if prop.lazy && !requested(prop.key) {
			continue
		}

		if !prop.ignorable {
			always = append(always, prop.key)
		}

		if prop.concurrent {
			// Reserve the position; filled in once resolved.
			out.Set(prop.key, nil)
			pending = append(pending, prop)

			continue
		}

		val, err := r.encodeProp(ctx, prop)
		if err != nil {
			return nil, nil, err
		}

		out.Set(prop.key, val)
	}

	if len(pending) > 0 {
		if concurrency <= 0 {
			concurrency = r.concurrency
		}

		pool := pond.NewResultPool[jsontext.Value](concurrency)
		defer pool.StopAndWait()

		group := pool.NewGroupContext(ctx)

		for _, prop := range pending {
			group.SubmitErr(func() (jsontext.Value, error) {
				return r.encodeProp(ctx, prop)
			})
		}

		result, err := group.Wait()
		if err != nil {
			return nil, nil, fmt.Errorf("inertia: failed to resolve concurrent props: %w", err)
		}

		for i, prop := range pending {
			out.Set(prop.key, result[i])
		}
	}

	return out, always, nil
}

func (r *Renderer) encodeProp(ctx context.Context, prop Prop) (jsontext.Value, error) {
	val, err := prop.value(ctx)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to resolve prop %s: %w", prop.key, err)
	}

	b, err := json.Marshal(val, r.jsonMarshalOptions...)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to encode prop %s: %w", prop.key, err)
	}

	return jsontext.Value(b), nil
}
