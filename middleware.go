package inertia

import (
	"context"
	"log/slog"
	"net/http"

	"go.inout.gg/foundations/debug"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaredirect"
)

type ctxKey struct{}

//nolint:gochecknoglobals
var kCtxKey = ctxKey{}

const (
	missingHeaderBody   = "Inertia headers not found."
	versionMismatchBody = "Inertia version does not match"
)

// DefaultErrorHandler responds with 500 Internal Server Error.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// MiddlewareConfig configures the behavior of the Inertia.js middleware.
type MiddlewareConfig struct {
	// ErrorHandler is called when the response cannot be produced and
	// nothing has been sent to the client yet.
	//
	// If nil, defaults to DefaultErrorHandler.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Logger receives operational errors.
	//
	// If nil, logs are discarded.
	Logger *slog.Logger

	// Metrics records request classes and response outcomes.
	//
	// Optional.
	Metrics *Metrics
}

func (m *MiddlewareConfig) defaults() {
	if m.ErrorHandler == nil {
		m.ErrorHandler = DefaultErrorHandler
	}

	if m.Logger == nil {
		m.Logger = slog.New(slog.DiscardHandler)
	}

	debug.Assert(m.ErrorHandler != nil, "ErrorHandler must be set")
	debug.Assert(m.Logger != nil, "Logger must be set")
}

// NewMiddleware creates an HTTP middleware that enables Inertia.js protocol handling.
//
// AJAX requests without the X-Inertia header are rejected with 400, and
// Inertia GET requests with a stale asset version are answered with 409 and
// X-Inertia-Location. Any other request is passed to the next handler, whose
// response is turned into a JSON page object for Inertia requests and into
// an HTML document for plain navigations.
//
// The middleware automatically handles HTTP 302 redirects by converting them to 303 for PUT/PATCH/DELETE
// requests as per the Inertia.js protocol.
//
// Once the middleware is set up, Render can be used to create Inertia responses.
func NewMiddleware(renderer *Renderer, opts ...func(*MiddlewareConfig)) func(http.Handler) http.Handler {
	debug.Assert(renderer != nil, "expected renderer to be defined")

	//nolint:exhaustruct
	config := MiddlewareConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	config.defaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := NewRequestContext(r)
			class := Classify(req)

			config.Metrics.observeRequest(class)

			if class == ClassMissingInertiaHeader {
				d("Rejecting %s %s: missing %s header", req.Method, req.Path, inertiaheader.HeaderXInertia)

				config.Metrics.observeResponse(OutcomeBadRequest)
				writePlain(w, http.StatusBadRequest, missingHeaderBody)

				return
			}

			version, err := renderer.Version(ctx)
			if err != nil {
				config.Logger.ErrorContext(ctx, "inertia: failed to resolve asset version", slog.Any("error", err))
				config.Metrics.observeResponse(OutcomeError)
				config.ErrorHandler(w, r, err)

				return
			}

			if class == ClassInertia && Negotiate(version, req.ClientVersion, req.Method) == VerdictStale {
				d("Version mismatch for %s: client %q, server %q", req.Path, req.ClientVersion, version)

				config.Metrics.observeResponse(OutcomeVersionConflict)
				inertiaredirect.Conflict(w, req.URL, versionMismatchBody)

				return
			}

			sender := &responseSender{w: w, started: false}
			t := renderer.NewTransformer(req, version, class == ClassPlainNavigation, sender)
			rw := newResponseWriter(ctx, w, t)

			next.ServeHTTP(rw, r.WithContext(context.WithValue(ctx, kCtxKey, renderer)))

			if err := rw.close(); err != nil {
				config.fail(w, r, sender.started, err)
				return
			}

			config.Metrics.observeResponse(t.Outcome())
		})
	}
}

// fail reports a response that could not be transformed.
func (m *MiddlewareConfig) fail(w http.ResponseWriter, r *http.Request, started bool, err error) {
	ctx := r.Context()

	// The client is gone, there is nobody to answer.
	if ctx.Err() != nil {
		d("Abandoning response for %s: %v", r.URL.Path, err)
		m.Metrics.observeResponse(OutcomeAborted)

		return
	}

	m.Logger.ErrorContext(
		ctx,
		"inertia: failed to transform response",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	m.Metrics.observeResponse(OutcomeError)

	if started {
		panic(http.ErrAbortHandler)
	}

	m.ErrorHandler(w, r, err)
}

// Location redirects to an external URL outside of the Inertia app.
//
// For Inertia requests, it uses a 409 Conflict response with X-Inertia-Location header.
// For regular requests, it performs a standard HTTP redirect.
func Location(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get(inertiaheader.HeaderXInertia) != "" {
		inertiaredirect.Conflict(w, url, "")
		return
	}

	inertiaredirect.Redirect(w, r, url)
}

// Redirect sends a redirect response to the Inertia app page.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	inertiaredirect.Redirect(w, r, url)
}

func writePlain(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypePlain)
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}
