package inertia

import (
	"net/http"
	"net/url"
	"strings"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
)

// Class is the protocol class of an incoming request.
type Class int

const (
	// ClassPlainNavigation is a full browser visit expecting an HTML document.
	ClassPlainNavigation Class = iota

	// ClassMissingInertiaHeader is an AJAX request without the X-Inertia marker.
	ClassMissingInertiaHeader

	// ClassInertia is an Inertia.js XHR visit expecting a JSON page object.
	ClassInertia
)

func (c Class) String() string {
	switch c {
	case ClassPlainNavigation:
		return "plain_navigation"
	case ClassMissingInertiaHeader:
		return "missing_inertia_header"
	case ClassInertia:
		return "inertia"
	default:
		return "unknown"
	}
}

// RequestContext is a read-only snapshot of the request fields
// the protocol depends on.
type RequestContext struct {
	// Header is a copy of the request headers.
	Header http.Header

	Method string

	// Path is the request path without the query string.
	Path string

	// URL is the full request URL, including scheme, host and query string.
	URL string

	// ClientVersion is the asset version declared by the client, if any.
	ClientVersion string

	// IsAjax reports whether X-Requested-With is XMLHttpRequest.
	IsAjax bool

	// HasInertiaHeader reports whether X-Inertia is present and non-empty.
	HasInertiaHeader bool
}

// NewRequestContext takes a snapshot of r.
func NewRequestContext(r *http.Request) *RequestContext {
	h := r.Header

	return &RequestContext{
		Header:           h.Clone(),
		Method:           r.Method,
		Path:             r.URL.Path,
		URL:              fullURL(r),
		ClientVersion:    h.Get(inertiaheader.HeaderXInertiaVersion),
		IsAjax:           h.Get(inertiaheader.HeaderXRequestedWith) == inertiaheader.XMLHttpRequest,
		HasInertiaHeader: h.Get(inertiaheader.HeaderXInertia) != "",
	}
}

// Classify determines the protocol class of the request.
func Classify(req *RequestContext) Class {
	if !req.IsAjax {
		return ClassPlainNavigation
	}

	if !req.HasInertiaHeader {
		return ClassMissingInertiaHeader
	}

	return ClassInertia
}

// PartialReload is a client request for a subset of the page props.
type PartialReload struct {
	// Component is the component the partial reload targets.
	Component string

	// Keys are the requested prop keys.
	Keys []string
}

// PartialReload returns the partial reload requested by the client, if any.
func (req *RequestContext) PartialReload() (PartialReload, bool) {
	return partialReloadFromHeader(req.Header)
}

// Matches reports whether the partial reload applies to component.
// A reload without any requested key never applies.
func (p PartialReload) Matches(component string) bool {
	return p.Component == component && len(p.Keys) > 0
}

func (req *RequestContext) hasPartialHeaders() bool {
	return req.Header.Get(inertiaheader.HeaderXInertiaPartialData) != "" ||
		req.Header.Get(inertiaheader.HeaderXInertiaPartialComponent) != ""
}

func partialReloadFromHeader(h http.Header) (PartialReload, bool) {
	component := h.Get(inertiaheader.HeaderXInertiaPartialComponent)
	if component == "" {
		return PartialReload{}, false
	}

	return PartialReload{
		Component: component,
		Keys:      extractHeaderValueList(h.Get(inertiaheader.HeaderXInertiaPartialData)),
	}, true
}

// fullURL reconstructs the absolute URL of r.
func fullURL(r *http.Request) string {
	if r.Host == "" {
		return r.URL.RequestURI()
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	//nolint:exhaustruct
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}

	return u.String()
}

// extractHeaderValueList extracts a list of values from a comma-separated header value.
// Empty entries are dropped.
func extractHeaderValueList(h string) []string {
	if h == "" {
		return nil
	}

	fields := strings.Split(h, ",")
	values := fields[:0]

	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			values = append(values, f)
		}
	}

	if len(values) == 0 {
		return nil
	}

	return values
}
