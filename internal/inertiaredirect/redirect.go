// Package inertiaredirect holds the redirect rules of the Inertia.js protocol.
//
// See https://inertiajs.com/redirects.
package inertiaredirect

import (
	"net/http"
	"slices"

	"go.inout.gg/foundations/debug"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
)

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia/redirect")

// Methods whose 302 responses must become 303, otherwise the browser would
// repeat the original method against the redirect target.
//
//nolint:gochecknoglobals
var seeOtherMethods = []string{http.MethodPatch, http.MethodPut, http.MethodDelete}

// SeeOther reports whether a response with the given status to a request
// with the given method has to be sent as 303 See Other.
func SeeOther(method string, status int) bool {
	return status == http.StatusFound && slices.Contains(seeOtherMethods, method)
}

// Redirect redirects the client to url: 302 for GET requests, 303 for the rest.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	status := http.StatusSeeOther
	if r.Method == http.MethodGet {
		status = http.StatusFound
	}

	d("Redirecting %s %s to %s (%d)", r.Method, r.URL.Path, url, status)

	http.Redirect(w, r, url, status)
}

// Conflict responds with 409 Conflict and points the client at url via
// X-Inertia-Location, making it perform a full page visit.
func Conflict(w http.ResponseWriter, url string, body string) {
	h := w.Header()

	h.Del(inertiaheader.HeaderXInertia)
	h.Set(inertiaheader.HeaderXInertiaLocation, url)
	h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypePlain)

	d("Sending 409 with location %s", url)

	w.WriteHeader(http.StatusConflict)

	if body != "" {
		_, _ = w.Write([]byte(body))
	}
}
