package inertiatest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
)

type RequestConfig struct {
	Version          string
	PartialComponent string
	Whitelist        []string

	// XHR sets X-Requested-With: XMLHttpRequest.
	XHR bool

	// Inertia sets X-Inertia: true.
	Inertia bool
}

// InertiaRequest is the configuration of a regular Inertia.js visit.
func InertiaRequest(version string) *RequestConfig {
	//nolint:exhaustruct
	return &RequestConfig{XHR: true, Inertia: true, Version: version}
}

// NewRequest creates a new request with an empty body.
func NewRequest(
	method string,
	target string,
	config *RequestConfig,
) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, target, nil)

	//nolint:exhaustruct
	config = cmp.Or(config, &RequestConfig{})

	if config.XHR {
		r.Header.Set(inertiaheader.HeaderXRequestedWith, inertiaheader.XMLHttpRequest)
	}

	if config.Inertia {
		r.Header.Set(inertiaheader.HeaderXInertia, "true")
	}

	if config.Version != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaVersion, config.Version)
	}

	if len(config.Whitelist) > 0 {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialData, strings.Join(config.Whitelist, ","))
	}

	if config.PartialComponent != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialComponent, config.PartialComponent)
	}

	return r, httptest.NewRecorder()
}
