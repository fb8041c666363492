package inertia

import (
	"net/http"
	"time"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiassr"
)

// DefaultSSRURL is the render endpoint of the Inertia.js SSR server
// started with its default settings.
const DefaultSSRURL = "http://127.0.0.1:13714/render"

// defaultSSRTimeout bounds a single SSR round trip when no client is given.
const defaultSSRTimeout = 5 * time.Second

// ErrSSRUnexpectedStatus is returned when the SSR service responds with
// anything but 200 OK.
var ErrSSRUnexpectedStatus = inertiassr.ErrUnexpectedStatus

type (
	// SSRClient pre-renders the page on the server. Its head and body replace
	// the bare page container in the HTML document.
	SSRClient = inertiassr.SSRClient

	// SSRTemplateData contains the HTML head and body sections returned by SSR rendering.
	SSRTemplateData = inertiassr.SSRTemplateData
)

// NewHTTPSSRClient returns an SSRClient posting the page object as JSON to url.
// An empty url means DefaultSSRURL. If client is nil, a client with a
// short timeout is used.
func NewHTTPSSRClient(url string, client *http.Client) SSRClient {
	if url == "" {
		url = DefaultSSRURL
	}

	if client == nil {
		client = &http.Client{Timeout: defaultSSRTimeout} //nolint:exhaustruct
	}

	return inertiassr.NewHTTPSSRClient(url, client)
}
