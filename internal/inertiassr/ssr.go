// Package inertiassr talks to an Inertia.js server-side rendering service,
// such as the one started by `vite build --ssr` and `node bootstrap/ssr.js`.
package inertiassr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiabase"
	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
)

var _ SSRClient = (*httpClient)(nil)

// maxErrorBody caps how much of a failed SSR response ends up in the error.
const maxErrorBody = 512

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia/ssr")

// ErrUnexpectedStatus is returned when the SSR service does not respond with 200 OK.
var ErrUnexpectedStatus = errors.New("inertia: unexpected SSR response status")

// SSRTemplateData is the pre-rendered markup returned by the SSR service.
type SSRTemplateData struct {
	Head []string `json:"head"`
	Body string   `json:"body"`
}

// SSRClient renders a page on the server.
//
//go:generate mockgen -destination ssr_mock.go -package inertiassr . SSRClient
type SSRClient interface {
	// Render makes a request to the server-side rendering service with the given page data.
	Render(context.Context, *inertiabase.Page) (*SSRTemplateData, error)
}

// httpClient posts the page object to the SSR service's render endpoint.
type httpClient struct {
	client *http.Client
	url    string
}

// NewHTTPSSRClient returns an SSRClient posting pages to url, e.g.
// "http://127.0.0.1:13714/render".
func NewHTTPSSRClient(url string, client *http.Client) SSRClient {
	debug.Assert(url != "", "url must be provided")
	debug.Assert(client != nil, "client must be provided")

	return &httpClient{client: client, url: url}
}

func (c *httpClient) Render(ctx context.Context, p *inertiabase.Page) (*SSRTemplateData, error) {
	debug.Assert(p != nil, "page must be set")

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to marshal page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to create SSR request: %w", err)
	}

	req.Header.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)
	req.Header.Set(inertiaheader.HeaderAccept, inertiaheader.ContentTypeJSON)

	d("Rendering component %s via %s", p.Component, c.url)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inertia: SSR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var data SSRTemplateData
	if err := json.UnmarshalRead(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("inertia: failed to decode SSR response: %w", err)
	}

	return &data, nil
}
