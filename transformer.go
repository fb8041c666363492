package inertia

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaheader"
	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiaredirect"
)

type transformerState uint8

const (
	stateAwaitingStart transformerState = iota
	stateAwaitingBody
	stateForwarding // start already sent, body events pass through
	stateCompleted
	stateAborted
)

// Outcomes reported by Transformer.Outcome.
const (
	OutcomeJSON        = "json"
	OutcomeHTML        = "html"
	OutcomeSeeOther    = "see_other"
	OutcomeLocation    = "location"
	OutcomeNonPage     = "non_page"
)

// Transformer rewrites the response events of a single request according to
// the Inertia.js protocol.
//
// The start event is held back until the final body is known, so that
// Content-Length can be set on the rendered page. Every response apart from
// 303 redirects and external redirects is marked as an Inertia response and
// typed as HTML or JSON; bodies that are not pages are sent as they are in
// JSON mode and embedded into the HTML document otherwise. A Transformer is
// owned by one request and must not be shared.
type Transformer struct {
	renderer *Renderer
	req      *RequestContext
	sender   Sender
	deferred StartEvent
	version  string
	outcome  string
	state    transformerState
	asHTML   bool
}

// NewTransformer creates a Transformer for req sending its output to sender.
//
// If asHTML is true, pages are rendered into the HTML document, otherwise
// they are sent as JSON.
func (r *Renderer) NewTransformer(req *RequestContext, version string, asHTML bool, sender Sender) *Transformer {
	debug.Assert(req != nil, "expected req to be defined")
	debug.Assert(sender != nil, "expected sender to be defined")

	//nolint:exhaustruct
	return &Transformer{
		renderer: r,
		req:      req,
		sender:   sender,
		version:  version,
		asHTML:   asHTML,
	}
}

// Outcome reports how the response was transformed.
// It is empty until the response is completed.
func (t *Transformer) Outcome() string {
	if t.state != stateCompleted {
		return ""
	}

	return t.outcome
}

// Completed reports whether the final body event has been sent.
func (t *Transformer) Completed() bool { return t.state == stateCompleted }

// Handle consumes the next response event.
//
// Errors are terminal: once Handle fails, the response must be abandoned.
func (t *Transformer) Handle(ctx context.Context, ev Event) error {
	switch t.state {
	case stateCompleted:
		return fmt.Errorf("%w: %T after the response was completed", ErrProtocolViolation, ev)
	case stateAborted:
		return ErrAborted
	}

	switch ev := ev.(type) {
	case StartEvent:
		return t.handleStart(ctx, ev)
	case BodyEvent:
		return t.handleBody(ctx, ev)
	default:
		return fmt.Errorf("%w: unknown event %T", ErrProtocolViolation, ev)
	}
}

func (t *Transformer) handleStart(ctx context.Context, ev StartEvent) error {
	if t.state != stateAwaitingStart {
		t.abort()
		return fmt.Errorf("%w: duplicate response start", ErrProtocolViolation)
	}

	if ev.StatusCode == 0 {
		t.abort()
		return ErrMissingStatus
	}

	h := ev.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}

	if inertiaredirect.SeeOther(t.req.Method, ev.StatusCode) {
		d("Rewriting 302 to 303 for %s %s", t.req.Method, t.req.Path)

		stripInternalHeaders(h)
		t.state = stateForwarding
		t.outcome = OutcomeSeeOther

		return t.send(ctx, StartEvent{StatusCode: http.StatusSeeOther, Header: h})
	}

	// External redirects must reach the client untouched, otherwise it would
	// take the 409 for a regular Inertia response.
	if ev.StatusCode == http.StatusConflict && h.Get(inertiaheader.HeaderXInertiaLocation) != "" {
		stripInternalHeaders(h)
		t.state = stateForwarding
		t.outcome = OutcomeLocation

		return t.send(ctx, StartEvent{StatusCode: ev.StatusCode, Header: h})
	}

	// Recomputed once the body is final.
	h.Del(inertiaheader.HeaderContentLength)

	t.deferred = StartEvent{StatusCode: ev.StatusCode, Header: h}
	t.state = stateAwaitingBody

	return nil
}

func (t *Transformer) handleBody(ctx context.Context, ev BodyEvent) error {
	switch t.state {
	case stateAwaitingStart:
		t.abort()
		return fmt.Errorf("%w: response body before start", ErrProtocolViolation)
	case stateForwarding:
		if err := t.send(ctx, ev); err != nil {
			return err
		}

		if !ev.More {
			t.state = stateCompleted
		}

		return nil
	}

	if ev.More {
		t.abort()
		return ErrStreamingUnsupported
	}

	body, err := t.render(ctx, ev.Body)
	if err != nil {
		t.abort()
		return err
	}

	start := t.deferred
	start.Header.Set(inertiaheader.HeaderContentLength, strconv.Itoa(len(body)))
	t.deferred = StartEvent{} //nolint:exhaustruct

	if err := t.send(ctx, start); err != nil {
		return err
	}

	if err := t.send(ctx, BodyEvent{Body: body, More: false}); err != nil {
		return err
	}

	t.state = stateCompleted

	return nil
}

// render turns the downstream body into the outgoing body.
func (t *Transformer) render(ctx context.Context, body []byte) ([]byte, error) {
	h := t.deferred.Header
	component := h.Get(inertiaheader.HeaderXInertiaInternalComponent)
	always := extractHeaderValueList(h.Get(inertiaheader.HeaderXInertiaInternalAlways))
	history := extractHeaderValueList(h.Get(inertiaheader.HeaderXInertiaInternalHistory))
	rawContext := h.Get(inertiaheader.HeaderXInertiaInternalContext)

	stripInternalHeaders(h)

	var tdata any
	if t.asHTML && rawContext != "" {
		if err := json.Unmarshal([]byte(rawContext), &tdata); err != nil {
			return nil, fmt.Errorf("inertia: invalid template data: %w", err)
		}
	}

	var (
		out []byte
		err error
	)

	if component == "" {
		out, err = t.renderNonPage(body, tdata)
	} else {
		out, err = t.renderPage(ctx, body, component, always, history, tdata)
	}

	if err != nil {
		return nil, err
	}

	t.decorate(h)

	return out, nil
}

func (t *Transformer) renderPage(
	ctx context.Context,
	body []byte,
	component string,
	always, history []string,
	tdata any,
) ([]byte, error) {
	page, err := t.renderer.NewPage(ctx, t.req, PageSource{
		Component:      component,
		Version:        t.version,
		Props:          body,
		Always:         always,
		Partial:        !t.asHTML,
		EncryptHistory: slices.Contains(history, historyEncrypt),
		ClearHistory:   slices.Contains(history, historyClear),
	})
	if err != nil {
		return nil, err
	}

	out, err := t.renderer.Render(ctx, page, t.asHTML, tdata)
	if err != nil {
		return nil, err
	}

	t.outcome = OutcomeJSON
	if t.asHTML {
		t.outcome = OutcomeHTML
	}

	return out, nil
}

// renderNonPage handles a body not written by Render, e.g. an error page
// of the router.
func (t *Transformer) renderNonPage(body []byte, tdata any) ([]byte, error) {
	d("No page component for %s (%d)", t.req.Path, t.deferred.StatusCode)

	t.outcome = OutcomeNonPage

	if !t.asHTML || !bodyAllowedForStatus(t.deferred.StatusCode) {
		return body, nil
	}

	return t.renderer.RenderDocument(body, tdata)
}

// decorate sets the headers every transformed response carries.
func (t *Transformer) decorate(h http.Header) {
	h.Set(inertiaheader.HeaderXInertia, "true")

	if t.asHTML {
		h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeHTML)
		return
	}

	h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)

	if !t.req.hasPartialHeaders() {
		addVary(h, inertiaheader.HeaderAccept)
	}
}

// bodyAllowedForStatus reports whether a response with the given status
// may carry a body.
func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}

	return true
}

func (t *Transformer) send(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		t.abort()
		return fmt.Errorf("inertia: response canceled: %w", err)
	}

	if err := t.sender.Send(ctx, ev); err != nil {
		t.abort()
		return fmt.Errorf("inertia: failed to send response: %w", err)
	}

	return nil
}

// abort discards the buffered state; nothing is sent afterwards.
func (t *Transformer) abort() {
	t.deferred = StartEvent{} //nolint:exhaustruct
	t.state = stateAborted
}

func stripInternalHeaders(h http.Header) {
	h.Del(inertiaheader.HeaderXInertiaInternalComponent)
	h.Del(inertiaheader.HeaderXInertiaInternalAlways)
	h.Del(inertiaheader.HeaderXInertiaInternalHistory)
	h.Del(inertiaheader.HeaderXInertiaInternalContext)
}

// addVary adds value to the Vary header unless it is already listed.
func addVary(h http.Header, value string) {
	for _, v := range h.Values(inertiaheader.HeaderVary) {
		for _, field := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(field), value) {
				return
			}
		}
	}

	h.Add(inertiaheader.HeaderVary, value)
}
