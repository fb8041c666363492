package inertia

import (
	"bytes"
	"context"
	"maps"
	"net/http"
)

var (
	_ http.ResponseWriter = (*responseWriter)(nil)
	_ http.Flusher        = (*responseWriter)(nil)

	_ interface{ Unwrap() http.ResponseWriter } = (*responseWriter)(nil)

	_ Sender = (*responseSender)(nil)
)

// responseWriter captures the downstream response and feeds it to the
// transformer as response events.
//
// The body is buffered until the handler returns; a Flush in between is
// reported as a non-final body. Informational 1xx responses, such as
// 103 Early Hints, go straight to the client.
type responseWriter struct {
	ctx         context.Context //nolint:containedctx
	t           *Transformer
	w           http.ResponseWriter
	header      http.Header
	buf         bytes.Buffer
	err         error
	wroteHeader bool
}

func newResponseWriter(ctx context.Context, w http.ResponseWriter, t *Transformer) *responseWriter {
	//nolint:exhaustruct
	return &responseWriter{
		ctx:    ctx,
		t:      t,
		w:      w,
		header: w.Header().Clone(),
	}
}

func (w *responseWriter) Header() http.Header { return w.header }

// Unwrap lets http.ResponseController reach the connection, e.g. to
// set write deadlines.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.w }

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader || w.err != nil {
		return
	}

	if isInformational(statusCode) {
		w.writeInformational(statusCode)
		return
	}

	w.wroteHeader = true
	w.handle(StartEvent{Header: w.header.Clone(), StatusCode: statusCode})
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	if w.err != nil {
		return 0, w.err
	}

	return w.buf.Write(b) //nolint:wrapcheck
}

func (w *responseWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	if w.err != nil {
		return
	}

	w.handle(BodyEvent{Body: w.take(), More: true})
}

// close emits the final body. It returns the first error of the stream.
func (w *responseWriter) close() error {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	if w.err != nil {
		return w.err
	}

	w.handle(BodyEvent{Body: w.take(), More: false})

	return w.err
}

// writeInformational sends a 1xx response with the current headers and
// leaves the outer header as it was.
func (w *responseWriter) writeInformational(statusCode int) {
	h := w.w.Header()
	saved := h.Clone()

	clear(h)
	maps.Copy(h, w.header.Clone())
	w.w.WriteHeader(statusCode)

	clear(h)
	maps.Copy(h, saved)
}

// isInformational reports whether statusCode is a 1xx status the handler
// may follow with a final one. 101 Switching Protocols is final.
func isInformational(statusCode int) bool {
	return statusCode >= 100 && statusCode <= 199 && statusCode != http.StatusSwitchingProtocols
}

func (w *responseWriter) handle(ev Event) {
	if err := w.t.Handle(w.ctx, ev); err != nil {
		w.err = err
	}
}

func (w *responseWriter) take() []byte {
	b := bytes.Clone(w.buf.Bytes())
	w.buf.Reset()

	return b
}

// responseSender writes response events to the client connection.
type responseSender struct {
	w       http.ResponseWriter
	started bool
}

func (s *responseSender) Send(_ context.Context, ev Event) error {
	switch ev := ev.(type) {
	case StartEvent:
		h := s.w.Header()
		clear(h)
		maps.Copy(h, ev.Header)

		s.w.WriteHeader(ev.StatusCode)
		s.started = true
	case BodyEvent:
		if len(ev.Body) > 0 {
			if _, err := s.w.Write(ev.Body); err != nil {
				return err //nolint:wrapcheck
			}
		}

		if ev.More {
			if err := http.NewResponseController(s.w).Flush(); err != nil {
				d("Failed to flush response: %v", err)
			}
		}
	}

	return nil
}
