package inertia

import (
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.segfaultmedaddy.com/inertia-adapter/internal/inertiatest"
)

func outerWriter(h http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	maps.Copy(w.Header(), h)

	return w
}

// informationalWriter records the informational responses written to it.
type informationalWriter struct {
	*httptest.ResponseRecorder

	codes []int
	links []string
}

func (w *informationalWriter) WriteHeader(code int) {
	if code >= 100 && code <= 199 {
		w.codes = append(w.codes, code)
		w.links = append(w.links, w.Header().Get("Link"))

		return
	}

	w.ResponseRecorder.WriteHeader(code)
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("implicit status", func(t *testing.T) {
		t.Parallel()

		tr, rec := newTestTransformer(http.MethodGet, nil, false)
		w := newResponseWriter(t.Context(), outerWriter(http.Header{"X-Outer": {"1"}}), tr)

		_, err := w.Write([]byte("hello"))
		require.NoError(t, err)
		require.NoError(t, w.close())

		start := rec.start(t)
		assert.Equal(t, http.StatusOK, start.StatusCode)
		assert.Equal(t, "1", start.Header.Get("X-Outer"))
		assert.Equal(t, "hello", string(rec.body(t)))
	})

	t.Run("empty response", func(t *testing.T) {
		t.Parallel()

		tr, rec := newTestTransformer(http.MethodGet, nil, false)
		w := newResponseWriter(t.Context(), httptest.NewRecorder(), tr)

		require.NoError(t, w.close())
		assert.Equal(t, http.StatusOK, rec.start(t).StatusCode)
		assert.Empty(t, rec.body(t))
	})

	t.Run("headers after WriteHeader are ignored", func(t *testing.T) {
		t.Parallel()

		tr, rec := newTestTransformer(http.MethodGet, nil, false)
		w := newResponseWriter(t.Context(), httptest.NewRecorder(), tr)

		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusTeapot)
		w.Header().Set("X-Late", "1")
		require.NoError(t, w.close())

		start := rec.start(t)
		assert.Equal(t, http.StatusCreated, start.StatusCode)
		assert.Empty(t, start.Header.Get("X-Late"))
	})

	t.Run("flush fails the stream", func(t *testing.T) {
		t.Parallel()

		tr, _ := newTestTransformer(http.MethodGet, inertiatest.InertiaRequest(""), false)
		w := newResponseWriter(t.Context(), outerWriter(pageHeader("Test")), tr)

		_, _ = w.Write([]byte(`{}`))
		w.Flush()

		_, err := w.Write([]byte(`{}`))
		require.ErrorIs(t, err, ErrStreamingUnsupported)
		require.ErrorIs(t, w.close(), ErrStreamingUnsupported)
	})

	t.Run("early hints", func(t *testing.T) {
		t.Parallel()

		tr, rec := newTestTransformer(http.MethodGet, nil, false)
		outer := &informationalWriter{ResponseRecorder: outerWriter(http.Header{"X-Outer": {"1"}})}
		w := newResponseWriter(t.Context(), outer, tr)

		w.Header().Set("Link", "</app.js>; rel=preload")
		w.WriteHeader(http.StatusEarlyHints)
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, w.close())

		assert.Equal(t, []int{http.StatusEarlyHints}, outer.codes)
		assert.Equal(t, []string{"</app.js>; rel=preload"}, outer.links)
		assert.Equal(t, "1", outer.Header().Get("X-Outer"))
		assert.Empty(t, outer.Header().Get("Link"))
		assert.Equal(t, http.StatusCreated, rec.start(t).StatusCode)
	})

	t.Run("unwrap", func(t *testing.T) {
		t.Parallel()

		tr, _ := newTestTransformer(http.MethodGet, nil, false)
		outer := httptest.NewRecorder()
		w := newResponseWriter(t.Context(), outer, tr)

		assert.Same(t, outer, w.Unwrap())
	})
}

func TestResponseSender(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rec.Header().Set("X-Stale", "1")

	s := &responseSender{w: rec, started: false}

	require.NoError(t, s.Send(t.Context(), StartEvent{StatusCode: http.StatusCreated, Header: http.Header{"X-New": {"1"}}}))
	require.NoError(t, s.Send(t.Context(), BodyEvent{Body: []byte("a"), More: true}))
	require.NoError(t, s.Send(t.Context(), BodyEvent{Body: []byte("b")}))

	assert.True(t, s.started)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-New"))
	assert.Empty(t, rec.Header().Get("X-Stale"))
	assert.Equal(t, "ab", rec.Body.String())
	assert.True(t, rec.Flushed)
}

type failingWriter struct{ *httptest.ResponseRecorder }

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestResponseSender_WriteFailure(t *testing.T) {
	t.Parallel()

	s := &responseSender{w: failingWriter{httptest.NewRecorder()}, started: false}

	require.NoError(t, s.Send(t.Context(), StartEvent{StatusCode: http.StatusOK, Header: http.Header{}}))
	require.ErrorContains(t, s.Send(t.Context(), BodyEvent{Body: []byte("a")}), "broken pipe")
}
