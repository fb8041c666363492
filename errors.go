package inertia

import "errors"

var (
	// ErrStreamingUnsupported is returned when the downstream handler flushes
	// a partial body before the response is complete.
	ErrStreamingUnsupported = errors.New("inertia: streaming response bodies are not supported")

	// ErrProtocolViolation is returned when response events arrive out of order,
	// e.g. a body before the start or any event after completion.
	ErrProtocolViolation = errors.New("inertia: response event out of order")

	// ErrMissingStatus is returned for a response start without a status code.
	ErrMissingStatus = errors.New("inertia: response start without status code")

	// ErrAborted is returned for events received after the response was abandoned.
	ErrAborted = errors.New("inertia: response aborted")

	// ErrVersionProvider wraps failures of the configured VersionProvider.
	ErrVersionProvider = errors.New("inertia: failed to resolve asset version")

	// ErrInvalidProps is returned when a page body is not a JSON object.
	ErrInvalidProps = errors.New("inertia: invalid page props")

	// ErrMiddlewareNotFound is returned by Render outside of the middleware.
	ErrMiddlewareNotFound = errors.New(
		"inertia: renderer not found in request context - did you forget to use the middleware?",
	)
)
