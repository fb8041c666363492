package inertia

import (
	"context"
	"fmt"
	"net/http"
)

var (
	_ VersionProvider = StaticVersion("")
	_ VersionProvider = (VersionFunc)(nil)
)

// VersionProvider resolves the current asset version, e.g. a build hash.
//
// It is called once per request and must be safe for concurrent use.
//
//go:generate mockgen -destination mock_test.go -package inertia . VersionProvider,PropsProvider
type VersionProvider interface {
	Version(context.Context) (string, error)
}

// StaticVersion is a constant asset version.
type StaticVersion string

func (v StaticVersion) Version(context.Context) (string, error) { return string(v), nil }

// VersionFunc adapts a function to VersionProvider.
// The function is invoked fresh for every request.
type VersionFunc func(context.Context) (string, error)

func (fn VersionFunc) Version(ctx context.Context) (string, error) { return fn(ctx) }

// Verdict is the outcome of the version negotiation.
type Verdict int

const (
	// VerdictContinue lets the request through.
	VerdictContinue Verdict = iota

	// VerdictStale tells the client to perform a full page visit.
	VerdictStale
)

// Negotiate compares the server and client asset versions.
//
// Only GET requests can be stale, as a full page visit replaying a non-idempotent
// request would be unsafe. An absent client version is never stale.
func Negotiate(serverVersion, clientVersion, method string) Verdict {
	if method != http.MethodGet || clientVersion == "" {
		return VerdictContinue
	}

	if clientVersion != serverVersion {
		return VerdictStale
	}

	return VerdictContinue
}

func resolveVersion(ctx context.Context, p VersionProvider) (string, error) {
	v, err := p.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVersionProvider, err)
	}

	return v, nil
}
