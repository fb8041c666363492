// Package inertia implements a server-side adapter for the Inertia.js protocol
// on top of the standard "net/http" and "html/template" packages.
//
// The Middleware classifies every request as a full page visit or an Inertia
// XHR visit, negotiates the asset version, and rewrites the downstream
// handler's response: page props written with Render are wrapped into a page
// object and sent either as JSON or embedded into the configured HTML document.
//
// For detailed protocol documentation, visit https://inertiajs.com/the-protocol
package inertia

import "go.inout.gg/foundations/debug"

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia")
