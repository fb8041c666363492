package inertiaheader

const (
	HeaderXInertia                 = "X-Inertia"                   // client/server
	HeaderXInertiaVersion          = "X-Inertia-Version"           // client
	HeaderXInertiaLocation         = "X-Inertia-Location"          // server, 409 redirect URL
	HeaderXInertiaPartialData      = "X-Inertia-Partial-Data"      // client, whitelist
	HeaderXInertiaPartialComponent = "X-Inertia-Partial-Component" // client
	HeaderXRequestedWith           = "X-Requested-With"            // client, AJAX marker

	// Set by inertia.Render and consumed by the response transformer.
	// Never reach the client.
	HeaderXInertiaInternalComponent = "X-Inertia-Internal-Component"
	HeaderXInertiaInternalAlways    = "X-Inertia-Internal-Always"
	HeaderXInertiaInternalHistory   = "X-Inertia-Internal-History" // "encrypt", "clear"
	HeaderXInertiaInternalContext   = "X-Inertia-Internal-Context" // JSON template data

	HeaderVary          = "Vary"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderLocation      = "Location"
)

const (
	ContentTypeHTML  = "text/html"
	ContentTypeJSON  = "application/json"
	ContentTypePlain = "text/plain; charset=utf-8"
)

// XMLHttpRequest is the value of X-Requested-With sent by AJAX clients.
const XMLHttpRequest = "XMLHttpRequest"
