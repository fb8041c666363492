package inertia

// Option configures a single Render call.
type Option func(*renderOptions)

type renderOptions struct {
	templateData   any
	concurrency    int
	encryptHistory bool
	clearHistory   bool
}

func newRenderOptions(opts []Option) renderOptions {
	var o renderOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// History values carried by the internal history header.
const (
	historyEncrypt = "encrypt"
	historyClear   = "clear"
)

// history lists the history flags of the page, in a fixed order.
func (o renderOptions) history() []string {
	var flags []string
	if o.encryptHistory {
		flags = append(flags, historyEncrypt)
	}

	if o.clearHistory {
		flags = append(flags, historyClear)
	}

	return flags
}

// WithEncryptHistory instructs the client to encrypt the history state of the page.
func WithEncryptHistory() Option {
	return func(o *renderOptions) { o.encryptHistory = true }
}

// WithClearHistory instructs the client to clear its history stack when rendering the page.
func WithClearHistory() Option {
	return func(o *renderOptions) { o.clearHistory = true }
}

// WithTemplateData makes data available to the HTML template as TemplateData.T.
//
// The value travels with the response as JSON, so the template sees its
// decoded form (maps, slices, strings, numbers and booleans). It is ignored
// for JSON responses.
func WithTemplateData(data any) Option {
	return func(o *renderOptions) { o.templateData = data }
}

// WithConcurrency sets how many concurrent props of the page are resolved
// in parallel. Zero or a negative value keeps the renderer's default.
func WithConcurrency(concurrency int) Option {
	return func(o *renderOptions) { o.concurrency = concurrency }
}
