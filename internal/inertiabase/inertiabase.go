package inertiabase

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var (
	_ json.MarshalerTo     = (Props)(nil)
	_ json.UnmarshalerFrom = (*Props)(nil)
)

var errDuplicateProp = errors.New("duplicate prop")

// Page is the page object sent to the Inertia.js client.
//
// Fields are encoded in declaration order.
type Page struct {
	Component      string `json:"component"`
	Version        string `json:"version"`
	Props          Props  `json:"props"`
	URL            string `json:"url"`
	EncryptHistory bool   `json:"encryptHistory,omitzero"`
	ClearHistory   bool   `json:"clearHistory,omitzero"`
}

// Prop is a single encoded page property.
type Prop struct {
	Key   string
	Value jsontext.Value
}

// Props is an ordered set of encoded page properties with unique keys.
type Props []Prop

// ParseProps decodes a JSON object into Props, keeping the key order.
func ParseProps(b []byte) (Props, error) {
	var props Props
	if err := json.Unmarshal(b, &props); err != nil {
		return nil, fmt.Errorf("inertia: failed to decode props: %w", err)
	}

	return props, nil
}

// Index returns the position of key, or -1.
func (p Props) Index(key string) int {
	return slices.IndexFunc(p, func(prop Prop) bool { return prop.Key == key })
}

// Get returns the encoded value of key.
func (p Props) Get(key string) (jsontext.Value, bool) {
	if i := p.Index(key); i >= 0 {
		return p[i].Value, true
	}

	return nil, false
}

// Set replaces the value of key in place, or appends it.
func (p *Props) Set(key string, value jsontext.Value) {
	if i := p.Index(key); i >= 0 {
		(*p)[i].Value = value
		return
	}

	*p = append(*p, Prop{Key: key, Value: value})
}

// Keys returns the keys in order.
func (p Props) Keys() []string {
	keys := make([]string, len(p))
	for i, prop := range p {
		keys[i] = prop.Key
	}

	return keys
}

// Filter returns the props for which keep reports true.
func (p Props) Filter(keep func(key string) bool) Props {
	out := make(Props, 0, len(p))
	for _, prop := range p {
		if keep(prop.Key) {
			out = append(out, prop)
		}
	}

	return out
}

func (p Props) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err //nolint:wrapcheck
	}

	for _, prop := range p {
		if err := enc.WriteToken(jsontext.String(prop.Key)); err != nil {
			return err //nolint:wrapcheck
		}

		if err := enc.WriteValue(prop.Value); err != nil {
			return fmt.Errorf("inertia: invalid value for prop %s: %w", prop.Key, err)
		}
	}

	return enc.WriteToken(jsontext.EndObject) //nolint:wrapcheck
}

func (p *Props) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err //nolint:wrapcheck
	}

	if tok.Kind() != '{' {
		return fmt.Errorf("inertia: props must be a JSON object, got %v", tok.Kind())
	}

	props := make(Props, 0)

	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return err //nolint:wrapcheck
		}

		key := name.String()

		val, err := dec.ReadValue()
		if err != nil {
			return err //nolint:wrapcheck
		}

		if props.Index(key) >= 0 {
			return fmt.Errorf("inertia: %w %q", errDuplicateProp, key)
		}

		// ReadValue returns a view into the decoder's buffer.
		props = append(props, Prop{Key: key, Value: slices.Clone(val)})
	}

	if _, err := dec.ReadToken(); err != nil {
		return err //nolint:wrapcheck
	}

	*p = props

	return nil
}
