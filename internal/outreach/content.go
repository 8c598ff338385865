package outreach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Variant discriminates the two generated content shapes.
type Variant string

const (
	VariantEmail   Variant = "email"
	VariantMessage Variant = "message"
)

// Content is the generated outreach text. The only implementations are
// *Email and *Message.
type Content interface {
	Variant() Variant
	content()
}

type Email struct {
	Subject   string `json:"subject" mapstructure:"subject"`
	Greeting  string `json:"greeting" mapstructure:"greeting"`
	Body      string `json:"body" mapstructure:"body"`
	Closing   string `json:"closing" mapstructure:"closing"`
	Signature string `json:"signature" mapstructure:"signature"`
}

// Message is the short form used for LinkedIn messages. It carries no
// subject and no signature.
type Message struct {
	Greeting string `json:"greeting" mapstructure:"greeting"`
	Body     string `json:"body" mapstructure:"body"`
	Closing  string `json:"closing" mapstructure:"closing"`
}

func (*Email) Variant() Variant   { return VariantEmail }
func (*Message) Variant() Variant { return VariantMessage }

func (*Email) content()   {}
func (*Message) content() {}

// Missing returns the names of empty fields.
func (e *Email) Missing() []string {
	return missing(map[string]string{
		"subject":   e.Subject,
		"greeting":  e.Greeting,
		"body":      e.Body,
		"closing":   e.Closing,
		"signature": e.Signature,
	}, "subject", "greeting", "body", "closing", "signature")
}

// Missing returns the names of empty fields.
func (m *Message) Missing() []string {
	return missing(map[string]string{
		"greeting": m.Greeting,
		"body":     m.Body,
		"closing":  m.Closing,
	}, "greeting", "body", "closing")
}

func missing(values map[string]string, order ...string) []string {
	var out []string
	for _, key := range order {
		if strings.TrimSpace(values[key]) == "" {
			out = append(out, key)
		}
	}
	return out
}

// DecodeContent converts a raw response object into the requested variant.
func DecodeContent(raw map[string]any, variant Variant) (Content, error) {
	if raw == nil {
		return nil, fmt.Errorf("content is empty")
	}

	var target Content
	switch variant {
	case VariantEmail:
		target = &Email{}
	case VariantMessage:
		target = &Message{}
	default:
		return nil, fmt.Errorf("unknown content variant: %q", variant)
	}

	if err := mapstructure.Decode(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", variant, err)
	}

	return target, nil
}

type contentEnvelope struct {
	Variant Variant `json:"variant"`
	Content any     `json:"content"`
}

// MarshalContent encodes content together with its discriminant.
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(contentEnvelope{Variant: c.Variant(), Content: c})
}

// MarshalJSON keeps the variant next to the content when a Result is exported.
func (r Result) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(r.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Content json.RawMessage `json:"content"`
		Review  *Review         `json:"review"`
	}{Content: content, Review: r.Review})
}
