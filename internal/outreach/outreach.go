// Package outreach holds the domain types shared by the workflow engine:
// generator kinds, the generated content union and the resume review.
package outreach

import (
	"fmt"
	"strings"
)

// Kind is the generator chosen by the user for a session.
type Kind string

const (
	KindEmail    Kind = "email"
	KindLinkedIn Kind = "linkedin"
	KindReferral Kind = "referral"
)

// Kinds lists the supported generators in menu order.
func Kinds() []Kind {
	return []Kind{KindEmail, KindLinkedIn, KindReferral}
}

// ParseKind resolves user input into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindEmail, KindLinkedIn, KindReferral:
		return true
	default:
		return false
	}
}

// DisplayName is the title shown for the generator.
func (k Kind) DisplayName() string {
	switch k {
	case KindEmail:
		return "Email Generator"
	case KindLinkedIn:
		return "LinkedIn Messages"
	case KindReferral:
		return "Referral Requests"
	default:
		return ""
	}
}

// ContactHint is the example contact information shown on the contact step.
func (k Kind) ContactHint() string {
	switch k {
	case KindEmail:
		return "Hiring manager name, title, email, where you found them, mutual connections"
	case KindLinkedIn:
		return "Contact name, title, company, LinkedIn profile, mutual connections, recent activity"
	case KindReferral:
		return "Referral contact, your relationship, their current role, last interaction, their interests"
	default:
		return ""
	}
}

// MessageType is the discriminator sent to the referral endpoint.
type MessageType string

const (
	MessageTypeEmail    MessageType = "email"
	MessageTypeLinkedIn MessageType = "linkedin message"
)

// ExpectedVariant returns the content shape the backend declares for the message type.
func (m MessageType) ExpectedVariant() Variant {
	if m == MessageTypeEmail {
		return VariantEmail
	}
	return VariantMessage
}

// ExpectedVariant returns the content shape a successful generation yields for the kind.
func (k Kind) ExpectedVariant() Variant {
	if k == KindLinkedIn {
		return VariantMessage
	}
	return VariantEmail
}

// GenerationInput is the payload of a single generation request.
type GenerationInput struct {
	ResumeText     string
	JobDescription string
	ContactInfo    string
}

// Result is a successful generation: the content plus the review.
type Result struct {
	Content Content `json:"content"`
	Review  *Review `json:"review"`
}
