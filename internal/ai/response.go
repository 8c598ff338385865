package ai

import (
	"encoding/json"
	"fmt"

	"github.com/spigell/outreach-crafter/internal/outreach"
	"github.com/spigell/outreach-crafter/internal/schemas"
)

const (
	emailKey    = "email"
	referralKey = "referral_message"
	reviewKey   = "review"
)

// DecodeEmailResponse validates and decodes a `{email, review}` payload.
func DecodeEmailResponse(raw []byte) (*outreach.Result, error) {
	return decodeResponse(raw, schemas.EmailResponse, emailKey, outreach.VariantEmail)
}

// DecodeReferralResponse validates and decodes a `{referral_message, review}`
// payload. The message type pins the expected content shape: "email" yields
// the full Email shape, "linkedin message" the short Message shape.
func DecodeReferralResponse(raw []byte, messageType outreach.MessageType) (*outreach.Result, error) {
	schema := schemas.ReferralMessageResponse
	if messageType.ExpectedVariant() == outreach.VariantEmail {
		schema = schemas.ReferralEmailResponse
	}
	return decodeResponse(raw, schema, referralKey, messageType.ExpectedVariant())
}

// DecodeJobDescription checks that a structured job description is a
// non-empty JSON object and returns it compacted.
func DecodeJobDescription(raw []byte) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse job description: %w", err)
	}
	if err := schemas.Validate(schemas.JobDescription, doc); err != nil {
		return nil, err
	}

	compact, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return compact, nil
}

func decodeResponse(raw []byte, schema schemas.Name, contentKey string, variant outreach.Variant) (*outreach.Result, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if err := schemas.Validate(schema, doc); err != nil {
		return nil, err
	}

	reviewRaw, _ := doc[reviewKey].(map[string]any)
	if err := schemas.Validate(schemas.Review, reviewRaw); err != nil {
		return nil, err
	}

	contentRaw, _ := doc[contentKey].(map[string]any)
	content, err := outreach.DecodeContent(contentRaw, variant)
	if err != nil {
		return nil, err
	}

	review, err := outreach.DecodeReview(reviewRaw)
	if err != nil {
		return nil, err
	}

	return &outreach.Result{Content: content, Review: review}, nil
}
