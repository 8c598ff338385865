package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReview() map[string]any {
	return map[string]any{
		"overall_summary": "Good alignment",
		"strengths":       []any{"Go"},
		"ats_score":       float64(75),
		"keyword_analysis": map[string]any{
			"matched_keywords": []any{"Go"},
			"missing_keywords": nil,
			"match_percentage": float64(50),
		},
	}
}

func TestValidateReview(t *testing.T) {
	assert.NoError(t, Validate(Review, validReview()))

	bad := validReview()
	bad["ats_score"] = float64(101)

	err := Validate(Review, bad)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, Review, ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateEmailResponseRequiresAllFields(t *testing.T) {
	doc := map[string]any{
		"email": map[string]any{
			"subject":  "Hello",
			"greeting": "Hi",
			"body":     "Body",
			"closing":  "Thanks",
		},
		"review": validReview(),
	}

	err := Validate(EmailResponse, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")

	doc["email"].(map[string]any)["signature"] = "Jane"
	assert.NoError(t, Validate(EmailResponse, doc))
}

func TestValidateReferralMessageResponse(t *testing.T) {
	doc := map[string]any{
		"referral_message": map[string]any{
			"greeting": "Hi Michael,",
			"body":     "Body",
			"closing":  "Thanks",
		},
		"review": validReview(),
	}
	assert.NoError(t, Validate(ReferralMessageResponse, doc))
	assert.Error(t, Validate(ReferralEmailResponse, doc))
}

func TestValidateJobDescriptionRejectsEmptyObject(t *testing.T) {
	assert.Error(t, Validate(JobDescription, map[string]any{}))
	assert.NoError(t, Validate(JobDescription, map[string]any{"title": "Backend Engineer"}))
}

func TestValidateUnknownSchema(t *testing.T) {
	err := Validate(Name("missing"), map[string]any{})
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
}
