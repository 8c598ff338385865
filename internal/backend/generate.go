package backend

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/ai"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

// GenerateEmail calls the email endpoint. The response carries the full
// Email shape.
func (c *Client) GenerateEmail(ctx context.Context, in outreach.GenerationInput) (*outreach.Result, error) {
	const op = "generate email"

	resp, err := c.postForm(ctx, c.endpoint(generateEmailPath), generationForm(in))
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	if !resp.ok() {
		return nil, &outreach.ServiceError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %s", outreach.ErrGenerationFailed, errorDetail(resp.Body)),
		}
	}

	result, err := ai.DecodeEmailResponse(resp.Body)
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	c.logger.Info("email generated", zap.Float64("ats_score", result.Review.ATSScore))

	return result, nil
}

// GenerateReferral calls the referral endpoint with the given message type.
func (c *Client) GenerateReferral(ctx context.Context, in outreach.GenerationInput, messageType outreach.MessageType) (*outreach.Result, error) {
	const op = "generate referral"

	form := generationForm(in)
	form.Set("message_type", string(messageType))

	resp, err := c.postForm(ctx, c.endpoint(generateReferralPath), form)
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	if !resp.ok() {
		return nil, &outreach.ServiceError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %s", outreach.ErrGenerationFailed, errorDetail(resp.Body)),
		}
	}

	result, err := ai.DecodeReferralResponse(resp.Body, messageType)
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	c.logger.Info("referral generated",
		zap.String("message_type", string(messageType)),
		zap.Float64("ats_score", result.Review.ATSScore),
	)

	return result, nil
}

func generationForm(in outreach.GenerationInput) url.Values {
	form := url.Values{}
	form.Set("resume_text", in.ResumeText)
	form.Set("job_description", in.JobDescription)
	form.Set("recruiter_info", in.ContactInfo)
	return form
}
