package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/ai"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

type jdFromURLRequest struct {
	URL string `json:"url"`
}

type jdFromTextRequest struct {
	Text string `json:"jd_text"`
}

// StructureJobDescription sends the posting URL or the pasted text to the
// matching endpoint and returns the structured job description.
func (c *Client) StructureJobDescription(ctx context.Context, input string) (json.RawMessage, error) {
	const op = "structure job description"

	kind, err := outreach.ClassifyJobDescription(input)
	if err != nil {
		return nil, err
	}

	var (
		path    string
		payload any
	)
	switch kind {
	case outreach.InputURL:
		path, payload = jdFromURLPath, jdFromURLRequest{URL: strings.TrimSpace(input)}
	default:
		path, payload = jdFromTextPath, jdFromTextRequest{Text: input}
	}

	resp, err := c.postJSON(ctx, c.endpoint(path), payload)
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrStructuringFailed, err)}
	}

	if !resp.ok() {
		return nil, &outreach.ServiceError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %s", outreach.ErrStructuringFailed, errorDetail(resp.Body)),
		}
	}

	structured, err := ai.DecodeJobDescription(resp.Body)
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: %w", outreach.ErrStructuringFailed, err)}
	}

	c.logger.Info("job description structured",
		zap.String("input_kind", string(kind)),
		zap.Int("structured_length", len(structured)),
	)

	return structured, nil
}
