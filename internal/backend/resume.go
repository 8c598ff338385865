package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

const resumeFileField = "file"

type resumeResponse struct {
	ResumeText *string `json:"resume_text"`
}

// ExtractResumeText uploads the resume and returns the extracted text.
// The document must already be validated by the caller.
func (c *Client) ExtractResumeText(ctx context.Context, doc *documents.Document) (string, error) {
	const op = "extract resume text"

	if doc == nil || len(doc.Data) == 0 {
		return "", &outreach.ValidationError{Field: "resume", Err: outreach.ErrEmptyInput}
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = documents.PDFContentType
	}

	resp, err := c.postFile(ctx, c.endpoint(resumePath), filePart{
		Field:       resumeFileField,
		FileName:    doc.Name,
		ContentType: contentType,
		Data:        doc.Data,
	})
	if err != nil {
		return "", &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrExtractionFailed, err)}
	}

	if !resp.ok() {
		return "", &outreach.ServiceError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %s", outreach.ErrExtractionFailed, errorDetail(resp.Body)),
		}
	}

	var parsed resumeResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", &outreach.ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: parse response: %w", outreach.ErrExtractionFailed, err)}
	}

	if parsed.ResumeText == nil || strings.TrimSpace(*parsed.ResumeText) == "" {
		return "", &outreach.ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: response has no resume_text", outreach.ErrExtractionFailed)}
	}

	c.logger.Info("resume text extracted",
		zap.String("file", doc.Name),
		zap.Int("text_length", len(*parsed.ResumeText)),
	)

	return *parsed.ResumeText, nil
}
