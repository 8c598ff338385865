// Package ai declares the service clients the workflow engine depends on.
// Implementations live in internal/backend (remote API) and
// internal/ai/gemini (direct Gemini access).
package ai

import (
	"context"
	"encoding/json"

	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

// ResumeExtractor turns a validated resume document into plain text.
type ResumeExtractor interface {
	ExtractResumeText(ctx context.Context, doc *documents.Document) (string, error)
}

// JobDescriptionStructurer turns a posting URL or pasted text into the
// structured JSON object consumed by generation.
type JobDescriptionStructurer interface {
	StructureJobDescription(ctx context.Context, input string) (json.RawMessage, error)
}

// ContentGenerator produces outreach content and a review.
type ContentGenerator interface {
	GenerateEmail(ctx context.Context, in outreach.GenerationInput) (*outreach.Result, error)
	GenerateReferral(ctx context.Context, in outreach.GenerationInput, messageType outreach.MessageType) (*outreach.Result, error)
}

// Services bundles the three clients of one provider.
type Services interface {
	ResumeExtractor
	JobDescriptionStructurer
	ContentGenerator
	Name() string
}
