// Package gemini implements the service clients on top of the Gemini API,
// for running without the remote backend.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/outreach-crafter/internal/ai"
	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

//go:embed prompts/resume.md
var resumePrompt string

//go:embed prompts/job_description.md
var jobDescriptionPrompt string

//go:embed prompts/email.md
var emailPrompt string

//go:embed prompts/referral.md
var referralPrompt string

const systemInstruction = "You are a careful career assistant. Follow the requested JSON shape exactly and never add commentary."

type contentGenerator interface {
	Generate(ctx context.Context, system string, parts ...*genai.Part) (string, error)
}

// PageFetcher returns the readable text of a job posting.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Provider implements ai.Services with direct Gemini calls.
type Provider struct {
	generator contentGenerator
	pages     PageFetcher
	logger    *zap.Logger
}

var _ ai.Services = (*Provider)(nil)

func NewProvider(generator contentGenerator, pages PageFetcher, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{generator: generator, pages: pages, logger: logger}
}

func (p *Provider) Name() string { return "gemini" }

// ExtractResumeText sends the PDF as inline data and asks for its text.
func (p *Provider) ExtractResumeText(ctx context.Context, doc *documents.Document) (string, error) {
	const op = "extract resume text"

	if doc == nil || len(doc.Data) == 0 {
		return "", &outreach.ValidationError{Field: "resume", Err: outreach.ErrEmptyInput}
	}

	raw, err := p.generator.Generate(ctx, systemInstruction,
		genai.NewPartFromBytes(doc.Data, documents.PDFContentType),
		genai.NewPartFromText(resumePrompt),
	)
	if err != nil {
		return "", &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrExtractionFailed, err)}
	}

	var parsed struct {
		ResumeText string `json:"resume_text"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return "", &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: parse gemini response: %w", outreach.ErrExtractionFailed, err)}
	}
	if strings.TrimSpace(parsed.ResumeText) == "" {
		return "", &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: response has no resume_text", outreach.ErrExtractionFailed)}
	}

	p.logger.Info("resume text extracted", zap.String("file", doc.Name), zap.Int("text_length", len(parsed.ResumeText)))

	return parsed.ResumeText, nil
}

// StructureJobDescription scrapes URL inputs first, then asks Gemini for
// the structured listing.
func (p *Provider) StructureJobDescription(ctx context.Context, input string) (json.RawMessage, error) {
	const op = "structure job description"

	kind, err := outreach.ClassifyJobDescription(input)
	if err != nil {
		return nil, err
	}

	text := input
	if kind == outreach.InputURL {
		if p.pages == nil {
			return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: no page fetcher configured", outreach.ErrStructuringFailed)}
		}
		text, err = p.pages.Fetch(ctx, strings.TrimSpace(input))
		if err != nil {
			return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrStructuringFailed, err)}
		}
	}

	prompt := fill(jobDescriptionPrompt, map[string]string{"JOB_DESCRIPTION": text})

	raw, err := p.generator.Generate(ctx, systemInstruction, genai.NewPartFromText(prompt))
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrStructuringFailed, err)}
	}

	structured, err := ai.DecodeJobDescription([]byte(extractJSON(raw)))
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrStructuringFailed, err)}
	}

	return structured, nil
}

func (p *Provider) GenerateEmail(ctx context.Context, in outreach.GenerationInput) (*outreach.Result, error) {
	const op = "generate email"

	prompt := fill(emailPrompt, generationValues(in))

	raw, err := p.generator.Generate(ctx, systemInstruction, genai.NewPartFromText(prompt))
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	result, err := ai.DecodeEmailResponse([]byte(extractJSON(raw)))
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	p.logger.Info("email generated", zap.Float64("ats_score", result.Review.ATSScore))

	return result, nil
}

func (p *Provider) GenerateReferral(ctx context.Context, in outreach.GenerationInput, messageType outreach.MessageType) (*outreach.Result, error) {
	const op = "generate referral"

	values := generationValues(in)
	values["MESSAGE_TYPE"] = string(messageType)
	values["MESSAGE_SHAPE"] = messageShape(messageType)

	raw, err := p.generator.Generate(ctx, systemInstruction, genai.NewPartFromText(fill(referralPrompt, values)))
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	result, err := ai.DecodeReferralResponse([]byte(extractJSON(raw)), messageType)
	if err != nil {
		return nil, &outreach.ServiceError{Op: op, Err: fmt.Errorf("%w: %w", outreach.ErrGenerationFailed, err)}
	}

	p.logger.Info("referral generated",
		zap.String("message_type", string(messageType)),
		zap.Float64("ats_score", result.Review.ATSScore),
	)

	return result, nil
}

func generationValues(in outreach.GenerationInput) map[string]string {
	contact := strings.TrimSpace(in.ContactInfo)
	if contact == "" {
		contact = "none provided"
	}
	return map[string]string{
		"JOB_DESCRIPTION": in.JobDescription,
		"RESUME_TEXT":     in.ResumeText,
		"CONTACT_INFO":    contact,
	}
}

func messageShape(messageType outreach.MessageType) string {
	if messageType.ExpectedVariant() == outreach.VariantEmail {
		return `{"subject": "string", "greeting": "string", "body": "string", "closing": "string", "signature": "string"}`
	}
	return `{"greeting": "string", "body": "string", "closing": "string"}`
}

// fill substitutes {{KEY}} placeholders in one pass, so placeholders
// inside the inserted values are left as they are.
func fill(template string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{"+key+"}}", values[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
