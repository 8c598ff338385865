package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

const reviewJSON = `{"overall_summary": "Good", "strengths": ["Go"], "ats_score": 85, "keyword_analysis": {"match_percentage": 72}}`

type stubGenerator struct {
	response string
	err      error
	parts    []*genai.Part
}

func (s *stubGenerator) Generate(_ context.Context, _ string, parts ...*genai.Part) (string, error) {
	s.parts = parts
	return s.response, s.err
}

func (s *stubGenerator) prompt() string {
	var b strings.Builder
	for _, p := range s.parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

type stubPages struct {
	text string
	err  error
	url  string
}

func (s *stubPages) Fetch(_ context.Context, pageURL string) (string, error) {
	s.url = pageURL
	return s.text, s.err
}

func TestProviderExtractResumeText(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"resume_text\": \"Jane Doe\"}\n```"}
	p := NewProvider(gen, nil, zap.NewNop())

	doc := &documents.Document{Name: "cv.pdf", Data: []byte("%PDF-1.4")}
	text, err := p.ExtractResumeText(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", text)

	require.Len(t, gen.parts, 2)
	require.NotNil(t, gen.parts[0].InlineData)
	assert.Equal(t, documents.PDFContentType, gen.parts[0].InlineData.MIMEType)
	assert.Equal(t, doc.Data, gen.parts[0].InlineData.Data)

	gen.response = `{"resume_text": ""}`
	_, err = p.ExtractResumeText(context.Background(), doc)
	assert.ErrorIs(t, err, outreach.ErrExtractionFailed)

	_, err = p.ExtractResumeText(context.Background(), &documents.Document{})
	assert.True(t, outreach.IsValidation(err))
}

func TestProviderStructureJobDescriptionScrapesURLs(t *testing.T) {
	gen := &stubGenerator{response: `{"title": "Backend Engineer", "company": "Acme"}`}
	pages := &stubPages{text: "Backend Engineer at Acme, Go required"}
	p := NewProvider(gen, pages, nil)

	out, err := p.StructureJobDescription(context.Background(), "https://jobs.example.com/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Backend Engineer", "company": "Acme"}`, string(out))
	assert.Equal(t, "https://jobs.example.com/1", pages.url)
	assert.Contains(t, gen.prompt(), "Go required")

	pages.url = ""
	_, err = p.StructureJobDescription(context.Background(), "We need a Go engineer")
	require.NoError(t, err)
	assert.Empty(t, pages.url, "text input must not be scraped")
	assert.Contains(t, gen.prompt(), "We need a Go engineer")

	pages.err = errors.New("blocked")
	_, err = p.StructureJobDescription(context.Background(), "https://jobs.example.com/2")
	assert.ErrorIs(t, err, outreach.ErrStructuringFailed)

	_, err = p.StructureJobDescription(context.Background(), "   ")
	assert.ErrorIs(t, err, outreach.ErrEmptyInput)
}

func TestProviderGenerateEmail(t *testing.T) {
	gen := &stubGenerator{response: `{"email": {"subject": "s", "greeting": "g", "body": "b", "closing": "c", "signature": "x"}, "review": ` + reviewJSON + `}`}
	p := NewProvider(gen, nil, nil)

	res, err := p.GenerateEmail(context.Background(), outreach.GenerationInput{ResumeText: "resume body", JobDescription: `{"title":"t"}`})
	require.NoError(t, err)
	assert.IsType(t, &outreach.Email{}, res.Content)
	assert.Contains(t, gen.prompt(), "resume body")
	assert.Contains(t, gen.prompt(), "none provided")

	gen.err = errors.New("deadline exceeded")
	_, err = p.GenerateEmail(context.Background(), outreach.GenerationInput{ResumeText: "r", JobDescription: "{}"})
	var svc *outreach.ServiceError
	require.ErrorAs(t, err, &svc)
	assert.ErrorIs(t, err, outreach.ErrGenerationFailed)
}

func TestProviderGenerateReferral(t *testing.T) {
	gen := &stubGenerator{response: `{"referral_message": {"greeting": "Hi", "body": "b", "closing": "c"}, "review": ` + reviewJSON + `}`}
	p := NewProvider(gen, nil, nil)

	res, err := p.GenerateReferral(context.Background(), outreach.GenerationInput{ResumeText: "r", JobDescription: "{}", ContactInfo: "Michael"}, outreach.MessageTypeLinkedIn)
	require.NoError(t, err)
	assert.IsType(t, &outreach.Message{}, res.Content)
	assert.Contains(t, gen.prompt(), "linkedin message")
	assert.NotContains(t, gen.prompt(), `"subject"`)

	_, err = p.GenerateReferral(context.Background(), outreach.GenerationInput{ResumeText: "r", JobDescription: "{}"}, outreach.MessageTypeEmail)
	assert.ErrorIs(t, err, outreach.ErrGenerationFailed, "message shaped payload does not satisfy an email referral")
	assert.Contains(t, gen.prompt(), `"subject"`)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(" {\"a\":1} "))
}

func TestFillLeavesPlaceholdersInValues(t *testing.T) {
	values := generationValues(outreach.GenerationInput{ResumeText: "see {{CONTACT_INFO}}", ContactInfo: "SECRET"})

	for i := 0; i < 100; i++ {
		got := fill("R={{RESUME_TEXT}} C={{CONTACT_INFO}}", values)
		require.Equal(t, "R=see {{CONTACT_INFO}} C=SECRET", got)
	}
}

func TestProviderGenerateEmailKeepsResumePlaceholders(t *testing.T) {
	gen := &stubGenerator{response: `{"email": {"subject": "s", "greeting": "g", "body": "b", "closing": "c", "signature": "x"}, "review": ` + reviewJSON + `}`}
	p := NewProvider(gen, nil, nil)

	_, err := p.GenerateEmail(context.Background(), outreach.GenerationInput{
		ResumeText:     "Templating work: {{JOB_DESCRIPTION}} and {{CONTACT_INFO}}",
		JobDescription: `{"title":"Backend Engineer"}`,
		ContactInfo:    "Sarah <sarah@acme.io>",
	})
	require.NoError(t, err)

	prompt := gen.prompt()
	assert.Contains(t, prompt, "Templating work: {{JOB_DESCRIPTION}} and {{CONTACT_INFO}}")
	assert.Equal(t, 1, strings.Count(prompt, `{"title":"Backend Engineer"}`))
	assert.Equal(t, 1, strings.Count(prompt, "sarah@acme.io"))
}
