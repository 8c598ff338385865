package gemini

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type modelCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCall
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorGenerate(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"ok": true}`)}
	g := newGenerator(models, "", 0, zap.NewNop())

	out, err := g.Generate(context.Background(), "system", genai.NewPartFromText("message"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != `{"ok": true}` {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != defaultModel {
		t.Fatalf("expected default model, got %q", call.model)
	}
	if call.config == nil || call.config.ResponseMIMEType != responseMIMEType {
		t.Fatalf("expected json response mime type, got %+v", call.config)
	}
	if call.config.SystemInstruction == nil || call.config.SystemInstruction.Parts[0].Text != "system" {
		t.Fatalf("expected system instruction to be set")
	}
	if len(call.contents) != 1 || call.contents[0].Role != genai.RoleUser || call.contents[0].Parts[0].Text != "message" {
		t.Fatalf("unexpected contents: %+v", call.contents)
	}
}

func TestGeneratorSkipsThoughtParts(t *testing.T) {
	resp := textResponse("thinking", "answer")
	resp.Candidates[0].Content.Parts[0].Thought = true

	g := newGenerator(&fakeModels{resp: resp}, "gemini-pro", 10, nil)
	out, err := g.Generate(context.Background(), "", genai.NewPartFromText("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "answer" {
		t.Fatalf("expected thought part to be skipped, got %q", out)
	}
	if g.Model() != "gemini-pro" {
		t.Fatalf("unexpected model: %q", g.Model())
	}
}

func TestGeneratorErrors(t *testing.T) {
	g := newGenerator(&fakeModels{err: errors.New("quota exhausted")}, "", 0, nil)
	if _, err := g.Generate(context.Background(), "s", genai.NewPartFromText("m")); err == nil {
		t.Fatal("expected api error to be returned")
	}

	g = newGenerator(&fakeModels{resp: textResponse("   ")}, "", 0, nil)
	if _, err := g.Generate(context.Background(), "s", genai.NewPartFromText("m")); err == nil {
		t.Fatal("expected error on empty response")
	}

	if _, err := g.Generate(context.Background(), "s"); err == nil {
		t.Fatal("expected error without parts")
	}

	var nilGen *Generator
	if _, err := nilGen.Generate(context.Background(), "s", genai.NewPartFromText("m")); err == nil {
		t.Fatal("expected error on nil generator")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
