package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

const reviewJSON = `{
	"overall_summary": "Good fit",
	"strengths": ["Go"],
	"areas_for_improvement": ["Metrics"],
	"recommendations": [],
	"ats_score": 81,
	"keyword_analysis": {"matched_keywords": ["Go"], "missing_keywords": [], "keyword_suggestions": {}, "match_percentage": 70}
}`

type recorded struct {
	path        string
	contentType string
	body        []byte
	form        map[string]string
	fileType    string
	fileName    string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
	gzip     bool
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{path: r.URL.Path, contentType: r.Header.Get("Content-Type")}

	switch {
	case r.URL.Path == resumePath:
		file, header, err := r.FormFile(resumeFileField)
		if err == nil {
			rec.body, _ = io.ReadAll(file)
			rec.fileType = header.Header.Get("Content-Type")
			rec.fileName = header.Filename
		}
	case rec.contentType == contentTypeForm:
		_ = r.ParseForm()
		rec.form = map[string]string{}
		for k := range r.PostForm {
			rec.form[k] = r.PostForm.Get(k)
		}
	default:
		rec.body, _ = io.ReadAll(r.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}

	if f.gzip {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(f.body))
		_ = zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
		return
	}

	w.WriteHeader(status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeBackend) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, fake *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(zap.NewNop(), srv.URL+"/api/", 0)
	require.NoError(t, err)
	c.BaseURL = srv.URL
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(nil, "  ", 0)
	assert.Error(t, err)

	c, err := New(nil, "http://localhost:5000/api/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", c.BaseURL)
	assert.Equal(t, defaultTimeout, c.HTTPClient.Timeout)
}

func TestExtractResumeText(t *testing.T) {
	fake := &fakeBackend{body: `{"resume_text": "Jane Doe, 5 years backend engineering"}`}
	c := newTestClient(t, fake)

	doc := &documents.Document{Name: "jane.pdf", ContentType: documents.PDFContentType, Data: []byte("%PDF-1.4 data")}
	text, err := c.ExtractResumeText(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe, 5 years backend engineering", text)

	req := fake.last(t)
	assert.Equal(t, resumePath, req.path)
	assert.Equal(t, documents.PDFContentType, req.fileType)
	assert.Equal(t, "jane.pdf", req.fileName)
	assert.Equal(t, doc.Data, req.body)
}

func TestExtractResumeTextFailures(t *testing.T) {
	doc := &documents.Document{Name: "jane.pdf", Data: []byte("%PDF-1.4 data")}

	tests := []struct {
		name   string
		fake   *fakeBackend
		status int
	}{
		{name: "server error", fake: &fakeBackend{status: http.StatusInternalServerError, body: `{"detail": "Failed to parse resume"}`}, status: 500},
		{name: "missing field", fake: &fakeBackend{body: `{"text": "x"}`}, status: 200},
		{name: "blank text", fake: &fakeBackend{body: `{"resume_text": "  "}`}, status: 200},
		{name: "not json", fake: &fakeBackend{body: `oops`}, status: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.fake)
			_, err := c.ExtractResumeText(context.Background(), doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, outreach.ErrExtractionFailed)

			var svc *outreach.ServiceError
			require.ErrorAs(t, err, &svc)
			assert.Equal(t, tt.status, svc.Status)
		})
	}
}

func TestStructureJobDescriptionRoutesByInputKind(t *testing.T) {
	fake := &fakeBackend{body: `{"title": "Backend Engineer", "company": "Acme"}`}
	c := newTestClient(t, fake)

	out, err := c.StructureJobDescription(context.Background(), "https://example.com/jobs/42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Backend Engineer", "company": "Acme"}`, string(out))

	req := fake.last(t)
	assert.Equal(t, jdFromURLPath, req.path)
	assert.JSONEq(t, `{"url": "https://example.com/jobs/42"}`, string(req.body))

	_, err = c.StructureJobDescription(context.Background(), "We need a Go engineer")
	require.NoError(t, err)

	req = fake.last(t)
	assert.Equal(t, jdFromTextPath, req.path)
	assert.JSONEq(t, `{"jd_text": "We need a Go engineer"}`, string(req.body))
}

func TestStructureJobDescriptionFailures(t *testing.T) {
	fake := &fakeBackend{}
	c := newTestClient(t, fake)

	_, err := c.StructureJobDescription(context.Background(), "")
	require.Error(t, err)
	assert.True(t, outreach.IsValidation(err))
	assert.Empty(t, fake.requests, "empty input must not reach the network")

	fake.status = http.StatusInternalServerError
	fake.body = `{"detail": "Failed to scrape the job description"}`
	_, err = c.StructureJobDescription(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, outreach.ErrStructuringFailed)
	assert.Contains(t, err.Error(), "Failed to scrape")

	fake.status = http.StatusOK
	fake.body = `{}`
	_, err = c.StructureJobDescription(context.Background(), "text")
	assert.ErrorIs(t, err, outreach.ErrStructuringFailed)
}

func TestGenerateEmail(t *testing.T) {
	fake := &fakeBackend{
		gzip: true,
		body: `{"email": {"subject": "Backend Engineer at Acme", "greeting": "Dear Sarah,", "body": "Body", "closing": "Best regards,", "signature": "Jane Doe"}, "review": ` + reviewJSON + `}`,
	}
	c := newTestClient(t, fake)

	in := outreach.GenerationInput{
		ResumeText:     "Jane Doe, 5 years backend engineering",
		JobDescription: `{"title":"Backend Engineer"}`,
	}
	res, err := c.GenerateEmail(context.Background(), in)
	require.NoError(t, err)

	email, ok := res.Content.(*outreach.Email)
	require.True(t, ok)
	assert.Empty(t, email.Missing())
	assert.Equal(t, 81.0, res.Review.ATSScore)

	req := fake.last(t)
	assert.Equal(t, generateEmailPath, req.path)
	assert.Equal(t, in.ResumeText, req.form["resume_text"])
	assert.Equal(t, in.JobDescription, req.form["job_description"])
	assert.Equal(t, "", req.form["recruiter_info"])
	assert.NotContains(t, req.form, "message_type")
}

func TestGenerateReferralSendsMessageType(t *testing.T) {
	fake := &fakeBackend{
		body: `{"referral_message": {"greeting": "Hi Michael,", "body": "Body", "closing": "Thanks"}, "review": ` + reviewJSON + `}`,
	}
	c := newTestClient(t, fake)

	res, err := c.GenerateReferral(context.Background(), outreach.GenerationInput{ResumeText: "r", JobDescription: "{}", ContactInfo: "Michael"}, outreach.MessageTypeLinkedIn)
	require.NoError(t, err)
	_, ok := res.Content.(*outreach.Message)
	assert.True(t, ok)

	req := fake.last(t)
	assert.Equal(t, generateReferralPath, req.path)
	assert.Equal(t, "linkedin message", req.form["message_type"])
	assert.Equal(t, "Michael", req.form["recruiter_info"])

	_, err = c.GenerateReferral(context.Background(), outreach.GenerationInput{ResumeText: "r", JobDescription: "{}"}, outreach.MessageTypeEmail)
	require.Error(t, err, "message shaped response does not satisfy the email contract")
	assert.ErrorIs(t, err, outreach.ErrGenerationFailed)
	assert.Equal(t, "email", fake.last(t).form["message_type"])
}

func TestGenerateEmailServerError(t *testing.T) {
	fake := &fakeBackend{status: http.StatusInternalServerError, body: `{"detail": "Internal server error while generating email."}`}
	c := newTestClient(t, fake)

	_, err := c.GenerateEmail(context.Background(), outreach.GenerationInput{ResumeText: "r", JobDescription: "{}"})
	require.Error(t, err)

	var svc *outreach.ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, http.StatusInternalServerError, svc.Status)
	assert.ErrorIs(t, err, outreach.ErrGenerationFailed)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "boom", errorDetail([]byte(`{"detail": "boom"}`)))

	list, _ := json.Marshal(map[string]any{"detail": []any{map[string]any{"msg": "field required"}}})
	assert.Contains(t, errorDetail(list), "field required")

	assert.Equal(t, "plain", errorDetail([]byte("plain")))
}
