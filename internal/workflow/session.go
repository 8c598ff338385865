// Package workflow sequences a single outreach session: generator choice,
// the three input steps and the results step that triggers generation.
package workflow

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/spigell/outreach-crafter/internal/outreach"
)

type Step int

const (
	StepUnselected Step = iota
	StepResume
	StepJobDescription
	StepContactInfo
	StepResults
)

// InputSteps is the number of steps that collect an artifact.
const InputSteps = int(StepContactInfo)

func (s Step) Title() string {
	switch s {
	case StepUnselected:
		return "Choose a generator"
	case StepResume:
		return "Upload Resume"
	case StepJobDescription:
		return "Job Description"
	case StepContactInfo:
		return "Contact Information"
	case StepResults:
		return "Results"
	default:
		return ""
	}
}

func clamp(s Step) Step {
	if s < StepUnselected {
		return StepUnselected
	}
	if s > StepResults {
		return StepResults
	}
	return s
}

type ResumeArtifact struct {
	FileName string
	Size     int64
	Text     string
}

func (r ResumeArtifact) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

type JobDescriptionArtifact struct {
	// Input is what the user supplied: a posting URL or pasted text.
	Input      string
	Structured json.RawMessage
}

// Kind is derived from Input.
func (j JobDescriptionArtifact) Kind() outreach.InputKind {
	kind, err := outreach.ClassifyJobDescription(j.Input)
	if err != nil {
		return ""
	}
	return kind
}

func (j JobDescriptionArtifact) Empty() bool {
	return len(j.Structured) == 0
}

// Session is the state of one workflow run. It is a value: every
// transition returns an updated copy.
type Session struct {
	ID   string
	Kind outreach.Kind
	Step Step

	Resume         ResumeArtifact
	JobDescription JobDescriptionArtifact
	ContactInfo    string

	Content outreach.Content
	Review  *outreach.Review

	Generating bool
	LastError  error

	attempt int
}

// NewSession returns a session in its initial state with a fresh id.
func NewSession() Session {
	return Session{ID: uuid.NewString()}
}

// Progress returns the position within the input steps, e.g. 2 of 3.
// Zero is returned outside the input steps.
func (s Session) Progress() (current, total int) {
	if s.Step < StepResume || s.Step > StepContactInfo {
		return 0, InputSteps
	}
	return int(s.Step), InputSteps
}

// HasResult reports whether generated content is available.
func (s Session) HasResult() bool {
	return s.Content != nil && s.Review != nil
}

// Result returns the generated content and review, or nil.
func (s Session) Result() *outreach.Result {
	if !s.HasResult() {
		return nil
	}
	return &outreach.Result{Content: s.Content, Review: s.Review}
}
