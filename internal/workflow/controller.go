package workflow

import (
	"fmt"

	"github.com/spigell/outreach-crafter/internal/outreach"
)

// Action is the side effect a transition asks the caller to perform.
type Action int

const (
	ActionNone Action = iota
	ActionGenerate
)

func (a Action) String() string {
	if a == ActionGenerate {
		return "generate"
	}
	return "none"
}

type Transition struct {
	From   Step
	To     Step
	Action Action
}

// Ticket identifies one generation attempt. Completions carrying a ticket
// that no longer matches the session are dropped.
type Ticket struct {
	SessionID string
	Attempt   int
}

// SelectGenerator chooses the generator and moves from the selection step
// to the resume step. The generator can only be changed by a reset.
func SelectGenerator(s Session, kind outreach.Kind) (Session, Transition, error) {
	if err := guard(s); err != nil {
		return s, stay(s), err
	}
	if !kind.Valid() {
		return s, stay(s), fmt.Errorf("%w: %q", outreach.ErrUnknownKind, kind)
	}
	if s.Kind != "" {
		return s, stay(s), fmt.Errorf("%w: %s", outreach.ErrGeneratorAlreadySelected, s.Kind)
	}
	if s.Step != StepUnselected {
		return s, stay(s), fmt.Errorf("%w: select generator from step %d", outreach.ErrInvalidTransition, s.Step)
	}

	s.Kind = kind
	return move(s, StepResume)
}

// Next advances one input step. Artifacts are validated by the caller
// before Next is invoked. Next on the results step is a no-op.
func Next(s Session) (Session, Transition, error) {
	if err := guard(s); err != nil {
		return s, stay(s), err
	}

	switch s.Step {
	case StepUnselected:
		if s.Kind == "" {
			return s, stay(s), fmt.Errorf("%w: no generator selected", outreach.ErrInvalidTransition)
		}
		return move(s, StepResume)
	case StepResults:
		return s, stay(s), nil
	default:
		return move(s, s.Step+1)
	}
}

// Previous goes back one step, stopping at the selection step.
func Previous(s Session) (Session, Transition, error) {
	if err := guard(s); err != nil {
		return s, stay(s), err
	}
	return move(s, s.Step-1)
}

// JumpTo moves to an explicit step, clamped to the valid range. Jumping
// back from the results step discards the generated output so the next
// arrival at results generates again.
func JumpTo(s Session, step Step) (Session, Transition, error) {
	if err := guard(s); err != nil {
		return s, stay(s), err
	}

	step = clamp(step)
	if step > StepUnselected && s.Kind == "" {
		return s, stay(s), fmt.Errorf("%w: no generator selected", outreach.ErrInvalidTransition)
	}

	if step < StepResults {
		s.Content = nil
		s.Review = nil
		s.LastError = nil
	}
	return move(s, step)
}

// Reset returns a fresh session. It is allowed at any time; a generation
// still running for the old session is dropped on completion.
func Reset(s Session) (Session, Transition) {
	fresh := NewSession()
	return fresh, Transition{From: s.Step, To: fresh.Step, Action: ActionNone}
}

// Regenerate discards the current output and asks for a new generation.
func Regenerate(s Session) (Session, Transition, error) {
	if err := guard(s); err != nil {
		return s, stay(s), err
	}
	if s.Step != StepResults {
		return s, stay(s), fmt.Errorf("%w: regenerate outside results", outreach.ErrInvalidTransition)
	}

	s.Content = nil
	s.Review = nil
	s.LastError = nil
	return s, Transition{From: s.Step, To: s.Step, Action: ActionGenerate}, nil
}

// BeginGeneration marks the session as generating and returns the ticket
// the completion must present.
func BeginGeneration(s Session) (Session, Ticket, error) {
	if s.Generating {
		return s, Ticket{}, outreach.ErrGenerationInFlight
	}
	if s.Step != StepResults {
		return s, Ticket{}, fmt.Errorf("%w: generation outside results", outreach.ErrInvalidTransition)
	}

	s.attempt++
	s.Generating = true
	s.Content = nil
	s.Review = nil
	s.LastError = nil

	return s, Ticket{SessionID: s.ID, Attempt: s.attempt}, nil
}

// CompleteGeneration applies the outcome of the attempt identified by t.
// It reports false and leaves the session untouched when the ticket is
// stale. The step never changes here.
func CompleteGeneration(s Session, t Ticket, result *outreach.Result, err error) (Session, bool) {
	if !s.Generating || t.SessionID != s.ID || t.Attempt != s.attempt {
		return s, false
	}

	s.Generating = false

	if err == nil && (result == nil || result.Content == nil) {
		err = &outreach.GenerationFailed{Kind: s.Kind, Reason: "empty result"}
	}
	if err != nil {
		s.LastError = err
		return s, true
	}

	s.Content = result.Content
	s.Review = result.Review
	return s, true
}

// WithResume stores the extracted resume.
func WithResume(s Session, resume ResumeArtifact) (Session, error) {
	if err := guard(s); err != nil {
		return s, err
	}
	if resume.Empty() {
		return s, &outreach.ValidationError{Field: "resume", Err: outreach.ErrEmptyInput}
	}
	s.Resume = resume
	return s, nil
}

// WithJobDescription stores the structured job description.
func WithJobDescription(s Session, jd JobDescriptionArtifact) (Session, error) {
	if err := guard(s); err != nil {
		return s, err
	}
	if jd.Empty() {
		return s, &outreach.ValidationError{Field: "job description", Err: outreach.ErrEmptyInput}
	}
	s.JobDescription = jd
	return s, nil
}

// WithContactInfo stores the optional contact information.
func WithContactInfo(s Session, info string) (Session, error) {
	if err := guard(s); err != nil {
		return s, err
	}
	s.ContactInfo = info
	return s, nil
}

func DismissError(s Session) Session {
	s.LastError = nil
	return s
}

func guard(s Session) error {
	if s.Generating {
		return outreach.ErrGenerationInFlight
	}
	return nil
}

func stay(s Session) Transition {
	return Transition{From: s.Step, To: s.Step, Action: ActionNone}
}

// move is the single place where the step changes. Entering results with
// no content and no generation running yields ActionGenerate.
func move(s Session, to Step) (Session, Transition, error) {
	from := s.Step
	s.Step = clamp(to)

	action := ActionNone
	if s.Step == StepResults && from != StepResults && s.Content == nil && !s.Generating {
		action = ActionGenerate
	}

	return s, Transition{From: from, To: s.Step, Action: action}, nil
}
