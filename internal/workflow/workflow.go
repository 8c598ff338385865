package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/ai"
	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/generation"
	"github.com/spigell/outreach-crafter/internal/logger"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

// Workflow owns the current session and runs the side effects requested
// by its transitions. The lock is not held during service calls, so a
// Reset may happen while a request is running; its outcome is then dropped.
type Workflow struct {
	mu      sync.Mutex
	session Session

	services     ai.Services
	documents    *documents.Validator
	orchestrator *generation.Orchestrator
	logger       *zap.Logger
}

func New(services ai.Services, docs *documents.Validator, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	if docs == nil {
		docs = documents.NewValidator()
	}

	return &Workflow{
		session:      NewSession(),
		services:     services,
		documents:    docs,
		orchestrator: generation.New(services, log),
		logger:       log,
	}
}

// Session returns a snapshot of the current session.
func (w *Workflow) Session() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Workflow) SelectGenerator(kind outreach.Kind) (Transition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, tr, err := SelectGenerator(w.session, kind)
	if err != nil {
		return tr, err
	}
	w.session = s

	w.sessionLogger(s).Info("generator selected")
	return tr, nil
}

// SubmitResume loads and validates the resume at path, extracts its text
// and advances to the job description step.
func (w *Workflow) SubmitResume(ctx context.Context, path string) (Transition, error) {
	doc, err := w.documents.Open(path)
	if err != nil {
		if !outreach.IsValidation(err) {
			err = &outreach.ValidationError{Field: "resume", Err: err}
		}
		return w.stay(), err
	}
	return w.SubmitResumeDocument(ctx, doc)
}

// SubmitResumeDocument is SubmitResume for a document already in memory.
func (w *Workflow) SubmitResumeDocument(ctx context.Context, doc *documents.Document) (Transition, error) {
	id, err := w.expectStep(StepResume)
	if err != nil {
		return w.stay(), err
	}

	if err := w.documents.Validate(doc); err != nil {
		return w.stay(), err
	}

	text, err := w.services.ExtractResumeText(ctx, doc)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session.ID != id || w.session.Step != StepResume {
		return stay(w.session), errStaleSession
	}
	if err != nil {
		return w.recordLocked(err)
	}

	s, err := WithResume(w.session, ResumeArtifact{FileName: doc.Name, Size: doc.Size(), Text: text})
	if err != nil {
		return w.recordLocked(err)
	}

	return w.advanceLocked(s)
}

// SubmitJobDescription structures a posting URL or pasted text and
// advances to the contact step.
func (w *Workflow) SubmitJobDescription(ctx context.Context, input string) (Transition, error) {
	id, err := w.expectStep(StepJobDescription)
	if err != nil {
		return w.stay(), err
	}

	if _, err := outreach.ClassifyJobDescription(input); err != nil {
		return w.stay(), err
	}

	structured, err := w.services.StructureJobDescription(ctx, input)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session.ID != id || w.session.Step != StepJobDescription {
		return stay(w.session), errStaleSession
	}
	if err != nil {
		return w.recordLocked(err)
	}

	s, err := WithJobDescription(w.session, JobDescriptionArtifact{Input: input, Structured: structured})
	if err != nil {
		return w.recordLocked(err)
	}

	return w.advanceLocked(s)
}

// SubmitContactInfo stores the optional contact details and moves to the
// results step, which starts generation.
func (w *Workflow) SubmitContactInfo(ctx context.Context, info string) (Transition, error) {
	w.mu.Lock()
	if w.session.Step != StepContactInfo {
		tr := stay(w.session)
		w.mu.Unlock()
		return tr, fmt.Errorf("%w: contact info outside step %d", outreach.ErrInvalidTransition, StepContactInfo)
	}

	s, err := WithContactInfo(w.session, strings.TrimSpace(info))
	if err != nil {
		tr := stay(w.session)
		w.mu.Unlock()
		return tr, err
	}
	w.session = s

	s, tr, err := Next(w.session)
	if err != nil {
		w.mu.Unlock()
		return tr, err
	}
	w.session = s
	w.mu.Unlock()

	return tr, w.run(ctx, tr)
}

func (w *Workflow) Next(ctx context.Context) (Transition, error) {
	return w.transition(ctx, Next)
}

func (w *Workflow) Previous(ctx context.Context) (Transition, error) {
	return w.transition(ctx, Previous)
}

func (w *Workflow) JumpTo(ctx context.Context, step Step) (Transition, error) {
	return w.transition(ctx, func(s Session) (Session, Transition, error) {
		return JumpTo(s, step)
	})
}

// Regenerate discards the current output and generates again.
func (w *Workflow) Regenerate(ctx context.Context) (Transition, error) {
	return w.transition(ctx, Regenerate)
}

// Reset starts over. Any generation still running is dropped when it
// completes.
func (w *Workflow) Reset() Transition {
	w.mu.Lock()
	defer w.mu.Unlock()

	old := w.session
	s, tr := Reset(old)
	w.session = s

	w.logger.Info("session reset",
		zap.String("previous_session_id", old.ID),
		zap.Bool("generation_dropped", old.Generating),
		zap.String(logger.FieldSession, s.ID),
	)
	return tr
}

func (w *Workflow) DismissError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = DismissError(w.session)
}

var errStaleSession = errors.New("session was reset while the request was running")

func (w *Workflow) transition(ctx context.Context, fn func(Session) (Session, Transition, error)) (Transition, error) {
	w.mu.Lock()
	s, tr, err := fn(w.session)
	if err != nil {
		w.mu.Unlock()
		return tr, err
	}
	w.session = s
	w.mu.Unlock()

	return tr, w.run(ctx, tr)
}

// run performs the action requested by a transition.
func (w *Workflow) run(ctx context.Context, tr Transition) error {
	if tr.Action != ActionGenerate {
		return nil
	}
	return w.generate(ctx)
}

func (w *Workflow) generate(ctx context.Context) error {
	w.mu.Lock()
	s, ticket, err := BeginGeneration(w.session)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.session = s
	req := generation.Request{
		Kind:           s.Kind,
		ResumeText:     s.Resume.Text,
		JobDescription: string(s.JobDescription.Structured),
		ContactInfo:    s.ContactInfo,
	}
	log := w.sessionLogger(s)
	w.mu.Unlock()

	log.Info("generation started", zap.Int("attempt", ticket.Attempt))

	result, genErr := w.orchestrator.Generate(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	s, applied := CompleteGeneration(w.session, ticket, result, genErr)
	if !applied {
		log.Info("dropping generation result of a stale session", zap.Int("attempt", ticket.Attempt))
		return nil
	}
	w.session = s

	if s.LastError != nil {
		log.Warn("generation failed", zap.Error(s.LastError))
		return s.LastError
	}

	log.Info("generation finished", zap.Float64("ats_score", s.Review.ATSScore))
	return nil
}

// advanceLocked stores s and moves to the next step. Callers hold the lock.
// Input steps never reach results, so no action is pending afterwards.
func (w *Workflow) advanceLocked(s Session) (Transition, error) {
	s, tr, err := Next(s)
	if err != nil {
		return tr, err
	}
	w.session = s
	return tr, nil
}

// recordLocked stores a service failure on the session. Validation
// failures are only returned.
func (w *Workflow) recordLocked(err error) (Transition, error) {
	if !outreach.IsValidation(err) {
		w.session.LastError = err
		w.sessionLogger(w.session).Warn("step failed", zap.Int("step", int(w.session.Step)), zap.Error(err))
	}
	return stay(w.session), err
}

func (w *Workflow) expectStep(step Step) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session.Generating {
		return "", outreach.ErrGenerationInFlight
	}
	if w.session.Step != step {
		return "", fmt.Errorf("%w: expected step %d, at step %d", outreach.ErrInvalidTransition, step, w.session.Step)
	}
	w.session.LastError = nil
	return w.session.ID, nil
}

func (w *Workflow) stay() Transition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return stay(w.session)
}

func (w *Workflow) sessionLogger(s Session) *zap.Logger {
	return logger.WithFields(w.logger, logger.SessionFields(s.ID, string(s.Kind))...)
}
