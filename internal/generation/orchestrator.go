// Package generation dispatches a generation request to the service
// client matching the selected generator.
package generation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/ai"
	"github.com/spigell/outreach-crafter/internal/outreach"
)

// Request carries the artifacts collected by the earlier steps.
type Request struct {
	Kind           outreach.Kind `validate:"required"`
	ResumeText     string        `validate:"required" label:"resume text"`
	JobDescription string        `validate:"required" label:"job description"`
	ContactInfo    string
}

// Orchestrator allows at most one generation at a time.
type Orchestrator struct {
	generator ai.ContentGenerator
	validate  *validator.Validate
	logger    *zap.Logger

	inFlight atomic.Bool
}

func New(generator ai.ContentGenerator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(f.Name)
	})

	return &Orchestrator{generator: generator, validate: v, logger: logger}
}

// InFlight reports whether a generation is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Generate produces content for req. A call made while another one is
// running returns ErrGenerationInFlight without reaching the service.
// Failures never produce content.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*outreach.Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, outreach.ErrGenerationInFlight
	}
	defer o.inFlight.Store(false)

	if err := o.checkPrerequisites(req); err != nil {
		return nil, err
	}

	in := outreach.GenerationInput{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
		ContactInfo:    req.ContactInfo,
	}

	o.logger.Info("generating content",
		zap.String("generator", string(req.Kind)),
		zap.Bool("with_contact", strings.TrimSpace(req.ContactInfo) != ""),
	)

	var (
		result *outreach.Result
		err    error
	)
	switch req.Kind {
	case outreach.KindEmail:
		result, err = o.generator.GenerateEmail(ctx, in)
	case outreach.KindLinkedIn:
		result, err = o.generator.GenerateReferral(ctx, in, outreach.MessageTypeLinkedIn)
	case outreach.KindReferral:
		result, err = o.generator.GenerateReferral(ctx, in, outreach.MessageTypeEmail)
	default:
		return nil, &outreach.GenerationFailed{Kind: req.Kind, Reason: "unsupported generator", Err: outreach.ErrUnknownKind}
	}

	if err != nil {
		o.logger.Warn("generation failed", zap.String("generator", string(req.Kind)), zap.Error(err))
		return nil, &outreach.GenerationFailed{Kind: req.Kind, Reason: "service call failed", Err: err}
	}

	if err := checkShape(req.Kind, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (o *Orchestrator) checkPrerequisites(req Request) error {
	// blank strings count as missing
	req.ResumeText = strings.TrimSpace(req.ResumeText)
	req.JobDescription = strings.TrimSpace(req.JobDescription)

	err := o.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate generation request: %w", err)
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return &outreach.OrchestrationError{Missing: missing}
}

func checkShape(kind outreach.Kind, result *outreach.Result) error {
	if result == nil || result.Content == nil || result.Review == nil {
		return &outreach.GenerationFailed{Kind: kind, Reason: "empty result"}
	}

	want := kind.ExpectedVariant()
	if got := result.Content.Variant(); got != want {
		return &outreach.GenerationFailed{Kind: kind, Reason: fmt.Sprintf("expected %s content, got %s", want, got)}
	}

	var missing []string
	switch c := result.Content.(type) {
	case *outreach.Email:
		missing = c.Missing()
	case *outreach.Message:
		missing = c.Missing()
	}
	if len(missing) > 0 {
		return &outreach.GenerationFailed{Kind: kind, Reason: "content is missing " + strings.Join(missing, ", ")}
	}

	return nil
}
