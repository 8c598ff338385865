package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/display"
	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/export"
	"github.com/spigell/outreach-crafter/internal/logger"
	"github.com/spigell/outreach-crafter/internal/outreach"
	"github.com/spigell/outreach-crafter/internal/utils"
	"github.com/spigell/outreach-crafter/internal/workflow"
)

const (
	PromptRegenerate      = "Regenerate"
	PromptGenerateAnother = "Generate another"
	PromptSaveToFile      = "Save to file"
	PromptStartOver       = "Start over"
	PromptRetry           = "Retry"
	PromptBack            = "back"
	PromptExit            = "Exit"

	// autoAdvanceDelay lets the user read the confirmation of a finished step.
	autoAdvanceDelay = 1500 * time.Millisecond
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Walk through the outreach workflow interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-pause", false, "do not pause after a completed step")
}

// run is the interactive entry point.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the outreach-crafter", zap.String("version", version), zap.String("provider", config.Provider))

	services, err := newServices(ctx, config, logger)
	if err != nil {
		logger.Fatal("building service clients", zap.Error(err))
	}

	pause := autoAdvanceDelay
	if noPause, _ := cmd.Flags().GetBool("no-pause"); noPause {
		pause = 0
	}

	s := &session{
		wf:     workflow.New(services, documents.NewValidator(), logger),
		logger: logger,
		config: config,
		pause:  pause,
	}

	for {
		if err := s.step(ctx); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting")
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// session drives one interactive workflow.
type session struct {
	wf     *workflow.Workflow
	logger *zap.Logger
	config *Config
	pause  time.Duration
}

func (s *session) step(ctx context.Context) error {
	current := s.wf.Session()

	switch current.Step {
	case workflow.StepUnselected:
		if current.Kind != "" {
			return s.resumeGenerator(ctx, current)
		}
		return s.selectGenerator()
	case workflow.StepResume:
		return s.input(ctx, current, "Path to your resume (PDF, max 5MB)", s.wf.SubmitResume)
	case workflow.StepJobDescription:
		return s.input(ctx, current, "Job posting URL (https://...) or description text, @file to read from a file", func(ctx context.Context, in string) (workflow.Transition, error) {
			text, err := readArg(in)
			if err != nil {
				return workflow.Transition{}, &outreach.ValidationError{Field: "job description", Err: err}
			}
			return s.wf.SubmitJobDescription(ctx, text)
		})
	case workflow.StepContactInfo:
		return s.input(ctx, current, "Contact information (optional, enter to skip)", s.submitContact)
	case workflow.StepResults:
		return s.results(ctx, current)
	default:
		return fmt.Errorf("unexpected step %d", current.Step)
	}
}

func (s *session) selectGenerator() error {
	kinds := outreach.Kinds()
	items := make([]string, 0, len(kinds)+1)
	for _, k := range kinds {
		items = append(items, k.DisplayName())
	}

	prompt := promptui.Select{
		Label: "What would you like to write?",
		Items: append(items, PromptExit),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return err
	}
	if idx == len(kinds) {
		return errExit
	}

	_, err = s.wf.SelectGenerator(kinds[idx])
	return err
}

// resumeGenerator is shown after stepping back from the first input step.
// The generator stays fixed until the session is reset.
func (s *session) resumeGenerator(ctx context.Context, current workflow.Session) error {
	proceed := "Continue with " + current.Kind.DisplayName()

	prompt := promptui.Select{
		Label: "Generator already chosen",
		Items: []string{proceed, PromptStartOver, PromptExit},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case proceed:
		_, err = s.wf.Next(ctx)
		return err
	case PromptStartOver:
		s.wf.Reset()
		return nil
	default:
		return errExit
	}
}

type submitFunc func(ctx context.Context, input string) (workflow.Transition, error)

func (s *session) input(ctx context.Context, current workflow.Session, label string, submit submitFunc) error {
	n, total := current.Progress()
	fmt.Println(display.StepHeader(current.Kind.DisplayName(), n, total, current.Step.Title()))
	if current.Step == workflow.StepContactInfo {
		fmt.Println(display.Hint("e.g. " + current.Kind.ContactHint()))
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s (type %q to return)", label, PromptBack),
	}

	value, err := prompt.Run()
	if err != nil {
		return err
	}

	if strings.TrimSpace(value) == PromptBack {
		_, err := s.wf.Previous(ctx)
		return err
	}

	if current.Step == workflow.StepContactInfo {
		fmt.Println("Generating, this may take a while...")
	}

	tr, err := submit(ctx, value)
	if err != nil {
		return s.report(err)
	}

	if tr.To != current.Step && tr.To < workflow.StepResults {
		fmt.Printf("%s done\n", current.Step.Title())
		return utils.WaitFor(ctx, s.pause)
	}
	return nil
}

func (s *session) submitContact(ctx context.Context, value string) (workflow.Transition, error) {
	tr, err := s.wf.SubmitContactInfo(ctx, value)
	// a failed generation is shown on the results step
	if err != nil && tr.To == workflow.StepResults {
		return tr, nil
	}
	return tr, err
}

// report prints a step failure and keeps the loop running. Failures
// recorded on the session are dismissed once shown.
func (s *session) report(err error) error {
	fmt.Println(display.RenderError(err))
	if !outreach.IsValidation(err) {
		s.logger.Warn("step failed", zap.Error(err))
		s.wf.DismissError()
	}
	return nil
}

func (s *session) results(ctx context.Context, current workflow.Session) error {
	if current.LastError != nil {
		fmt.Println(display.RenderError(current.LastError))

		prompt := promptui.Select{
			Label: "Generation failed",
			Items: []string{PromptRetry, PromptBack, PromptStartOver, PromptExit},
		}
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptRetry:
			return s.regenerate(ctx)
		case PromptBack:
			s.wf.DismissError()
			_, err = s.wf.Previous(ctx)
			return err
		case PromptStartOver:
			s.wf.Reset()
			return nil
		default:
			return errExit
		}
	}

	result := current.Result()
	if result == nil {
		// arrived without content, e.g. after a jump
		return s.regenerate(ctx)
	}

	view, err := display.AdaptResult(result)
	if err != nil {
		return err
	}
	fmt.Println(display.Render(view))
	if link := view.MailtoURL(recipient(current.ContactInfo)); link != "" {
		fmt.Println(display.Hint("Open in a mail client: " + link))
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptRegenerate, PromptGenerateAnother, PromptSaveToFile, PromptStartOver, PromptExit},
	}
	_, action, err := prompt.Run()
	if err != nil {
		return err
	}

	return s.handleAction(ctx, action, current, view)
}

func (s *session) handleAction(ctx context.Context, action string, current workflow.Session, view *display.View) error {
	switch action {
	case PromptRegenerate:
		return s.regenerate(ctx)
	case PromptGenerateAnother:
		_, err := s.wf.JumpTo(ctx, workflow.StepResume)
		return err
	case PromptSaveToFile:
		filename, err := export.DumpToTmpFile(s.config.ExportDir, newRecord(current, view))
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptStartOver:
		s.wf.Reset()
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// regenerate runs a new generation. Failures stay on the session and are
// shown on the next pass of the loop.
func (s *session) regenerate(ctx context.Context) error {
	fmt.Println("Generating, this may take a while...")
	_, err := s.wf.Regenerate(ctx)
	if err != nil && s.wf.Session().LastError == nil {
		return err
	}
	return nil
}

func newRecord(current workflow.Session, view *display.View) *export.Record {
	return &export.Record{
		SessionID:      current.ID,
		Generator:      current.Kind,
		CreatedAt:      time.Now().UTC(),
		ResumeFile:     current.Resume.FileName,
		JobDescription: current.JobDescription.Structured,
		ContactInfo:    current.ContactInfo,
		Result:         current.Result(),
		Text:           view.Text(),
		Mailto:         view.MailtoURL(recipient(current.ContactInfo)),
	}
}

// recipient returns the first email address found in the contact details.
func recipient(contact string) string {
	for _, word := range strings.FieldsFunc(contact, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '<' || r == '>'
	}) {
		if !strings.Contains(word, "@") {
			continue
		}
		if addr, err := mail.ParseAddress(word); err == nil {
			return addr.Address
		}
	}
	return ""
}

// readArg returns the content of the file for "@path" arguments and the
// argument itself otherwise.
func readArg(arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
