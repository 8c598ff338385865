package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/display"
	"github.com/spigell/outreach-crafter/internal/documents"
	"github.com/spigell/outreach-crafter/internal/export"
	"github.com/spigell/outreach-crafter/internal/logger"
	"github.com/spigell/outreach-crafter/internal/outreach"
	"github.com/spigell/outreach-crafter/internal/workflow"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type generateOptions struct {
	kind        string
	resume      string
	jd          string
	jdFile      string
	contact     string
	contactFile string
	output      string
	save        bool
}

var generateOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a message in one go, without prompts",
	Example: `  outreach-crafter generate --kind email --resume cv.pdf --jd https://example.com/jobs/42
  outreach-crafter generate --kind referral --resume cv.pdf --jd-file jd.txt --contact "Jessica, Staff Engineer" -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return generate(ctx, generateOpts)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringVarP(&generateOpts.kind, "kind", "k", "", "what to write: email, linkedin or referral")
	f.StringVarP(&generateOpts.resume, "resume", "r", "", "path to the resume PDF")
	f.StringVar(&generateOpts.jd, "jd", "", "job posting URL or job description text")
	f.StringVar(&generateOpts.jdFile, "jd-file", "", "read the job description from a file")
	f.StringVar(&generateOpts.contact, "contact", "", "recruiter or referrer details")
	f.StringVar(&generateOpts.contactFile, "contact-file", "", "read the contact details from a file")
	f.StringVarP(&generateOpts.output, "output", "o", outputText, "output format: text or json")
	f.BoolVar(&generateOpts.save, "save", false, "also save the result to a file in export-dir")

	generateCmd.MarkFlagRequired("kind")
	generateCmd.MarkFlagRequired("resume")
	generateCmd.MarkFlagsMutuallyExclusive("jd", "jd-file")
	generateCmd.MarkFlagsOneRequired("jd", "jd-file")
	generateCmd.MarkFlagsMutuallyExclusive("contact", "contact-file")
}

// resolve reads file backed options and checks the rest.
func (o generateOptions) resolve() (generateOptions, outreach.Kind, error) {
	kind, err := outreach.ParseKind(o.kind)
	if err != nil {
		return o, "", err
	}

	if o.output != outputText && o.output != outputJSON {
		return o, "", fmt.Errorf("unsupported output format: %s", o.output)
	}

	if o.jdFile != "" {
		data, err := os.ReadFile(o.jdFile)
		if err != nil {
			return o, "", fmt.Errorf("read job description: %w", err)
		}
		o.jd = string(data)
	}

	if o.contactFile != "" {
		data, err := os.ReadFile(o.contactFile)
		if err != nil {
			return o, "", fmt.Errorf("read contact info: %w", err)
		}
		o.contact = string(data)
	}

	return o, kind, nil
}

func generate(ctx context.Context, opts generateOptions) error {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	opts, kind, err := opts.resolve()
	if err != nil {
		return err
	}

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	services, err := newServices(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("building service clients: %w", err)
	}

	wf := workflow.New(services, documents.NewValidator(), logger)

	current, err := runWorkflow(ctx, wf, kind, opts)
	if err != nil {
		return err
	}

	view, err := display.AdaptResult(current.Result())
	if err != nil {
		return err
	}
	record := newRecord(current, view)

	if opts.save {
		filename, err := export.DumpToTmpFile(config.ExportDir, record)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	}

	if opts.output == outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Println(display.Render(view))
	return nil
}

// runWorkflow feeds every step in order and returns the finished session.
func runWorkflow(ctx context.Context, wf *workflow.Workflow, kind outreach.Kind, opts generateOptions) (workflow.Session, error) {
	if _, err := wf.SelectGenerator(kind); err != nil {
		return workflow.Session{}, err
	}
	if _, err := wf.SubmitResume(ctx, opts.resume); err != nil {
		return workflow.Session{}, err
	}
	if _, err := wf.SubmitJobDescription(ctx, opts.jd); err != nil {
		return workflow.Session{}, err
	}
	if _, err := wf.SubmitContactInfo(ctx, opts.contact); err != nil {
		return workflow.Session{}, err
	}

	current := wf.Session()
	if !current.HasResult() {
		return current, errors.New("generation finished without a result")
	}
	return current, nil
}
