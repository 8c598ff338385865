// Package documents loads and validates resume documents before they are
// sent to the extraction service.
package documents

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/spigell/outreach-crafter/internal/outreach"
)

const (
	// MaxResumeSize is the largest resume accepted for extraction.
	MaxResumeSize = 5 * 1024 * 1024

	PDFContentType = "application/pdf"
	pdfExtension   = ".pdf"
)

// Document is a resume file held in memory.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

func (d *Document) Size() int64 {
	return int64(len(d.Data))
}

// PageCounter reports the number of pages of a PDF document.
type PageCounter func(data []byte) (int, error)

// Validator checks the resume constraints enforced before extraction.
type Validator struct {
	MaxSize    int64
	CountPages PageCounter
}

// NewValidator returns a validator with the default size limit backed by pdfcpu.
func NewValidator() *Validator {
	return &Validator{
		MaxSize:    MaxResumeSize,
		CountPages: pdfPageCount,
	}
}

// Open reads a resume from disk. The size limit is checked before the
// file is read.
func (v *Validator) Open(path string) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, invalid(outreach.ErrEmptyInput, "resume path is empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat resume %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, invalid(outreach.ErrInvalidDocument, fmt.Sprintf("%q is a directory", path))
	}
	if info.Size() > v.maxSize() {
		return nil, tooLarge(info.Size(), v.maxSize())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume %q: %w", path, err)
	}

	doc := &Document{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}

	if err := v.Validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate returns a *outreach.ValidationError when the document is not a
// PDF, is empty, or exceeds the size limit.
func (v *Validator) Validate(doc *Document) error {
	if doc == nil || len(doc.Data) == 0 {
		return invalid(outreach.ErrEmptyInput, "resume document is empty")
	}

	if doc.Size() > v.maxSize() {
		return tooLarge(doc.Size(), v.maxSize())
	}

	if !strings.EqualFold(filepath.Ext(doc.Name), pdfExtension) {
		return invalid(outreach.ErrInvalidDocument, fmt.Sprintf("%q is not a PDF file", doc.Name))
	}

	if detected := mimetype.Detect(doc.Data); !detected.Is(PDFContentType) {
		return invalid(outreach.ErrInvalidDocument, fmt.Sprintf("content of %q looks like %s", doc.Name, detected.String()))
	}

	if v.CountPages != nil {
		pages, err := v.CountPages(doc.Data)
		if err != nil {
			return invalid(outreach.ErrInvalidDocument, fmt.Sprintf("unreadable PDF: %v", err))
		}
		if pages == 0 {
			return invalid(outreach.ErrInvalidDocument, "PDF has no pages")
		}
	}

	doc.ContentType = PDFContentType
	return nil
}

func (v *Validator) maxSize() int64 {
	if v.MaxSize <= 0 {
		return MaxResumeSize
	}
	return v.MaxSize
}

func pdfPageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

func invalid(sentinel error, detail string) error {
	return &outreach.ValidationError{Field: "resume", Err: fmt.Errorf("%w: %s", sentinel, detail)}
}

func tooLarge(size, limit int64) error {
	return &outreach.ValidationError{
		Field: "resume",
		Err:   fmt.Errorf("%w: %d bytes exceeds %d bytes", outreach.ErrDocumentTooLarge, size, limit),
	}
}
