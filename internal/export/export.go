// Package export writes finished results to disk.
package export

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/spigell/outreach-crafter/internal/outreach"
)

// Record is the saved form of one generation. Text is the copy-all
// rendering of the content.
type Record struct {
	SessionID      string           `json:"session_id"`
	Generator      outreach.Kind    `json:"generator"`
	CreatedAt      time.Time        `json:"created_at"`
	ResumeFile     string           `json:"resume_file,omitempty"`
	JobDescription json.RawMessage  `json:"job_description,omitempty"`
	ContactInfo    string           `json:"contact_info,omitempty"`
	Result         *outreach.Result `json:"result"`
	Text           string           `json:"text"`
	Mailto         string           `json:"mailto,omitempty"`
}

// DumpToTmpFile writes the record as indented JSON to a new file in dir
// (the system temp dir when empty) and returns its name.
func DumpToTmpFile(dir string, rec *Record) (string, error) {
	if rec == nil || rec.Result == nil {
		return "", errors.New("nothing to export")
	}

	file, err := os.CreateTemp(dir, "outreach_*.json")
	if err != nil {
		return "", err
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		// no partial records on disk
		return "", errors.Join(err, file.Close(), os.Remove(file.Name()))
	}

	if err := file.Close(); err != nil {
		return "", errors.Join(err, os.Remove(file.Name()))
	}
	return file.Name(), nil
}
