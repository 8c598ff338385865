package outreach

import "strings"

// InputKind tells how a job description was supplied.
type InputKind string

const (
	InputURL  InputKind = "url"
	InputText InputKind = "text"
)

const urlPrefix = "https://"

// ClassifyJobDescription decides by prefix alone whether the input is a
// posting URL or pasted text. Blank input is a validation error.
func ClassifyJobDescription(input string) (InputKind, error) {
	if strings.TrimSpace(input) == "" {
		return "", &ValidationError{Field: "job description", Err: ErrEmptyInput}
	}
	if strings.HasPrefix(input, urlPrefix) {
		return InputURL, nil
	}
	return InputText, nil
}
