// Package display turns generated content into a renderable view.
package display

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spigell/outreach-crafter/internal/outreach"
)

// Field is one labeled block of generated text.
type Field struct {
	Label string
	Value string
}

// View is the normalized form of a result: the same structure for both
// content shapes, with review collections never nil.
type View struct {
	Variant outreach.Variant
	// Subject is set for the email shape only.
	Subject string
	Body    []Field
	Review  outreach.Review
}

// Adapt builds the view for content and review.
func Adapt(content outreach.Content, review *outreach.Review) (*View, error) {
	if content == nil {
		return nil, fmt.Errorf("no generated content")
	}

	view := &View{Variant: content.Variant()}

	switch c := content.(type) {
	case *outreach.Email:
		view.Subject = c.Subject
		view.Body = []Field{
			{Label: "Greeting", Value: c.Greeting},
			{Label: "Body", Value: c.Body},
			{Label: "Closing", Value: c.Closing},
			{Label: "Signature", Value: c.Signature},
		}
	case *outreach.Message:
		view.Body = []Field{
			{Label: "Greeting", Value: c.Greeting},
			{Label: "Body", Value: c.Body},
			{Label: "Closing", Value: c.Closing},
		}
	default:
		return nil, fmt.Errorf("unsupported content type %T", content)
	}

	if review != nil {
		view.Review = *review
	}
	normalize(&view.Review)

	return view, nil
}

// AdaptResult is Adapt for a result value.
func AdaptResult(r *outreach.Result) (*View, error) {
	if r == nil {
		return nil, fmt.Errorf("no generated content")
	}
	return Adapt(r.Content, r.Review)
}

func normalize(r *outreach.Review) {
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.AreasForImprovement == nil {
		r.AreasForImprovement = []string{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	if r.KeywordAnalysis.MatchedKeywords == nil {
		r.KeywordAnalysis.MatchedKeywords = []string{}
	}
	if r.KeywordAnalysis.MissingKeywords == nil {
		r.KeywordAnalysis.MissingKeywords = []string{}
	}
	if r.KeywordAnalysis.KeywordSuggestions == nil {
		r.KeywordAnalysis.KeywordSuggestions = map[string]string{}
	}
}

// Fields returns every block in display order, the subject first when present.
func (v *View) Fields() []Field {
	fields := make([]Field, 0, len(v.Body)+1)
	if v.Variant == outreach.VariantEmail {
		fields = append(fields, Field{Label: "Subject", Value: v.Subject})
	}
	return append(fields, v.Body...)
}

// Text is the copy-all layout: greeting, body and closing separated by
// blank lines, the signature right under the closing.
func (v *View) Text() string {
	var b strings.Builder
	for i, f := range v.Body {
		switch {
		case i == 0:
		case f.Label == "Signature":
			b.WriteString("\n")
		default:
			b.WriteString("\n\n")
		}
		b.WriteString(f.Value)
	}
	return b.String()
}

// MailtoURL returns a mailto link prefilled with subject and text. It is
// empty for the message shape.
func (v *View) MailtoURL(to string) string {
	if v.Variant != outreach.VariantEmail {
		return ""
	}
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		url.PathEscape(strings.TrimSpace(to)), queryEscape(v.Subject), queryEscape(v.Text()))
}

func queryEscape(s string) string {
	// mail clients do not decode '+' as a space
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

type Band string

const (
	BandStrong Band = "strong"
	BandFair   Band = "fair"
	BandWeak   Band = "weak"
)

// ScoreBand classifies an ATS score.
func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandFair
	default:
		return BandWeak
	}
}
