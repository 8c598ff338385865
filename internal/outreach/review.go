package outreach

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Review is the structured resume/job match analysis returned alongside
// every generated message.
type Review struct {
	OverallSummary      string          `json:"overall_summary" mapstructure:"overall_summary"`
	Strengths           []string        `json:"strengths" mapstructure:"strengths"`
	AreasForImprovement []string        `json:"areas_for_improvement" mapstructure:"areas_for_improvement"`
	Recommendations     []string        `json:"recommendations" mapstructure:"recommendations"`
	ATSScore            float64         `json:"ats_score" mapstructure:"ats_score"`
	KeywordAnalysis     KeywordAnalysis `json:"keyword_analysis" mapstructure:"keyword_analysis"`
}

type KeywordAnalysis struct {
	MatchedKeywords    []string          `json:"matched_keywords" mapstructure:"matched_keywords"`
	MissingKeywords    []string          `json:"missing_keywords" mapstructure:"missing_keywords"`
	KeywordSuggestions map[string]string `json:"keyword_suggestions" mapstructure:"keyword_suggestions"`
	MatchPercentage    float64           `json:"match_percentage" mapstructure:"match_percentage"`
}

// DecodeReview converts a raw response object into a Review.
func DecodeReview(raw map[string]any) (*Review, error) {
	if raw == nil {
		return nil, fmt.Errorf("review is empty")
	}

	var review Review
	cfg := &mapstructure.DecoderConfig{
		Result:           &review,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}

	if review.ATSScore < 0 || review.ATSScore > 100 {
		return nil, fmt.Errorf("ats_score %v is out of range [0,100]", review.ATSScore)
	}
	if p := review.KeywordAnalysis.MatchPercentage; p < 0 || p > 100 {
		return nil, fmt.Errorf("match_percentage %v is out of range [0,100]", p)
	}

	return &review, nil
}
