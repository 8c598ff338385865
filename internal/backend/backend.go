// Package backend implements the service clients against the remote
// outreach backend API.
package backend

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout = 2 * time.Minute
	userAgent      = "spigell/outreach-crafter"

	resumePath           = "/v1/resume"
	jdFromURLPath        = "/v1/jd-from-url"
	jdFromTextPath       = "/v1/jd-from-text"
	generateEmailPath    = "/v2/generate-email"
	generateReferralPath = "/v1/generate-referral"
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
	// MaxLogLength bounds payload previews in debug logs.
	MaxLogLength int
}

// New returns a client for the backend rooted at baseURL. A zero timeout
// selects the default, generation calls routinely take tens of seconds.
func New(logger *zap.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent:    userAgent,
		BaseURL:      baseURL,
		MaxLogLength: 200,
	}, nil
}

func (c *Client) Name() string { return "backend" }

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}
