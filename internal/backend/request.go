package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/utils"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
	contentEncoding = "gzip"
)

// response is a fully read backend response.
type response struct {
	Status     string
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// filePart is a single file attached to a multipart request.
type filePart struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentTypeJSON)

	return c.request(req)
}

func (c *Client) postForm(ctx context.Context, url string, values url.Values) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentTypeForm)

	return c.request(req)
}

func (c *Client) postFile(ctx context.Context, url string, file filePart) (*response, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	// CreateFormFile would label the part application/octet-stream, the
	// backend only accepts a PDF content type.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
	header.Set("Content-Type", file.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(part, bytes.NewReader(file.Data)); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.request(req)
}

func (c *Client) request(req *http.Request) (*response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from backend",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_length", utf8.RuneCount(data)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.MaxLogLength)),
	)

	return &response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// errorDetail pulls the FastAPI style {"detail": "..."} message out of an
// error body, falling back to the raw text.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(payload.Detail); err == nil {
			return string(b)
		}
	}
	return utils.TruncateForLog(string(body), 200)
}
