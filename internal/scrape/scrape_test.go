package scrape

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const posting = `<html><head><script>var x = 1;</script></head><body>
<nav>Jobs Home</nav>
<div class="job-description">
  <h1>Backend Engineer</h1>
  <p>Build   Go services.</p>
</div>
<footer>Copyright</footer>
</body></html>`

func TestExtractMainText(t *testing.T) {
	text, err := ExtractMainText(posting)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer Build Go services.", text)

	text, err = ExtractMainText(`<html><body><header>Top</header><p>Only body text</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Only body text", text)
}

func TestFetchPlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, posting)
	}))
	defer srv.Close()

	s := New(zap.NewNop())
	s.Render = func(context.Context, string) (string, error) {
		t.Fatal("renderer must not be used when the plain fetch has text")
		return "", nil
	}

	text, err := s.Fetch(context.Background(), srv.URL+"/jobs/1")
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
}

func TestFetchFallsBackToRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><body><div id="root"></div><script>render()</script></body></html>`)
	}))
	defer srv.Close()

	var rendered string
	s := New(nil)
	s.Render = func(_ context.Context, pageURL string) (string, error) {
		rendered = pageURL
		return posting, nil
	}

	text, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, rendered)
	assert.Contains(t, text, "Build Go services.")
}

func TestFetchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(nil)
	s.Render = nil
	_, err := s.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)

	s.Render = func(context.Context, string) (string, error) { return "<html><body></body></html>", nil }
	_, err = s.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoContent)

	s.Render = func(context.Context, string) (string, error) { return "", errors.New("chrome not found") }
	_, err = s.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "chrome not found")

	_, err = s.Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestFetchCapsPageSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><body><div class="job-description"><p>Backend Engineer</p></div>`)
		for i := 0; i < 1000; i++ {
			_, _ = io.WriteString(w, "<p>TRAILING</p>")
		}
		_, _ = io.WriteString(w, `</body></html>`)
	}))
	defer srv.Close()

	s := New(zap.NewNop())
	s.MaxBodySize = 128
	s.Render = nil

	text, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
	assert.Less(t, len(text), 128)
}
