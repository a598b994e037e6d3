package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpipe/internal/adapters/localstorage"
)

// serveMedia answers every request with body under the given content type.
func serveMedia(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "video/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetch(t *testing.T) {
	server := serveMedia(t, "video/mp4", "video-bytes")

	body, err := NewMediaFetcher().Fetch(context.Background(), server.URL+"/v/abc.mp4")
	require.NoError(t, err)
	defer body.Close()

	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(b))
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewMediaFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetch_ContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{"video/mp4", false},
		{"video/webm; codecs=vp9", false},
		{"application/octet-stream", false},
		{"text/html; charset=utf-8", true},
		{"application/json", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			server := serveMedia(t, tt.contentType, "payload")
			body, err := NewMediaFetcher().Fetch(context.Background(), server.URL)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotVideo)
				return
			}
			require.NoError(t, err)
			body.Close()
		})
	}
}

type stubResolver struct {
	url string
	err error
	got string
}

func (r *stubResolver) GetVideoURL(_ context.Context, pageURL string) (string, error) {
	r.got = pageURL
	return r.url, r.err
}

func TestResolvingDownloader_SavesByVideoID(t *testing.T) {
	server := serveMedia(t, "video/mp4", "payload")

	storage := localstorage.NewLocalStorage(t.TempDir())
	resolver := &stubResolver{url: server.URL + "/media"}
	d := NewResolvingDownloader(resolver, NewMediaFetcher(), storage)

	path, err := d.Download(context.Background(), "https://www.tiktok.com/@bob/video/42", "42")
	require.NoError(t, err)
	assert.Equal(t, "https://www.tiktok.com/@bob/video/42", resolver.got)
	assert.Equal(t, storage.Path("42.mp4"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
}

func TestResolvingDownloader_BlockPageNotSaved(t *testing.T) {
	server := serveMedia(t, "text/html", "<html>verify you are human</html>")

	storage := localstorage.NewLocalStorage(t.TempDir())
	d := NewResolvingDownloader(&stubResolver{url: server.URL}, NewMediaFetcher(), storage)

	_, err := d.Download(context.Background(), "https://www.tiktok.com/@bob/video/42", "42")
	assert.ErrorIs(t, err, ErrNotVideo)
	_, statErr := os.Stat(storage.Path("42.mp4"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolvingDownloader_ResolveFailure(t *testing.T) {
	storage := localstorage.NewLocalStorage(t.TempDir())
	d := NewResolvingDownloader(&stubResolver{err: errors.New("blocked")}, NewMediaFetcher(), storage)

	_, err := d.Download(context.Background(), "https://www.tiktok.com/@bob/video/42", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}
