package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRepo(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://github.com/root-project/root", want: "root-project/root"},
		{in: "git@github.com:root-project/root.git", want: "root-project/root"},
		{in: "root-project/root", want: "root-project/root"},
		{in: "https://example.com/foo", wantErr: true},
	}
	for _, c := range cases {
		got, err := NormalizeRepo(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestFetchFileCachesDownloads(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("class MnParabola {};\n"))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	f := NewGitHubFetcher(cacheDir)
	f.Client = srv.Client()

	// Redirect the raw host at the transport level.
	f.Client.Transport = rewriteHost{base: srv.URL, inner: srv.Client().Transport}

	p1, err := f.FetchFile("root-project/root", "math/minuit2", "abc123", "inc/MnParabola.h")
	require.NoError(t, err)
	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MnParabola")

	p2, err := f.FetchFile("root-project/root", "math/minuit2", "abc123", "inc/MnParabola.h")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, hits, "second fetch must come from cache")

	rel, err := filepath.Rel(cacheDir, p1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("root-project__root", "math__minuit2", "abc123", "inc", "MnParabola.h"), rel)
}

func TestFetchFileReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewGitHubFetcher(t.TempDir())
	f.Client = srv.Client()
	f.Client.Transport = rewriteHost{base: srv.URL, inner: srv.Client().Transport}

	_, err := f.FetchFile("root-project/root", "math/minuit2", "abc123", "missing.h")
	assert.ErrorContains(t, err, "status 404")
}

type rewriteHost struct {
	base  string
	inner http.RoundTripper
}

func (rw rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = req.Host
	u := rw.base + req.URL.Path
	next, err := http.NewRequest(req.Method, u, nil)
	if err != nil {
		return nil, err
	}
	tr := rw.inner
	if tr == nil {
		tr = http.DefaultTransport
	}
	return tr.RoundTrip(next)
}
