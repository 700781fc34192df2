// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/datasetkit/pkg/types"
)

var fakePDF = []byte("%PDF-1.4\n% test\n")

type fakeRecorder struct {
	mu   sync.Mutex
	docs []types.Document
}

func (r *fakeRecorder) Record(_ context.Context, doc types.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

// newSite serves an index page with two topics. The first topic lists three
// PDFs, one of which is missing; the second topic page fails with HTTP 500.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/predmety/mat/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predmety/mat/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body>
<a href="/predmety/mat/">Home</a>
<a href="/predmety/mat/vyrokova-logika/">Výroková logika</a>
<a href="/predmety/mat/broken/">Broken</a>
<a href="/predmety/mat/vyrokova-logika/">again</a>
<a href="/predmety/ine/">Other</a>
</body></html>`))
	})
	mux.HandleFunc("/predmety/mat/vyrokova-logika/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>
<a href="/files/9427.pdf">Úloha 1: Logika</a>
<a href="/files/DOC.PDF"></a>
<a href="/missing.pdf">Missing</a>
</body></html>`))
	})
	mux.HandleFunc("/predmety/mat/broken/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(fakePDF)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func scrapeConfig(ts *httptest.Server, dir string) types.ScrapeConfig {
	return types.ScrapeConfig{
		BaseURL:     ts.URL + "/predmety/mat/",
		DownloadDir: dir,
	}
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  types.ScrapeConfig
	}{
		{"missing base URL", types.ScrapeConfig{DownloadDir: dir}},
		{"unsupported scheme", types.ScrapeConfig{BaseURL: "ftp://example.sk/", DownloadDir: dir}},
		{"missing download dir", types.ScrapeConfig{BaseURL: "https://example.sk/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestNew_DefaultRetriesShared(t *testing.T) {
	s, err := New(types.ScrapeConfig{BaseURL: "https://example.sk/", DownloadDir: t.TempDir()}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultMaxRetries, s.cfg.MaxRetries)
	assert.Equal(t, defaultMaxRetries, s.client.RetryCount)
	assert.Equal(t, defaultMaxRetries, s.retrier.MaxRetries)
}

func TestTopics_RetriesUnavailableIndex(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<a href="/idx/topic/">Topic</a>`))
	}))
	t.Cleanup(ts.Close)

	s, err := New(types.ScrapeConfig{BaseURL: ts.URL + "/idx/", DownloadDir: t.TempDir()}, nil, nil)
	require.NoError(t, err)
	s.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	topics, err := s.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{ts.URL + "/idx/topic/"}, topics)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRun_DownloadsPerTopic(t *testing.T) {
	ts := newSite(t)
	dir := t.TempDir()
	rec := &fakeRecorder{}

	s, err := New(scrapeConfig(ts, dir), rec, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := s.Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Topics)
	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.FailedPages)
	assert.Equal(t, 3, result.Total())
	assert.True(t, result.HasFailures())

	topicDir := filepath.Join(dir, "Vyrokova Logika")
	data, err := os.ReadFile(filepath.Join(topicDir, "Úloha 1_ Logika_9427.pdf"))
	require.NoError(t, err)
	assert.Equal(t, fakePDF, data)
	assert.FileExists(t, filepath.Join(topicDir, "DOC.PDF"))

	entries, err := os.ReadDir(topicDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")

	require.Len(t, rec.docs, 2)
	assert.Equal(t, "Vyrokova Logika", rec.docs[0].Topic)
	assert.Equal(t, "Úloha 1: Logika", rec.docs[0].Title)
	assert.Equal(t, ts.URL+"/files/9427.pdf", rec.docs[0].SourceURL)
	assert.False(t, rec.docs[0].DownloadedAt.IsZero())
	assert.Equal(t, result.Documents, rec.docs)

	assert.Contains(t, out.String(), "found 2 topic pages")
	assert.Contains(t, out.String(), "downloaded: Úloha 1_ Logika_9427.pdf")
	assert.Contains(t, out.String(), "failed:  "+ts.URL+"/missing.pdf")
	assert.Contains(t, out.String(), "Batch summary: 3 found, 2 downloaded, 0 skipped, 1 failed (1 topic pages failed)")
}

func TestRun_RerunSkipsExisting(t *testing.T) {
	ts := newSite(t)
	dir := t.TempDir()

	s, err := New(scrapeConfig(ts, dir), nil, nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := s.Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Downloaded)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, out.String(), "skipped: DOC.PDF (already exists)")
}

func TestRun_IndexFailure(t *testing.T) {
	ts := newSite(t)
	cfg := scrapeConfig(ts, t.TempDir())
	cfg.BaseURL = ts.URL + "/predmety/mat/nothing-here"

	s, err := New(cfg, nil, nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_ContextCancelled(t *testing.T) {
	ts := newSite(t)
	s, err := New(scrapeConfig(ts, t.TempDir()), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTopics_UsesBasePathAsMarker(t *testing.T) {
	ts := newSite(t)
	s, err := New(scrapeConfig(ts, t.TempDir()), nil, nil)
	require.NoError(t, err)

	topics, err := s.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		ts.URL + "/predmety/mat/vyrokova-logika/",
		ts.URL + "/predmety/mat/broken/",
	}, topics)
}
