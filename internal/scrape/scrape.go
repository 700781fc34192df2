// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape crawls an index page for topic pages and downloads every
// PDF linked from them into one directory per topic.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/datasetkit/internal/httputil"
	"github.com/pdiddy/datasetkit/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultMaxRetries = 3
)

// Recorder persists downloaded documents. The catalog implements it.
type Recorder interface {
	Record(ctx context.Context, doc types.Document) error
}

// BatchResult holds the outcome of a scrape run.
type BatchResult struct {
	Topics      int
	Found       int
	Downloaded  int
	Skipped     int
	Failed      int
	FailedPages int
	Documents   []types.Document
}

// Total returns the number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any page or download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.FailedPages > 0
}

// Scraper fetches pages with resty and downloads PDFs through the same
// underlying http.Client.
type Scraper struct {
	cfg     types.ScrapeConfig
	base    *url.URL
	marker  string
	client  *resty.Client
	retrier httputil.Retrier
	rec     Recorder
	log     *zap.Logger
}

// New creates a Scraper. rec may be nil to skip recording; a nil logger
// discards diagnostics.
func New(cfg types.ScrapeConfig, rec Recorder, log *zap.Logger) (*Scraper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", cfg.BaseURL)
	}
	if cfg.DownloadDir == "" {
		return nil, errors.New("download directory is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	// Page fetches and downloads share one retry budget.
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	marker := cfg.TopicMarker
	if marker == "" {
		marker = base.Path
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(cfg.MaxRetries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests ||
				r.StatusCode() == http.StatusServiceUnavailable)
		})

	return &Scraper{
		cfg:     cfg,
		base:    base,
		marker:  marker,
		client:  client,
		retrier: httputil.Retrier{MaxRetries: cfg.MaxRetries, Log: log},
		rec:     rec,
		log:     log,
	}, nil
}

// Run discovers topic pages and downloads their PDFs. A failure to fetch the
// index page is returned as an error; failures on individual topic pages or
// downloads are reported to w, counted, and skipped.
func (s *Scraper) Run(ctx context.Context, w io.Writer) (BatchResult, error) {
	var result BatchResult

	fmt.Fprintf(w, "fetching index: %s\n", s.base)
	topics, err := s.Topics(ctx)
	if err != nil {
		return result, err
	}
	result.Topics = len(topics)
	fmt.Fprintf(w, "found %d topic pages\n", len(topics))

	needDelay := false
	for _, topicURL := range topics {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		topic := TopicName(topicURL)
		fmt.Fprintf(w, "\ntopic: %s\n", topic)

		links, err := s.PDFLinks(ctx, topicURL)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", topicURL, err)
			result.FailedPages++
			continue
		}
		result.Found += len(links)

		for _, link := range links {
			if needDelay && s.cfg.DownloadDelay > 0 {
				select {
				case <-ctx.Done():
					return result, ctx.Err()
				case <-time.After(s.cfg.DownloadDelay):
				}
			}

			path, skipped, err := s.Download(ctx, link, topic)
			needDelay = err == nil && !skipped
			if err != nil {
				fmt.Fprintf(w, "failed:  %s (%v)\n", link.URL, err)
				result.Failed++
				continue
			}
			if skipped {
				fmt.Fprintf(w, "skipped: %s (already exists)\n", filepath.Base(path))
				result.Skipped++
			} else {
				fmt.Fprintf(w, "downloaded: %s\n", filepath.Base(path))
				result.Downloaded++
			}

			doc := types.Document{
				Path:         path,
				Topic:        topic,
				Title:        link.Name,
				SourceURL:    link.URL,
				DownloadedAt: time.Now().UTC(),
			}
			result.Documents = append(result.Documents, doc)
			if s.rec != nil {
				if err := s.rec.Record(ctx, doc); err != nil {
					s.log.Warn("recording document failed", zap.String("path", path), zap.Error(err))
				}
			}
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d found, %d downloaded, %d skipped, %d failed (%d topic pages failed)\n",
		result.Found, result.Downloaded, result.Skipped, result.Failed, result.FailedPages)
	return result, nil
}

// Topics fetches the index page and returns the topic page URLs on it.
func (s *Scraper) Topics(ctx context.Context) ([]string, error) {
	doc, err := s.fetchDocument(ctx, s.base.String())
	if err != nil {
		return nil, err
	}
	topics := TopicLinks(doc, s.base, s.marker)
	s.log.Debug("topic links", zap.Strings("topics", topics))
	return topics, nil
}

// PDFLinks fetches a topic page and returns the PDF links on it.
func (s *Scraper) PDFLinks(ctx context.Context, topicURL string) ([]PDFLink, error) {
	page, err := url.Parse(topicURL)
	if err != nil {
		return nil, fmt.Errorf("parsing topic URL: %w", err)
	}
	doc, err := s.fetchDocument(ctx, topicURL)
	if err != nil {
		return nil, err
	}
	return PDFLinks(doc, page), nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %s: HTTP %d", pageURL, resp.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	return doc, nil
}

// Download saves one PDF under DownloadDir/<topic>/. An existing file is
// left alone and reported as skipped.
func (s *Scraper) Download(ctx context.Context, link PDFLink, topic string) (path string, skipped bool, err error) {
	topicDir := filepath.Join(s.cfg.DownloadDir, SanitizeFilename(topic))
	path = filepath.Join(topicDir, FileName(link.URL, link.Name))

	if _, err := os.Stat(path); err == nil {
		return path, true, nil
	}
	if err := os.MkdirAll(topicDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", topicDir, err)
	}
	if err := s.downloadFile(ctx, link.URL, path); err != nil {
		return "", false, err
	}
	return path, false, nil
}

// downloadFile fetches rawURL into a temporary file next to destPath and
// renames it into place on success.
func (s *Scraper) downloadFile(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := s.retrier.Do(ctx, s.client.GetClient(), req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
