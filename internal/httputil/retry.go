// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second

	// maxRetryAfter caps a server-supplied Retry-After value.
	maxRetryAfter = 2 * time.Minute
)

// Retrier re-issues requests answered with HTTP 429 (Too Many Requests) or
// 503 (Service Unavailable). The wait is the response's Retry-After seconds
// when present, otherwise BaseDelay doubled on each attempt.
type Retrier struct {
	// MaxRetries is the number of retries after the first attempt
	// (default 3).
	MaxRetries int

	// BaseDelay is the first backoff (default 2s).
	BaseDelay time.Duration

	Log *zap.Logger
}

// Do executes req with client, retrying as described on Retrier. Transport
// errors are returned immediately. If ctx is cancelled during a wait Do
// returns ctx.Err(). After the last retry the final response is returned
// as-is so the caller can inspect its status.
func (r Retrier) Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := r.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait == 0 {
			wait = base << attempt
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Info("retrying request",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// retryAfter parses a Retry-After header given in seconds. HTTP-date values
// and garbage yield zero, which selects exponential backoff.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
