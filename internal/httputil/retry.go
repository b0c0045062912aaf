// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the search client and the
// downloader: a retrying request executor and status checking.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryBaseDelay controls the base duration for exponential backoff. The
// delay doubles each attempt: 1 s, 2 s, 4 s, ... Tests override this to
// avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// ErrStatus is wrapped by StatusError for any non-2xx response.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// CheckStatus returns a *StatusError when resp is not 2xx.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	e := &StatusError{Code: resp.StatusCode}
	if resp.Request != nil {
		e.URL = resp.Request.URL.String()
	}
	return e
}

// Retryable reports whether a response status is worth another attempt.
func Retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Retrier executes requests with a shared client and retries transient
// failures. A Retrier is safe for concurrent use as long as its fields are
// not modified while requests are in flight.
type Retrier struct {
	Client     *http.Client
	MaxRetries int
	Log        logrus.FieldLogger
}

// Do executes req, retrying on connection errors and on 429/500/502/503/504
// with exponential backoff starting at RetryBaseDelay. MaxRetries is the
// number of extra attempts; zero disables retrying.
//
// On each retryable response the body is drained and closed before
// sleeping. If the context is cancelled during a backoff wait Do returns
// ctx.Err(). After exhausting retries the last response is returned as-is
// so the caller can inspect it, or the last transport error.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	log := r.Log
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	for attempt := 0; ; attempt++ {
		resp, err := r.Client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil || attempt >= maxRetries {
				return nil, err
			}
			log.WithError(err).WithField("url", req.URL.String()).
				Debugf("request failed, retrying (attempt %d/%d)", attempt+1, maxRetries)
		} else {
			if !Retryable(resp.StatusCode) || attempt >= maxRetries {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			log.WithField("url", req.URL.String()).
				Debugf("HTTP %d, retrying (attempt %d/%d)", resp.StatusCode, attempt+1, maxRetries)
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// DoWithRetry is a convenience wrapper around Retrier.Do without logging.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	r := &Retrier{Client: client, MaxRetries: maxRetries}
	return r.Do(ctx, req)
}
