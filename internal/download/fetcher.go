// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/arxiv-harvester/internal/httputil"
	"github.com/pdiddy/arxiv-harvester/internal/naming"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// MinValidSize is the plausibility threshold: an existing file larger than
// this is treated as a completed download, a smaller one as a leftover.
const MinValidSize = 1024

// chunkSize is the read/write unit while streaming a response body.
const chunkSize = 8192

var (
	// ErrNoURL is reported for records without a PDF URL.
	ErrNoURL = errors.New("no PDF URL available")

	// ErrEmptyDownload is reported when the server returned no body.
	ErrEmptyDownload = errors.New("downloaded file is empty")

	// ErrStalled is reported when a response body delivers no data for
	// longer than the configured timeout.
	ErrStalled = errors.New("download stalled")
)

// ChunkFunc receives byte progress for one record after every chunk.
// expected is the declared content length, or 0 when unknown.
type ChunkFunc func(identifier string, written, expected int64)

// Fetcher downloads a single record. Implementations never return errors:
// every failure becomes an unsuccessful outcome. Successful and skipped
// results are recorded into stats by the fetcher itself.
type Fetcher interface {
	Fetch(ctx context.Context, rec types.Record, stats *Stats) types.DownloadOutcome
}

// HTTPFetcher streams PDFs over HTTP into paths chosen by a naming.Resolver.
type HTTPFetcher struct {
	resolver    *naming.Resolver
	retrier     *httputil.Retrier
	userAgent   string
	idleTimeout time.Duration
	log         logrus.FieldLogger

	// OnChunk, when set, is called from the worker after each chunk.
	OnChunk ChunkFunc
}

// NewHTTPClient returns the client shared by every worker. Idle connections
// per host are sized to the worker pool so downloads reuse connections.
// The timeout bounds connecting and waiting for response headers; it does
// not cap the body, which the fetcher guards with an idle deadline instead.
func NewHTTPClient(cfg types.DownloadConfig) *http.Client {
	timeout := cfg.RequestTimeout()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxConcurrentDownloads
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// NewHTTPFetcher builds a fetcher from the download configuration.
func NewHTTPFetcher(client *http.Client, resolver *naming.Resolver, cfg types.DownloadConfig, log logrus.FieldLogger) *HTTPFetcher {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}
	if log == nil {
		log = discardLogger()
	}
	return &HTTPFetcher{
		resolver:    resolver,
		retrier:     &httputil.Retrier{Client: client, MaxRetries: cfg.RetryAttempts, Log: log},
		userAgent:   userAgent,
		idleTimeout: cfg.RequestTimeout(),
		log:         log,
	}
}

// Fetch downloads rec to its resolved path. A completed file (above
// MinValidSize) at the preferred path or one of its "_N" siblings
// short-circuits the request; an occupied but smaller path makes the
// download land in the next free sibling instead.
func (f *HTTPFetcher) Fetch(ctx context.Context, rec types.Record, stats *Stats) types.DownloadOutcome {
	log := f.log.WithField("arxiv_id", rec.Identifier)

	if rec.PDFURL == "" {
		return failure(rec.Identifier, ErrNoURL)
	}

	preferred, err := f.resolver.Path(rec)
	if err != nil {
		return failure(rec.Identifier, err)
	}

	if existing, size, ok := completedFile(preferred); ok {
		log.WithField("path", existing).Info("file already exists")
		stats.RecordSkip()
		return types.DownloadOutcome{
			Identifier:  rec.Identifier,
			Success:     true,
			Skipped:     true,
			Path:        existing,
			Bytes:       size,
			CompletedAt: time.Now(),
		}
	}

	log.Infof("downloading from %s", rec.PDFURL)

	path, written, err := f.transfer(ctx, rec, preferred)
	if err != nil {
		log.WithError(err).Error("download failed")
		return failure(rec.Identifier, err)
	}

	log.WithFields(logrus.Fields{"path": path, "bytes": written}).Info("download complete")
	stats.RecordSuccess(written)
	return types.DownloadOutcome{
		Identifier:  rec.Identifier,
		Success:     true,
		Path:        path,
		Bytes:       written,
		CompletedAt: time.Now(),
	}
}

// completedFile walks the collision sequence of preferred up to the first
// free name and returns the first regular file above MinValidSize.
func completedFile(preferred string) (string, int64, bool) {
	for n := 0; ; n++ {
		path := naming.Candidate(preferred, n)
		info, err := os.Stat(path)
		if err != nil {
			return "", 0, false
		}
		if info.Mode().IsRegular() && info.Size() > MinValidSize {
			return path, info.Size(), true
		}
	}
}

// transfer performs the GET and streams the body to a newly created file.
// The file is only created once a 2xx response has arrived, and it is
// removed again on any later failure. While the body streams, a watchdog
// cancels the request when no data arrives for idleTimeout.
func (f *HTTPFetcher) transfer(ctx context.Context, rec types.Record, preferred string) (string, int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.PDFURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.retrier.Do(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("network error downloading %s: %w", rec.Identifier, err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", 0, fmt.Errorf("downloading %s: %w", rec.Identifier, err)
	}

	expected := resp.ContentLength
	if expected < 0 {
		expected = 0
	}

	file, path, err := createFile(preferred)
	if err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", preferred, err)
	}

	var stalled atomic.Bool
	idle := func() {}
	if f.idleTimeout > 0 {
		watchdog := time.AfterFunc(f.idleTimeout, func() {
			stalled.Store(true)
			cancel()
		})
		defer watchdog.Stop()
		idle = func() { watchdog.Reset(f.idleTimeout) }
	}

	written, copyErr := f.copyChunks(file, resp.Body, rec.Identifier, expected, idle)
	closeErr := file.Close()
	switch {
	case copyErr != nil && stalled.Load():
		os.Remove(path)
		return "", 0, fmt.Errorf("%w: no data for %s after %d bytes", ErrStalled, f.idleTimeout, written)
	case copyErr != nil:
		os.Remove(path)
		return "", 0, fmt.Errorf("writing download: %w", copyErr)
	case closeErr != nil:
		os.Remove(path)
		return "", 0, fmt.Errorf("closing %s: %w", path, closeErr)
	case written == 0:
		os.Remove(path)
		return "", 0, ErrEmptyDownload
	}
	return path, written, nil
}

// copyChunks streams src into dst, calling progressed after every read that
// delivered data.
func (f *HTTPFetcher) copyChunks(dst io.Writer, src io.Reader, id string, expected int64, progressed func()) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			progressed()
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if f.OnChunk != nil {
				f.OnChunk(id, written, expected)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// createFile exclusively creates the first free path among preferred and
// its "_N" siblings, so two workers never write into the same file.
func createFile(preferred string) (*os.File, string, error) {
	path := naming.Available(preferred)
	for n := 1; ; n++ {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
		path = naming.Sibling(preferred, n)
	}
}

func failure(id string, err error) types.DownloadOutcome {
	return types.DownloadOutcome{
		Identifier:  id,
		Error:       err.Error(),
		CompletedAt: time.Now(),
	}
}
