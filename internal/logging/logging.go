// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the logrus logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup returns a logger at cfg.Level writing to stderr and, when
// cfg.LogFile is set, appending to that file as well. The returned closer
// releases the file and must be called when the command finishes.
func Setup(cfg types.LoggingConfig, stderr io.Writer) (*logrus.Logger, io.Closer, error) {
	level := cfg.Level
	if level == "" {
		level = types.DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.LogFile == "" {
		log.SetOutput(stderr)
		return log, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(stderr, f))
	return log, f, nil
}
