// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/arxiv-harvester/internal/naming"
)

// CleanupIncomplete deletes every PDF under root smaller than MinValidSize,
// treating it as a leftover from an interrupted run, and returns how many
// files were removed. It is best effort: unreadable entries and failed
// removals are logged and skipped. A missing root removes nothing.
func CleanupIncomplete(root string, log logrus.FieldLogger) (int, error) {
	if log == nil {
		log = discardLogger()
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.WithError(err).WithField("path", path).Warn("skipping unreadable entry")
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), naming.Extension) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping unreadable file")
			return nil
		}
		if info.Size() >= MinValidSize {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("could not remove incomplete download")
			return nil
		}
		log.WithField("path", path).Info("removed incomplete download")
		removed++
		return nil
	})
	log.Infof("cleaned up %d incomplete downloads", removed)
	return removed, err
}
