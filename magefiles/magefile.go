// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

// Package main contains Mage build targets for arxiv-harvester developer tooling.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a harvest expects.
var projectDirs = []string{
	"downloaded_papers",
	"exports",
	"logs",
}

// Init creates the working directories and a default config file.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		mg.Deps(Build)
		if err := sh.RunV(binPath(), "config", "init", configFile); err != nil {
			return err
		}
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir     = "bin"
	binName    = "arxiv-harvester"
	cmdPkg     = "./cmd/arxiv-harvester"
	configFile = "arxiv-harvester.yaml"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := binPath()
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// sourceRoots are the directories whose Go packages Stats reports.
var sourceRoots = []string{"cmd", "internal", "pkg"}

// packageLines holds non-blank Go line counts for one package directory.
type packageLines struct {
	prod, test int
}

// Stats prints non-blank Go lines per package, split into production and
// test code, followed by the PDFs already harvested into downloaded_papers.
func Stats() error {
	counts := map[string]*packageLines{}
	for _, root := range sourceRoots {
		if err := countPackageLines(root, counts); err != nil {
			return err
		}
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var total packageLines
	fmt.Printf("%-28s %6s %6s\n", "PACKAGE", "PROD", "TEST")
	for _, dir := range dirs {
		c := counts[dir]
		fmt.Printf("%-28s %6d %6d\n", dir, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Printf("%-28s %6d %6d\n", "total", total.prod, total.test)

	papers, size, err := harvestedPapers(projectDirs[0])
	if err != nil {
		return err
	}
	fmt.Printf("\nHarvested PDFs in %s: %d (%.1f MiB)\n", projectDirs[0], papers, float64(size)/(1<<20))
	return nil
}

// countPackageLines adds the non-blank lines of every .go file under root
// to counts, keyed by the file's directory.
func countPackageLines(root string, counts map[string]*packageLines) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		c := counts[dir]
		if c == nil {
			c = &packageLines{}
			counts[dir] = c
		}
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		return nil
	})
}

func nonBlankLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n, scanner.Err()
}

// harvestedPapers counts the PDFs under dir and their total size. A missing
// directory counts as empty.
func harvestedPapers(dir string) (int, int64, error) {
	var count int
	var size int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		size += info.Size()
		return nil
	})
	return count, size, err
}
