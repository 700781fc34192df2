// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasetkit/pkg/types"
)

const manifestFile = "manifest.yaml"

// Result holds the outcome of a split run.
type Result struct {
	Classes int
	Train   int
	Test    int

	// TestStart is the number of the first test file.
	TestStart int

	// Mislabeled counts files named ".jpg" whose content is not JPEG.
	Mislabeled int

	Assignments []Assignment
}

// Manifest records where every source file went.
type Manifest struct {
	SourceDir   string       `yaml:"source_dir"`
	TargetDir   string       `yaml:"target_dir"`
	TestRatio   float64      `yaml:"test_ratio"`
	Seed        int64        `yaml:"seed"`
	TestStart   int          `yaml:"test_start"`
	Assignments []Assignment `yaml:"assignments"`
}

// Splitter runs one dataset split. It owns the random source for the run.
type Splitter struct {
	fs  afero.Fs
	cfg types.SplitConfig
	log *zap.Logger
}

// New creates a Splitter over fsys. A nil logger discards diagnostics.
func New(fsys afero.Fs, cfg types.SplitConfig, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{fs: fsys, cfg: cfg, log: log}
}

// Validate checks the configuration before any filesystem access.
func (s *Splitter) Validate() error {
	if s.cfg.SourceDir == "" {
		return errors.New("source directory is required")
	}
	if s.cfg.TargetDir == "" {
		return errors.New("target directory is required")
	}
	r := s.cfg.TestRatio
	if math.IsNaN(r) || r < 0 || r >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRatio, r)
	}
	return nil
}

// Run scans the source tree, partitions every class, and copies the files
// into the target tree. Per-class progress goes to w. A copy failure aborts
// the run; the target tree is left as far as it got.
func (s *Splitter) Run(ctx context.Context, w io.Writer) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	buckets, err := Scan(s.fs, s.cfg.SourceDir, s.log)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.Name
	}
	fmt.Fprintf(w, "found %d classes: %v\n", len(buckets), names)

	rng := rand.New(rand.NewSource(s.cfg.Seed))
	splits := make([]Split, 0, len(buckets))
	for _, b := range buckets {
		train, test := Partition(b.Files, s.cfg.TestRatio, rng)
		fmt.Fprintf(w, "class %s: %d files -> %d train, %d test\n",
			b.Name, len(b.Files), len(train), len(test))
		if len(b.Files) == 0 {
			s.log.Info("empty class", zap.String("class", b.Name))
		}
		splits = append(splits, Split{Class: b.Name, Train: train, Test: test})
	}

	if err := s.createDirs(buckets); err != nil {
		return nil, err
	}

	assignments := AssignNames(splits, s.cfg.KeepExtension)
	result := &Result{Classes: len(buckets), Assignments: assignments}
	for _, sp := range splits {
		result.Train += len(sp.Train)
		result.Test += len(sp.Test)
	}
	result.TestStart = TestStartIndex(result.Train)

	for _, a := range assignments {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		dst := filepath.Join(s.cfg.TargetDir, a.Dest)
		contentType, err := copyFile(s.fs, a.Source, dst)
		if err != nil {
			return result, fmt.Errorf("copy %s: %w", a.Source, err)
		}
		if !s.cfg.KeepExtension && contentType != "image/jpeg" {
			result.Mislabeled++
			s.log.Warn("non-JPEG content written with .jpg extension",
				zap.String("source", a.Source),
				zap.String("dest", dst),
				zap.String("content_type", contentType))
		}
	}

	if s.cfg.Manifest {
		if err := s.writeManifest(result); err != nil {
			return result, err
		}
	}

	fmt.Fprintf(w, "\nSplit complete: %d train, %d test (test numbering starts at %03d)\n",
		result.Train, result.Test, result.TestStart)
	fmt.Fprintf(w, "train data: %s\n", filepath.Join(s.cfg.TargetDir, trainDir))
	fmt.Fprintf(w, "test data:  %s\n", filepath.Join(s.cfg.TargetDir, testDir))
	if result.Mislabeled > 0 {
		fmt.Fprintf(w, "warning: %d file(s) are not JPEG but were named .jpg\n", result.Mislabeled)
	}
	return result, nil
}

// createDirs makes train/<class> and test/<class> for every scanned class,
// including empty ones.
func (s *Splitter) createDirs(buckets []ClassBucket) error {
	for _, b := range buckets {
		for _, subset := range []string{trainDir, testDir} {
			dir := filepath.Join(s.cfg.TargetDir, subset, b.Name)
			if err := s.fs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

func (s *Splitter) writeManifest(result *Result) error {
	m := Manifest{
		SourceDir:   s.cfg.SourceDir,
		TargetDir:   s.cfg.TargetDir,
		TestRatio:   s.cfg.TestRatio,
		Seed:        s.cfg.Seed,
		TestStart:   result.TestStart,
		Assignments: result.Assignments,
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(s.cfg.TargetDir, manifestFile)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
