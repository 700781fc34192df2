// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split partitions a class-labeled image dataset into train and test
// trees with sequentially numbered file names.
//
// The source layout is source/<class>/<file>; the output layout is
// target/train/<class>/NNN.jpg and target/test/<class>/NNN.jpg. Train names
// start at 001 and test names start at the next hundred above the total
// train count, plus one. Both counters run across all classes in sorted
// class order.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	trainDir = "train"
	testDir  = "test"

	defaultExt = ".jpg"
)

var (
	// ErrSourceNotFound is returned when the source directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrInvalidRatio is returned when the test ratio lies outside [0,1).
	ErrInvalidRatio = errors.New("test ratio must be in [0,1)")
)

// ClassBucket holds the files found directly inside one class directory.
type ClassBucket struct {
	Name  string
	Files []string
}

// Split is the disjoint train/test partition of one ClassBucket.
type Split struct {
	Class string
	Train []string
	Test  []string
}

// Assignment maps one source file to its numbered destination.
type Assignment struct {
	Class  string `json:"class" yaml:"class"`
	Subset string `json:"subset" yaml:"subset"`
	Source string `json:"source" yaml:"source"`
	Name   string `json:"name" yaml:"name"`

	// Dest is relative to the target directory, e.g. "train/bird/001.jpg".
	Dest string `json:"dest" yaml:"dest"`
}

// Scan returns one ClassBucket per immediate subdirectory of sourceDir, in
// the order the filesystem reports them. Only regular files directly inside
// a class directory are collected; nested directories are ignored. Symlinks
// are followed for both class directories and files; dangling links are
// skipped with a warning. A nil logger discards the warnings.
func Scan(fsys afero.Fs, sourceDir string, log *zap.Logger) ([]ClassBucket, error) {
	if log == nil {
		log = zap.NewNop()
	}
	info, err := fsys.Stat(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("reading source directory %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	entries, err := afero.ReadDir(fsys, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", sourceDir, err)
	}

	var buckets []ClassBucket
	for _, entry := range entries {
		classPath := filepath.Join(sourceDir, entry.Name())
		entry, ok := resolve(fsys, classPath, entry, log)
		if !ok || !entry.IsDir() {
			continue
		}
		files, err := afero.ReadDir(fsys, classPath)
		if err != nil {
			return nil, fmt.Errorf("listing class %s: %w", entry.Name(), err)
		}

		bucket := ClassBucket{Name: filepath.Base(classPath), Files: []string{}}
		for _, f := range files {
			path := filepath.Join(classPath, f.Name())
			f, ok := resolve(fsys, path, f, log)
			if !ok || !f.Mode().IsRegular() {
				continue
			}
			bucket.Files = append(bucket.Files, path)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// resolve follows a symlink entry to its target. ok is false for a dangling
// link.
func resolve(fsys afero.Fs, path string, info os.FileInfo, log *zap.Logger) (os.FileInfo, bool) {
	if info.Mode()&os.ModeSymlink == 0 {
		return info, true
	}
	target, err := fsys.Stat(path)
	if err != nil {
		log.Warn("skipping unresolvable symlink", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return target, true
}

// TestCount returns floor(n * ratio).
func TestCount(n int, ratio float64) int {
	return int(math.Floor(float64(n) * ratio))
}

// Partition shuffles files in place with rng and splits them: the first
// TestCount files go to test, the rest to train. The same rng must be shared
// across all classes of a run so the draw sequence is reproducible.
func Partition(files []string, testRatio float64, rng *rand.Rand) (train, test []string) {
	rng.Shuffle(len(files), func(i, j int) {
		files[i], files[j] = files[j], files[i]
	})
	n := TestCount(len(files), testRatio)
	return files[n:], files[:n]
}

// TestStartIndex returns the first test file number for a run with
// totalTrain train files: the next multiple of 100 above totalTrain, plus one.
func TestStartIndex(totalTrain int) int {
	return (totalTrain/100+1)*100 + 1
}

// AssignNames numbers every file of every split. Classes are visited in
// sorted name order regardless of the order of splits. With keepExt the
// source extension (lowercased) is used instead of ".jpg".
func AssignNames(splits []Split, keepExt bool) []Assignment {
	sorted := make([]Split, len(splits))
	copy(sorted, splits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Class < sorted[j].Class })

	totalTrain := 0
	for _, s := range sorted {
		totalTrain += len(s.Train)
	}

	trainIdx := 1
	testIdx := TestStartIndex(totalTrain)

	var out []Assignment
	for _, s := range sorted {
		for _, src := range s.Train {
			out = append(out, newAssignment(s.Class, trainDir, src, trainIdx, keepExt))
			trainIdx++
		}
		for _, src := range s.Test {
			out = append(out, newAssignment(s.Class, testDir, src, testIdx, keepExt))
			testIdx++
		}
	}
	return out
}

func newAssignment(class, subset, src string, idx int, keepExt bool) Assignment {
	name := fmt.Sprintf("%03d%s", idx, extensionFor(src, keepExt))
	return Assignment{
		Class:  class,
		Subset: subset,
		Source: src,
		Name:   name,
		Dest:   filepath.Join(subset, class, name),
	}
}

func extensionFor(src string, keepExt bool) string {
	if !keepExt {
		return defaultExt
	}
	return strings.ToLower(filepath.Ext(src))
}
