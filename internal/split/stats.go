// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ClassCount is the number of files in one class directory of a subset.
type ClassCount struct {
	Class string
	Files int
}

// SubsetStats lists the class counts of train/ or test/.
type SubsetStats struct {
	Subset  string
	Classes []ClassCount
}

// Stats counts the files under targetDir/train and targetDir/test. A missing
// subset directory is left out of the result.
func Stats(fsys afero.Fs, targetDir string) ([]SubsetStats, error) {
	var out []SubsetStats
	for _, subset := range []string{trainDir, testDir} {
		dir := filepath.Join(targetDir, subset)
		ok, err := afero.DirExists(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", dir, err)
		}
		if !ok {
			continue
		}

		classes, err := afero.ReadDir(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", dir, err)
		}
		st := SubsetStats{Subset: subset}
		for _, c := range classes {
			if !c.IsDir() {
				continue
			}
			files, err := afero.ReadDir(fsys, filepath.Join(dir, c.Name()))
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", c.Name(), err)
			}
			st.Classes = append(st.Classes, ClassCount{Class: c.Name(), Files: len(files)})
		}
		out = append(out, st)
	}
	return out, nil
}

// PrintStats writes stats in a human-readable block.
func PrintStats(w io.Writer, stats []SubsetStats) {
	fmt.Fprintln(w, "\n=== STATISTICS ===")
	for _, st := range stats {
		fmt.Fprintf(w, "\n%s:\n", strings.ToUpper(st.Subset))
		for _, c := range st.Classes {
			fmt.Fprintf(w, "  %s: %d images\n", c.Class, c.Files)
		}
	}
}
