// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pdiddy/datasetkit/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a class-labelled image directory into train and test sets",
	Long: `Split reads one subdirectory per class from the source directory,
shuffles each class with a seeded random source, and copies the first
test-ratio share of every class to test/<class>/ and the rest to
train/<class>/ under the target directory.

Files are renamed with two global counters shared across classes: train
images are numbered from 001, test images from the first multiple of 100
after the train total, plus one. Re-running with the same seed reproduces
the same layout.`,
	RunE: runSplit,
}

func init() {
	f := splitCmd.Flags()
	f.String("source", "", "source directory with one subdirectory per class (default dataset)")
	f.String("target", "", "output directory for train/ and test/ (default dataset_split)")
	f.Float64("test-ratio", 0, "fraction of each class assigned to test, in [0,1) (default 0.25)")
	f.Int64("seed", 0, "random seed for the shuffle")
	f.Bool("keep-extension", false, "keep the source file extension instead of .jpg")
	f.Bool("manifest", false, "write manifest.yaml mapping sources to output names")
	f.Bool("stats", true, "print per-class counts after splitting")

	bindFlag("split.source_dir", f.Lookup("source"))
	bindFlag("split.target_dir", f.Lookup("target"))
	bindFlag("split.test_ratio", f.Lookup("test-ratio"))
	bindFlag("split.seed", f.Lookup("seed"))
	bindFlag("split.keep_extension", f.Lookup("keep-extension"))
	bindFlag("split.manifest", f.Lookup("manifest"))

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	out := cmd.OutOrStdout()

	s := split.New(fsys, cfg.Split, logger)
	if _, err := s.Run(cmd.Context(), out); err != nil {
		return err
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); !showStats {
		return nil
	}
	stats, err := split.Stats(fsys, cfg.Split.TargetDir)
	if err != nil {
		return err
	}
	split.PrintStats(out, stats)
	return nil
}
