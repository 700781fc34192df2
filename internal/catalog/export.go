// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasetkit/pkg/types"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Write renders docs to w in the given format.
func Write(w io.Writer, docs []types.Document, format string) error {
	switch format {
	case "", FormatTable:
		return writeTable(w, docs, time.Now())
	case FormatJSON:
		if docs == nil {
			docs = []types.Document{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case FormatYAML:
		data, err := yaml.Marshal(docs)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, FormatTable, FormatJSON, FormatYAML)
	}
}

func writeTable(w io.Writer, docs []types.Document, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tTITLE\tEXTRACTED\tDOWNLOADED\tPATH")
	for _, d := range docs {
		extracted := "no"
		if d.Extracted {
			extracted = "yes"
		}
		downloaded := "-"
		if !d.DownloadedAt.IsZero() {
			downloaded = humanize.RelTime(d.DownloadedAt, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Topic, d.Title, extracted, downloaded, d.Path)
	}
	fmt.Fprintf(tw, "\n%d documents\n", len(docs))
	return tw.Flush()
}
