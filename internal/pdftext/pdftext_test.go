// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/datasetkit/pkg/types"
)

// fakeExtractor returns canned pages keyed by file base name. The total page
// count defaults to the number of canned pages.
type fakeExtractor struct {
	pages  map[string][]Page
	totals map[string]int
	errs   map[string]error
}

func (f fakeExtractor) Pages(pdfPath string) ([]Page, int, error) {
	base := filepath.Base(pdfPath)
	if err := f.errs[base]; err != nil {
		return nil, 0, err
	}
	total, ok := f.totals[base]
	if !ok {
		total = len(f.pages[base])
	}
	return f.pages[base], total, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))
}

// minimalPDF builds a one-page PDF that draws text with a standard font.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestNewExtractor(t *testing.T) {
	e, err := NewExtractor("")
	require.NoError(t, err)
	assert.IsType(t, NativeExtractor{}, e)

	e, err = NewExtractor(types.BackendPdftotext)
	require.NoError(t, err)
	assert.IsType(t, &CommandExtractor{}, e)

	_, err = NewExtractor("ocr")
	assert.Error(t, err)
}

func TestNativeExtractor_Pages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.pdf")
	require.NoError(t, os.WriteFile(path, minimalPDF("Hello World"), 0o644))

	pages, total, err := NativeExtractor{}.Pages(path)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Hello")
}

func TestNativeExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	_, _, err := NativeExtractor{}.Pages(path)
	assert.Error(t, err)
}

type fakeExecutor struct {
	missing bool
	out     string
	err     error
	args    []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) Output(name string, args ...string) ([]byte, error) {
	f.args = append([]string{name}, args...)
	return []byte(f.out), f.err
}

func TestCommandExtractor_SplitsOnFormFeed(t *testing.T) {
	fx := &fakeExecutor{out: "first page\n\f   \f third page \f"}
	c := &CommandExtractor{exec: fx}

	pages, total, err := c.Pages("doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []Page{
		{Number: 1, Text: "first page"},
		{Number: 3, Text: "third page"},
	}, pages)
	assert.Equal(t, []string{"pdftotext", "-layout", "doc.pdf", "-"}, fx.args)
}

func TestCommandExtractor_ToolMissing(t *testing.T) {
	c := &CommandExtractor{exec: &fakeExecutor{missing: true}}
	_, _, err := c.Pages("doc.pdf")
	assert.ErrorIs(t, err, ErrToolMissing)
}

func TestCommandExtractor_CommandFails(t *testing.T) {
	c := &CommandExtractor{exec: &fakeExecutor{err: errors.New("exit status 1")}}
	_, _, err := c.Pages("doc.pdf")
	assert.Error(t, err)
}

func TestCommandExtractor_NoOutput(t *testing.T) {
	c := &CommandExtractor{exec: &fakeExecutor{}}
	pages, total, err := c.Pages("doc.pdf")
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Equal(t, 0, total)
}

func TestRenderPages(t *testing.T) {
	got := RenderPages([]Page{{Number: 1, Text: "a"}, {Number: 3, Text: "b"}})
	assert.Equal(t, "--- Page 1 ---\na\n\n--- Page 3 ---\nb\n", got)
	assert.Equal(t, "", RenderPages(nil))
}

func TestExtractFile_ToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	e := fakeExtractor{pages: map[string][]Page{
		"a.pdf": {{Number: 1, Text: "one"}, {Number: 2, Text: "two"}},
	}}

	var w bytes.Buffer
	require.NoError(t, ExtractFile(e, "a.pdf", out, &w))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "--- Page 1 ---\none\n\n--- Page 2 ---\ntwo\n", string(data))
	assert.Contains(t, w.String(), "Processing 2 pages...")
	assert.Contains(t, w.String(), "Text saved to: "+out)
}

func TestExtractFile_ReportsTotalPages(t *testing.T) {
	e := fakeExtractor{
		pages:  map[string][]Page{"a.pdf": {{Number: 1, Text: "one"}, {Number: 3, Text: "three"}}},
		totals: map[string]int{"a.pdf": 3},
	}

	var w bytes.Buffer
	require.NoError(t, ExtractFile(e, "a.pdf", "", &w))
	assert.Contains(t, w.String(), "Processing 3 pages...")
	assert.Contains(t, w.String(), "1 page(s) had no extractable text")
	assert.Contains(t, w.String(), "--- Page 3 ---\nthree\n")
}

func TestExtractFile_ToWriter(t *testing.T) {
	e := fakeExtractor{pages: map[string][]Page{"a.pdf": {{Number: 1, Text: "one"}}}}

	var w bytes.Buffer
	require.NoError(t, ExtractFile(e, "a.pdf", "", &w))
	assert.Contains(t, w.String(), "EXTRACTED TEXT:")
	assert.Contains(t, w.String(), "--- Page 1 ---\none\n")
}

func TestExtractFile_Error(t *testing.T) {
	e := fakeExtractor{errs: map[string]error{"a.pdf": errors.New("broken")}}
	err := ExtractFile(e, "a.pdf", "", &bytes.Buffer{})
	assert.ErrorContains(t, err, "broken")
}

func TestFindPDFs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "2.pdf"))
	touch(t, filepath.Join(root, "a", "1.pdf"))
	touch(t, filepath.Join(root, "a", "UPPER.PDF"))
	touch(t, filepath.Join(root, "a", "notes.txt"))
	touch(t, filepath.Join(root, "top.pdf"))

	got, err := FindPDFs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "1.pdf"),
		filepath.Join(root, "a", "UPPER.PDF"),
		filepath.Join(root, "b", "2.pdf"),
		filepath.Join(root, "top.pdf"),
	}, got)
}

func TestExtractAll(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "pdfs")
	touch(t, filepath.Join(dir, "Logika", "a.pdf"))
	touch(t, filepath.Join(dir, "Logika", "empty.pdf"))
	touch(t, filepath.Join(dir, "Vyrazy", "b.pdf"))
	touch(t, filepath.Join(dir, "Vyrazy", "broken.pdf"))
	out := filepath.Join(root, "all.txt")

	e := fakeExtractor{
		pages: map[string][]Page{
			"a.pdf": {{Number: 1, Text: "a1"}, {Number: 2, Text: "a2"}},
			"b.pdf": {{Number: 1, Text: "b1"}},
		},
		errs: map[string]error{"broken.pdf": errors.New("corrupt xref")},
	}

	var w bytes.Buffer
	result, err := ExtractAll(e, dir, out, &w)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 4, result.Total())
	assert.True(t, result.HasFailures())
	assert.Equal(t, []string{
		filepath.Join(dir, "Logika", "a.pdf"),
		filepath.Join(dir, "Vyrazy", "b.pdf"),
	}, result.Extracted)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a1\na2\n\nb1", string(data))
	assert.Equal(t, int64(len(data)), result.OutputBytes)

	assert.Contains(t, w.String(), "found 4 PDF files")
	assert.Contains(t, w.String(), "failed:  "+filepath.Join("Vyrazy", "broken.pdf")+" (corrupt xref)")
	assert.Contains(t, w.String(), "failed:  "+filepath.Join("Logika", "empty.pdf")+" (no text)")
	assert.Contains(t, w.String(), "Extraction summary: 4 processed, 2 succeeded, 2 failed")
}

func TestExtractAll_NoPDFs(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "all.txt")

	result, err := ExtractAll(fakeExtractor{}, root, out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	assert.NoFileExists(t, out)
}

func TestExtractAll_MissingDir(t *testing.T) {
	root := t.TempDir()
	_, err := ExtractAll(fakeExtractor{}, filepath.Join(root, "nope"), filepath.Join(root, "all.txt"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "not found")
}
