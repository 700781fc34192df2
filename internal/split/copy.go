// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/afero"
)

// sniffLen is the number of leading bytes http.DetectContentType considers.
const sniffLen = 512

// Copy duplicates src to dst byte for byte, then applies the source's
// permission bits and modification time to dst.
func Copy(fsys afero.Fs, src, dst string) error {
	_, err := copyFile(fsys, src, dst)
	return err
}

// copyFile is Copy that also reports the sniffed content type of src.
func copyFile(fsys afero.Fs, src, dst string) (string, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}

	br := bufio.NewReaderSize(in, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	contentType := http.DetectContentType(head)

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}

	_, copyErr := io.Copy(out, br)
	closeErr := out.Close()
	if copyErr != nil {
		return "", fmt.Errorf("copying %s to %s: %w", src, dst, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing %s: %w", dst, closeErr)
	}

	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := fsys.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("chtimes %s: %w", dst, err)
	}
	return contentType, nil
}
