package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/kk-code-lab/vgrid/internal/task"
)

// source is an opened input file: decompressed, decoded and buffered.
type source struct {
	*bufio.Reader
	closers []io.Closer
}

func (s *source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSource opens path for reading, undoing compression named by its
// extension and decoding from encName. Raw bytes read are added to the
// task's progress against the file size.
func openSource(t *task.Task, path, encName string) (*source, error) {
	enc, err := getEncoding(encName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src := &source{closers: []io.Closer{f}}

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	counter := &countingReader{r: f, progress: t.Progress(size)}
	src.closers = append(src.closers, counter)
	var r io.Reader = counter

	switch compression(path) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		src.closers = append(src.closers, zr)
		r = zr
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		src.closers = append(src.closers, closerFunc(func() error { zr.Close(); return nil }))
		r = zr
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}
	src.Reader = bufio.NewReaderSize(r, 1<<16)
	return src, nil
}

// getEncoding resolves a WHATWG encoding label. UTF-8 needs no decoder and
// yields nil.
func getEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(strings.TrimSpace(encName))
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", encName, err)
	}
	return enc, nil
}

// compression returns ".gz", ".zst" or "".
func compression(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gz", ".zst":
		return ext
	}
	return ""
}

// baseExt is the extension under any compression suffix.
func baseExt(path string) string {
	if c := compression(path); c != "" {
		path = path[:len(path)-len(c)]
	}
	return strings.ToLower(filepath.Ext(path))
}

type countingReader struct {
	r        io.Reader
	progress *task.Progress
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.progress.Add(int64(n))
	return n, err
}

func (c *countingReader) Close() error {
	c.progress.Done()
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
