// Package input supplies the hosting-runtime side of the decoder boundary:
// opening possibly-compressed log files, splitting them into lines or
// multi-line records, and following growing files.
package input

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// ErrCompressionFailed indicates a failure reading compressed content.
var ErrCompressionFailed = errors.New("failed to read compressed file")

// compressionCodec defines how to create a streaming reader for a
// compressed format.
type compressionCodec struct {
	name   string
	opener func(io.Reader) (io.ReadCloser, error)
}

var (
	gzipCodec = compressionCodec{
		name: "gzip",
		opener: func(r io.Reader) (io.ReadCloser, error) {
			return newParallelGzipReader(r)
		},
	}
	zstdCodec = compressionCodec{
		name: "zstd",
		opener: func(r io.Reader) (io.ReadCloser, error) {
			return newZstdDecoder(r)
		},
	}
)

// Open returns a streaming reader over the decoded content of filename.
// Gzip, zstd, tar (plain or compressed) and 7z archives are handled
// transparently; archive entries are concatenated in archive order.
func Open(filename string) (io.ReadCloser, error) {
	lowerName := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(lowerName, ".7z"):
		return openSevenZip(filename)
	case strings.HasSuffix(lowerName, ".tar.gz"),
		strings.HasSuffix(lowerName, ".tgz"):
		return openTar(filename, &gzipCodec)
	case strings.HasSuffix(lowerName, ".tar.zst"),
		strings.HasSuffix(lowerName, ".tar.zstd"),
		strings.HasSuffix(lowerName, ".tzst"):
		return openTar(filename, &zstdCodec)
	case strings.HasSuffix(lowerName, ".tar"):
		return openTar(filename, nil)
	case strings.HasSuffix(lowerName, ".gz"):
		return openCompressed(filename, gzipCodec)
	case strings.HasSuffix(lowerName, ".zst"),
		strings.HasSuffix(lowerName, ".zstd"):
		return openCompressed(filename, zstdCodec)
	}

	return os.Open(filename)
}

// compressedFile pairs a codec reader with the underlying file so both get
// closed.
type compressedFile struct {
	io.Reader
	closers []io.Closer
}

func (c *compressedFile) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openCompressed(filename string, codec compressionCodec) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	cr, err := codec.opener(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %s reader for %s: %v", ErrCompressionFailed, codec.name, filename, err)
	}
	return &compressedFile{Reader: cr, closers: []io.Closer{cr, file}}, nil
}

// tarStream concatenates the regular entries of a tar archive.
type tarStream struct {
	tr      *tar.Reader
	closers []io.Closer
	done    bool
}

func (t *tarStream) Read(p []byte) (int, error) {
	for {
		if t.done {
			return 0, io.EOF
		}
		n, err := t.tr.Read(p)
		if n > 0 || err != io.EOF {
			return n, err
		}
		if err := t.next(); err != nil {
			if err == io.EOF {
				t.done = true
				continue
			}
			return 0, err
		}
	}
}

func (t *tarStream) next() error {
	for {
		hdr, err := t.tr.Next()
		if err != nil {
			return err
		}
		if hdr.Typeflag == tar.TypeReg {
			return nil
		}
	}
}

func (t *tarStream) Close() error {
	var first error
	for _, cl := range t.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openTar(filename string, codec *compressionCodec) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = file
	closers := []io.Closer{file}

	if codec != nil {
		cr, err := codec.opener(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s reader for tar archive %s: %v", ErrCompressionFailed, codec.name, filename, err)
		}
		reader = cr
		closers = []io.Closer{cr, file}
	}

	ts := &tarStream{tr: tar.NewReader(reader), closers: closers}
	if err := ts.next(); err != nil {
		if err == io.EOF {
			ts.done = true
			return ts, nil
		}
		ts.Close()
		return nil, fmt.Errorf("reading archive %s: %w", filename, err)
	}
	return ts, nil
}

// sevenZipStream concatenates the regular entries of a 7z archive.
type sevenZipStream struct {
	rc    *sevenzip.ReadCloser
	files []*sevenzip.File
	cur   io.ReadCloser
}

func (s *sevenZipStream) Read(p []byte) (int, error) {
	for {
		if s.cur == nil {
			if len(s.files) == 0 {
				return 0, io.EOF
			}
			f := s.files[0]
			s.files = s.files[1:]
			if f.FileInfo().IsDir() {
				continue
			}
			r, err := f.Open()
			if err != nil {
				return 0, err
			}
			s.cur = r
		}
		n, err := s.cur.Read(p)
		if err == io.EOF {
			s.cur.Close()
			s.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *sevenZipStream) Close() error {
	if s.cur != nil {
		s.cur.Close()
		s.cur = nil
	}
	return s.rc.Close()
}

func openSevenZip(filename string) (io.ReadCloser, error) {
	rc, err := sevenzip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: 7z archive %s: %v", ErrCompressionFailed, filename, err)
	}
	return &sevenZipStream{rc: rc, files: rc.File}, nil
}

// newParallelGzipReader returns a pgzip reader configured for parallel
// decompression.
func newParallelGzipReader(r io.Reader) (*pgzip.Reader, error) {
	threads := runtime.GOMAXPROCS(0)
	if threads < 1 {
		threads = 1
	}
	if threads > 8 {
		threads = 8 // cap to avoid excessive goroutine churn on large hosts
	}

	const blockSize = 1 << 20 // 1 MiB blocks balance throughput and memory usage
	return pgzip.NewReaderN(r, blockSize, threads)
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// newZstdDecoder returns a zstd decoder configured for streaming
// decompression.
func newZstdDecoder(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{Decoder: dec}, nil
}
