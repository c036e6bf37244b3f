// Package fileio opens compressed and plain disc image files transparently,
// decompressing on the fly and spooling non-seekable streams to a scratch
// file when random access is required downstream.
package fileio

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	kgzip "github.com/klauspost/compress/gzip"
)

// FileReader is a file-like handle: readable and closable.
type FileReader interface {
	io.Reader
	io.Closer
}

// multiCloser wraps multiple closers, closing all of them in order and
// returning the first error encountered.
type multiCloser struct {
	closers []io.Closer
	reader  io.Reader
}

func (mc *multiCloser) Read(p []byte) (n int, err error) {
	return mc.reader.Read(p)
}

func (mc *multiCloser) Close() error {
	var err error
	for _, c := range mc.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenFile opens path for reading, transparently decompressing gzip, bzip2,
// xz, brotli, or zstd streams based on extension. The special name "stdin"
// reads from os.Stdin.
func OpenFile(path string) (FileReader, error) {
	if path == "stdin" {
		return os.Stdin, nil
	}
	if path == "stdout" {
		return nil, fmt.Errorf("stdout is not readable")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gr, err := kgzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &multiCloser{closers: []io.Closer{gr, file}, reader: gr}, nil
	case ".bz2":
		return &multiCloser{closers: []io.Closer{file}, reader: bzip2.NewReader(file)}, nil
	case ".xz":
		xr, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return &multiCloser{closers: []io.Closer{file}, reader: xr}, nil
	case ".br":
		return &multiCloser{closers: []io.Closer{file}, reader: brotli.NewReader(file)}, nil
	case ".zst":
		zr, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return &multiCloser{closers: []io.Closer{file}, reader: &zstdReadCloser{zr}}, nil
	default:
		return file, nil
	}
}

// zstdReadCloser adapts *zstd.Decoder (which has no error-returning Close)
// into an io.Closer.
type zstdReadCloser struct{ *zstd.Decoder }

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// Seekable is a file-like handle that also supports random access: the
// common surface both a plain *os.File and a spooled scratch file expose.
type Seekable interface {
	io.ReaderAt
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
	Name() string
}

// scratchFile wraps a spooled temp file so closing it also unlinks it —
// the file has no name any caller can reuse once OpenSeekable returns, so
// nothing else can be holding it open under that path.
type scratchFile struct {
	*os.File
}

func (s *scratchFile) Close() error {
	closeErr := s.File.Close()
	if removeErr := os.Remove(s.File.Name()); removeErr != nil && closeErr == nil {
		closeErr = fmt.Errorf("remove scratch file: %w", removeErr)
	}
	return closeErr
}

// OpenSeekable behaves like OpenFile, but guarantees the returned reader
// also implements io.Seeker and io.ReaderAt: compressed or otherwise
// non-seekable sources are fully decompressed into a scratch temp file
// first. The temp file is removed when the returned closer is closed.
func OpenSeekable(path string) (Seekable, error) {
	if IsCompressed(path) {
		src, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = src.Close() }()

		scratch, err := os.CreateTemp("", "go-xiso-*.img")
		if err != nil {
			return nil, fmt.Errorf("create scratch file: %w", err)
		}
		if _, err := io.Copy(scratch, src); err != nil {
			_ = scratch.Close()
			_ = os.Remove(scratch.Name())
			return nil, fmt.Errorf("spool to scratch file: %w", err)
		}
		if _, err := scratch.Seek(0, io.SeekStart); err != nil {
			_ = scratch.Close()
			_ = os.Remove(scratch.Name())
			return nil, fmt.Errorf("rewind scratch file: %w", err)
		}
		return &scratchFile{scratch}, nil
	}

	return os.Open(path)
}

// IsCompressed reports whether path carries a recognized compression
// extension that OpenFile will transparently decode.
func IsCompressed(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".bz2", ".xz", ".br", ".zst":
		return true
	default:
		return false
	}
}

// ReadAll reads all data from a reader.
func ReadAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// GetSize returns the size of a file, or the total size of all files under
// a directory.
func GetSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return info.Size(), nil
	}

	var totalSize int64
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk directory %s: %w", path, err)
	}

	return totalSize, nil
}

// GetExtension returns the lowercase extension of a file, stripping a
// trailing compression extension if present.
func GetExtension(filename string) string {
	filename = strings.ToLower(filename)
	for _, suffix := range []string{".gz", ".bz2", ".xz", ".br", ".zst"} {
		filename = strings.TrimSuffix(filename, suffix)
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

// CheckExists returns an error if path does not exist. Paths under /dev/
// are assumed to exist without stating them, since block devices may not
// report a conventional size.
func CheckExists(path string) error {
	if strings.HasPrefix(strings.ToLower(path), "/dev/") {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file/folder not found: %s", path)
	}
	return nil
}

// CheckNotExists returns an error if path already exists.
func CheckNotExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file/folder exists: %s", path)
	}
	return nil
}
