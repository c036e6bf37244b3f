// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-xiso.
//
// go-xiso is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-xiso is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-xiso.  If not, see <https://www.gnu.org/licenses/>.

package xdvdfs

import (
	"context"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-xiso/xdvdfs/nameenc"
)

const (
	defaultBufferSize = 2 * 1024 * 1024
	defaultCacheSize  = 64
)

// Session is a decoded view over a single XDVDFS volume, holding the
// located header and the options governing how names, caching, and I/O
// buffering behave for List and Extract calls.
type Session struct {
	src    ByteSource
	volume VolumeDescriptor
	decode nameDecoder

	bufferSize int
	tableCache *lru.Cache[uint64, []byte]

	closer io.Closer
}

// Option configures a Session at Open time.
type Option func(*sessionConfig)

type sessionConfig struct {
	decode     nameDecoder
	cacheSize  int
	bufferSize int
	closer     io.Closer
	forcedBase *uint64
}

// WithNameEncoding selects the decoding policy applied to raw on-disc name
// bytes. The default is nameenc.UTF8.
func WithNameEncoding(decode nameenc.Decoder) Option {
	return func(c *sessionConfig) { c.decode = nameDecoder(decode) }
}

// WithForcedBaseOffset skips probing all three candidate base offsets and
// validates the header at exactly base, failing with NotAnXisoError if it
// doesn't carry a valid dual magic. Useful when the caller already knows
// which convention an image uses.
func WithForcedBaseOffset(base uint64) Option {
	return func(c *sessionConfig) { c.forcedBase = &base }
}

// WithCacheSize bounds the number of 2048-byte sectors kept in the
// session's LRU cache. A size of 0 disables caching.
func WithCacheSize(size int) Option {
	return func(c *sessionConfig) { c.cacheSize = size }
}

// WithBufferSize sets the buffer size used when streaming file data during
// Extract. Open rejects a size smaller than one sector.
func WithBufferSize(size int) Option {
	return func(c *sessionConfig) { c.bufferSize = size }
}

// WithCloser attaches a Closer that Session.Close will invoke, for callers
// that open src from an underlying resource (a file, an archive member, a
// decompression pipeline) that Open itself didn't acquire.
func WithCloser(closer io.Closer) Option {
	return func(c *sessionConfig) { c.closer = closer }
}

// OpenWithCloser behaves like Open, but additionally attaches closer to the
// returned Session so Close releases the underlying resource (a CHD file,
// a buffered archive entry, a plain os.File) src was read from.
func OpenWithCloser(ctx context.Context, src io.ReaderAt, size int64, closer io.Closer, opts ...Option) (*Session, error) {
	return Open(ctx, src, size, append(opts, WithCloser(closer))...)
}

// Open locates the XDVDFS volume on src and returns a Session ready for
// List and Extract calls. size must equal the total addressable length of
// src.
func Open(ctx context.Context, src io.ReaderAt, size int64, opts ...Option) (*Session, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	bs := asByteSource(src, size)

	cfg := sessionConfig{
		decode:     nameDecoder(nameenc.UTF8),
		cacheSize:  defaultCacheSize,
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bufferSize < SectorSize {
		return nil, fmt.Errorf("buffer size %d is smaller than one sector (%d bytes)", cfg.bufferSize, SectorSize)
	}

	var volume VolumeDescriptor
	var err error
	if cfg.forcedBase != nil {
		volume, err = LocateAt(bs, *cfg.forcedBase)
	} else {
		volume, err = Locate(bs)
	}
	if err != nil {
		return nil, err
	}

	s := &Session{
		volume:     volume,
		decode:     cfg.decode,
		bufferSize: cfg.bufferSize,
		closer:     cfg.closer,
	}
	if cfg.cacheSize > 0 {
		cache, err := lru.New[uint64, []byte](cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		s.tableCache = cache
		s.src = &cachingByteSource{inner: bs, cache: cache}
	} else {
		s.src = bs
	}
	return s, nil
}

// List walks the entire directory tree and reports every entry to sink.
func (s *Session) List(ctx context.Context, sink ListSink) error {
	return walk(ctx, s.src, s.volume, s.decode, listVisitor(sink))
}

// ExtractOption configures a single Extract call. Reserved for future
// per-call knobs; no options are defined yet.
type ExtractOption func(*extractConfig)

type extractConfig struct{}

// Extract recreates the image's directory tree under root on fs, streaming
// every file's contents from the underlying byte source.
func (s *Session) Extract(ctx context.Context, fs afero.Fs, root string, _ ...ExtractOption) error {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return err
	}
	return walk(ctx, s.src, s.volume, s.decode, extractVisitor(fs, root, s.src, s.volume.BaseOffset, s.bufferSize))
}

// Close releases any resource the Session was opened with.
func (s *Session) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// readerAtByteSource adapts a plain io.ReaderAt plus a known size into a
// ByteSource.
type readerAtByteSource struct {
	io.ReaderAt
	size int64
}

func (r readerAtByteSource) Size() int64 { return r.size }

func asByteSource(src io.ReaderAt, size int64) ByteSource {
	if bs, ok := src.(ByteSource); ok {
		return bs
	}
	return readerAtByteSource{ReaderAt: src, size: size}
}

// cachingByteSource memoizes whole sectors read from inner in an LRU cache,
// keyed by sector index. Directory tables are re-scanned on every List or
// Extract call; since records rarely span more than a couple of sectors,
// caching at sector granularity avoids re-reading the same table bytes
// across repeated calls on one Session. Reads spanning a sector boundary
// fall through to inner directly rather than stitching cached sectors
// together.
type cachingByteSource struct {
	inner ByteSource
	cache *lru.Cache[uint64, []byte]
}

func (c *cachingByteSource) Size() int64 { return c.inner.Size() }

func (c *cachingByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || len(p) == 0 {
		return c.inner.ReadAt(p, off)
	}
	sector := uint64(off) / SectorSize
	sectorStart := int64(sector * SectorSize)
	if off+int64(len(p)) > sectorStart+SectorSize {
		// Spans a sector boundary; bypass the cache.
		return c.inner.ReadAt(p, off)
	}

	data, ok := c.cache.Get(sector)
	if !ok {
		data = make([]byte, SectorSize)
		n, err := c.inner.ReadAt(data, sectorStart)
		if n < SectorSize {
			// A short read leaves the tail of data zero-filled; caching it
			// would serve fabricated bytes to every future read of this
			// sector. Surface the failure instead (synthesizing one if
			// inner violated the io.ReaderAt contract by returning a short
			// read with a nil error).
			if err == nil {
				err = fmt.Errorf("short read at sector %d: got %d of %d bytes", sector, n, SectorSize)
			}
			return 0, err
		}
		c.cache.Add(sector, data)
	}
	n := copy(p, data[off-sectorStart:])
	return n, nil
}
