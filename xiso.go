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

// Package xiso ties the on-disc XDVDFS decoder together with the byte
// sources a real Xbox disc dump is likely to arrive in: a bare image file,
// one compressed with gzip/bzip2/xz/brotli/zstd, a MAME CHD container, or
// an image nested inside a zip/7z/rar archive. Open resolves any of these
// to a ready xdvdfs.Session.
package xiso

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-xiso/archive"
	"github.com/ZaparooProject/go-xiso/chd"
	"github.com/ZaparooProject/go-xiso/pkg/fileio"
	"github.com/ZaparooProject/go-xiso/xdvdfs"
)

// Open resolves path to a byte source and returns a Session ready for List
// and Extract. It recognizes, in order:
//
//   - a MAME CHD container (.chd), via OpenCHD;
//   - a MiSTer-style embedded path or bare archive path (.zip/.7z/.rar),
//     via archive.ParsePath — the first recognized XISO member is used
//     unless entryHint names one explicitly;
//   - a compressed image (.gz/.bz2/.xz/.br/.zst), spooled to a seekable
//     scratch file by pkg/fileio;
//   - a plain file or block device, opened directly.
func Open(ctx context.Context, path string, entryHint string, opts ...xdvdfs.Option) (*xdvdfs.Session, error) {
	if strings.ToLower(filepath.Ext(path)) == ".chd" {
		return OpenCHD(ctx, path, opts...)
	}

	archivePath, err := archive.ParsePath(path)
	if err != nil {
		return nil, fmt.Errorf("parse archive path: %w", err)
	}
	if archivePath != nil {
		return openArchive(ctx, archivePath, entryHint, opts...)
	}

	return openFile(ctx, path, opts...)
}

// OpenCHD opens an XDVDFS volume from a MAME CHD-packed raw disc dump. Xbox
// OG redumps are always single-data-track discs, so chd.CHD's SectorReader
// already exposes the image starting at sector 0 with no track table to
// consult first.
func OpenCHD(ctx context.Context, path string, opts ...xdvdfs.Option) (*xdvdfs.Session, error) {
	chdFile, err := chd.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CHD: %w", err)
	}

	reader := chdFile.SectorReader()
	size := chdFile.Size()

	session, err := xdvdfs.OpenWithCloser(ctx, reader, size, chdFile, opts...)
	if err != nil {
		_ = chdFile.Close()
		return nil, fmt.Errorf("parse XDVDFS from CHD: %w", err)
	}
	return session, nil
}

// openArchive opens path.ArchivePath and buffers the first recognized XISO
// member (or InternalPath / entryHint, if either names one) into memory,
// returning a Session over it.
func openArchive(ctx context.Context, path *archive.Path, entryHint string, opts ...xdvdfs.Option) (*xdvdfs.Session, error) {
	arc, err := archive.Open(path.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	internalPath := path.InternalPath
	if entryHint != "" {
		internalPath = entryHint
	}
	if internalPath == "" {
		internalPath, err = archive.DetectXISO(arc)
		if err != nil {
			_ = arc.Close()
			return nil, fmt.Errorf("locate XISO entry in archive: %w", err)
		}
	}

	src, size, closer, err := arc.OpenReaderAt(internalPath)
	if err != nil {
		_ = arc.Close()
		return nil, fmt.Errorf("open archive entry %q: %w", internalPath, err)
	}

	session, err := xdvdfs.OpenWithCloser(ctx, src, size, multiCloser{closer, arc}, opts...)
	if err != nil {
		_ = closer.Close()
		_ = arc.Close()
		return nil, fmt.Errorf("parse XDVDFS from archive entry %q: %w", internalPath, err)
	}
	return session, nil
}

// openFile opens a plain or compressed file (or block device) directly.
// Block devices skip the extension-based compression sniff in pkg/fileio
// and are opened with os.Open: they rarely carry a meaningful extension.
func openFile(ctx context.Context, path string, opts ...xdvdfs.Option) (*xdvdfs.Session, error) {
	if isBlockDevice(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open device %q: %w", path, err)
		}
		return openFromFile(ctx, f, opts...)
	}

	f, err := fileio.OpenSeekable(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return openFromFile(ctx, f, opts...)
}

func openFromFile(ctx context.Context, f fileio.Seekable, opts ...xdvdfs.Option) (*xdvdfs.Session, error) {
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %q: %w", f.Name(), err)
	}

	session, err := xdvdfs.OpenWithCloser(ctx, f, info.Size(), f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parse XDVDFS from %q: %w", f.Name(), err)
	}
	return session, nil
}

// multiCloser closes each closer in order, returning the first error.
type multiCloser []interface{ Close() error }

func (mc multiCloser) Close() error {
	var first error
	for _, c := range mc {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
