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
	"path"

	"github.com/spf13/afero"
)

// ListEntry is a single entry reported to a ListSink, carrying its full
// slash-separated path relative to the image root.
type ListEntry struct {
	Path       string
	Size       uint32
	Attributes uint8
}

// IsDirectory reports whether the listed entry is a directory.
func (l ListEntry) IsDirectory() bool {
	return l.Attributes&AttrDirectory != 0
}

// ListSink receives entries discovered by Session.List. A bounded sink
// (NewBoundedListSink) truncates non-fatally once its limit is reached;
// implementations that need every entry can simply append without limit.
type ListSink interface {
	Add(ListEntry) (keepGoing bool)
}

// sliceListSink collects entries into a slice, optionally capping the
// total and reporting truncation instead of failing.
type sliceListSink struct {
	entries   []ListEntry
	limit     int
	Truncated bool
}

// NewBoundedListSink returns a ListSink that collects up to limit entries.
// limit <= 0 means unbounded. Once the limit is reached, Add reports
// keepGoing=false and Truncated is set to true; this is not an error.
func NewBoundedListSink(limit int) *sliceListSink {
	return &sliceListSink{limit: limit}
}

func (s *sliceListSink) Add(e ListEntry) bool {
	if s.limit > 0 && len(s.entries) >= s.limit {
		s.Truncated = true
		return false
	}
	s.entries = append(s.entries, e)
	return true
}

// Entries returns the entries collected so far.
func (s *sliceListSink) Entries() []ListEntry { return s.entries }

// listVisitor adapts a ListSink into a Visitor.
func listVisitor(sink ListSink) Visitor {
	return func(_ context.Context, dirPath string, entry Entry) error {
		keepGoing := sink.Add(ListEntry{
			Path:       path.Join(dirPath, entry.Name),
			Size:       entry.FileSize,
			Attributes: entry.Attributes,
		})
		if !keepGoing {
			return errStopWalk
		}
		return nil
	}
}

// errStopWalk is a sentinel used internally to unwind the walk once a
// bounded sink has reached its limit; it is never surfaced to callers.
var errStopWalk = fmt.Errorf("xdvdfs: list sink stopped early")

// extractVisitor adapts a host filesystem into a Visitor that recreates the
// directory tree under root and streams file contents from src, reading
// exactly FileSize bytes per file via an io.SectionReader.
func extractVisitor(fs afero.Fs, root string, src ByteSource, baseOffset uint64, bufSize int) Visitor {
	return func(ctx context.Context, dirPath string, entry Entry) error {
		hostPath := path.Join(root, dirPath, entry.Name)

		if entry.IsDirectory() {
			if err := fs.MkdirAll(hostPath, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", hostPath, err)
			}
			return nil
		}

		if err := fs.MkdirAll(path.Join(root, dirPath), 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", path.Join(root, dirPath), err)
		}

		dataOffset, err := sectorOffset(src, baseOffset, entry.StartSector)
		if err != nil {
			return MalformedError{Offset: dataOffset, Context: "file data sector", Cause: err}
		}
		if uint64(entry.FileSize) > uint64(src.Size())-dataOffset {
			return MalformedError{
				Offset:  dataOffset,
				Context: "file data range",
				Cause:   fmt.Errorf("offset 0x%x + size %d exceeds image size %d", dataOffset, entry.FileSize, src.Size()),
			}
		}

		out, err := fs.Create(hostPath)
		if err != nil {
			return fmt.Errorf("create file %q: %w", hostPath, err)
		}
		defer out.Close()

		section := io.NewSectionReader(src, int64(dataOffset), int64(entry.FileSize))
		if err := copyChunked(ctx, out, section, bufSize); err != nil {
			if err == ErrCancelled { //nolint:errorlint // sentinel, never wrapped by copyChunked
				return err
			}
			return fmt.Errorf("write %q: %w", hostPath, err)
		}
		return nil
	}
}

// copyChunked streams src into dst bufSize bytes at a time, checking ctx
// for cancellation between chunks so a large file's extraction can't run
// past a canceled context before its next io.CopyBuffer-sized call would.
func copyChunked(ctx context.Context, dst io.Writer, src io.Reader, bufSize int) error {
	buf := make([]byte, bufSize)
	for {
		if err := checkContext(ctx); err != nil {
			return err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
		}
		if readErr != nil {
			if readErr == io.EOF { //nolint:errorlint // io.Reader contract: compare EOF by identity
				return nil
			}
			return readErr
		}
	}
}
