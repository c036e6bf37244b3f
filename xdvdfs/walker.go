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
	"path"
)

// Visitor receives each entry discovered while walking a directory tree.
// dirPath is the slash-separated path of the entry's parent directory
// ("" for root-level entries). Returning an error aborts the walk; a
// SinkError, MalformedError, IOError or ErrCancelled is returned as is,
// and any other error is wrapped in SinkError.
type Visitor func(ctx context.Context, dirPath string, entry Entry) error

// tableRef identifies a directory table pending a walk, along with the
// advisory byte bound used to stop scanning sibling records.
type tableRef struct {
	dirPath string
	offset  uint64
	bound   uint64
	depth   int
}

// walk performs an iterative depth-first traversal of the directory tree
// rooted at root, dispatching every entry (file or subdirectory) to visit.
// It guards against cyclic directory links with a per-table visited set
// and bounds sub-directory nesting at maxRecursionDepth.
func walk(ctx context.Context, src ByteSource, root VolumeDescriptor, decode nameDecoder, visit Visitor) error {
	rootOffset := root.RootTableStart()
	rootBound := rootOffset + uint64(root.RootSize)
	if root.RootSize == 0 || int64(rootBound) > src.Size() {
		rootBound = uint64(src.Size())
	}

	visitedTables := map[uint64]bool{}
	stack := []tableRef{{dirPath: "", offset: rootOffset, bound: rootBound, depth: 0}}

	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := checkContext(ctx); err != nil {
			return err
		}
		if visitedTables[ref.offset] {
			return MalformedError{Offset: ref.offset, Context: "cyclic directory reference"}
		}
		visitedTables[ref.offset] = true

		children, err := walkTable(ctx, src, ref, root.BaseOffset, decode, visit)
		if err != nil {
			if err == errStopWalk { //nolint:errorlint // sentinel, never wrapped
				return nil
			}
			return err
		}
		stack = append(stack, children...)
	}
	return nil
}

// walkTable performs a depth-first walk of the binary search tree in a
// single directory table using an explicit stack (no native recursion),
// visiting each record before its children (not in sorted name order) and
// collecting the tableRefs of any subdirectories found.
func walkTable(ctx context.Context, src ByteSource, ref tableRef, baseOffset uint64, decode nameDecoder, visit Visitor) ([]tableRef, error) {
	type frame struct {
		offset uint64
	}

	var subTables []tableRef
	seenRecords := map[uint64]bool{}
	stack := []frame{{offset: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if ref.offset+top.offset >= ref.bound {
			continue
		}
		if seenRecords[top.offset] {
			return nil, MalformedError{Offset: ref.offset + top.offset, Context: "cyclic BST link"}
		}
		seenRecords[top.offset] = true

		entry, ok, err := decodeEntry(src, ref.offset, top.offset, ref.bound, decode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if left, has := childRecordOffset(entry.LeftOffset); has {
			stack = append(stack, frame{offset: left})
		}
		if right, has := childRecordOffset(entry.RightOffset); has {
			stack = append(stack, frame{offset: right})
		}

		if err := visit(ctx, ref.dirPath, entry); err != nil {
			switch err.(type) { //nolint:errorlint // classifying the visitor's own return, never a wrapped chain
			case SinkError, MalformedError, IOError:
				return nil, err
			default:
				if err == errStopWalk || err == ErrCancelled { //nolint:errorlint // sentinels, never wrapped
					return nil, err
				}
				return nil, SinkError{Path: path.Join(ref.dirPath, entry.Name), Cause: err}
			}
		}

		if entry.IsDirectory() && entry.StartSector != 0 {
			if ref.depth+1 > maxRecursionDepth {
				return nil, MalformedError{
					Offset:  ref.offset + top.offset,
					Context: "directory nesting exceeds maximum depth",
				}
			}
			subOffset, err := sectorOffset(src, baseOffset, entry.StartSector)
			if err != nil {
				return nil, MalformedError{Offset: ref.offset + top.offset, Context: "subdirectory sector", Cause: err}
			}
			subBound := subOffset + uint64(entry.FileSize)
			if entry.FileSize == 0 || int64(subBound) > src.Size() {
				subBound = uint64(src.Size())
			}
			subTables = append(subTables, tableRef{
				dirPath: path.Join(ref.dirPath, entry.Name),
				offset:  subOffset,
				bound:   subBound,
				depth:   ref.depth + 1,
			})
		}
	}
	return subTables, nil
}
