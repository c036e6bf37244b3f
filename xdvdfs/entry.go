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
	"fmt"
	"strings"

	xbinary "github.com/ZaparooProject/go-xiso/internal/binary"
)

const (
	padMarker = 0xFFFF

	entryHeaderSize = 2 + 2 + 4 + 4 + 1 + 1 // left, right, startSector, fileSize, attributes, nameLength
	nameAlignment   = 4

	// maxPadSkips bounds how many consecutive pad markers a single record
	// scan will walk past before giving up, guarding against a corrupt
	// table of all-0xFFFF bytes spinning forever.
	maxPadSkips = SectorSize / 2
)

// Entry is a single decoded directory record.
type Entry struct {
	// LeftOffset and RightOffset are each a record's offset (in 4-byte
	// units from the start of the table) into the left/right BST children,
	// or 0 if absent.
	LeftOffset  uint16
	RightOffset uint16
	// StartSector is the sector number the entry's data (or, for a
	// directory, its own table) begins at.
	StartSector uint32
	// FileSize is the size in bytes of a file entry's data. Not consulted
	// for directory entries.
	FileSize uint32
	// Attributes holds the raw on-disc attribute byte.
	Attributes uint8
	// Name is the entry's decoded filename.
	Name string
}

// IsDirectory reports whether the entry names a subdirectory.
func (e Entry) IsDirectory() bool {
	return e.Attributes&AttrDirectory != 0
}

// nameDecoder converts a raw on-disc name byte slice into a string. Session
// selects the implementation (lossy UTF-8 by default, CP-1252 optionally).
type nameDecoder func([]byte) string

// decodeEntry reads one directory record at tableOffset+recordOffset,
// transparently skipping 0xFFFF padding to the next sector boundary. It
// returns ok=false with no error when padding runs to the table's bound —
// an empty directory, or one whose last sector is all pad.
func decodeEntry(src ByteSource, tableOffset uint64, recordOffset uint64, bound uint64, decode nameDecoder) (Entry, bool, error) {
	off := recordOffset
	for skips := 0; ; skips++ {
		if skips > maxPadSkips {
			return Entry{}, false, MalformedError{
				Offset:  tableOffset + off,
				Context: "padding",
				Cause:   fmt.Errorf("exceeded %d consecutive pad markers", maxPadSkips),
			}
		}

		left, err := xbinary.ReadUint16LEAt(src, int64(tableOffset+off))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off, Cause: err}
		}
		if left == padMarker {
			// Padding fills the remainder of the current sector; the next
			// record, if any, starts at the next sector-aligned offset.
			absolute := tableOffset + off
			next := (absolute/SectorSize + 1) * SectorSize
			if next <= absolute {
				return Entry{}, false, MalformedError{Offset: absolute, Context: "padding did not advance"}
			}
			if next >= bound {
				return Entry{}, false, nil
			}
			off = next - tableOffset
			continue
		}

		right, err := xbinary.ReadUint16LEAt(src, int64(tableOffset+off+2))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off + 2, Cause: err}
		}
		startSector, err := xbinary.ReadUint32LEAt(src, int64(tableOffset+off+4))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off + 4, Cause: err}
		}
		fileSize, err := xbinary.ReadUint32LEAt(src, int64(tableOffset+off+8))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off + 8, Cause: err}
		}
		attrs, err := xbinary.ReadUint8At(src, int64(tableOffset+off+12))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off + 12, Cause: err}
		}
		nameLen, err := xbinary.ReadUint8At(src, int64(tableOffset+off+13))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off + 13, Cause: err}
		}
		if nameLen == 0 {
			return Entry{}, false, MalformedError{Offset: tableOffset + off, Context: "zero-length name"}
		}

		nameBytes, err := xbinary.ReadBytesAt(src, int64(tableOffset+off+entryHeaderSize), int(nameLen))
		if err != nil {
			return Entry{}, false, IOError{Offset: tableOffset + off + entryHeaderSize, Cause: err}
		}
		name, err := validateName(nameBytes, decode)
		if err != nil {
			return Entry{}, false, MalformedError{Offset: tableOffset + off, Context: "name", Cause: err}
		}

		return Entry{
			LeftOffset:  left,
			RightOffset: right,
			StartSector: startSector,
			FileSize:    fileSize,
			Attributes:  attrs,
			Name:        name,
		}, true, nil
	}
}

// validateName checks raw name bytes for safety and decodes them. Names may
// not contain NUL, '/', or '\\', and may not be "." or "..".
func validateName(raw []byte, decode nameDecoder) (string, error) {
	for _, b := range raw {
		if b == 0 || b == '/' || b == '\\' {
			return "", fmt.Errorf("name contains invalid byte 0x%02x", b)
		}
	}
	name := decode(raw)
	if name == "." || name == ".." {
		return "", fmt.Errorf("reserved name %q", name)
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("blank name")
	}
	return name, nil
}

// childRecordOffset converts a record's left/right child field (a
// 4-byte-unit offset into the table) into a byte offset relative to the
// table start, or ok=false if the field is 0 (no child).
func childRecordOffset(field uint16) (uint64, bool) {
	if field == 0 {
		return 0, false
	}
	return uint64(field) * nameAlignment, true
}
