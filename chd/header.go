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

package chd

import (
	"encoding/binary"
	"fmt"
	"io"
)

var chdMagic = [8]byte{'M', 'C', 'o', 'm', 'p', 'r', 'H', 'D'}

const (
	headerSizeV3 = 120
	headerSizeV4 = 108
	headerSizeV5 = 124
)

// Header is a parsed CHD header. V3/V4-only fields (Flags, Compression,
// TotalHunks) sit alongside the V5 fields they were superseded by; a
// given Header only ever has one generation populated, selected by
// Version.
type Header struct {
	Magic        [8]byte
	HeaderSize   uint32
	Version      uint32
	Compressors  [4]uint32
	LogicalBytes uint64
	MapOffset    uint64
	MetaOffset   uint64
	HunkBytes    uint32
	UnitBytes    uint32
	RawSHA1      [20]byte
	SHA1         [20]byte
	ParentSHA1   [20]byte

	Flags       uint32
	Compression uint32
	TotalHunks  uint32
}

// parseHeader reads and validates a CHD header, dispatching to the
// version-specific field layout once the common magic/size/version
// prefix has been read.
func parseHeader(r io.Reader) (*Header, error) {
	prefix := make([]byte, 12)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}

	var h Header
	copy(h.Magic[:], prefix[:8])
	if h.Magic != chdMagic {
		return nil, ErrInvalidMagic
	}
	h.HeaderSize = binary.BigEndian.Uint32(prefix[8:12])

	remaining := int(h.HeaderSize) - len(prefix)
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: header size %d", ErrInvalidHeader, h.HeaderSize)
	}
	rest := make([]byte, remaining)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h.Version = binary.BigEndian.Uint32(rest[0:4])

	var decode func(*Header, []byte) error
	switch h.Version {
	case 5:
		decode = decodeHeaderV5
	case 4:
		decode = decodeHeaderV4
	case 3:
		decode = decodeHeaderV3
	default:
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, h.Version)
	}
	if err := decode(&h, rest); err != nil {
		return nil, err
	}
	return &h, nil
}

// decodeHeaderV5 fills in the V5 (current) field layout, 124 bytes total:
//
//	0x10 compressor[0..3] (4x4)   0x20 logical bytes (8)
//	0x28 map offset (8)           0x30 meta offset (8)
//	0x38 hunk bytes (4)           0x3C unit bytes (4)
//	0x40 raw sha1 (20)            0x54 sha1 (20)   0x68 parent sha1 (20)
func decodeHeaderV5(h *Header, buf []byte) error {
	if len(buf) < headerSizeV5-12 {
		return fmt.Errorf("%w: buffer too small for V5", ErrInvalidHeader)
	}
	for i := range h.Compressors {
		h.Compressors[i] = binary.BigEndian.Uint32(buf[4+4*i : 8+4*i])
	}
	h.LogicalBytes = binary.BigEndian.Uint64(buf[20:28])
	h.MapOffset = binary.BigEndian.Uint64(buf[28:36])
	h.MetaOffset = binary.BigEndian.Uint64(buf[36:44])
	h.HunkBytes = binary.BigEndian.Uint32(buf[44:48])
	h.UnitBytes = binary.BigEndian.Uint32(buf[48:52])
	copy(h.RawSHA1[:], buf[52:72])
	copy(h.SHA1[:], buf[72:92])
	copy(h.ParentSHA1[:], buf[92:112])
	return nil
}

// decodeHeaderV4 fills in the V4 field layout, 108 bytes total:
//
//	0x10 flags (4)        0x14 compression (4)   0x18 total hunks (4)
//	0x1C logical bytes(8) 0x24 meta offset (8)    0x2C hunk bytes (4)
//	0x30 sha1 (20)        0x44 parent sha1 (20)   0x58 raw sha1 (20)
//
// V4 carries neither a unit-size field nor a separate map offset; both
// are derived below the way MAME's chd.cpp does for this generation.
func decodeHeaderV4(h *Header, buf []byte) error {
	if len(buf) < headerSizeV4-12 {
		return fmt.Errorf("%w: buffer too small for V4", ErrInvalidHeader)
	}
	h.Flags = binary.BigEndian.Uint32(buf[4:8])
	h.Compression = binary.BigEndian.Uint32(buf[8:12])
	h.TotalHunks = binary.BigEndian.Uint32(buf[12:16])
	h.LogicalBytes = binary.BigEndian.Uint64(buf[16:24])
	h.MetaOffset = binary.BigEndian.Uint64(buf[24:32])
	h.HunkBytes = binary.BigEndian.Uint32(buf[32:36])
	copy(h.SHA1[:], buf[36:56])
	copy(h.ParentSHA1[:], buf[56:76])
	copy(h.RawSHA1[:], buf[76:96])
	h.UnitBytes = defaultUnitBytes
	h.MapOffset = headerSizeV4
	return nil
}

// decodeHeaderV3 fills in the V3 field layout, 120 bytes total:
//
//	0x10 flags (4)        0x14 compression (4)    0x18 total hunks (4)
//	0x1C logical bytes(8) 0x24 meta offset (8)     0x2C md5+parent md5 (32, unused)
//	0x4C hunk bytes (4)   0x50 sha1 (20)           0x64 parent sha1 (20)
func decodeHeaderV3(h *Header, buf []byte) error {
	if len(buf) < headerSizeV3-12 {
		return fmt.Errorf("%w: buffer too small for V3", ErrInvalidHeader)
	}
	h.Flags = binary.BigEndian.Uint32(buf[4:8])
	h.Compression = binary.BigEndian.Uint32(buf[8:12])
	h.TotalHunks = binary.BigEndian.Uint32(buf[12:16])
	h.LogicalBytes = binary.BigEndian.Uint64(buf[16:24])
	h.MetaOffset = binary.BigEndian.Uint64(buf[24:32])
	// buf[32:64] holds MD5 + parent MD5, superseded by SHA1 and unused here.
	h.HunkBytes = binary.BigEndian.Uint32(buf[64:68])
	copy(h.SHA1[:], buf[68:88])
	copy(h.ParentSHA1[:], buf[88:108])
	h.UnitBytes = defaultUnitBytes
	h.MapOffset = uint64(h.HeaderSize)
	return nil
}

// NumHunks returns the hunk count, preferring the explicit V3/V4
// TotalHunks field and falling back to computing it from LogicalBytes
// for V5, which doesn't store it directly.
func (h *Header) NumHunks() uint32 {
	if h.TotalHunks > 0 {
		return h.TotalHunks
	}
	if h.HunkBytes == 0 {
		return 0
	}
	//nolint:gosec // Safe: result bounded by file size, will not overflow for valid CHD files
	return uint32((h.LogicalBytes + uint64(h.HunkBytes) - 1) / uint64(h.HunkBytes))
}

// IsCompressed reports whether any hunk in the CHD uses compression.
func (h *Header) IsCompressed() bool {
	if h.Version == 5 {
		return h.Compressors[0] != 0
	}
	return h.Compression != 0
}
