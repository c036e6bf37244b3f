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

// Package chd opens MAME's CHD (Compressed Hunks of Data) container and
// exposes its payload as a flat, randomly-addressable stream of 2048-byte
// logical sectors. It covers exactly the single-data-track case an Xbox
// optical disc redump needs — no CD audio track, subchannel, or track
// table handling, since XDVDFS images never carry any of those.
package chd

import (
	"fmt"
	"io"
	"os"
)

// defaultUnitBytes is the CHD V3/V4 default unit size, used by formats
// that predate CHD carrying its own UnitBytes field.
const defaultUnitBytes = 2448

// logicalSectorSize is the size of one XDVDFS-visible sector.
const logicalSectorSize = 2048

// CHD is an opened CHD container.
type CHD struct {
	file    *os.File
	header  *Header
	hunkMap *HunkMap
}

// Open opens path and parses its CHD header and hunk map.
func Open(path string) (*CHD, error) {
	file, err := os.Open(path) //nolint:gosec // Path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("open CHD file: %w", err)
	}

	c := &CHD{file: file}
	if err := c.init(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return c, nil
}

func (c *CHD) init() error {
	header, err := parseHeader(c.file)
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	c.header = header

	hunkMap, err := NewHunkMap(c.file, header)
	if err != nil {
		return fmt.Errorf("create hunk map: %w", err)
	}
	c.hunkMap = hunkMap

	return nil
}

// Close closes the underlying file.
func (c *CHD) Close() error {
	if c.file == nil {
		return nil
	}
	if err := c.file.Close(); err != nil {
		return fmt.Errorf("close CHD file: %w", err)
	}
	return nil
}

// Header returns the parsed CHD header.
func (c *CHD) Header() *Header {
	return c.header
}

// Size returns the total logical (uncompressed) size of the CHD payload.
func (c *CHD) Size() int64 {
	return int64(c.header.LogicalBytes) //nolint:gosec // LogicalBytes is bounded by file size
}

// SectorReader returns an io.ReaderAt presenting the CHD's payload as
// 2048-byte logical sectors starting at sector 0 — the layout an XDVDFS
// volume expects.
func (c *CHD) SectorReader() io.ReaderAt {
	return &sectorReader{chd: c}
}

// unitBytes returns the header's declared unit size, or the V3/V4 default
// when the header doesn't carry one.
func (c *CHD) unitBytes() int64 {
	if c.header.UnitBytes != 0 {
		return int64(c.header.UnitBytes)
	}
	return defaultUnitBytes
}

// sectorReader implements io.ReaderAt over a CHD's hunk map, translating
// logical-sector offsets into hunk reads and stripping any CD-style sync
// header a unit may carry around its 2048 bytes of user data.
type sectorReader struct {
	chd *CHD
}

// locateUnit maps a logical-sector offset to the hunk and in-hunk unit
// that contains it.
type unitLocation struct {
	hunkIdx      uint32
	unitInHunk   int64
	offsetInUnit int64
}

func (sr *sectorReader) locateUnit(offset, hunkBytes, unitBytes int64) unitLocation {
	unitsPerHunk := hunkBytes / unitBytes
	sector := offset / logicalSectorSize
	return unitLocation{
		hunkIdx:      uint32(sector / unitsPerHunk), //nolint:gosec // Sector index bounded by file size
		unitInHunk:   sector % unitsPerHunk,
		offsetInUnit: offset % logicalSectorSize,
	}
}

// userDataOffset returns where, within a hunk unit, the 2048 bytes of
// user data begin. CD-sourced CHDs lay a 16-byte (Mode1) or 24-byte
// (Mode2) sync header before the user data; a codec that already strips
// it (the common case for non-CD hunks) leaves the unit starting at 0.
func userDataOffset(hunkData []byte, unitStart int64) int64 {
	if unitStart+12 > int64(len(hunkData)) {
		return 0
	}
	hasSyncHeader := hunkData[unitStart] == 0x00 &&
		hunkData[unitStart+1] == 0xFF &&
		hunkData[unitStart+11] == 0x00
	if !hasSyncHeader {
		return 0
	}
	if unitStart+15 < int64(len(hunkData)) && hunkData[unitStart+15] == 2 {
		return 24 // Mode2
	}
	return 16 // Mode1
}

func (sr *sectorReader) ReadAt(dest []byte, off int64) (int, error) {
	if len(dest) == 0 {
		return 0, nil
	}

	hunkBytes := int64(sr.chd.hunkMap.HunkBytes())
	unitBytes := sr.chd.unitBytes()

	var written int
	for written < len(dest) {
		loc := sr.locateUnit(off+int64(written), hunkBytes, unitBytes)

		hunkData, err := sr.chd.hunkMap.ReadHunk(loc.hunkIdx)
		if err != nil {
			return written, fmt.Errorf("read hunk %d: %w", loc.hunkIdx, err)
		}

		unitStart := loc.unitInHunk * unitBytes
		dataStart := unitStart + userDataOffset(hunkData, unitStart) + loc.offsetInUnit
		if dataStart >= int64(len(hunkData)) {
			return written, fmt.Errorf("hunk %d: %w", loc.hunkIdx, ErrTruncatedHunk)
		}

		available := int64(len(hunkData)) - dataStart
		chunk := logicalSectorSize - loc.offsetInUnit
		if available < chunk {
			chunk = available
		}
		n := min(int(chunk), len(dest)-written)

		copy(dest[written:], hunkData[dataStart:dataStart+int64(n)])
		written += n
	}

	return written, nil
}
