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

// Package xdvdfs decodes the XDVDFS (XISO) on-disc filesystem used by Xbox
// optical discs: locating the volume header across the candidate offsets a
// raw disc dump may carry it at, walking the per-directory binary search
// tree of entries, and dispatching visited entries to a listing or
// extraction sink.
package xdvdfs

import (
	"fmt"
	"io"

	xbinary "github.com/ZaparooProject/go-xiso/internal/binary"
)

const (
	// SectorSize is the fixed XDVDFS sector size in bytes.
	SectorSize = 2048

	headerOffset     = 0x10000
	magicLength      = 20
	filetimeSize     = 8
	reservedSize     = 0x7c8
	magic            = "MICROSOFT*XBOX*MEDIA"
	maxRecursionDepth = 128

	// AttrDirectory is the attribute bit identifying a directory entry.
	AttrDirectory = 0x10
)

// candidateBaseOffsets lists the base offsets probed, in order, by Locate.
// Standard (raw XISO), redump-style (GLOBAL_LSEEK_OFFSET), and XGD3.
var candidateBaseOffsets = []uint64{0, 0xFD90000, 0x2080000}

// ByteSource is a random-access, read-only view over an image. Sessions
// never seek a shared cursor; every read is independently positioned.
type ByteSource interface {
	io.ReaderAt
	// Size returns the total size of the underlying image in bytes.
	Size() int64
}

// VolumeDescriptor describes a located XDVDFS volume.
type VolumeDescriptor struct {
	// BaseOffset is the absolute byte offset added to every sector address.
	BaseOffset uint64
	// RootSector is the sector number of the root directory table.
	RootSector uint32
	// RootSize is the advisory byte size of the root directory table.
	RootSize uint32
}

// RootTableStart returns the absolute byte offset of the root directory table.
func (v VolumeDescriptor) RootTableStart() uint64 {
	return v.BaseOffset + uint64(v.RootSector)*SectorSize
}

// Locate probes the three candidate base offsets in order and returns the
// descriptor for the first one carrying a valid dual-magic header. It fails
// with NotAnXisoError if none match.
func Locate(src ByteSource) (VolumeDescriptor, error) {
	var tried []uint64
	for _, base := range candidateBaseOffsets {
		desc, ok, err := probeHeader(src, base)
		if err != nil {
			return VolumeDescriptor{}, err
		}
		if ok {
			return desc, nil
		}
		tried = append(tried, base)
	}
	return VolumeDescriptor{}, NotAnXisoError{TriedOffsets: tried}
}

// LocateAt validates the dual-magic header at exactly one candidate base
// offset, skipping the other two. It's used when a caller already knows
// which of the three conventions an image uses (for instance, from prior
// inspection) and wants to avoid probing the others.
func LocateAt(src ByteSource, base uint64) (VolumeDescriptor, error) {
	desc, ok, err := probeHeader(src, base)
	if err != nil {
		return VolumeDescriptor{}, err
	}
	if !ok {
		return VolumeDescriptor{}, NotAnXisoError{TriedOffsets: []uint64{base}}
	}
	return desc, nil
}

// probeHeader checks a single candidate offset. A short read past the end
// of the image is treated as "no match", not an I/O failure, since the
// remaining candidates may still be valid.
func probeHeader(src ByteSource, base uint64) (VolumeDescriptor, bool, error) {
	headerStart := int64(base) + headerOffset
	if headerStart < 0 || headerStart+magicLength > src.Size() {
		return VolumeDescriptor{}, false, nil
	}

	leading, err := xbinary.ReadBytesAt(src, headerStart, magicLength)
	if err != nil {
		return VolumeDescriptor{}, false, nil
	}
	if string(leading) != magic {
		return VolumeDescriptor{}, false, nil
	}

	rootSector, err := xbinary.ReadUint32LEAt(src, headerStart+magicLength)
	if err != nil {
		return VolumeDescriptor{}, false, nil
	}
	rootSize, err := xbinary.ReadUint32LEAt(src, headerStart+magicLength+4)
	if err != nil {
		return VolumeDescriptor{}, false, nil
	}

	trailingStart := headerStart + magicLength + 4 + 4 + filetimeSize + reservedSize
	trailing, err := xbinary.ReadBytesAt(src, trailingStart, magicLength)
	if err != nil {
		return VolumeDescriptor{}, false, nil
	}
	if string(trailing) != magic {
		return VolumeDescriptor{}, false, nil
	}

	return VolumeDescriptor{
		BaseOffset: base,
		RootSector: rootSector,
		RootSize:   rootSize,
	}, true, nil
}

// sectorOffset computes the absolute byte offset of a sector-based address
// and verifies it lies within the image.
func sectorOffset(src ByteSource, base uint64, sector uint32) (uint64, error) {
	off := base + uint64(sector)*SectorSize
	if int64(off) < 0 || int64(off) >= src.Size() {
		return 0, fmt.Errorf("sector %d out of range (offset 0x%x, image size %d)", sector, off, src.Size())
	}
	return off, nil
}
