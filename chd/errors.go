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

import "errors"

// Allocation limits, to keep a malformed or hostile CHD from driving an
// unbounded allocation before the format error surfaces.
const (
	// MaxCompMapLen bounds the compressed V5 hunk map (100MB).
	MaxCompMapLen = 100 * 1024 * 1024

	// MaxNumHunks bounds the hunk count (10M hunks is ~200GB uncompressed
	// at a typical hunk size — far past any real optical disc dump).
	MaxNumHunks = 10_000_000
)

// Sentinel errors for CHD parsing failures.
var (
	ErrInvalidMagic       = errors.New("invalid CHD magic: expected MComprHD")
	ErrInvalidHeader      = errors.New("invalid CHD header")
	ErrUnsupportedVersion = errors.New("unsupported CHD version")
	ErrUnsupportedCodec   = errors.New("unsupported compression codec")
	ErrInvalidHunk        = errors.New("invalid hunk index")
	ErrDecompressFailed   = errors.New("decompression failed")
	ErrTruncatedHunk      = errors.New("hunk yielded fewer bytes than expected")
)
