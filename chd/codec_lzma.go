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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

func init() {
	RegisterCodec(CodecLZMA, func() Codec { return &lzmaCodec{} })
}

// lzmaProps is the fixed (lc=3, lp=0, pb=2) properties byte MAME's CHD
// encoder always uses for hunk compression (level 8, no custom tuning).
const lzmaProps = 0x5D

// lzmaCodec decompresses raw (headerless) LZMA hunks. CHD stores neither
// the properties byte nor the dictionary size that the reference LZMA SDK
// header normally carries; both must be reconstructed before handing the
// stream to a standard decoder.
type lzmaCodec struct {
	hunkBytes uint32 // hint for dictionary-size recomputation; 0 uses len(dst)
}

// lzmaDictSize reproduces MAME's configure_properties: start from a
// level-8 dictionary and shrink it to the smallest 2^n/3*2^n bucket that
// still covers reduceSize.
func lzmaDictSize(reduceSize uint32) uint32 {
	for shift := uint32(11); shift <= 30; shift++ {
		if reduceSize <= 2<<shift {
			return 2 << shift
		}
		if reduceSize <= 3<<shift {
			return 3 << shift
		}
	}
	return 1 << 26
}

// synthesizeLZMAHeader builds the 13-byte header (props + little-endian
// dict size + little-endian uncompressed size) the lzma package expects,
// since CHD's on-disk stream omits it entirely.
func synthesizeLZMAHeader(dictSize uint32, uncompressedLen int) []byte {
	header := make([]byte, 13)
	header[0] = lzmaProps
	binary.LittleEndian.PutUint32(header[1:5], dictSize)
	binary.LittleEndian.PutUint64(header[5:13], uint64(uncompressedLen))
	return header
}

func (c *lzmaCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, fmt.Errorf("%w: lzma: empty source", ErrDecompressFailed)
	}

	reduceSize := c.hunkBytes
	if reduceSize == 0 {
		//nolint:gosec // Safe: len(dst) is hunk size, bounded by uint32
		reduceSize = uint32(len(dst))
	}
	header := synthesizeLZMAHeader(lzmaDictSize(reduceSize), len(dst))

	stream := make([]byte, 0, len(header)+len(src))
	stream = append(stream, header...)
	stream = append(stream, src...)

	r, err := lzma.NewReader(bytes.NewReader(stream))
	if err != nil {
		return 0, fmt.Errorf("%w: lzma init: %w", ErrDecompressFailed, err)
	}

	n, err := io.ReadFull(r, dst)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("%w: lzma read: %w", ErrDecompressFailed, err)
	}
	return n, nil
}
