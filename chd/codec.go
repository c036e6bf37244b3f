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
	"fmt"
	"sync"
)

// Hunk codec tags, as they appear in a V5 header's Compressors array. Each
// is the big-endian uint32 form of a 4-character ASCII tag.
const (
	CodecNone uint32 = 0x00000000
	CodecZlib uint32 = 0x7a6c6962 // "zlib"
	CodecLZMA uint32 = 0x6c7a6d61 // "lzma"
	CodecHuff uint32 = 0x68756666 // "huff"
	CodecZstd uint32 = 0x7a737464 // "zstd"
)

// Codec decompresses one hunk's worth of data.
type Codec interface {
	// Decompress expands src into dst, which is pre-sized to the hunk's
	// uncompressed length, and reports how many bytes it wrote.
	Decompress(dst, src []byte) (int, error)
}

type codecFactory func() Codec

// codecTable maps a hunk codec tag to the factory that builds a decoder for
// it. Each supported format's file registers itself via RegisterCodec in
// an init func, so the set of available tags depends only on which codec
// files are compiled in.
type codecTable struct {
	mu        sync.RWMutex
	factories map[uint32]codecFactory
}

var globalCodecs = &codecTable{factories: make(map[uint32]codecFactory)}

// RegisterCodec makes a codec available under the given tag.
func RegisterCodec(tag uint32, build codecFactory) {
	globalCodecs.mu.Lock()
	defer globalCodecs.mu.Unlock()
	globalCodecs.factories[tag] = build
}

// GetCodec instantiates the codec registered for tag, if any.
func GetCodec(tag uint32) (Codec, error) {
	globalCodecs.mu.RLock()
	build, ok := globalCodecs.factories[tag]
	globalCodecs.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: 0x%08x (%s)", ErrUnsupportedCodec, tag, tagName(tag))
	}
	return build(), nil
}

// tagName renders a codec tag as its 4-character ASCII form, for error
// messages.
func tagName(tag uint32) string {
	if tag == 0 {
		return "none"
	}
	return string([]byte{byte(tag >> 24), byte(tag >> 16), byte(tag >> 8), byte(tag)})
}
