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

	"github.com/klauspost/compress/zstd"
)

func init() {
	RegisterCodec(CodecZstd, func() Codec { return &zstdCodec{} })
}

// zstdCodec decompresses Zstandard hunks. The underlying decoder is
// created lazily and reused across calls, since construction allocates a
// window buffer that's wasted if a CHD never uses this codec slot.
type zstdCodec struct {
	once    sync.Once
	decoder *zstd.Decoder
	initErr error
}

func (z *zstdCodec) ensureDecoder() error {
	z.once.Do(func() {
		z.decoder, z.initErr = zstd.NewReader(nil)
	})
	return z.initErr
}

func (z *zstdCodec) Decompress(dst, src []byte) (int, error) {
	if err := z.ensureDecoder(); err != nil {
		return 0, fmt.Errorf("%w: zstd init: %w", ErrDecompressFailed, err)
	}

	out, err := z.decoder.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, fmt.Errorf("%w: zstd: %w", ErrDecompressFailed, err)
	}
	if len(out) > len(dst) {
		return 0, fmt.Errorf("%w: zstd: output too large", ErrDecompressFailed)
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}
