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

// Package nameenc decodes the raw bytes of an XDVDFS directory entry name
// into a Go string. The on-disc format does not record a character
// encoding, so callers choose a decoding policy: lossy UTF-8 (the default,
// suitable for the common case of ASCII-only names) or Windows-1252, seen
// in some PAL releases that embed accented names.
package nameenc

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Decoder converts raw on-disc name bytes into a string.
type Decoder func([]byte) string

// UTF8 decodes raw bytes as UTF-8, replacing any invalid sequence with the
// Unicode replacement rune. This is the default policy.
func UTF8(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}

// CP1252 decodes raw bytes as Windows-1252 (the common extended-ASCII
// encoding used by the Xbox development toolchain for accented Latin
// names).
func CP1252(raw []byte) string {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return UTF8(raw)
	}
	return string(decoded)
}
