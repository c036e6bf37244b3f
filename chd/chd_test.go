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
	"compress/flate"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// buildUnitPayload fills a unitBytes-sized hunk with deterministic,
// sync-header-free content so sectorReader never mistakes it for a
// CD-style Mode1/Mode2 unit.
func buildUnitPayload(hunkIdx, unitBytes int) []byte {
	data := make([]byte, unitBytes)
	for j := range data {
		data[j] = byte((hunkIdx*97 + j*3 + 5) % 251)
	}
	return data
}

// writeV4CHD assembles a minimal V4 CHD file (flat 16-byte map entries)
// from the given per-hunk payloads and returns its path. With compress
// set, each hunk is deflated and the header advertises zlib compression,
// matching what chdman's V4 writer produced.
func writeV4CHD(t *testing.T, payloads [][]byte, hunkBytes uint32, compress bool) string {
	t.Helper()

	const headerSize = 108
	numHunks := len(payloads)
	mapSize := numHunks * 16
	dataStart := headerSize + mapSize

	stored := make([][]byte, numHunks)
	for i, p := range payloads {
		if compress {
			var deflated bytes.Buffer
			writer, err := flate.NewWriter(&deflated, flate.DefaultCompression)
			if err != nil {
				t.Fatalf("create flate writer: %v", err)
			}
			if _, err := writer.Write(p); err != nil {
				t.Fatalf("deflate hunk %d: %v", i, err)
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("close flate writer: %v", err)
			}
			stored[i] = append([]byte{}, deflated.Bytes()...)
		} else {
			stored[i] = p
		}
	}

	var buf bytes.Buffer
	buf.WriteString("MComprHD")
	_ = binary.Write(&buf, binary.BigEndian, uint32(headerSize))

	compression := uint32(0)
	if compress {
		compression = 1 // zlib
	}

	rest := make([]byte, headerSize-12)
	binary.BigEndian.PutUint32(rest[0:4], 4) // version
	binary.BigEndian.PutUint32(rest[4:8], 0) // flags
	binary.BigEndian.PutUint32(rest[8:12], compression)
	//nolint:gosec // Test only: numHunks from small fixed-size slice literal
	binary.BigEndian.PutUint32(rest[12:16], uint32(numHunks))
	binary.BigEndian.PutUint64(rest[16:24], uint64(numHunks)*logicalSectorSize)
	binary.BigEndian.PutUint64(rest[24:32], 0)
	binary.BigEndian.PutUint32(rest[32:36], hunkBytes)
	buf.Write(rest)

	offset := uint64(dataStart)
	for _, s := range stored {
		entryType := byte(2) // uncompressed
		if compress {
			entryType = 1
		}
		entry := make([]byte, 16)
		binary.BigEndian.PutUint64(entry[0:8], offset)
		binary.BigEndian.PutUint16(entry[12:14], uint16(len(s))) //nolint:gosec // test hunk sizes fit 16 bits
		entry[14] = 0                                            // length high byte
		entry[15] = entryType
		buf.Write(entry)
		offset += uint64(len(s))
	}

	for _, s := range stored {
		buf.Write(s)
	}

	path := filepath.Join(t.TempDir(), "synthetic.chd")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write synthetic CHD: %v", err)
	}
	return path
}

func TestOpenAndReadSyntheticV4CHD(t *testing.T) {
	t.Parallel()

	const unitBytes = 2448
	payloads := [][]byte{
		buildUnitPayload(0, unitBytes),
		buildUnitPayload(1, unitBytes),
		buildUnitPayload(2, unitBytes),
	}
	path := writeV4CHD(t, payloads, unitBytes, false)

	chdFile, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = chdFile.Close() }()

	if chdFile.Header().Version != 4 {
		t.Fatalf("Version = %d, want 4", chdFile.Header().Version)
	}
	wantSize := int64(len(payloads)) * logicalSectorSize
	if chdFile.Size() != wantSize {
		t.Errorf("Size() = %d, want %d", chdFile.Size(), wantSize)
	}

	reader := chdFile.SectorReader()
	for i, p := range payloads {
		got := make([]byte, logicalSectorSize)
		n, err := reader.ReadAt(got, int64(i)*logicalSectorSize)
		if err != nil {
			t.Fatalf("ReadAt(sector %d) failed: %v", i, err)
		}
		if n != logicalSectorSize {
			t.Errorf("sector %d: read %d bytes, want %d", i, n, logicalSectorSize)
		}
		if !bytes.Equal(got, p[:logicalSectorSize]) {
			t.Errorf("sector %d: data mismatch", i)
		}
	}
}

// TestOpenAndReadCompressedV4CHD covers the V3/V4 path where the header's
// numeric compression id selects the zlib codec for every compressed map
// entry.
func TestOpenAndReadCompressedV4CHD(t *testing.T) {
	t.Parallel()

	const unitBytes = 2448
	payloads := [][]byte{
		buildUnitPayload(0, unitBytes),
		buildUnitPayload(1, unitBytes),
	}
	path := writeV4CHD(t, payloads, unitBytes, true)

	chdFile, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = chdFile.Close() }()

	if !chdFile.Header().IsCompressed() {
		t.Fatal("expected IsCompressed() = true")
	}

	reader := chdFile.SectorReader()
	for i, p := range payloads {
		got := make([]byte, logicalSectorSize)
		if _, err := reader.ReadAt(got, int64(i)*logicalSectorSize); err != nil {
			t.Fatalf("ReadAt(sector %d) failed: %v", i, err)
		}
		if !bytes.Equal(got, p[:logicalSectorSize]) {
			t.Errorf("sector %d: data mismatch after zlib decompression", i)
		}
	}
}

func TestSectorReaderSpansMultipleHunks(t *testing.T) {
	t.Parallel()

	const unitBytes = 2448
	payloads := [][]byte{
		buildUnitPayload(0, unitBytes),
		buildUnitPayload(1, unitBytes),
	}
	path := writeV4CHD(t, payloads, unitBytes, false)

	chdFile, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = chdFile.Close() }()

	reader := chdFile.SectorReader()
	got := make([]byte, logicalSectorSize*2)
	n, err := reader.ReadAt(got, 0)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if n != len(got) {
		t.Errorf("read %d bytes, want %d", n, len(got))
	}
	want := append(append([]byte{}, payloads[0][:logicalSectorSize]...), payloads[1][:logicalSectorSize]...)
	if !bytes.Equal(got, want) {
		t.Error("spanning read mismatch across hunk boundary")
	}
}

// TestOpenNonExistent verifies error handling for missing files.
func TestOpenNonExistent(t *testing.T) {
	t.Parallel()

	_, err := Open("/nonexistent/path/to/file.chd")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !os.IsNotExist(errors.Unwrap(err)) && !strings.Contains(err.Error(), "no such file") {
		t.Logf("got error (acceptable): %v", err)
	}
}

// TestOpenInvalidMagic verifies error handling for non-CHD files.
func TestOpenInvalidMagic(t *testing.T) {
	t.Parallel()

	_, err := Open("chd_test.go")
	if err == nil {
		t.Fatal("expected error for invalid magic")
	}
	if !errors.Is(err, ErrInvalidMagic) && !strings.Contains(err.Error(), "invalid CHD magic") {
		t.Errorf("expected ErrInvalidMagic, got: %v", err)
	}
}

// TestReadAtEmptyBuffer verifies ReadAt with an empty destination.
func TestReadAtEmptyBuffer(t *testing.T) {
	t.Parallel()

	const unitBytes = 2448
	path := writeV4CHD(t, [][]byte{buildUnitPayload(0, unitBytes)}, unitBytes, false)

	chdFile, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = chdFile.Close() }()

	reader := chdFile.SectorReader()
	n, err := reader.ReadAt(make([]byte, 0), 0)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 bytes, got %d", n)
	}
}

func TestUserDataOffsetDetectsSyncHeader(t *testing.T) {
	t.Parallel()

	mode1 := make([]byte, 2352)
	mode1[0], mode1[1], mode1[11] = 0x00, 0xFF, 0x00
	mode1[15] = 1
	if got := userDataOffset(mode1, 0); got != 16 {
		t.Errorf("Mode1 offset = %d, want 16", got)
	}

	mode2 := make([]byte, 2352)
	mode2[0], mode2[1], mode2[11] = 0x00, 0xFF, 0x00
	mode2[15] = 2
	if got := userDataOffset(mode2, 0); got != 24 {
		t.Errorf("Mode2 offset = %d, want 24", got)
	}

	plain := buildUnitPayload(0, 2448)
	if got := userDataOffset(plain, 0); got != 0 {
		t.Errorf("plain-data offset = %d, want 0", got)
	}
}

// TestHeaderV5Parsing verifies V5 header field layout decoding.
func TestHeaderV5Parsing(t *testing.T) {
	t.Parallel()

	buf := make([]byte, headerSizeV5-12)
	binary.BigEndian.PutUint32(buf[0:4], 5) // version
	binary.BigEndian.PutUint32(buf[4:8], CodecZlib)
	binary.BigEndian.PutUint32(buf[8:12], CodecLZMA)
	binary.BigEndian.PutUint64(buf[20:28], 2000000)
	binary.BigEndian.PutUint64(buf[28:36], 124)
	binary.BigEndian.PutUint64(buf[36:44], 0)
	binary.BigEndian.PutUint32(buf[44:48], 4096)
	binary.BigEndian.PutUint32(buf[48:52], 2048)

	header := &Header{Version: 5}
	if err := decodeHeaderV5(header, buf); err != nil {
		t.Fatalf("decodeHeaderV5 failed: %v", err)
	}
	if header.Compressors[0] != CodecZlib || header.Compressors[1] != CodecLZMA {
		t.Errorf("Compressors = %v, want [zlib lzma 0 0]", header.Compressors)
	}
	if header.LogicalBytes != 2000000 {
		t.Errorf("LogicalBytes = %d, want 2000000", header.LogicalBytes)
	}
	if header.HunkBytes != 4096 {
		t.Errorf("HunkBytes = %d, want 4096", header.HunkBytes)
	}
	if header.UnitBytes != 2048 {
		t.Errorf("UnitBytes = %d, want 2048", header.UnitBytes)
	}
	if !header.IsCompressed() {
		t.Error("expected IsCompressed true when Compressors[0] is set")
	}
}

// TestHeaderV4Parsing verifies V4 header field layout decoding.
func TestHeaderV4Parsing(t *testing.T) {
	t.Parallel()

	buf := make([]byte, headerSizeV4-12)
	binary.BigEndian.PutUint32(buf[4:8], 0x00000001)
	binary.BigEndian.PutUint32(buf[8:12], 0x00000005)
	binary.BigEndian.PutUint32(buf[12:16], 1000)
	binary.BigEndian.PutUint64(buf[16:24], 1000000)
	binary.BigEndian.PutUint64(buf[24:32], 500)
	binary.BigEndian.PutUint32(buf[32:36], 4096)

	header := &Header{Version: 4}
	if err := decodeHeaderV4(header, buf); err != nil {
		t.Fatalf("decodeHeaderV4 failed: %v", err)
	}
	if header.Flags != 1 {
		t.Errorf("Flags = %d, want 1", header.Flags)
	}
	if header.Compression != 5 {
		t.Errorf("Compression = %d, want 5", header.Compression)
	}
	if header.TotalHunks != 1000 {
		t.Errorf("TotalHunks = %d, want 1000", header.TotalHunks)
	}
	if header.LogicalBytes != 1000000 {
		t.Errorf("LogicalBytes = %d, want 1000000", header.LogicalBytes)
	}
	if header.HunkBytes != 4096 {
		t.Errorf("HunkBytes = %d, want 4096", header.HunkBytes)
	}
	if header.UnitBytes != defaultUnitBytes {
		t.Errorf("UnitBytes = %d, want %d", header.UnitBytes, defaultUnitBytes)
	}
	if header.MapOffset != headerSizeV4 {
		t.Errorf("MapOffset = %d, want %d", header.MapOffset, headerSizeV4)
	}
	if !header.IsCompressed() {
		t.Error("expected IsCompressed true when Compression is nonzero")
	}
}

// TestHeaderV4TooSmall verifies error for truncated V4 buffer.
func TestHeaderV4TooSmall(t *testing.T) {
	t.Parallel()

	header := &Header{Version: 4}
	err := decodeHeaderV4(header, make([]byte, 10))
	if err == nil {
		t.Error("expected error for truncated buffer")
	}
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got: %v", err)
	}
}

// TestHeaderV3Parsing verifies V3 header field layout decoding.
func TestHeaderV3Parsing(t *testing.T) {
	t.Parallel()

	buf := make([]byte, headerSizeV3-12)
	binary.BigEndian.PutUint32(buf[4:8], 0x00000002)
	binary.BigEndian.PutUint32(buf[8:12], 0x00000003)
	binary.BigEndian.PutUint32(buf[12:16], 500)
	binary.BigEndian.PutUint64(buf[16:24], 500000)
	binary.BigEndian.PutUint64(buf[24:32], 250)
	// buf[32:64] holds MD5 + parent MD5, unused.
	binary.BigEndian.PutUint32(buf[64:68], 8192)

	header := &Header{Version: 3}
	if err := decodeHeaderV3(header, buf); err != nil {
		t.Fatalf("decodeHeaderV3 failed: %v", err)
	}
	if header.Flags != 2 {
		t.Errorf("Flags = %d, want 2", header.Flags)
	}
	if header.Compression != 3 {
		t.Errorf("Compression = %d, want 3", header.Compression)
	}
	if header.TotalHunks != 500 {
		t.Errorf("TotalHunks = %d, want 500", header.TotalHunks)
	}
	if header.HunkBytes != 8192 {
		t.Errorf("HunkBytes = %d, want 8192", header.HunkBytes)
	}
	if header.UnitBytes != defaultUnitBytes {
		t.Errorf("UnitBytes = %d, want %d", header.UnitBytes, defaultUnitBytes)
	}
}

// TestHeaderV3TooSmall verifies error for truncated V3 buffer.
func TestHeaderV3TooSmall(t *testing.T) {
	t.Parallel()

	header := &Header{Version: 3}
	err := decodeHeaderV3(header, make([]byte, 50))
	if err == nil {
		t.Error("expected error for truncated buffer")
	}
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got: %v", err)
	}
}

// TestNumHunksCalculation verifies hunk count calculation.
func TestNumHunksCalculation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		header       Header
		expectedHunk uint32
	}{
		{
			name:         "from_total_hunks",
			header:       Header{TotalHunks: 100, HunkBytes: 4096, LogicalBytes: 1000000},
			expectedHunk: 100,
		},
		{
			name:         "calculated",
			header:       Header{TotalHunks: 0, HunkBytes: 4096, LogicalBytes: 16384},
			expectedHunk: 4,
		},
		{
			name:         "calculated_with_remainder",
			header:       Header{TotalHunks: 0, HunkBytes: 4096, LogicalBytes: 17000},
			expectedHunk: 5,
		},
		{
			name:         "zero_hunk_bytes",
			header:       Header{TotalHunks: 0, HunkBytes: 0, LogicalBytes: 16384},
			expectedHunk: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.header.NumHunks()
			if got != tt.expectedHunk {
				t.Errorf("NumHunks() = %d, want %d", got, tt.expectedHunk)
			}
		})
	}
}

func TestGetCodecUnknown(t *testing.T) {
	t.Parallel()

	_, err := GetCodec(0x12345678)
	if err == nil {
		t.Error("expected error for unknown codec")
	}
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got: %v", err)
	}
}

func TestRegisterAndGetCodec(t *testing.T) {
	t.Parallel()

	for _, tag := range []uint32{CodecZlib, CodecLZMA, CodecZstd} {
		codec, err := GetCodec(tag)
		if err != nil {
			t.Errorf("GetCodec(0x%x) failed: %v", tag, err)
			continue
		}
		if codec == nil {
			t.Errorf("GetCodec(0x%x) returned nil codec", tag)
		}
	}
}

func TestTagName(t *testing.T) {
	t.Parallel()

	if got := tagName(0); got != "none" {
		t.Errorf("tagName(0) = %q, want none", got)
	}
	if got := tagName(CodecZlib); got != "zlib" {
		t.Errorf("tagName(zlib) = %q, want zlib", got)
	}
}

func TestZlibCodecDecompress(t *testing.T) {
	t.Parallel()

	codec := zlibCodec{}

	original := []byte("hello world hello world hello world hello world")
	var compressed bytes.Buffer
	writer, _ := flate.NewWriter(&compressed, flate.DefaultCompression)
	_, _ = writer.Write(original)
	_ = writer.Close()

	dst := make([]byte, len(original))
	n, err := codec.Decompress(dst, compressed.Bytes())
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if n != len(original) || !bytes.Equal(dst[:n], original) {
		t.Error("decompressed data mismatch")
	}
}

func TestZlibCodecDecompressInvalid(t *testing.T) {
	t.Parallel()

	codec := zlibCodec{}
	dst := make([]byte, 100)
	if _, err := codec.Decompress(dst, []byte{0xFF, 0xFF, 0xFF, 0xFF}); err == nil {
		t.Error("expected error for invalid deflate stream")
	}
}

func TestLZMADictSizeComputation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hunkBytes uint32
		minDict   uint32
	}{
		{4096, 4096},
		{8192, 8192},
		{19584, 24576},
		{1 << 20, 1 << 20},
	}

	for _, tt := range tests {
		got := lzmaDictSize(tt.hunkBytes)
		if got < tt.hunkBytes {
			t.Errorf("lzmaDictSize(%d) = %d, should be >= %d", tt.hunkBytes, got, tt.hunkBytes)
		}
	}
}

func TestSynthesizeLZMAHeader(t *testing.T) {
	t.Parallel()

	header := synthesizeLZMAHeader(1<<20, 4096)
	if len(header) != 13 {
		t.Fatalf("header length = %d, want 13", len(header))
	}
	if header[0] != lzmaProps {
		t.Errorf("props byte = 0x%x, want 0x%x", header[0], lzmaProps)
	}
	if got := binary.LittleEndian.Uint32(header[1:5]); got != 1<<20 {
		t.Errorf("dict size = %d, want %d", got, 1<<20)
	}
	if got := binary.LittleEndian.Uint64(header[5:13]); got != 4096 {
		t.Errorf("uncompressed size = %d, want 4096", got)
	}
}

func TestLZMACodecEmptySource(t *testing.T) {
	t.Parallel()

	codec := &lzmaCodec{}
	dst := make([]byte, 100)
	_, err := codec.Decompress(dst, []byte{})
	if err == nil {
		t.Error("expected error for empty source")
	}
	if !strings.Contains(err.Error(), "empty source") {
		t.Errorf("expected 'empty source' error, got: %v", err)
	}
}

func TestZstdCodecRoundTrip(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte("xdvdfs sector payload "), 64)
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := enc.EncodeAll(original, nil)
	_ = enc.Close()

	codec := &zstdCodec{}
	dst := make([]byte, len(original))
	n, err := codec.Decompress(dst, compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if n != len(original) || !bytes.Equal(dst[:n], original) {
		t.Error("decompressed data mismatch")
	}
}

func TestDecodedHunkCacheEviction(t *testing.T) {
	t.Parallel()

	c := newDecodedHunkCache(2)
	c.put(0, []byte{1})
	c.put(1, []byte{2})
	if _, ok := c.get(0); !ok {
		t.Fatal("expected hunk 0 to be cached")
	}

	c.put(2, []byte{3}) // limit reached: clears before inserting
	if _, ok := c.get(0); ok {
		t.Error("expected cache to have been cleared on overflow")
	}
	if data, ok := c.get(2); !ok || !bytes.Equal(data, []byte{3}) {
		t.Error("expected hunk 2 present after eviction")
	}
}

// TestHunkMapSelfReference exercises HunkCompTypeSelf resolution directly
// against a hand-built HunkMap, bypassing the V5 Huffman map parser.
func TestHunkMapSelfReference(t *testing.T) {
	t.Parallel()

	header := &Header{HunkBytes: 4}
	hm := &HunkMap{
		header: header,
		cache:  newDecodedHunkCache(16),
		entries: []HunkMapEntry{
			{CompType: HunkCompTypeNone, Offset: 0},
			{CompType: HunkCompTypeSelf, Offset: 0},
		},
	}

	backing := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	hm.reader = bytes.NewReader(backing)

	got, err := hm.ReadHunk(1)
	if err != nil {
		t.Fatalf("ReadHunk(self-ref) failed: %v", err)
	}
	if !bytes.Equal(got, backing) {
		t.Errorf("self-ref hunk = %x, want %x", got, backing)
	}
}

// TestHunkMapCodecDecompress exercises decompressWithCodec directly
// against a hand-built HunkMap and codec slice.
func TestHunkMapCodecDecompress(t *testing.T) {
	t.Parallel()

	original := []byte("repeated payload repeated payload repeated payload")
	var compressed bytes.Buffer
	writer, _ := flate.NewWriter(&compressed, flate.DefaultCompression)
	_, _ = writer.Write(original)
	_ = writer.Close()

	var backing bytes.Buffer
	backing.Write(compressed.Bytes())

	header := &Header{HunkBytes: uint32(len(original))} //nolint:gosec // test-only literal length
	hm := &HunkMap{
		header: header,
		reader: bytes.NewReader(backing.Bytes()),
		cache:  newDecodedHunkCache(16),
		codecs: []Codec{zlibCodec{}},
		entries: []HunkMapEntry{
			{CompType: HunkCompTypeCodec0, CompLength: uint32(compressed.Len()), Offset: 0}, //nolint:gosec // test-only literal length
		},
	}

	got, err := hm.ReadHunk(0)
	if err != nil {
		t.Fatalf("ReadHunk failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Error("decompressed hunk mismatch")
	}

	// Second read should come from cache, not re-decompress.
	got2, err := hm.ReadHunk(0)
	if err != nil {
		t.Fatalf("ReadHunk (cached) failed: %v", err)
	}
	if !bytes.Equal(got2, original) {
		t.Error("cached hunk mismatch")
	}
}

func TestHunkMapInvalidIndex(t *testing.T) {
	t.Parallel()

	hm := &HunkMap{
		header:  &Header{HunkBytes: 4},
		cache:   newDecodedHunkCache(4),
		entries: []HunkMapEntry{{CompType: HunkCompTypeNone}},
	}

	if _, err := hm.ReadHunk(5); !errors.Is(err, ErrInvalidHunk) {
		t.Errorf("expected ErrInvalidHunk, got: %v", err)
	}
}
