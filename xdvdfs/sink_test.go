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
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-xiso/xdvdfstest"
)

// TestSessionExtractRejectsOversizedFileEntry: an entry whose declared data
// range extends past the end of the image must fail with MalformedError,
// never produce a silently short file on the host.
func TestSessionExtractRejectsOversizedFileEntry(t *testing.T) {
	t.Parallel()

	oversized := uint32(1 << 30)
	img := xdvdfstest.TestImage(t, xdvdfstest.Dir{
		Files: []xdvdfstest.File{
			{Name: "DEFAULT.XBE", Data: []byte("xbe-contents"), SizeOverride: &oversized},
		},
	}, xdvdfstest.Options{})

	s, err := Open(context.Background(), memSource{data: img}, int64(len(img)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	fs := afero.NewMemMapFs()
	err = s.Extract(context.Background(), fs, "/out")
	if err == nil {
		t.Fatal("Extract() error = nil, want MalformedError for oversized FileSize")
	}
	var malformed MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("Extract() error = %v, want MalformedError", err)
	}

	if exists, _ := afero.Exists(fs, "/out/DEFAULT.XBE"); exists {
		t.Error("DEFAULT.XBE was created on the host despite the oversized FileSize rejection")
	}
}

// TestSessionListToleratesOversizedFileEntry verifies that List, which never
// reads file payload bytes, is unaffected by an oversized FileSize — only
// Extract needs to bounds-check it before streaming data.
func TestSessionListToleratesOversizedFileEntry(t *testing.T) {
	t.Parallel()

	oversized := uint32(1 << 30)
	img := xdvdfstest.TestImage(t, xdvdfstest.Dir{
		Files: []xdvdfstest.File{
			{Name: "DEFAULT.XBE", Data: []byte("xbe-contents"), SizeOverride: &oversized},
		},
	}, xdvdfstest.Options{})

	s, err := Open(context.Background(), memSource{data: img}, int64(len(img)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	sink := NewBoundedListSink(0)
	if err := s.List(context.Background(), sink); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sink.Entries()) != 1 {
		t.Fatalf("got %d entries, want 1", len(sink.Entries()))
	}
	if sink.Entries()[0].Size != oversized {
		t.Errorf("listed Size = %d, want %d", sink.Entries()[0].Size, oversized)
	}
}
