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

package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path is a parsed reference to a file that may live inside an archive.
type Path struct {
	ArchivePath  string // Path to the archive file
	InternalPath string // Path inside the archive (empty means auto-detect)
}

// ParsePath parses a path that may reference a file inside an archive. It
// supports MiSTer-style paths like "/path/to/archive.zip/folder/game.gba"
// in addition to a bare archive path with auto-detection of its XISO
// member.
//
// Returns (*Path, nil) if path references an archive, (nil, nil) if it
// doesn't, and (nil, err) if checking a candidate archive path failed.
//
//nolint:nilnil // nil,nil is documented API behavior: "not an archive path"
func ParsePath(path string) (*Path, error) {
	lower := strings.ToLower(filepath.ToSlash(path))

	for _, ext := range supportedExtensions() {
		idx := strings.Index(lower, ext+"/")
		if idx == -1 {
			continue
		}

		archivePath := path[:idx+len(ext)]
		switch _, err := os.Stat(archivePath); {
		case err == nil:
			return &Path{ArchivePath: archivePath, InternalPath: path[idx+len(ext)+1:]}, nil
		case os.IsNotExist(err):
			continue // this boundary doesn't name a real file; keep scanning
		default:
			return nil, fmt.Errorf("stat archive %s: %w", archivePath, err)
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !IsArchiveExtension(ext) {
		return nil, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}

	return &Path{ArchivePath: path, InternalPath: ""}, nil
}

// IsArchivePath reports whether path references an archive, without
// checking that anything actually exists on disk.
func IsArchivePath(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, ext := range supportedExtensions() {
		if strings.Contains(lower, ext+"/") {
			return true
		}
	}
	return IsArchiveExtension(strings.ToLower(filepath.Ext(path)))
}
