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
	"path/filepath"
	"strings"
)

// xisoExtensions are file extensions that indicate a raw Xbox optical disc
// image, identifiable without inspecting the archive member's contents.
var xisoExtensions = map[string]bool{
	".iso":  true,
	".xiso": true,
}

// IsXISOFile checks if a filename has a recognized XISO image extension.
func IsXISOFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return xisoExtensions[ext]
}

// DetectXISO finds the first candidate XISO image in an archive. It scans
// the archive's file list and returns the path to the first member with a
// recognized extension; callers still validate the header via
// xdvdfs.Locate once the member is opened, since extension matching is
// only a cheap pre-filter.
func DetectXISO(arc Archive) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	for _, file := range files {
		if IsXISOFile(file.Name) {
			return file.Name, nil
		}
	}

	return "", NoXISOFilesError{Archive: "archive"}
}
