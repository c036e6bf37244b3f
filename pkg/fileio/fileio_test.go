package fileio

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFile_RegularFile(t *testing.T) {
	// Create a temporary file
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	content := []byte("Hello, World!")
	
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Test opening regular file
	reader, err := OpenFile(testFile)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	defer reader.Close()

	// Read and verify content
	data, err := ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}

	if !bytes.Equal(data, content) {
		t.Errorf("Content mismatch: got %s, want %s", data, content)
	}
}

func TestOpenFile_GzipFile(t *testing.T) {
	// Create a gzip file
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.gz")
	content := []byte("Compressed content")

	// Write gzip file
	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("Failed to create gzip file: %v", err)
	}
	
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(content); err != nil {
		t.Fatalf("Failed to write gzip content: %v", err)
	}
	gw.Close()
	f.Close()

	// Test opening gzip file
	reader, err := OpenFile(testFile)
	if err != nil {
		t.Fatalf("Failed to open gzip file: %v", err)
	}
	defer reader.Close()

	// Read and verify content
	data, err := ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read gzip file: %v", err)
	}

	if !bytes.Equal(data, content) {
		t.Errorf("Content mismatch: got %s, want %s", data, content)
	}
}

func TestOpenFile_Stdin(t *testing.T) {
	// Test that stdin is recognized (actual reading would require mocking)
	reader, err := OpenFile("stdin")
	if err != nil {
		t.Fatalf("Failed to open stdin: %v", err)
	}
	
	// We can't easily test reading from stdin in unit tests
	// Just ensure it doesn't error
	if reader == nil {
		t.Error("Expected non-nil reader for stdin")
	}
}

func TestOpenFile_NonExistent(t *testing.T) {
	_, err := OpenFile("/nonexistent/file.txt")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestGetSize_RegularFile(t *testing.T) {
	// Create test file with known size
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bin")
	content := make([]byte, 1234) // 1234 bytes
	
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := GetSize(testFile)
	if err != nil {
		t.Fatalf("Failed to get file size: %v", err)
	}

	if size != 1234 {
		t.Errorf("Size mismatch: got %d, want 1234", size)
	}
}

func TestGetSize_Directory(t *testing.T) {
	// Create directory with files
	tmpDir := t.TempDir()
	
	// Create some files
	files := []struct {
		name string
		size int
	}{
		{"file1.txt", 100},
		{"file2.txt", 200},
		{"subdir/file3.txt", 300},
	}

	totalSize := int64(0)
	for _, f := range files {
		path := filepath.Join(tmpDir, f.name)
		os.MkdirAll(filepath.Dir(path), 0755)
		content := make([]byte, f.size)
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", f.name, err)
		}
		totalSize += int64(f.size)
	}

	size, err := GetSize(tmpDir)
	if err != nil {
		t.Fatalf("Failed to get directory size: %v", err)
	}

	if size != totalSize {
		t.Errorf("Size mismatch: got %d, want %d", size, totalSize)
	}
}

func TestGetExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"game.gba", "gba"},
		{"game.GBA", "gba"},
		{"game.bin.gz", "bin"},
		{"game.tar.gz", "tar"},
		{"game", ""},
		{"game.ISO.gz", "iso"},
		{"/path/to/game.n64", "n64"},
		{"game.multiple.dots.snes", "snes"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := GetExtension(tt.filename)
			if got != tt.want {
				t.Errorf("GetExtension(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestCheckExists(t *testing.T) {
	// Create test file
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")
	os.WriteFile(existingFile, []byte("test"), 0644)

	tests := []struct {
		path    string
		wantErr bool
	}{
		{existingFile, false},
		{tmpDir, false},
		{"/nonexistent/file", true},
		{"/dev/null", false}, // Special case for /dev/ paths
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckExists(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckExists(%q) error = %v, wantErr = %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
func TestOpenSeekable_PlainFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "plain.img")
	content := []byte("0123456789abcdef")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	f, err := OpenSeekable(testFile)
	if err != nil {
		t.Fatalf("OpenSeekable() error = %v", err)
	}
	defer f.Close()

	buf := make([]byte, 6)
	if _, err := f.ReadAt(buf, 10); err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if !bytes.Equal(buf, content[10:16]) {
		t.Errorf("ReadAt() = %q, want %q", buf, content[10:16])
	}
}

func TestOpenSeekable_GzipSpoolsAndUnlinksScratch(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "image.img.gz")
	content := bytes.Repeat([]byte("sector data "), 512)

	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("Failed to create gzip file: %v", err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(content); err != nil {
		t.Fatalf("Failed to write gzip data: %v", err)
	}
	gw.Close()
	f.Close()

	seekable, err := OpenSeekable(testFile)
	if err != nil {
		t.Fatalf("OpenSeekable() error = %v", err)
	}

	// Random access into the spooled copy must match the original stream.
	buf := make([]byte, 24)
	if _, err := seekable.ReadAt(buf, 1000); err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if !bytes.Equal(buf, content[1000:1024]) {
		t.Errorf("ReadAt() = %q, want %q", buf, content[1000:1024])
	}

	scratchPath := seekable.Name()
	if err := seekable.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(scratchPath); !os.IsNotExist(err) {
		t.Errorf("scratch file %q still exists after Close", scratchPath)
	}
}
