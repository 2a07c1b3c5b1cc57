package storage

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lukechampine.com/blake3"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"talk.mp4", "talk.mp4"},
		{"../../etc/passwd", "passwd"},
		{"/abs/path/clip.wav", "clip.wav"},
		{`..\..\windows\evil.wav`, "evil.wav"},
		{"..", "upload"},
		{"", "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSaveReaderAndRelease(t *testing.T) {
	root := t.TempDir()
	u, err := NewUploads(root)
	if err != nil {
		t.Fatalf("NewUploads: %v", err)
	}

	content := "fake media bytes"
	up, err := u.SaveReader("../lecture.mp4", strings.NewReader(content))
	if err != nil {
		t.Fatalf("SaveReader: %v", err)
	}

	if up.Filename != "lecture.mp4" {
		t.Errorf("Filename = %q", up.Filename)
	}
	if filepath.Dir(filepath.Dir(up.Path)) != root {
		t.Errorf("Path %q escapes root %q", up.Path, root)
	}
	if up.Size != int64(len(content)) {
		t.Errorf("Size = %d", up.Size)
	}
	sum := blake3.Sum256([]byte(content))
	if want := hex.EncodeToString(sum[:]); up.Hash != want {
		t.Errorf("Hash = %s, want %s", up.Hash, want)
	}
	data, err := os.ReadFile(up.Path)
	if err != nil || string(data) != content {
		t.Fatalf("stored content = %q, %v", data, err)
	}

	up.Release()
	if _, err := os.Stat(filepath.Dir(up.Path)); !os.IsNotExist(err) {
		t.Errorf("upload directory still present after Release")
	}
}

func TestSaveReaderUniqueDirectories(t *testing.T) {
	u, err := NewUploads(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a, err := u.SaveReader("same.wav", strings.NewReader("a"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()
	b, err := u.SaveReader("same.wav", strings.NewReader("b"))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	if a.Path == b.Path {
		t.Fatalf("concurrent uploads share path %s", a.Path)
	}
	if a.Hash == b.Hash {
		t.Errorf("different content produced the same hash")
	}
}
