package storage

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"lukechampine.com/blake3"
)

// Uploads stores uploaded media, one directory per request.
type Uploads struct {
	root string
}

// Upload is a saved upload. Release removes it from disk.
type Upload struct {
	ID       string
	Filename string
	Path     string
	Hash     string // blake3, hex encoded
	Size     int64

	dir string
}

// NewUploads creates the upload root if needed
func NewUploads(root string) (*Uploads, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Uploads{root: root}, nil
}

// Save copies the multipart file into <root>/<uuid>/<base name> and hashes
// it on the way.
func (u *Uploads) Save(file *multipart.FileHeader) (*Upload, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return u.SaveReader(file.Filename, src)
}

// SaveReader stores r under the given client-supplied name.
func (u *Uploads) SaveReader(name string, r io.Reader) (*Upload, error) {
	id := uuid.New().String()
	dir := filepath.Join(u.root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := SanitizeFilename(name)
	dst := filepath.Join(dir, filename)

	size, hash, err := copyHashed(dst, r)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	log.Printf("[Upload] Saved %s (%d bytes, blake3=%s)", filename, size, hash[:12])
	return &Upload{
		ID:       id,
		Filename: filename,
		Path:     dst,
		Hash:     hash,
		Size:     size,
		dir:      dir,
	}, nil
}

// Release deletes the upload directory
func (up *Upload) Release() {
	if up == nil || up.dir == "" {
		return
	}
	if err := os.RemoveAll(up.dir); err != nil {
		log.Printf("[Upload] Failed to remove %s: %v", up.dir, err)
	}
}

// SanitizeFilename strips any directory components from a client-supplied
// name so it cannot escape the target directory.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." || base == "" {
		return "upload"
	}
	return base
}

func copyHashed(dst string, r io.Reader) (int64, string, error) {
	out, err := os.Create(dst)
	if err != nil {
		return 0, "", err
	}
	defer out.Close()

	h := blake3.New(32, nil)
	n, err := io.Copy(io.MultiWriter(out, h), r)
	if err != nil {
		return 0, "", err
	}
	if err := out.Close(); err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
