// Package upload implements the admission pipeline for binary attachments:
// extension validation, durable placement under a unique name, and explicit
// removal so callers can roll back when the enclosing operation fails.
package upload

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
)

// MaxFileSize is the ceiling for a single attachment. It is enforced while
// writing, not by pre-reading the payload.
const MaxFileSize = 5 << 20 // 5 MiB

// FieldName is the only multipart field the pipeline accepts.
const FieldName = "profileImage"

const pictureSubdir = "profile-pictures"

// publicRoot is the logical root under which stored attachments are served
// as static content.
const publicRoot = "/uploads/" + pictureSubdir

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// StoredFile describes a committed attachment.
type StoredFile struct {
	// Name is the generated file name on disk.
	Name string
	// Path is the absolute location in the store's directory.
	Path string
	// PublicPath is the client-facing static path referencing the file.
	PublicPath string
}

// Store persists profile pictures on local disk.
type Store struct {
	dir string
}

// NewStore creates the destination directory if absent and returns a store
// rooted at <baseDir>/profile-pictures.
func NewStore(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, pictureSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Admit validates the attachment and writes it to durable storage under a
// collision-resistant name. The extension is checked against the image
// allow-list before anything is written; the size ceiling is enforced during
// the copy and an over-limit write is removed before returning. The caller
// owns the returned file and must call Remove on any later failure of the
// operation the upload belongs to.
func (s *Store) Admit(fh *multipart.FileHeader) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return StoredFile{}, fmt.Errorf("%w: %q", apperr.ErrUploadRejected, ext)
	}

	name, err := generateName(ext)
	if err != nil {
		return StoredFile{}, err
	}
	dst := filepath.Join(s.dir, name)

	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload file: %w", err)
	}

	// Copy at most one byte over the ceiling so an oversized payload is
	// detected without buffering it in memory.
	written, err := io.Copy(out, io.LimitReader(src, MaxFileSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return StoredFile{}, fmt.Errorf("write upload: %w", err)
	}
	if written > MaxFileSize {
		_ = os.Remove(dst)
		return StoredFile{}, apperr.ErrUploadTooLarge
	}

	return StoredFile{
		Name:       name,
		Path:       dst,
		PublicPath: path.Join(publicRoot, name),
	}, nil
}

// Remove deletes a stored file by its generated name. A file that is already
// gone is not an error, so rollback stays idempotent.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}

	return nil
}

// RemovePublic deletes the file referenced by a stored public path.
func (s *Store) RemovePublic(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	return s.Remove(path.Base(publicPath))
}

// generateName builds <field>-<submissionTimeMillis>-<random9digit><ext>,
// unique in practice without coordination between concurrent requests.
func generateName(ext string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		return "", fmt.Errorf("random suffix: %w", err)
	}

	return fmt.Sprintf("%s-%d-%09d%s", FieldName, time.Now().UnixMilli(), n.Int64(), ext), nil
}
