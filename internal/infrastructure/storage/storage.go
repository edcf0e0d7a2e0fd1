// Package storage owns the content directory. Attachment bytes land through
// a temp-file-then-rename sequence so a database row can never reference a
// partial or zero-byte file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imagulator/pkg/slug"

	"github.com/google/uuid"
)

var (
	ErrEmptyWrite   = errors.New("upload produced a zero-byte file")
	ErrWriteFailed  = errors.New("failed to persist upload")
	ErrFileNotFound = errors.New("stored file not found")
)

// Store writes and reads files under a single content root. Relative paths
// returned by Save are the only form persisted in the database.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Save persists an uploaded attachment and returns its relative storage path.
// The name embeds a timestamp, the modality, the caller's sequence index and
// a uuid fragment, so concurrent uploads for the same patient cannot collide.
// The path is returned only after the file is confirmed non-empty on disk.
func (s *Store) Save(patientCode, modality string, seq int, r io.Reader, originalFilename string) (string, error) {
	ext := extensionOf(originalFilename)
	name := fmt.Sprintf("%d_%s_%d_%s%s",
		time.Now().Unix(),
		slug.Make(modality, "img"),
		seq,
		uuid.New().String()[:8],
		ext,
	)
	relPath := filepath.Join("uploaded", slug.Make(patientCode, "patient"), name)
	return s.write(relPath, r)
}

// SaveAt persists bytes at an explicit relative path (used by the external
// bridge, which dictates the subject/session/acquisition layout).
func (s *Store) SaveAt(relPath string, r io.Reader) (string, error) {
	return s.write(relPath, r)
}

func (s *Store) write(relPath string, r io.Reader) (string, error) {
	absPath := filepath.Join(s.root, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if n == 0 {
		os.Remove(tmpName)
		return "", ErrEmptyWrite
	}

	// Re-stat the closed file rather than trust the copy count.
	info, err := os.Stat(tmpName)
	if err != nil || info.Size() == 0 {
		os.Remove(tmpName)
		return "", ErrEmptyWrite
	}

	if err := os.Rename(tmpName, absPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return filepath.ToSlash(relPath), nil
}

// Open returns a reader for a previously stored relative path.
func (s *Store) Open(relPath string) (io.ReadCloser, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether the relative path references a readable, non-empty
// file.
func (s *Store) Exists(relPath string) bool {
	abs, err := s.resolve(relPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// resolve rejects paths that escape the content root.
func (s *Store) resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) || filepath.IsAbs(clean) {
		return "", ErrFileNotFound
	}
	return filepath.Join(s.root, clean), nil
}

// extensionOf keeps compound NIfTI suffixes intact (.nii.gz).
func extensionOf(filename string) string {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".nii.gz") {
		return ".nii.gz"
	}
	return strings.ToLower(filepath.Ext(filename))
}
