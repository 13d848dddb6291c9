package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned by Save when the stream exceeds the size limit. No file is left behind.
var ErrTooLarge = errors.New("file exceeds the size limit")

// ErrNotExist is returned by Open when the stored file is gone.
var ErrNotExist = errors.New("stored file does not exist")

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// Stored describes a file written by Save.
type Stored struct {
	Filename string // generated, unique; never derived from client input beyond the extension
	Path     string
	Size     int64
}

// FileStorage keeps uploaded bytes outside the database.
type FileStorage interface {
	Save(r io.Reader, originalName string, maxBytes int64) (Stored, error)
	Open(path string) (io.ReadCloser, int64, error)
	Remove(path string) error
}

type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates basePath if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// GenerateName returns <uuid><ext>, keeping the client extension as-is only when it is plain.
func GenerateName(originalName string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, `\`, "/")))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	return uuid.New().String() + ext
}

func (s *LocalStorage) Save(r io.Reader, originalName string, maxBytes int64) (Stored, error) {
	name := GenerateName(originalName)
	path := filepath.Join(s.basePath, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, err
	}

	// read one byte past the limit to detect oversize input
	n, copyErr := io.Copy(dst, io.LimitReader(r, maxBytes+1))
	closeErr := dst.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return Stored{}, copyErr
	case closeErr != nil:
		_ = os.Remove(path)
		return Stored{}, closeErr
	case n > maxBytes:
		_ = os.Remove(path)
		return Stored{}, ErrTooLarge
	}

	return Stored{Filename: name, Path: path, Size: n}, nil
}

// Open returns the file together with its size on disk.
func (s *LocalStorage) Open(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, ErrNotExist
	}
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Remove deletes the file; a missing file is not an error.
func (s *LocalStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
