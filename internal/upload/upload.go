// Package upload validates and stores user-submitted files behind a
// pluggable Storage backend.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the upload size ceiling.
const MaxFileSize = 10 << 20 // 10 MiB

// ErrDisallowedType is returned for file extensions outside the allow-list.
var ErrDisallowedType = errors.New("file type not allowed")

// ErrFileTooLarge is returned when an upload exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds the size limit")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Storage persists a named file and returns its public URL.
type Storage interface {
	Save(name string, r io.Reader) (string, error)
}

// Service validates uploads and hands them to storage under a
// date-partitioned, uuid-prefixed name so client filenames never collide.
type Service struct {
	storage Storage
}

// NewService constructs an upload Service.
func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Store validates the file and persists it, returning the public URL.
func (s *Service) Store(filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrDisallowedType, ext)
	}
	if size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	name := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.New().String(), ext)
	url, err := s.storage.Save(name, io.LimitReader(r, MaxFileSize))
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return url, nil
}

// DiskStorage stores files under a local root directory and serves them
// from baseURL.
type DiskStorage struct {
	root    string
	baseURL string
}

// NewDiskStorage constructs a DiskStorage.
func NewDiskStorage(root, baseURL string) *DiskStorage {
	return &DiskStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes the file under root, creating parent directories as needed.
func (s *DiskStorage) Save(name string, r io.Reader) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
