package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalPrefix is the URL prefix under which locally stored files are served
const LocalPrefix = "/uploads/"

// LocalStore keeps files in a directory on disk
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes body to dir/key and returns its public path
func (s *LocalStore) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid file key %q", key)
	}

	path := filepath.Join(s.dir, key)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return LocalPrefix + key, nil
}

// Delete removes a previously saved file. Missing files are ignored.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, LocalPrefix)
	if !validKey(key) {
		return fmt.Errorf("invalid file reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Handler serves stored files under LocalPrefix. Directories are never listed.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(LocalPrefix, http.FileServer(filesOnly{http.Dir(s.dir)}))
}

// filesOnly hides directories so the file server cannot produce an index
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && filepath.Base(key) == key
}
