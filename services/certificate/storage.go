package certificate

import (
	"os"
	"path/filepath"
	"strings"
)

// Store persists rendered certificate documents and returns the public URL
// they will be served under.
type Store interface {
	Put(path string, data []byte) (string, error)
}

// DiskStore writes documents under a base directory that the application
// serves as static files. Writes overwrite any existing object so forced
// regenerations replace prior output.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Put(path string, data []byte) (string, error) {
	full := filepath.Join(s.Dir, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}

	return s.BaseURL + "/" + path, nil
}
