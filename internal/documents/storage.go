package documents

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage persists rendered certificate documents as a logical path keyed by
// consultant id. Reissue deletes the superseded document before writing the
// replacement.
type Storage interface {
	Write(consultantID uint, data []byte) (string, error)
	Remove(path string) error
}

// DiskStorage writes documents under a single directory.
type DiskStorage struct {
	Dir string
}

func (s *DiskStorage) Write(consultantID uint, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("approval-certificate-%d.pdf", consultantID)
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *DiskStorage) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
