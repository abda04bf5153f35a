package watermark

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// fileRecord is the on-disk format of the tracking file.
type fileRecord struct {
	LastID int64 `json:"last_id"`
}

// FileStore keeps the watermark in a small JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the tracking file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the watermark. A missing file means nothing was delivered yet.
func (s *FileStore) Load(_ context.Context) (int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &Error{Op: "read", Location: s.path, Cause: err}
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, &Error{Op: "decode", Location: s.path, Cause: err}
	}
	return rec.LastID, nil
}

// Save replaces the file atomically: the record is written to a temporary
// file in the same directory and renamed over the old one.
func (s *FileStore) Save(_ context.Context, id int64) error {
	data, err := json.Marshal(fileRecord{LastID: id})
	if err != nil {
		return &Error{Op: "encode", Location: s.path, Cause: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &Error{Op: "write", Location: s.path, Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &Error{Op: "write", Location: s.path, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &Error{Op: "sync", Location: s.path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "write", Location: s.path, Cause: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &Error{Op: "replace", Location: s.path, Cause: err}
	}
	return nil
}
