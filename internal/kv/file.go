package kv

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pkt.systems/pslog"
)

// File persists all keys as one JSON object on disk.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
	log  pslog.Logger
}

// OpenFile loads the store at path, creating the parent directory.
// A missing file is an empty store.
func OpenFile(path string, logger pslog.Logger) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_file", path)
	}
	f := &File{path: path, data: make(map[string]string), log: logger}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if f.log != nil {
				f.log.Debug("state load miss")
			}
			return f, nil
		}
		if f.log != nil {
			f.log.Warn("state load failed", "err", err)
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &f.data); err != nil {
		if f.log != nil {
			f.log.Warn("state load failed", "err", err)
		}
		return nil, err
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}
	if f.log != nil {
		f.log.Debug("state load ok", "keys", len(f.data))
	}
	return f, nil
}

// Get returns the value for key.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok, nil
}

// Apply writes the batch and rewrites the file atomically.
func (f *File) Apply(batch Batch) error {
	if batch.Empty() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[string]string, len(f.data)+len(batch.Set))
	for key, value := range f.data {
		next[key] = value
	}
	for key, value := range batch.Set {
		next[key] = value
	}
	for _, key := range batch.Delete {
		delete(next, key)
	}
	if err := f.write(next); err != nil {
		if f.log != nil {
			f.log.Warn("state save failed", "err", err)
		}
		return err
	}
	f.data = next
	if f.log != nil {
		f.log.Trace("state save ok", "keys", len(next))
	}
	return nil
}

// Close is a no-op; every Apply is already durable.
func (f *File) Close() error {
	return nil
}

func (f *File) write(data map[string]string) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), "state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
