package kv

import (
	"errors"
	"fmt"
	"strings"

	"pkt.systems/pslog"
)

// Store is a string key/value store for session state.
type Store interface {
	Get(key string) (string, bool, error)
	Apply(batch Batch) error
	Close() error
}

// Batch is a set of writes applied together.
type Batch struct {
	Set    map[string]string
	Delete []string
}

// Empty reports whether the batch has no writes.
func (b Batch) Empty() bool {
	return len(b.Set) == 0 && len(b.Delete) == 0
}

// Driver names a Store backend.
type Driver string

const (
	// DriverFile keeps all keys in one JSON file.
	DriverFile Driver = "file"
	// DriverSQLite keeps keys in a sqlite table.
	DriverSQLite Driver = "sqlite"
	// DriverMemory keeps keys in memory only.
	DriverMemory Driver = "memory"
)

// ErrUnsupportedDriver indicates an unknown backend name.
var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// Open constructs a Store for the driver at path.
func Open(driver Driver, path string, logger pslog.Logger) (Store, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(string(driver)))) {
	case DriverFile, "":
		return OpenFile(path, logger)
	case DriverSQLite:
		return OpenSQLite(path, logger)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Set writes a single key.
func Set(store Store, key, value string) error {
	return store.Apply(Batch{Set: map[string]string{key: value}})
}

// Delete removes a single key.
func Delete(store Store, key string) error {
	return store.Apply(Batch{Delete: []string{key}})
}
