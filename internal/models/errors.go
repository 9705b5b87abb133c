package models

import "fmt"

// StorageError reports that a backing store could not be read or written.
// Previously recorded data is never lost when one is returned; the failed
// write simply did not happen.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConfigCorruptError reports that persisted configuration failed to parse or
// validate. The policy is to fall back to built-in defaults and continue; a
// later successful persist replaces the corrupt file.
type ConfigCorruptError struct {
	Path string
	Err  error
}

func (e *ConfigCorruptError) Error() string {
	return fmt.Sprintf("corrupt config %s: %v", e.Path, e.Err)
}

func (e *ConfigCorruptError) Unwrap() error { return e.Err }
