package catalog

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when a selection is requested from an empty catalog.
var ErrEmpty = errors.New("catalog is empty")

// IndexError means the image directory could not be created or listed. The
// rebuild is abandoned and the previous catalog stays in place.
type IndexError struct {
	Dir string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s: %v", e.Dir, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// MetadataError is logged when dimensions cannot be read; the file is still indexed.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("read metadata of %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// FileSkipError drops a single file from the catalog.
type FileSkipError struct {
	Path string
	Err  error
}

func (e *FileSkipError) Error() string {
	return fmt.Sprintf("skip %s: %v", e.Path, e.Err)
}

func (e *FileSkipError) Unwrap() error { return e.Err }
