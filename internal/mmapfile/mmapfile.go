// Package mmapfile exposes a file's contents as a read-only byte range.
// Evaluation weight tables are loaded through it once at startup and
// shared across all search workers without per-worker copies.
package mmapfile

import (
	"fmt"
	"os"
)

// File is an open, read-only view of a file's full contents.
// The byte range returned by Bytes is valid until Close and must not be
// mutated by callers.
type File struct {
	f      *os.File
	data   []byte
	size   int64
	mapped bool
	closed bool
}

// Open opens path for reading and establishes a read-only view spanning
// the whole file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}

	mf := &File{f: f, size: st.Size()}
	if mf.size == 0 {
		return mf, nil
	}

	if err := mf.establish(); err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: map %s: %w", path, err)
	}
	return mf, nil
}

// Bytes returns the file contents. Callers must treat the slice as
// immutable; on mmap-capable platforms it is backed by a PROT_READ
// mapping and writes will fault.
func (m *File) Bytes() []byte {
	return m.data
}

// Size returns the file's byte length at open time.
func (m *File) Size() int64 {
	return m.size
}

// Close releases the view and the underlying file. Closing an already
// closed or nil File is a no-op.
func (m *File) Close() error {
	if m == nil || m.closed {
		return nil
	}
	m.closed = true

	err := m.release()
	m.data = nil
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
