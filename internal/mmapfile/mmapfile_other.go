//go:build !unix

package mmapfile

import "io"

// Platforms without memory mapping read the whole file into an owned
// buffer. Callers see identical semantics apart from the extra copy.
func (m *File) establish() error {
	data := make([]byte, m.size)
	if _, err := io.ReadFull(m.f, data); err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *File) release() error {
	return nil
}
