//go:build unix

package mmapfile

import "golang.org/x/sys/unix"

func (m *File) establish() error {
	data, err := unix.Mmap(int(m.f.Fd()), 0, int(m.size),
		unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return err
	}

	// Weight tables are probed sparsely, not streamed.
	_ = unix.Madvise(data, unix.MADV_RANDOM)

	m.data = data
	m.mapped = true
	return nil
}

func (m *File) release() error {
	if !m.mapped {
		return nil
	}
	data := m.data
	m.mapped = false
	return unix.Munmap(data)
}
