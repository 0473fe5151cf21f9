package nvram

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists to a small fixed-size file. Each write is followed by
// fsync so the data survives an immediate power cut, matching the synchronous
// write model of the EEPROM it stands in for.
type FileStore struct {
	f    *os.File
	size int
}

// OpenFile opens (or creates) the backing file and extends it to size bytes.
// A newly created file reads as all-zero, which the controller treats as the
// legitimate first-boot state.
func OpenFile(path string, size int) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat state file: %w", err)
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend state file: %w", err)
		}
	}

	return &FileStore{f: f, size: size}, nil
}

// ReadByte returns the byte at off.
func (s *FileStore) ReadByte(off int) (byte, error) {
	var b [1]byte
	if err := s.readAt(b[:], off); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteByte stores one byte at off if it differs from the stored value.
func (s *FileStore) WriteByte(off int, v byte) error {
	cur, err := s.ReadByte(off)
	if err != nil {
		return err
	}
	if cur == v {
		return nil
	}
	return s.writeAt([]byte{v}, off)
}

// ReadUint32 returns the little-endian uint32 at off.
func (s *FileStore) ReadUint32(off int) (uint32, error) {
	var b [4]byte
	if err := s.readAt(b[:], off); err != nil {
		return 0, err
	}
	return getUint32(b[:]), nil
}

// WriteUint32 stores v at off if it differs from the stored value.
func (s *FileStore) WriteUint32(off int, v uint32) error {
	cur, err := s.ReadUint32(off)
	if err != nil {
		return err
	}
	if cur == v {
		return nil
	}
	var b [4]byte
	putUint32(b[:], v)
	return s.writeAt(b[:], off)
}

// Close syncs and closes the backing file.
func (s *FileStore) Close() error {
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return fmt.Errorf("sync state file: %w", err)
	}
	return s.f.Close()
}

func (s *FileStore) readAt(b []byte, off int) error {
	if off < 0 || off+len(b) > s.size {
		return fmt.Errorf("read outside layout: off=%d len=%d size=%d", off, len(b), s.size)
	}
	if _, err := s.f.ReadAt(b, int64(off)); err != nil {
		return fmt.Errorf("read state file at %d: %w", off, err)
	}
	return nil
}

func (s *FileStore) writeAt(b []byte, off int) error {
	if off < 0 || off+len(b) > s.size {
		return fmt.Errorf("write outside layout: off=%d len=%d size=%d", off, len(b), s.size)
	}
	if _, err := s.f.WriteAt(b, int64(off)); err != nil {
		return fmt.Errorf("write state file at %d: %w", off, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync state file: %w", err)
	}
	return nil
}
