package nvram

import "fmt"

// FakeStore is an in-memory test double. It counts physical writes per
// offset so tests can assert that wear throttling and update semantics hold.
type FakeStore struct {
	// Mem is the raw storage content, zero-initialized like blank EEPROM.
	Mem []byte

	// Writes counts physical writes keyed by starting offset. Skipped
	// update-semantics writes are not counted.
	Writes map[int]int

	// WriteError, if set, is returned by every write.
	WriteError error

	// ReadError, if set, is returned by every read.
	ReadError error

	// Closed tracks whether Close was called.
	Closed bool
}

// NewFakeStore creates a blank fake store of the given size.
func NewFakeStore(size int) *FakeStore {
	return &FakeStore{
		Mem:    make([]byte, size),
		Writes: make(map[int]int),
	}
}

// TotalWrites returns the number of physical writes across all offsets.
func (s *FakeStore) TotalWrites() int {
	n := 0
	for _, c := range s.Writes {
		n += c
	}
	return n
}

// ReadByte returns the byte at off.
func (s *FakeStore) ReadByte(off int) (byte, error) {
	if s.ReadError != nil {
		return 0, s.ReadError
	}
	if err := s.check(off, 1); err != nil {
		return 0, err
	}
	return s.Mem[off], nil
}

// WriteByte stores one byte at off, counting the write unless the value is
// unchanged.
func (s *FakeStore) WriteByte(off int, v byte) error {
	if s.WriteError != nil {
		return s.WriteError
	}
	if err := s.check(off, 1); err != nil {
		return err
	}
	if s.Mem[off] == v {
		return nil
	}
	s.Mem[off] = v
	s.Writes[off]++
	return nil
}

// ReadUint32 returns the little-endian uint32 at off.
func (s *FakeStore) ReadUint32(off int) (uint32, error) {
	if s.ReadError != nil {
		return 0, s.ReadError
	}
	if err := s.check(off, 4); err != nil {
		return 0, err
	}
	return getUint32(s.Mem[off : off+4]), nil
}

// WriteUint32 stores v at off, counting the write unless the value is
// unchanged.
func (s *FakeStore) WriteUint32(off int, v uint32) error {
	if s.WriteError != nil {
		return s.WriteError
	}
	if err := s.check(off, 4); err != nil {
		return err
	}
	if getUint32(s.Mem[off:off+4]) == v {
		return nil
	}
	putUint32(s.Mem[off:off+4], v)
	s.Writes[off]++
	return nil
}

// Close marks the store as closed.
func (s *FakeStore) Close() error {
	s.Closed = true
	return nil
}

func (s *FakeStore) check(off, n int) error {
	if off < 0 || off+n > len(s.Mem) {
		return fmt.Errorf("access outside layout: off=%d len=%d size=%d", off, n, len(s.Mem))
	}
	return nil
}
