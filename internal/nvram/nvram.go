// Package nvram provides byte-addressed non-volatile storage with a limited
// write budget, as found on EEPROM-backed controllers. The real
// implementations are a plain file (for SBC deployments without a discrete
// EEPROM) and an AT24-series I2C EEPROM. The fake implementation counts
// writes so tests can assert wear-throttling behavior.
//
// All writes use update semantics: the current value is read first and the
// write is skipped when it would not change anything. Reads are free; writes
// wear the part.
package nvram

import "encoding/binary"

// Store is byte-addressed durable storage. Implementations are not safe for
// concurrent use; the controller is single-threaded by design.
type Store interface {
	// ReadByte returns the byte at off. Unwritten storage reads as zero.
	ReadByte(off int) (byte, error)

	// WriteByte durably stores one byte at off, skipping the physical
	// write when the stored value already matches.
	WriteByte(off int, v byte) error

	// ReadUint32 returns the little-endian uint32 at off.
	ReadUint32(off int) (uint32, error)

	// WriteUint32 durably stores v at off, little-endian, skipping the
	// physical write when the stored value already matches.
	WriteUint32(off int, v uint32) error

	// Close releases the underlying device.
	Close() error
}

// Layout assigns the persisted fields their byte offsets. Offsets are
// allocated sequentially once at startup and are stable for the life of the
// device; reordering fields would corrupt existing storage.
type Layout struct {
	Uptime    int // uint32: cumulative uptime checkpoint, ms
	AirStatus int // byte: 0 = OFF, 1 = ON
	AirStart  int // uint32: uptime at last OFF->ON transition, ms
	AirStop   int // uint32: uptime at last ON->OFF transition, ms

	// Size is the total number of bytes the layout occupies.
	Size int
}

// NewLayout allocates the standard field layout starting at offset zero.
func NewLayout() Layout {
	var l Layout
	off := 0
	alloc := func(n int) int {
		o := off
		off += n
		return o
	}
	l.Uptime = alloc(4)
	l.AirStatus = alloc(1)
	l.AirStart = alloc(4)
	l.AirStop = alloc(4)
	l.Size = off
	return l
}

func putUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func getUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
