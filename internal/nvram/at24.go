package nvram

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// at24WriteCycle is the worst-case internal write time of AT24-series parts.
// The device NACKs while a write cycle is in progress; sleeping the full
// cycle is simpler than ACK polling and the controller only writes a few
// times a minute.
const at24WriteCycle = 5 * time.Millisecond

// at24PageSize is the write page of AT24C32/C64 parts. A single write
// transaction must not cross a page boundary.
const at24PageSize = 32

// AT24 persists to an AT24-series I2C EEPROM (AT24C32/C64, 2-byte
// addressing). This is the storage to use when the controller board carries
// a discrete EEPROM instead of relying on the root filesystem.
type AT24 struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// OpenAT24 opens the named I2C bus ("" selects the first available) and
// addresses the EEPROM at addr (0x50 for a part with all address pins low).
func OpenAT24(busName string, addr uint16) (*AT24, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	return &AT24{
		bus: bus,
		dev: i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

// ReadByte returns the byte at off.
func (e *AT24) ReadByte(off int) (byte, error) {
	var b [1]byte
	if err := e.readAt(b[:], off); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteByte stores one byte at off if it differs from the stored value.
func (e *AT24) WriteByte(off int, v byte) error {
	cur, err := e.ReadByte(off)
	if err != nil {
		return err
	}
	if cur == v {
		return nil
	}
	return e.writeAt([]byte{v}, off)
}

// ReadUint32 returns the little-endian uint32 at off.
func (e *AT24) ReadUint32(off int) (uint32, error) {
	var b [4]byte
	if err := e.readAt(b[:], off); err != nil {
		return 0, err
	}
	return getUint32(b[:]), nil
}

// WriteUint32 stores v at off if it differs from the stored value.
func (e *AT24) WriteUint32(off int, v uint32) error {
	cur, err := e.ReadUint32(off)
	if err != nil {
		return err
	}
	if cur == v {
		return nil
	}
	var b [4]byte
	putUint32(b[:], v)
	return e.writeAt(b[:], off)
}

// Close releases the I2C bus.
func (e *AT24) Close() error {
	return e.bus.Close()
}

// readAt performs a random read: set the address pointer, then read.
func (e *AT24) readAt(b []byte, off int) error {
	addr := []byte{byte(off >> 8), byte(off)}
	if err := e.dev.Tx(addr, b); err != nil {
		return fmt.Errorf("eeprom read at %d: %w", off, err)
	}
	return nil
}

// writeAt performs page writes, splitting at page boundaries, and waits out
// the device write cycle after each transaction.
func (e *AT24) writeAt(b []byte, off int) error {
	for len(b) > 0 {
		n := at24PageSize - off%at24PageSize
		if n > len(b) {
			n = len(b)
		}
		msg := make([]byte, 0, 2+n)
		msg = append(msg, byte(off>>8), byte(off))
		msg = append(msg, b[:n]...)
		if err := e.dev.Tx(msg, nil); err != nil {
			return fmt.Errorf("eeprom write at %d: %w", off, err)
		}
		time.Sleep(at24WriteCycle)
		off += n
		b = b[n:]
	}
	return nil
}
