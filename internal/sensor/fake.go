package sensor

import "time"

// FakeReader returns scripted readings for tests.
type FakeReader struct {
	// Readings contains scripted values. Each Read consumes the next one;
	// when exhausted, the last reading repeats.
	Readings []Reading

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool

	index int
	reads int
}

// NewFakeReader creates a FakeReader with the given readings.
func NewFakeReader(readings []Reading) *FakeReader {
	return &FakeReader{Readings: readings}
}

// Read returns the next scripted reading.
func (f *FakeReader) Read() (Reading, error) {
	f.reads++
	if f.ReadError != nil {
		return Reading{}, f.ReadError
	}
	if len(f.Readings) == 0 {
		return Reading{Time: time.Now()}, nil
	}
	r := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return r, nil
}

// Reads returns how many times Read was called.
func (f *FakeReader) Reads() int {
	return f.reads
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
