package gpio

// FakeActuator records every level written to the line for test assertions.
type FakeActuator struct {
	// On is the current commanded level.
	On bool

	// History records every Set call in order.
	History []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeActuator creates a FakeActuator with the line LOW.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// Set records the commanded level.
func (f *FakeActuator) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.History = append(f.History, on)
	return nil
}

// Close marks the actuator as closed and the line LOW.
func (f *FakeActuator) Close() error {
	f.On = false
	f.Closed = true
	return nil
}

// Reset clears recorded history.
func (f *FakeActuator) Reset() {
	f.On = false
	f.History = nil
	f.Closed = false
	f.SetError = nil
}
