package sensor

import (
	"log"
	"sync"
	"time"
)

// Sampler polls a Reader on its own goroutine and caches the latest reading.
// The control loop calls Latest, which never blocks on the hardware.
type Sampler struct {
	mu     sync.RWMutex
	latest Reading
	ok     bool

	reader Reader
	period time.Duration
	stop   chan struct{}
	done   chan struct{}
}

// NewSampler creates a sampler polling reader at the given period. Periods
// below MinPeriod are clamped to it.
func NewSampler(reader Reader, period time.Duration) *Sampler {
	if period < MinPeriod {
		period = MinPeriod
	}
	return &Sampler{
		reader: reader,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the polling goroutine.
func (s *Sampler) Start() {
	go s.loop()
}

// Stop terminates polling and waits for the goroutine to exit. The reader is
// not closed; the caller owns it.
func (s *Sampler) Stop() {
	close(s.stop)
	<-s.done
}

// Latest returns the most recent reading. ok is false until the first
// successful read.
func (s *Sampler) Latest() (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.ok
}

func (s *Sampler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	// Take one reading up front so status pages have data quickly.
	s.sample()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	r, err := s.reader.Read()
	if err != nil {
		log.Printf("sensor read error: %v", err)
		return
	}
	s.mu.Lock()
	s.latest = r
	s.ok = true
	s.mu.Unlock()
}
