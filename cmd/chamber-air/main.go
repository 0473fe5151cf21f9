// Command chamber-air runs the fruiting chamber air exchange controller: it
// accumulates device uptime across power cycles in non-volatile storage and
// opens the air exchange actuator for a fixed duration at a fixed interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/host/v3"

	"github.com/mfield/chamber-air/internal/gpio"
	"github.com/mfield/chamber-air/internal/logic"
	"github.com/mfield/chamber-air/internal/mqtt"
	"github.com/mfield/chamber-air/internal/nvram"
	"github.com/mfield/chamber-air/internal/sensor"
	"github.com/mfield/chamber-air/internal/status"
	"github.com/mfield/chamber-air/internal/web"
)

// options are the feature toggles, resolved once at startup.
type options struct {
	DebugLog    bool
	Persistence bool
	Telemetry   bool
}

func main() {
	cycle := flag.Duration("cycle", time.Second, "Control cycle period")
	airInterval := flag.Duration("air-interval", time.Hour, "Time between air exchange cycles")
	airDuration := flag.Duration("air-duration", 2*time.Minute, "Duration the air exchange stays on")
	storeInterval := flag.Duration("store-interval", time.Minute, "Time between uptime checkpoints")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	pinAir := flag.Int("pin-air", gpio.DefaultPinAir, "BCM pin number for the air actuator relay")
	nvramPath := flag.String("nvram", "/var/lib/chamber-air/state.bin", "Path of the file-backed state store")
	eepromBus := flag.String("eeprom-bus", "", `I2C bus of an AT24 EEPROM ("" uses the file store)`)
	eepromAddr := flag.Uint("eeprom-addr", 0x50, "I2C address of the AT24 EEPROM")
	sensorBus := flag.String("sensor-bus", "", `I2C bus of the SHT4x chamber sensor ("" disables)`)
	sensorPoll := flag.Duration("sensor-poll", 5*time.Second, "Chamber sensor polling interval")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Print persisted state and exit")
	debugLog := flag.Bool("debug", false, "Log every control cycle")
	noPersist := flag.Bool("no-persist", false, "Disable durable writes (bench mode)")
	noTelemetry := flag.Bool("no-telemetry", false, "Disable MQTT telemetry")

	flag.Parse()

	opts := options{
		DebugLog:    *debugLog,
		Persistence: !*noPersist,
		Telemetry:   !*noTelemetry,
	}

	err := run(*cycle, *airInterval, *airDuration, *storeInterval, *heartbeat,
		*broker, *pinAir, *nvramPath, *eepromBus, uint16(*eepromAddr),
		*sensorBus, *sensorPoll, *httpAddr, *printState, opts)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cycle, airInterval, airDuration, storeInterval, heartbeat time.Duration,
	broker string, pinAir int, nvramPath, eepromBus string, eepromAddr uint16,
	sensorBus string, sensorPoll time.Duration, httpAddr string, printState bool,
	opts options) error {

	layout := nvram.NewLayout()

	if eepromBus != "" || sensorBus != "" {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("init periph host: %w", err)
		}
	}

	var store nvram.Store
	var err error
	if eepromBus != "" {
		store, err = nvram.OpenAT24(eepromBus, eepromAddr)
	} else {
		store, err = nvram.OpenFile(nvramPath, layout.Size)
	}
	if err != nil {
		return fmt.Errorf("open nvram: %w", err)
	}
	defer store.Close()

	uptime, air, err := loadState(store, layout)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	// Print state mode
	if printState {
		fmt.Printf("uptime: %s (%d ms)\nair: %s\nstart: %d ms\nstop: %d ms\n",
			status.HumanUptime(uptime), uptime, air.State, air.Start, air.Stop)
		return nil
	}

	// Uptime freezes while powered off: the gap between the last checkpoint
	// and now is not measured. Log the restored value so the gap is visible.
	log.Printf("restored uptime %s, air %s (start=%dms stop=%dms)",
		status.HumanUptime(uptime), air.State, air.Start, air.Stop)

	// Initialize the actuator and drive it to the persisted state before the
	// first cycle, so an interrupted air cycle resumes instead of waiting for
	// the next evaluation.
	actuator, err := gpio.NewRealActuator(pinAir)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer actuator.Close()
	if err := actuator.Set(air.State == logic.AirOn); err != nil {
		return fmt.Errorf("restore actuator state: %w", err)
	}

	// Initialize telemetry
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if opts.Telemetry {
		real, err := mqtt.NewRealPublisher(broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = real
		mqttStatus = real
		defer publisher.Close()
	} else {
		publisher = mqtt.NopPublisher{}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		CycleMs:         cycle.Milliseconds(),
		AirIntervalMs:   airInterval.Milliseconds(),
		AirDurationMs:   airDuration.Milliseconds(),
		StoreIntervalMs: storeInterval.Milliseconds(),
		HeartbeatMs:     heartbeat.Milliseconds(),
		Broker:          broker,
		HTTPAddr:        httpAddr,
		Persistence:     opts.Persistence,
		Telemetry:       opts.Telemetry,
		DebugLog:        opts.DebugLog,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else if opts.Telemetry {
		log.Printf("published startup event")
	}

	// Start the chamber sensor sampler. It paces itself and never blocks the
	// control cycle.
	if sensorBus != "" {
		reader, err := sensor.NewRealReader(sensorBus)
		if err != nil {
			return fmt.Errorf("init sensor: %w", err)
		}
		defer reader.Close()

		sampler := sensor.NewSampler(reader, sensorPoll)
		sampler.Start()
		defer sampler.Stop()

		go trackSensor(sampler, tracker, sensorPoll)
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: cycle=%v interval=%v duration=%v store=%v persist=%v broker=%s",
		cycle, airInterval, airDuration, storeInterval, opts.Persistence, broker)

	ticker := time.NewTicker(cycle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctrl := newController(controllerDeps{
		store:    store,
		layout:   layout,
		actuator: actuator,
		pub:      publisher,
		tracker:  tracker,
		opts:     opts,
	}, uptime, air, tickSource(), airInterval, airDuration, storeInterval, heartbeat)

	return runLoop(ctrl, mqttStatus, tracker, publisher, ticker.C, sigCh)
}

// tickSource returns the free-running hardware millisecond counter: the
// process monotonic clock truncated to 32 bits, wrapping at ~49.7 days like
// the tick counter of the original part.
func tickSource() func() uint32 {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

func runLoop(ctrl *controller, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	publisher mqtt.Publisher, tick <-chan time.Time, sig <-chan os.Signal) error {

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			// Final checkpoint: a clean shutdown should not lose the
			// store-interval tail of uptime.
			ctrl.shutdown()

			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			}
			return nil

		case <-tick:
			ctrl.step()
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}

// trackSensor copies sampler readings into the status tracker at the sensor's
// own pace.
func trackSensor(sampler *sensor.Sampler, tracker *status.Tracker, period time.Duration) {
	for range time.Tick(period) {
		if r, ok := sampler.Latest(); ok {
			tracker.SetSensor(&r)
		}
	}
}
