// ABOUTME: Tests for the pcmout API
// ABOUTME: Tests driver selection and capability gating on the null driver
package pcmout

import (
	"errors"
	"slices"
	"testing"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/Resonate-Protocol/pcmout/pkg/audio/output"
)

func newNullAudio(t *testing.T) *Audio {
	t.Helper()
	a, err := New(Config{Driver: DriverNull})
	if err != nil {
		t.Fatalf("Failed to create audio: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSupportedDrivers(t *testing.T) {
	drivers := SupportedDrivers()

	if drivers[len(drivers)-1] != DriverNull {
		t.Errorf("expected null driver last, got %v", drivers)
	}
	if slices.Contains(drivers, DriverPortAudio) != output.PortAudioAvailable {
		t.Errorf("portaudio listing does not match build: %v", drivers)
	}
	if DefaultDriver() != drivers[0] {
		t.Errorf("expected default driver %s, got %s", drivers[0], DefaultDriver())
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "wasapi"})
	var ue *output.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}
}

func TestNewNullDefaults(t *testing.T) {
	a := newNullAudio(t)

	if a.Driver() != DriverNull {
		t.Errorf("expected driver null, got %s", a.Driver())
	}

	status := a.Status()
	if status.Device != "Null Output" {
		t.Errorf("expected Null Output, got %s", status.Device)
	}
	if !status.Blocking || status.Exclusive {
		t.Errorf("expected shared blocking stream, got %+v", status)
	}
	if status.Format.SampleRate != 44100 || status.LatencyMs != 20 {
		t.Errorf("unexpected initial format %s at %dms", status.Format, status.LatencyMs)
	}
}

func TestCapabilityGating(t *testing.T) {
	a := newNullAudio(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"exclusive on", func() error { return a.SetExclusive(true) }},
		{"exclusive off", func() error { return a.SetExclusive(false) }},
		{"frequency", func() error { return a.SetFrequency(22050) }},
		{"channels", func() error { return a.SetChannels(8) }},
		{"latency", func() error { return a.SetLatency(15) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ue *output.UnsupportedError
			if err := tt.call(); !errors.As(err, &ue) {
				t.Errorf("expected UnsupportedError, got %v", err)
			}
		})
	}

	var nf *output.DeviceNotFoundError
	if err := a.SetDevice("Nope"); !errors.As(err, &nf) {
		t.Errorf("expected DeviceNotFoundError, got %v", err)
	}

	if a.Status().Format.SampleRate != 44100 {
		t.Error("rejected requests must leave the stream unchanged")
	}
}

func TestSettersForwarded(t *testing.T) {
	a := newNullAudio(t)

	if err := a.SetFrequency(96000); err != nil {
		t.Fatalf("SetFrequency failed: %v", err)
	}
	if err := a.SetLatency(100); err != nil {
		t.Fatalf("SetLatency failed: %v", err)
	}
	if err := a.SetChannels(1); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	if err := a.SetBlocking(true); err != nil {
		t.Fatalf("SetBlocking failed: %v", err)
	}
	if err := a.SetDevice("Null Output"); err != nil {
		t.Fatalf("SetDevice failed: %v", err)
	}

	status := a.Status()
	if status.Format.SampleRate != 96000 || status.Format.Channels != 1 || status.LatencyMs != 100 {
		t.Errorf("setters not applied: %+v", status)
	}
	if status.Stats.Reconfigurations != 3 {
		t.Errorf("expected 3 reconfigurations, got %d", status.Stats.Reconfigurations)
	}
}

func TestOutputThroughNull(t *testing.T) {
	a := newNullAudio(t)

	for i := 0; i < 1000; i++ {
		if err := a.OutputInt16([]int16{int16(i), int16(-i)}); err != nil {
			t.Fatalf("OutputInt16 failed: %v", err)
		}
	}
	if err := a.Output(audio.Frame{0.5, 0.5}); err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	stats := a.Status().Stats
	if stats.FramesPushed != 1001 {
		t.Errorf("expected 1001 frames pushed, got %d", stats.FramesPushed)
	}
	if stats.FramesDelivered+int64(stats.Queued) != 1001 {
		t.Errorf("frames lost: delivered %d queued %d", stats.FramesDelivered, stats.Queued)
	}

	if err := a.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if a.Status().Stats.Queued != 0 {
		t.Error("expected Clear to empty the queue")
	}
}

func TestListDevices(t *testing.T) {
	a := newNullAudio(t)

	devices, err := a.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(devices) != 1 || !devices[0].Default {
		t.Errorf("expected the single default null device, got %v", devices)
	}
}

func TestNewReleasesBackendOnFailure(t *testing.T) {
	fake := &closeTracker{Null: output.NewNull()}
	restore := backendFactory
	backendFactory = func(string) (output.Backend, error) { return fake, nil }
	defer func() { backendFactory = restore }()

	_, err := New(Config{Driver: DriverNull, Device: "Missing"})
	if err == nil {
		t.Fatal("expected error for missing device")
	}
	if !fake.closed {
		t.Error("expected backend closed after failed open")
	}
}

func TestNewRejectsUnsupportedStart(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"frequency", Config{Driver: DriverNull, SampleRate: 12345}},
		{"latency", Config{Driver: DriverNull, LatencyMs: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &closeTracker{Null: output.NewNull()}
			restore := backendFactory
			backendFactory = func(string) (output.Backend, error) { return fake, nil }
			defer func() { backendFactory = restore }()

			_, err := New(tt.config)
			var ue *output.UnsupportedError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UnsupportedError, got %v", err)
			}
			if !fake.closed {
				t.Error("expected backend closed after rejected start")
			}
		})
	}

	a, err := New(Config{Driver: DriverNull, SampleRate: 96000, LatencyMs: 100})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()
	if status := a.Status(); status.Format.SampleRate != 96000 || status.LatencyMs != 100 {
		t.Errorf("expected 96000 Hz at 100ms, got %s at %dms", status.Format, status.LatencyMs)
	}
}

type closeTracker struct {
	*output.Null
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}
