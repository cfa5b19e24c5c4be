// ABOUTME: Test doubles for output devices and backends
// ABOUTME: Scriptable event device, polling device and backend used across tests
package output

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

var errFakeDevice = errors.New("fake device failure")

// fakeEventDevice records what an event stream asks of it
type fakeEventDevice struct {
	frameSize  int
	ready      bool
	padding    int
	paddingErr error
	resetErr   error
	releaseErr error
	waits      []time.Duration
	paddings   int
	released   []int
	silent     []bool
	last       []byte
	resets     int
	closed     bool
}

func (d *fakeEventDevice) Wait(timeout time.Duration) bool {
	d.waits = append(d.waits, timeout)
	return d.ready
}

func (d *fakeEventDevice) Padding() (int, error) {
	d.paddings++
	return d.padding, d.paddingErr
}

func (d *fakeEventDevice) Buffer(frames int) ([]byte, error) {
	d.last = make([]byte, frames*d.frameSize)
	return d.last, nil
}

func (d *fakeEventDevice) Release(frames int, silent bool) error {
	if d.releaseErr != nil {
		return d.releaseErr
	}
	d.released = append(d.released, frames)
	d.silent = append(d.silent, silent)
	return nil
}

func (d *fakeEventDevice) Reset() error {
	d.resets++
	if d.resetErr == nil {
		d.paddingErr = nil
	}
	return d.resetErr
}

func (d *fakeEventDevice) Close() error {
	d.closed = true
	return nil
}

func (d *fakeEventDevice) releasedTotal() int {
	total := 0
	for _, n := range d.released {
		total += n
	}
	return total
}

// fakePollDevice accepts frames with scripted avail, write and recovery failures
type fakePollDevice struct {
	avail      int
	availErrs  []error // returned one per Avail call before avail
	waitErr    error
	writeErrs  int // number of leading writes that fail
	writeLimit int // frames accepted per write, 0 means all
	recoverErr error
	writes     int
	written    int
	recovered  []error
	waited     int
	resets     int
	closed     bool
}

func (d *fakePollDevice) Avail() (int, error) {
	if len(d.availErrs) > 0 {
		err := d.availErrs[0]
		d.availErrs = d.availErrs[1:]
		return 0, err
	}
	return d.avail, nil
}

func (d *fakePollDevice) Wait() error {
	d.waited++
	if d.waitErr != nil {
		return d.waitErr
	}
	// the device drains while waiting
	d.avail += 1 << 20
	return nil
}

func (d *fakePollDevice) Write(data []byte, frames int) (int, error) {
	d.writes++
	if d.writeErrs > 0 {
		d.writeErrs--
		return 0, errFakeDevice
	}
	n := frames
	if d.writeLimit > 0 && n > d.writeLimit {
		n = d.writeLimit
	}
	d.written += n
	return n, nil
}

func (d *fakePollDevice) Recover(err error) error {
	d.recovered = append(d.recovered, err)
	return d.recoverErr
}

func (d *fakePollDevice) Reset() error {
	d.resets++
	return nil
}

func (d *fakePollDevice) Close() error {
	d.closed = true
	return nil
}

// fakeBackend opens event streams over fakeEventDevices with a fixed buffer
type fakeBackend struct {
	endpoints    []audio.Endpoint
	endpointsErr error
	caps         Capabilities
	defaults     Params
	bufferFrames int
	ready        bool
	openErr      func(Params) error
	opened       []Params
	devices      []*fakeEventDevice
	closed       bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		endpoints: []audio.Endpoint{
			{Name: "Headphones", ID: "hp"},
			{Name: "Speakers", ID: "spk", Default: true},
		},
		caps: Capabilities{
			Exclusive:   true,
			Blocking:    true,
			Channels:    []int{1, 2},
			Frequencies: []int{44100, 48000, 96000},
			Latencies:   []int{20, 40},
		},
		defaults:     Params{Blocking: true, Channels: 2, SampleRate: 48000, LatencyMs: 20},
		bufferFrames: 256,
		ready:        true,
	}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Endpoints() ([]audio.Endpoint, error) {
	return b.endpoints, b.endpointsErr
}

func (b *fakeBackend) Defaults() Params { return b.defaults }

func (b *fakeBackend) Capabilities(current Params, format audio.StreamFormat) Capabilities {
	return b.caps
}

func (b *fakeBackend) Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error) {
	if b.openErr != nil {
		if err := b.openErr(params); err != nil {
			return nil, err
		}
	}
	b.opened = append(b.opened, params)

	format := audio.StreamFormat{
		Channels:   params.Channels,
		SampleRate: params.SampleRate,
		BitDepth:   16,
		Encoding:   audio.EncodingInt,
	}
	dev := &fakeEventDevice{frameSize: format.FrameSize(), ready: b.ready}
	b.devices = append(b.devices, dev)

	return NewEventStream(EventStreamConfig{
		Backend:      b.Name(),
		Device:       dev,
		Format:       format,
		BufferFrames: b.bufferFrames,
		PeriodFrames: b.bufferFrames / 4,
		Exclusive:    params.Exclusive,
		Blocking:     params.Blocking,
		Logger:       logger,
	}), nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBackend) device() *fakeEventDevice {
	return b.devices[len(b.devices)-1]
}

func stereoFrame(v float64) audio.Frame {
	return audio.Frame{v, -v}
}
