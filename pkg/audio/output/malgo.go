// ABOUTME: Malgo-based event-driven output backend
// ABOUTME: Uses miniaudio via malgo for shared and exclusive playback with device enumeration
package output

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/gen2brain/malgo"
)

// malgoDevicePeriodMs is the smallest period requested from miniaudio
const malgoDevicePeriodMs = 10

// Malgo output backend using the miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	ids      map[string]malgo.DeviceID
	mu       sync.Mutex
}

// NewMalgo creates a malgo backend with its own miniaudio context
func NewMalgo() (*Malgo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	return &Malgo{
		malgoCtx: ctx,
		ids:      make(map[string]malgo.DeviceID),
	}, nil
}

func (m *Malgo) Name() string {
	return "malgo"
}

// Endpoints lists playback devices; miniaudio flags the system default
func (m *Malgo) Endpoints() ([]audio.Endpoint, error) {
	infos, err := m.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, nativeError(m.Name(), "enumerate devices", KindDevice, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	endpoints := make([]audio.Endpoint, 0, len(infos))
	for _, info := range infos {
		id := info.ID.String()
		m.ids[id] = info.ID
		endpoints = append(endpoints, audio.Endpoint{
			Name:    info.Name(),
			ID:      id,
			Default: info.IsDefault != 0,
		})
	}
	return endpoints, nil
}

func (m *Malgo) Defaults() Params {
	return Params{Blocking: true, LatencyMs: 40}
}

// Capabilities offers only the negotiated channel count and rate: the OS
// mixer (shared) or the device (exclusive) is authoritative for both.
func (m *Malgo) Capabilities(current Params, format audio.StreamFormat) Capabilities {
	caps := Capabilities{
		Exclusive: true,
		Blocking:  true,
		Latencies: eventLatencies,
	}
	if format.Channels > 0 {
		caps.Channels = []int{format.Channels}
	}
	if format.SampleRate > 0 {
		caps.Frequencies = []int{format.SampleRate}
	}
	return caps
}

// Open initializes a playback device on the endpoint.
// Format, channels and rate are left to miniaudio so the mixer format is used
// in shared mode and the device's native format in exclusive mode.
func (m *Malgo) Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error) {
	m.mu.Lock()
	id, ok := m.ids[endpoint.ID]
	m.mu.Unlock()
	if !ok {
		return nil, &DeviceNotFoundError{Name: endpoint.Name}
	}

	latency := max(params.LatencyMs, malgoDevicePeriodMs)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.DeviceID = id.Pointer()
	deviceConfig.Playback.Format = malgo.FormatUnknown
	deviceConfig.Playback.Channels = 0
	deviceConfig.SampleRate = 0
	deviceConfig.PeriodSizeInMilliseconds = uint32(malgoDevicePeriodMs)
	deviceConfig.Alsa.NoMMap = 1
	if params.Exclusive {
		deviceConfig.Playback.ShareMode = malgo.Exclusive
	} else {
		deviceConfig.Playback.ShareMode = malgo.Shared
	}

	// the ring is sized from the negotiated rate, so it exists only after
	// InitDevice; the callback does not run before Start
	var ring *RenderRing
	var observed atomic.Uint32
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			if frameCount > observed.Load() {
				observed.Store(frameCount)
			}
			ring.Read(pOutputSample)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, nativeError(m.Name(), "initialize device", classifyMalgo(err, params.Exclusive), err)
	}

	format := malgoStreamFormat(device.PlaybackFormat(), int(device.PlaybackChannels()), int(device.SampleRate()))
	frameSize := malgo.SampleSizeInBytes(device.PlaybackFormat()) * format.Channels
	if frameSize <= 0 {
		device.Uninit()
		return nil, &NativeError{Backend: m.Name(), Op: "negotiate format", Kind: KindFormatUnsupported,
			Err: fmt.Errorf("device reported %s", malgoFormatName(device.PlaybackFormat()))}
	}

	buffer, period := eventGeometry(format.SampleRate, latency, malgoDevicePeriodMs)
	ring = NewRenderRing(buffer, frameSize, params.Exclusive)

	var priority *threadPriority
	if params.Exclusive {
		priority, err = elevateThread()
		if err != nil {
			logger.Warn("could not raise thread priority for exclusive mode", "err", err)
		}
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		if rerr := priority.Release(); rerr != nil {
			logger.Warn("thread priority revert failed", "err", rerr)
		}
		return nil, nativeError(m.Name(), "start device", classifyMalgo(err, params.Exclusive), err)
	}

	logger.Info("malgo device started",
		"device", endpoint.Name, "format", format.String(), "native", malgoFormatName(device.PlaybackFormat()))

	stream := NewEventStream(EventStreamConfig{
		Backend:      m.Name(),
		Device:       &malgoDevice{RenderRing: ring, device: device, period: period, observed: &observed, logger: logger},
		Format:       format,
		BufferFrames: buffer,
		PeriodFrames: period,
		Exclusive:    params.Exclusive,
		Blocking:     params.Blocking,
		Logger:       logger,
	})
	return withPriority(stream, priority), nil
}

// Close releases the miniaudio context
func (m *Malgo) Close() error {
	if m.malgoCtx == nil {
		return nil
	}
	err := m.malgoCtx.Uninit()
	m.malgoCtx.Free()
	m.malgoCtx = nil
	return err
}

// malgoDevice is a started miniaudio device pulling from a render ring.
// miniaudio does not report the period it settled on, so the largest
// callback seen is kept and compared with the requested one on close.
type malgoDevice struct {
	*RenderRing
	device   *malgo.Device
	period   int
	observed *atomic.Uint32
	logger   *slog.Logger
}

func (d *malgoDevice) Reset() error {
	if err := d.device.Stop(); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	d.RenderRing.Reset()
	if err := d.device.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return nil
}

// Close stops and uninitializes the device; uninit runs even if stop fails
func (d *malgoDevice) Close() error {
	err := d.device.Stop()
	d.device.Uninit()
	d.RenderRing.Reset()
	if seen := int(d.observed.Load()); seen > 0 {
		d.logger.Debug("malgo callback period", "requested_frames", d.period, "observed_frames", seen)
	}
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// malgoStreamFormat maps a miniaudio sample format onto a StreamFormat
func malgoStreamFormat(format malgo.FormatType, channels, sampleRate int) audio.StreamFormat {
	sf := audio.StreamFormat{Channels: channels, SampleRate: sampleRate}
	switch format {
	case malgo.FormatS16:
		sf.BitDepth, sf.Encoding = 16, audio.EncodingInt
	case malgo.FormatS24:
		sf.BitDepth, sf.Encoding = 24, audio.EncodingInt
	case malgo.FormatS32:
		sf.BitDepth, sf.Encoding = 32, audio.EncodingInt
	case malgo.FormatF32:
		sf.BitDepth, sf.Encoding = 32, audio.EncodingFloat
	case malgo.FormatU8:
		sf.BitDepth, sf.Encoding = 8, audio.EncodingUnknown
	}
	return sf
}

// classifyMalgo sorts miniaudio failures into error kinds by result text
func classifyMalgo(err error, exclusive bool) ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "share mode"):
		return KindExclusiveUnsupported
	case strings.Contains(msg, "busy"):
		return KindDeviceBusy
	case strings.Contains(msg, "format"):
		return KindFormatUnsupported
	case exclusive && strings.Contains(msg, "not supported"):
		return KindExclusiveUnsupported
	}
	return KindDevice
}

// malgoFormatName returns human-readable format name
func malgoFormatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatU8:
		return "U8"
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	case malgo.FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
