// ABOUTME: High-level pcmout library API
// ABOUTME: Driver selection and capability-gated control of one output engine
// Package pcmout provides the high-level API for pushing PCM audio to a
// sound device.
//
// This is the main entry point for most library users, providing:
//   - Audio: one output stream on one driver, with capability-gated setters
//   - SupportedDrivers: the drivers compiled into this binary
//
// For lower-level control, see the audio and audio/output packages.
//
// Example:
//
//	a, err := pcmout.New(pcmout.Config{Driver: pcmout.DriverMalgo})
//	defer a.Close()
//	err = a.SetLatency(20)
//	for _, frame := range frames {
//	    err = a.Output(frame)
//	}
package pcmout
