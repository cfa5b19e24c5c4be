// ABOUTME: Driver registry for the pcmout API
// ABOUTME: Maps driver names to output backends available in this build
package pcmout

import (
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/pcmout/pkg/audio/output"
)

// Driver names accepted by New
const (
	DriverMalgo     = "malgo"
	DriverOto       = "oto"
	DriverPortAudio = "portaudio"
	DriverNull      = "null"
)

// SupportedDrivers lists the drivers usable in this build, preferred first.
// The null driver is always present.
func SupportedDrivers() []string {
	drivers := []string{DriverMalgo, DriverOto}
	if output.PortAudioAvailable {
		drivers = append(drivers, DriverPortAudio)
	}
	return append(drivers, DriverNull)
}

// DefaultDriver returns the driver New uses when none is configured
func DefaultDriver() string {
	return SupportedDrivers()[0]
}

// newBackend creates the backend registered under driver
func newBackend(driver string) (output.Backend, error) {
	switch strings.ToLower(driver) {
	case DriverMalgo:
		m, err := output.NewMalgo()
		if err != nil {
			return nil, err
		}
		return m, nil
	case DriverOto:
		return output.NewOto(), nil
	case DriverPortAudio:
		p, err := output.NewPortAudio()
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverNull:
		return output.NewNull(), nil
	}
	return nil, &output.UnsupportedError{Parameter: "driver", Value: driver}
}

// backendFactory is swapped in tests
var backendFactory = func(driver string) (output.Backend, error) {
	b, err := newBackend(driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", driver, err)
	}
	return b, nil
}
