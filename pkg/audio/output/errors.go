// ABOUTME: Error taxonomy for the output engine
// ABOUTME: Sentinel and typed errors shared by every backend
package output

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDeviceFound means the backend reports no active render endpoints
	ErrNoDeviceFound = errors.New("no output device found")

	// ErrWaitTimeout means a non-blocking wait found the device not ready.
	// The caller may retry the same output call.
	ErrWaitTimeout = errors.New("wait for device timed out")

	// ErrStreamClosed means the engine has no open hardware stream
	ErrStreamClosed = errors.New("output stream closed")
)

// DeviceNotFoundError is returned when a device name is not in the directory
type DeviceNotFoundError struct {
	Name string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device not found: %s", e.Name)
}

// UnsupportedError is returned for parameter values a backend does not offer
type UnsupportedError struct {
	Parameter string
	Value     any
}

func (e *UnsupportedError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("unsupported: %s", e.Parameter)
	}
	return fmt.Sprintf("unsupported: %s %v", e.Parameter, e.Value)
}

// FrameSizeError is returned when a frame has fewer samples than channels
type FrameSizeError struct {
	Got  int
	Want int
}

func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("frame has %d samples, stream needs %d", e.Got, e.Want)
}

// ErrorKind classifies native device failures
type ErrorKind int

const (
	KindDevice ErrorKind = iota
	KindDeviceBusy
	KindFormatUnsupported
	KindExclusiveUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindDeviceBusy:
		return "device busy"
	case KindFormatUnsupported:
		return "format unsupported"
	case KindExclusiveUnsupported:
		return "exclusive mode unsupported"
	default:
		return "device error"
	}
}

// NativeError wraps a failure reported by the OS audio API
type NativeError struct {
	Backend string
	Op      string
	Kind    ErrorKind
	Err     error
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Backend, e.Op, e.Kind, e.Err)
}

func (e *NativeError) Unwrap() error {
	return e.Err
}

func nativeError(backend, op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var ne *NativeError
	if errors.As(err, &ne) {
		return err
	}
	return &NativeError{Backend: backend, Op: op, Kind: kind, Err: err}
}

// IsKind reports whether err carries a NativeError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ne *NativeError
	return errors.As(err, &ne) && ne.Kind == kind
}

var errExclusiveUnavailable = errors.New("backend has no exclusive mode")
