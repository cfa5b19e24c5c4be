//go:build windows

// ABOUTME: Windows thread priority via the MMCSS "Pro Audio" task
// ABOUTME: Calls avrt.dll on the locked OS thread for exclusive playback
package output

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modavrt                             = windows.NewLazySystemDLL("avrt.dll")
	procAvSetMmThreadCharacteristicsW   = modavrt.NewProc("AvSetMmThreadCharacteristicsW")
	procAvRevertMmThreadCharacteristics = modavrt.NewProc("AvRevertMmThreadCharacteristics")
)

func elevateThread() (*threadPriority, error) {
	if err := modavrt.Load(); err != nil {
		return nil, fmt.Errorf("load avrt.dll: %w", err)
	}

	task, err := windows.UTF16PtrFromString("Pro Audio")
	if err != nil {
		return nil, err
	}

	runtime.LockOSThread()

	var taskIndex uint32
	handle, _, callErr := procAvSetMmThreadCharacteristicsW.Call(
		uintptr(unsafe.Pointer(task)),
		uintptr(unsafe.Pointer(&taskIndex)),
	)
	if handle == 0 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("AvSetMmThreadCharacteristicsW: %w", callErr)
	}

	return &threadPriority{
		release: func() error {
			defer runtime.UnlockOSThread()
			ok, _, callErr := procAvRevertMmThreadCharacteristics.Call(handle)
			if ok == 0 {
				return fmt.Errorf("AvRevertMmThreadCharacteristics: %w", callErr)
			}
			return nil
		},
	}, nil
}
