//go:build linux

// ABOUTME: Linux thread priority via setpriority on the locked OS thread
// ABOUTME: Raises the calling thread's nice value for exclusive playback
package output

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// proAudioNice mirrors the boost the "Pro Audio" MMCSS task gets on Windows
const proAudioNice = -11

func elevateThread() (*threadPriority, error) {
	runtime.LockOSThread()

	tid := unix.Gettid()
	// the raw syscall reports 20 - nice
	raw, err := unix.Getpriority(unix.PRIO_PROCESS, tid)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("getpriority: %w", err)
	}
	previous := 20 - raw

	if err := unix.Setpriority(unix.PRIO_PROCESS, tid, proAudioNice); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("setpriority: %w", err)
	}

	return &threadPriority{
		release: func() error {
			defer runtime.UnlockOSThread()
			if err := unix.Setpriority(unix.PRIO_PROCESS, tid, previous); err != nil {
				return fmt.Errorf("setpriority: %w", err)
			}
			return nil
		},
	}, nil
}
