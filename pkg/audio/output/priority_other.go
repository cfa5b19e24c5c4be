//go:build !linux && !windows

package output

// elevateThread is a no-op where no scheduling hook is wired
func elevateThread() (*threadPriority, error) {
	return &threadPriority{}, nil
}
