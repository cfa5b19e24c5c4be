// ABOUTME: Scoped elevated thread scheduling for exclusive streams
// ABOUTME: Token acquired at stream open and released at stream close
package output

// threadPriority is elevated scheduling held by the caller's OS thread.
// A nil token is valid and releases nothing.
type threadPriority struct {
	release func() error
}

// Release reverts the scheduling change. It is safe to call more than once.
func (p *threadPriority) Release() error {
	if p == nil || p.release == nil {
		return nil
	}
	release := p.release
	p.release = nil
	return release()
}
