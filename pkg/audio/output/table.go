// ABOUTME: Fixed capability table for polling backends
// ABOUTME: Frequencies, latencies and buffer geometry shared by interval-based drivers
package output

import "time"

var (
	pollChannels    = []int{2}
	pollFrequencies = []int{44100, 48000, 96000}
	pollLatencies   = []int{20, 40, 60, 80, 100}

	eventLatencies = []int{0, 20, 40, 60, 80, 100}
)

// periodsPerBuffer is how many delivery periods fit in one hardware buffer
const periodsPerBuffer = 8

// pollGeometry sizes a polling stream: the buffer holds latencyMs of audio
// and a period is one eighth of it.
func pollGeometry(sampleRate, latencyMs int) (bufferFrames, periodFrames int) {
	bufferFrames = max(periodsPerBuffer, sampleRate*latencyMs/1000)
	periodFrames = max(1, bufferFrames/periodsPerBuffer)
	return bufferFrames, periodFrames
}

// eventGeometry sizes an event-driven buffer, never below the device period
func eventGeometry(sampleRate, latencyMs, devicePeriodMs int) (bufferFrames, periodFrames int) {
	periodFrames = max(1, sampleRate*devicePeriodMs/1000)
	bufferFrames = max(periodFrames, sampleRate*latencyMs/1000)
	return bufferFrames, periodFrames
}

// latencyFrames sizes a buffer from a latency the device reported after
// opening, never below one period
func latencyFrames(sampleRate int, latency time.Duration, periodFrames int) int {
	frames := int(latency * time.Duration(sampleRate) / time.Second)
	return max(periodFrames, frames)
}
