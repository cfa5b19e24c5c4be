// ABOUTME: Audio output package for pushing PCM frames to hardware
// ABOUTME: Engine, flow controllers and malgo, oto, PortAudio and null backends
// Package output pushes normalized audio frames to an OS audio device.
//
// An Engine queues frames from the caller and hands them to one hardware
// stream when enough are pending. Event-driven backends (malgo, oto) wait
// for the device to signal readiness and fill whatever space it reports
// free. Polling backends (PortAudio, null) deliver a period at a time,
// recover from device faults and carry unsent frames to the next delivery.
//
// Example:
//
//	backend, err := output.NewMalgo()
//	engine, err := output.NewEngine(backend, output.EngineConfig{})
//	err = engine.Output(audio.Frame{0.25, -0.25})
//	err = engine.Close()
//
// PortAudio requires building with -tags portaudio.
package output
