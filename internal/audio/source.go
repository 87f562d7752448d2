package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Frame is a single fixed-size block of mono 16-bit PCM samples.
type Frame []int16

// Source produces PCM frames from a capture device. Read blocks until a
// full frame is available. Close releases the device; after Close, Read
// returns an error.
type Source interface {
	Read() (Frame, error)
	Close() error
}

// MicSource captures mono int16 PCM from the default input device.
type MicSource struct {
	stream     *portaudio.Stream
	buffer     []int16
	sampleRate int
	closed     bool
}

// NewMicSource initializes portaudio and opens the default input device
// at the given sample rate, reading frameSize samples per call.
func NewMicSource(sampleRate, frameSize int) (*MicSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	buffer := make([]int16, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), frameSize, buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start capture stream: %w", err)
	}

	return &MicSource{
		stream:     stream,
		buffer:     buffer,
		sampleRate: sampleRate,
	}, nil
}

// SampleRate returns the capture sample rate in Hz.
func (m *MicSource) SampleRate() int {
	return m.sampleRate
}

// Read blocks until the device delivers a full frame and returns a copy
// of it.
func (m *MicSource) Read() (Frame, error) {
	if m.closed {
		return nil, fmt.Errorf("capture source is closed")
	}
	if err := m.stream.Read(); err != nil {
		return nil, fmt.Errorf("failed to read from capture stream: %w", err)
	}
	frame := make(Frame, len(m.buffer))
	copy(frame, m.buffer)
	return frame, nil
}

// Close stops the stream and releases the device. Safe to call once.
func (m *MicSource) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	if err := m.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("failed to stop capture stream: %w", err)
	}
	if err := m.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close capture stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return firstErr
}
