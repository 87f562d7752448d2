package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmplifyScalesAndEncodes(t *testing.T) {
	out := Amplify(Frame{1000, -1000}, 1.5)
	assert.Equal(t, []byte{0xDC, 0x05, 0x24, 0xFA}, out) // 1500, -1500 little-endian
}

func TestAmplifyClipsToInt16Range(t *testing.T) {
	out := Amplify(Frame{30000, -30000}, 2.0)
	samples := Samples(out)
	assert.InDelta(t, 32767.0/32768.0, float64(samples[0]), 1e-6)
	assert.InDelta(t, -1.0, float64(samples[1]), 1e-6)
}

func TestSamplesNormalizes(t *testing.T) {
	pcm := Amplify(Frame{16384, -16384, 0}, 1.0)
	samples := Samples(pcm)
	assert.InDelta(t, 0.5, float64(samples[0]), 1e-6)
	assert.InDelta(t, -0.5, float64(samples[1]), 1e-6)
	assert.InDelta(t, 0.0, float64(samples[2]), 1e-6)
}

func TestRMS(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
	assert.InDelta(t, 0.5, RMS([]float32{0.5, -0.5, 0.5, -0.5}), 1e-6)
}

func TestReadySignalSetOnce(t *testing.T) {
	r := NewReadySignal()
	assert.False(t, r.IsSet())

	r.Set()
	assert.True(t, r.IsSet())

	// Second set is a no-op, not a panic.
	r.Set()
	assert.True(t, r.IsSet())

	select {
	case <-r.Done():
	default:
		t.Fatal("Done channel not closed after Set")
	}
}
