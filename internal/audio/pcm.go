package audio

import "math"

// Amplify multiplies each sample by gain, clips to the int16 range, and
// returns the result as little-endian bytes.
func Amplify(frame Frame, gain float64) []byte {
	out := make([]byte, len(frame)*2)
	for i, s := range frame {
		v := float64(s) * gain
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		u := uint16(int16(v))
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}
	return out
}

// Samples converts little-endian 16-bit PCM bytes to normalized float32
// samples in [-1, 1). A trailing odd byte is ignored.
func Samples(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Normalize converts a raw frame to float samples in [-1, 1) for the
// animation consumer.
func Normalize(frame Frame) []float32 {
	out := make([]float32, len(frame))
	for i, s := range frame {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// RMS returns the root mean square of the given samples, a scalar
// loudness summary for amplitude visualization.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
