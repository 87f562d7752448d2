package transcription

import (
	"bytes"
	"encoding/binary"
	"math"
)

// encodeWAV wraps normalized float samples in a mono 16-bit PCM RIFF
// container at the given sample rate.
func encodeWAV(samples []float32, sampleRate int) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := float64(s) * 32767.0
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		u := uint16(int16(v))
		pcm[i*2] = byte(u)
		pcm[i*2+1] = byte(u >> 8)
	}

	var (
		numChannels   uint16 = 1
		bitsPerSample uint16 = 16
		byteRate             = uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8
		blockAlign           = numChannels * bitsPerSample / 8
		dataSize             = uint32(len(pcm))
	)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, numChannels)
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bitsPerSample)
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(pcm)
	return buf.Bytes()
}
