// Package pcm converts between the capture wire format (16 kHz mono signed
// 16-bit little-endian) and the float samples recognition engines consume.
package pcm

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	SampleRate     = 16000
	BytesPerSample = 2
	BytesPerSecond = SampleRate * BytesPerSample
)

// Normalize reinterprets pcm as little-endian int16 samples scaled by 1/32768.
// A trailing odd byte is ignored.
func Normalize(pcm []byte) []float32 {
	n := len(pcm) / BytesPerSample
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(sample) / 32768.0
	}
	return out
}

// Denormalize converts float samples back to little-endian int16 PCM,
// clamping to the representable range.
func Denormalize(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(toInt16(s)))
	}
	return out
}

// Int16s decodes pcm into signed samples.
func Int16s(pcm []byte) []int16 {
	n := len(pcm) / BytesPerSample
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

// Energy returns the RMS amplitude of pcm on the int16 scale.
func Energy(pcm []byte) float64 {
	n := len(pcm) / BytesPerSample
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// Duration returns the playback length of pcm bytes.
func Duration(byteCount int) time.Duration {
	if byteCount <= 0 {
		return 0
	}
	return time.Duration(byteCount/BytesPerSample) * time.Second / SampleRate
}

// BytesFor returns the byte length of d worth of audio, aligned to whole samples.
func BytesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	samples := int(d * SampleRate / time.Second)
	return samples * BytesPerSample
}

func toInt16(s float32) int16 {
	v := math.Round(float64(s) * 32768.0)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
