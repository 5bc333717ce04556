package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Frame is a timestamped block of raw audio bytes as delivered by a capture
// device. Frames are transient: consumers derive what they need and drop them.
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

func NewFrame(data []byte) Frame {
	return Frame{Data: data, Timestamp: time.Now()}
}

// Duration reports how long the frame plays for in the given encoding.
func (f Frame) Duration(encodingInfo EncodingInfo) time.Duration {
	bytesPerSecond := encodingInfo.BytesPerSecond()
	if bytesPerSecond == 0 {
		return 0
	}

	return time.Duration(float64(len(f.Data)) / float64(bytesPerSecond) * float64(time.Second))
}

// RMS computes the root-mean-square amplitude of the frame normalized to
// [0, 1]. Only linear16 little-endian data carries meaningful amplitude here;
// other formats report 0.
func (f Frame) RMS(encodingInfo EncodingInfo) float64 {
	if encodingInfo.Format != EncodingLinear16 || len(f.Data) < 2 {
		return 0
	}

	var sum float64
	samples := len(f.Data) / 2
	for i := 0; i < samples; i++ {
		sample := int16(binary.LittleEndian.Uint16(f.Data[i*2 : i*2+2]))
		normalized := float64(sample) / math.MaxInt16
		sum += normalized * normalized
	}

	return math.Sqrt(sum / float64(samples))
}

func BytesDuration(byteCount int, encodingInfo EncodingInfo) time.Duration {
	bytesPerSecond := encodingInfo.BytesPerSecond()
	if bytesPerSecond == 0 {
		return 0
	}

	return time.Duration(float64(byteCount) / float64(bytesPerSecond) * float64(time.Second))
}

func DurationBytes(duration time.Duration, encodingInfo EncodingInfo) int {
	return int(float64(duration) / float64(time.Second) * float64(encodingInfo.BytesPerSecond()))
}
