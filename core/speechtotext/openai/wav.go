package openai

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

// encodeWAV prefixes raw PCM with a RIFF header. Only linear16 audio
// is supported, which is all the capture pipeline produces.
func encodeWAV(pcm []byte, encoding audio.EncodingInfo) ([]byte, error) {
	if encoding.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("unsupported encoding %q", encoding.Format.Name())
	}

	channels := encoding.Channels
	if channels == 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := encoding.SampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buffer bytes.Buffer
	buffer.Grow(44 + len(pcm))

	buffer.WriteString("RIFF")
	binary.Write(&buffer, binary.LittleEndian, uint32(36+len(pcm)))
	buffer.WriteString("WAVE")

	buffer.WriteString("fmt ")
	binary.Write(&buffer, binary.LittleEndian, uint32(16))
	binary.Write(&buffer, binary.LittleEndian, uint16(1))
	binary.Write(&buffer, binary.LittleEndian, uint16(channels))
	binary.Write(&buffer, binary.LittleEndian, uint32(encoding.SampleRate))
	binary.Write(&buffer, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buffer, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buffer, binary.LittleEndian, uint16(bitsPerSample))

	buffer.WriteString("data")
	binary.Write(&buffer, binary.LittleEndian, uint32(len(pcm)))
	buffer.Write(pcm)

	return buffer.Bytes(), nil
}
