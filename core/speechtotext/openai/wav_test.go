package openai

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := bytes.Repeat([]byte{0x01, 0x02}, 1600)

	wav, err := encodeWAV(pcm, audio.GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected linear16 to encode, got %v", err)
	}

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("expected a RIFF/WAVE header")
	}
	if sampleRate := binary.LittleEndian.Uint32(wav[24:28]); sampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", sampleRate)
	}
	if dataLen := binary.LittleEndian.Uint32(wav[40:44]); int(dataLen) != len(pcm) {
		t.Fatalf("expected data length %d, got %d", len(pcm), dataLen)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Fatal("expected payload to follow the header unchanged")
	}
}

func TestEncodeWAVRejectsNonLinearFormats(t *testing.T) {
	encoding := audio.GetDefaultEncodingInfo()
	encoding.Format = audio.EncodingMulaw
	if _, err := encodeWAV(nil, encoding); err == nil {
		t.Fatal("expected an error for non-linear16 audio")
	}
}
