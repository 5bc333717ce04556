// Package portaudio is an alternative device layer on PortAudio, for
// hosts where miniaudio's backends are unavailable.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

// classifyDeviceError maps a portaudio error onto the shared device
// error taxonomy so callers can errors.Is against the sentinels.
func classifyDeviceError(err error) error {
	switch {
	case errors.Is(err, portaudio.DeviceUnavailable):
		return audio.ErrDeviceDenied
	case errors.Is(err, portaudio.InvalidDevice),
		errors.Is(err, portaudio.NoDefaultInputDevice),
		errors.Is(err, portaudio.NoDefaultOutputDevice):
		return audio.ErrDeviceNotFound
	default:
		return audio.ErrDeviceBusy
	}
}

type Client struct {
	bufferSize    int
	stream        *portaudio.Stream
	leftoverAudio []byte

	in  []int16
	out []int16
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 1, audio.DefaultSampleRate, bufferSize, in, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w: %v", classifyDeviceError(err), err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}, nil
}

// StartCapture reads microphone audio until ctx is cancelled. It
// blocks, callers run it on its own goroutine.
func (c *Client) StartCapture(ctx context.Context, onFrame func(frame audio.Frame)) error {
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w: %v", classifyDeviceError(err), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.stream.Read(); err != nil {
				continue
			}

			audioBuffer := bytes.Buffer{}
			binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onFrame(audio.NewFrame(audioBuffer.Bytes()))
		}
	}
}

func (c *Client) Close() {
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) SendAudio(data []byte) error {
	bufferSize := c.bufferSize * 2

	data = append(c.leftoverAudio, data...)
	for i := range len(data)/bufferSize + 1 {
		if (i+1)*bufferSize > len(data) {
			c.leftoverAudio = make([]byte, len(data)-i*bufferSize)
			copy(c.leftoverAudio, data[i*bufferSize:])
			break
		}

		binary.Read(bytes.NewBuffer(data[i*bufferSize:(i+1)*bufferSize]), binary.LittleEndian, c.out)
		c.stream.Write()
	}

	return nil
}

func (c *Client) ClearBuffer() {
	c.leftoverAudio = make([]byte, 0)
}

// AwaitMark drains whatever audio is still buffered to the device.
func (c *Client) AwaitMark() error {
	bufferSize := c.bufferSize * 2

	data := c.leftoverAudio
	for i := range len(data)/bufferSize + 1 {
		if (i+1)*bufferSize > len(data) {
			c.leftoverAudio = make([]byte, 0)
			break
		}

		binary.Read(bytes.NewBuffer(data[i*bufferSize:(i+1)*bufferSize]), binary.LittleEndian, c.out)
		c.stream.Write()
	}
	return nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
