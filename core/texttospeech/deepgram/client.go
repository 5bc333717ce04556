// Package deepgram implements speech synthesis on Deepgram's speak
// websocket. Each response turn gets its own generator so cancelling
// one turn never bleeds into the next.
package deepgram

import (
	"fmt"
	"slices"
)

type TextToSpeechClient struct {
	apiKey string
	voice  deepgramVoice
}

func NewTextToSpeechClient(apiKey string, voice deepgramVoice) (*TextToSpeechClient, error) {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice")
	}

	return &TextToSpeechClient{apiKey: apiKey, voice: voice}, nil
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) error {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return fmt.Errorf("invalid voice")
	}
	c.voice = voice
	return nil
}
