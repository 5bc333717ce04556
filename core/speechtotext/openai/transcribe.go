// Package openai implements the batch recognizer fallback. Whole
// speech spans are wrapped into WAV and sent to the audio
// transcriptions endpoint in one request.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext"
)

const (
	defaultModel    = openai.AudioModelWhisper1
	defaultLanguage = "ru"
)

type TranscriptionClient struct {
	client openai.Client
	model  openai.AudioModel
}

func NewTranscriptionClient(apiKey string, opts ...TranscriptionClientOption) *TranscriptionClient {
	client := &TranscriptionClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type TranscriptionClientOption func(*TranscriptionClient)

// WithModel overrides the transcription model.
func WithModel(model openai.AudioModel) TranscriptionClientOption {
	return func(c *TranscriptionClient) {
		c.model = model
	}
}

// Transcribe sends one complete speech span and returns its final
// transcription. There are no interim results on this path.
func (c *TranscriptionClient) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscriptionOption) (speechtotext.Result, error) {
	options := &speechtotext.TranscriptionOptions{
		EncodingInfo: audio.GetDefaultEncodingInfo(),
		Language:     defaultLanguage,
	}
	for _, opt := range opts {
		opt(options)
	}

	if len(pcm) == 0 {
		return speechtotext.Result{}, &speechtotext.TranscriptionError{
			Source: speechtotext.SourceCloud, Op: "transcribe",
			Err: fmt.Errorf("empty audio"),
		}
	}

	wav, err := encodeWAV(pcm, options.EncodingInfo)
	if err != nil {
		return speechtotext.Result{}, &speechtotext.TranscriptionError{
			Source: speechtotext.SourceCloud, Op: "encode", Err: err,
		}
	}

	response, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    c.model,
		File:     openai.File(bytes.NewReader(wav), "speech.wav", "audio/wav"),
		Language: openai.String(options.Language),
	})
	if err != nil {
		return speechtotext.Result{}, &speechtotext.TranscriptionError{
			Source: speechtotext.SourceCloud, Op: "transcribe", Err: err,
		}
	}

	result := speechtotext.Result{
		Text:    strings.TrimSpace(response.Text),
		IsFinal: true,
		// The endpoint reports no confidence; treat a non-empty answer
		// as fully confident and let the downstream filters judge it.
		Confidence: 1,
		Source:     speechtotext.SourceCloud,
	}
	if options.FinalResultCallback != nil && result.Text != "" {
		options.FinalResultCallback(result)
	}
	return result, nil
}
