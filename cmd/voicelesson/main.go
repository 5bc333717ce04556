// Command voicelesson runs an interactive spoken Russian lesson in the
// terminal, wiring the conversation engine to the default microphone
// and speakers.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	voicechat "github.com/RockInMyHead/windexs-ai-learn-sub000/core"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio/miniaudio"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
	openaillm "github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms/openai"
	deepgramstt "github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext/deepgram"
	openaistt "github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext/openai"
	deepgramtts "github.com/RockInMyHead/windexs-ai-learn-sub000/core/texttospeech/deepgram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" {
		return fmt.Errorf("DEEPGRAM_API_KEY is not set")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	device, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	defer device.Close()

	tts, err := deepgramtts.NewTextToSpeechClient(deepgramKey, deepgramtts.DefaultVoice)
	if err != nil {
		return fmt.Errorf("failed to build speech client: %w", err)
	}

	llm := openaillm.NewClient(openaiKey)
	eventCh := make(chan events.Event, 256)

	engine, err := voicechat.NewEngine(
		voicechat.WithAudioDevice(device),
		voicechat.WithStreamingTranscriber(deepgramstt.NewTranscriptionClient(deepgramKey)),
		voicechat.WithBatchTranscriber(openaistt.NewTranscriptionClient(openaiKey)),
		voicechat.WithTextToSpeech(tts),
		voicechat.WithLLM(llm),
		voicechat.WithInterruptionClassifier(llm),
		voicechat.WithEventCallback(func(event events.Event) {
			select {
			case eventCh <- event:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	if err := engine.StartSession(context.Background()); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() { _ = engine.EndSession() }()

	program := tea.NewProgram(newModel(engine, eventCh), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
