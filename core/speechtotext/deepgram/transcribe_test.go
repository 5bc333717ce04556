package deepgram

import (
	"context"
	"testing"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext"
)

func messageJSON(transcript string, isFinal, speechFinal bool) []byte {
	final := "false"
	if isFinal {
		final = "true"
	}
	speech := "false"
	if speechFinal {
		speech = "true"
	}
	return []byte(`{"type":"Results","is_final":` + final + `,"speech_final":` + speech +
		`,"channel":{"alternatives":[{"transcript":"` + transcript + `","confidence":0.9}]}}`)
}

func TestProcessMessageAccumulatesFinalsInArrivalOrder(t *testing.T) {
	client := NewTranscriptionClient("key")

	var interims []string
	var finals []speechtotext.Result
	options := speechtotext.TranscriptionOptions{
		InterimResultCallback: func(result speechtotext.Result) {
			interims = append(interims, result.Text)
		},
		FinalResultCallback: func(result speechtotext.Result) {
			finals = append(finals, result)
		},
	}

	ctx := context.Background()
	client.processMessage(ctx, messageJSON("привет как", true, false), options)
	client.processMessage(ctx, messageJSON("дела сегодня", false, false), options)
	client.processMessage(ctx, messageJSON("дела", true, true), options)

	if len(interims) != 1 || interims[0] != "привет как дела сегодня" {
		t.Fatalf("expected the interim to carry the accumulated finals, got %q", interims)
	}
	if len(finals) != 1 {
		t.Fatalf("expected one final result, got %d", len(finals))
	}
	if finals[0].Text != "привет как дела" {
		t.Fatalf("expected the flushed transcript to join finals in order, got %q", finals[0].Text)
	}
	if !finals[0].IsFinal || finals[0].Source != speechtotext.SourceNative {
		t.Fatalf("unexpected final result metadata: %+v", finals[0])
	}
}

func TestProcessMessageUtteranceEndFlushesUnendedSegment(t *testing.T) {
	client := NewTranscriptionClient("key")

	var finals []speechtotext.Result
	options := speechtotext.TranscriptionOptions{
		FinalResultCallback: func(result speechtotext.Result) {
			finals = append(finals, result)
		},
	}

	ctx := context.Background()
	client.processMessage(ctx, []byte(`{"type":"SpeechStarted"}`), options)
	client.processMessage(ctx, messageJSON("стоп подожди", true, false), options)
	client.processMessage(ctx, []byte(`{"type":"UtteranceEnd"}`), options)

	if len(finals) != 1 || finals[0].Text != "стоп подожди" {
		t.Fatalf("expected the utterance end to flush the pending transcript, got %+v", finals)
	}

	// A second utterance end with nothing pending stays silent.
	client.processMessage(ctx, []byte(`{"type":"UtteranceEnd"}`), options)
	if len(finals) != 1 {
		t.Fatalf("expected no extra final without a new segment, got %d", len(finals))
	}
}
