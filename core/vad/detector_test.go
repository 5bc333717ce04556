package vad

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

func frameWithAmplitude(t *testing.T, amplitude int16, duration time.Duration, at time.Time) audio.Frame {
	t.Helper()
	encoding := audio.GetDefaultEncodingInfo()
	samples := int(float64(encoding.SampleRate) * duration.Seconds())
	data := make([]byte, 0, samples*2)
	for range samples {
		data = binary.LittleEndian.AppendUint16(data, uint16(amplitude))
	}
	return audio.Frame{Data: data, Timestamp: at}
}

func TestDetectorReportsStartBeforeEnd(t *testing.T) {
	var calls []string
	var captured Span

	detector := NewDetector(
		WithSpeechStartedCallback(func() { calls = append(calls, "started") }),
		WithSpeechEndedCallback(func(span Span) {
			calls = append(calls, "ended")
			captured = span
		}),
	)

	now := time.Now()
	for i := range 3 {
		detector.Feed(frameWithAmplitude(t, 8000, 100*time.Millisecond, now.Add(time.Duration(i)*100*time.Millisecond)))
	}
	if !detector.Active() {
		t.Fatal("expected an open span after sustained speech")
	}
	for i := range 8 {
		detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now.Add(time.Duration(3+i)*100*time.Millisecond)))
	}

	if len(calls) != 2 || calls[0] != "started" || calls[1] != "ended" {
		t.Fatalf("expected [started ended], got %v", calls)
	}
	if captured.Size() == 0 {
		t.Fatal("expected the span to carry audio")
	}
	if captured.PeakRMS() <= 0 {
		t.Fatal("expected a positive peak RMS")
	}
	if captured.AverageRMS() > captured.PeakRMS() {
		t.Fatalf("expected average RMS %f to not exceed peak %f", captured.AverageRMS(), captured.PeakRMS())
	}
}

func TestDetectorIgnoresShortBlips(t *testing.T) {
	started := false
	detector := NewDetector(
		WithSpeechStartedCallback(func() { started = true }),
	)

	now := time.Now()
	detector.Feed(frameWithAmplitude(t, 8000, 50*time.Millisecond, now))
	detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now.Add(50*time.Millisecond)))
	detector.Feed(frameWithAmplitude(t, 8000, 50*time.Millisecond, now.Add(150*time.Millisecond)))

	if started {
		t.Fatal("expected blips shorter than the minimum speech duration to be ignored")
	}
	if detector.Active() {
		t.Fatal("expected no open span")
	}
}

func TestDetectorRoutesGatedSpansToInterruptionPath(t *testing.T) {
	var regular, gated int
	detector := NewDetector(
		WithSpeechEndedCallback(func(Span) { regular++ }),
		WithGatedSpeechCallback(func(Span) { gated++ }),
	)
	detector.SetGated(true)

	now := time.Now()
	for i := range 3 {
		detector.Feed(frameWithAmplitude(t, 8000, 100*time.Millisecond, now.Add(time.Duration(i)*100*time.Millisecond)))
	}
	for i := range 8 {
		detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now.Add(time.Duration(3+i)*100*time.Millisecond)))
	}

	if regular != 0 {
		t.Fatalf("expected no regular span reports while gated, got %d", regular)
	}
	if gated != 1 {
		t.Fatalf("expected exactly one gated span report, got %d", gated)
	}
}

func TestDetectorDropsSpansBelowMinimumSize(t *testing.T) {
	var reported int
	detector := NewDetector(
		WithMinSpanBytes(1<<20),
		WithSpeechEndedCallback(func(Span) { reported++ }),
	)

	now := time.Now()
	for i := range 3 {
		detector.Feed(frameWithAmplitude(t, 8000, 100*time.Millisecond, now.Add(time.Duration(i)*100*time.Millisecond)))
	}
	for i := range 8 {
		detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now.Add(time.Duration(3+i)*100*time.Millisecond)))
	}

	if reported != 0 {
		t.Fatalf("expected undersized spans to be dropped, got %d reports", reported)
	}
}

func TestDetectorIncludesPreRollAudio(t *testing.T) {
	var captured Span
	detector := NewDetector(
		WithSpeechEndedCallback(func(span Span) { captured = span }),
	)

	now := time.Now()
	detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now))
	detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now.Add(100*time.Millisecond)))
	for i := range 3 {
		detector.Feed(frameWithAmplitude(t, 8000, 100*time.Millisecond, now.Add(time.Duration(2+i)*100*time.Millisecond)))
	}
	for i := range 8 {
		detector.Feed(frameWithAmplitude(t, 0, 100*time.Millisecond, now.Add(time.Duration(5+i)*100*time.Millisecond)))
	}

	speechOnly := 3 * 3200
	if captured.Size() <= speechOnly {
		t.Fatalf("expected span to include pre-roll beyond %d speech bytes, got %d", speechOnly, captured.Size())
	}
	if !captured.StartedAt.Before(now.Add(200 * time.Millisecond)) {
		t.Fatalf("expected span start %v to reach into the pre-roll", captured.StartedAt)
	}
}
