package echoguard

import (
	"testing"
	"time"
)

func TestClassifySubstringOfPlayingTextIsEcho(t *testing.T) {
	guard := NewGuard()
	guard.SegmentStarted("Давай продолжим урок", nil)

	verdict := guard.Classify("продолжим урок", nil)
	if !verdict.IsEcho {
		t.Fatal("expected a substring of the playing text to classify as echo")
	}
	if verdict.Confidence < 0.9 {
		t.Fatalf("expected high confidence for a substring match, got %f", verdict.Confidence)
	}
}

func TestClassifyPunctuationAndCaseAreIgnored(t *testing.T) {
	guard := NewGuard()
	guard.SegmentStarted("Давай продолжим урок!", nil)

	if verdict := guard.Classify("Продолжим... урок?", nil); !verdict.IsEcho {
		t.Fatal("expected normalization to bridge punctuation and case differences")
	}
}

func TestClassifyHyphenatedWordsMatchSpacedTranscript(t *testing.T) {
	guard := NewGuard()
	guard.SegmentStarted("Жил-был кот и пил молоко.", nil)

	// Recognizers transcribe hyphenated words as separate tokens.
	verdict := guard.Classify("жил был кот и пил молоко", nil)
	if !verdict.IsEcho {
		t.Fatalf("expected a loopback of hyphenated speech to classify as echo, confidence %f", verdict.Confidence)
	}
}

func TestClassifyUnrelatedSpeechIsNotEcho(t *testing.T) {
	guard := NewGuard()
	guard.SegmentStarted("Один плюс один равно двум", nil)

	verdict := guard.Classify("стоп подожди", nil)
	if verdict.IsEcho {
		t.Fatal("expected unrelated user speech during playback to pass as genuine")
	}
}

func TestClassifyWordOverlapAboveThresholdIsEcho(t *testing.T) {
	guard := NewGuard()
	guard.SegmentStarted("сегодня мы разберем сложение дробей и приведем примеры", nil)

	// Three of three long-enough words appear in the reference.
	verdict := guard.Classify("разберем сложение дробей", nil)
	if !verdict.IsEcho {
		t.Fatalf("expected overlap above threshold to classify as echo, confidence %f", verdict.Confidence)
	}
}

func TestClassifyNothingPlayingIsNeverEcho(t *testing.T) {
	guard := NewGuard()

	if verdict := guard.Classify("продолжим урок", nil); verdict.IsEcho {
		t.Fatal("expected no echo verdict without a reference segment")
	}
}

func TestClassifyWithinCooldownStillComparesLastSegment(t *testing.T) {
	current := time.Now()
	guard := NewGuard(withClock(func() time.Time { return current }))

	guard.SegmentStarted("Давай продолжим урок", nil)
	guard.SegmentEnded()

	current = current.Add(500 * time.Millisecond)
	if verdict := guard.Classify("продолжим урок", nil); !verdict.IsEcho {
		t.Fatal("expected the last segment to stay comparable within the cooldown")
	}

	current = current.Add(2 * time.Second)
	if verdict := guard.Classify("продолжим урок", nil); verdict.IsEcho {
		t.Fatal("expected candidates after the cooldown to pass as genuine")
	}
}

func TestClassifyFingerprintConfirmsPartialTextMatch(t *testing.T) {
	envelope := []float64{0.1, 0.4, 0.8, 0.6, 0.3, 0.2, 0.5, 0.7}

	guard := NewGuard()
	guard.SegmentStarted("давай продолжим наш урок математики", envelope)

	// Half the words survived transcription, short of the overlap
	// threshold on its own.
	garbled := "давай продолжим положим запятые шире"
	if verdict := guard.Classify(garbled, nil); verdict.IsEcho {
		t.Fatal("expected the garbled transcript alone to stay below the threshold")
	}
	if verdict := guard.Classify(garbled, envelope); !verdict.IsEcho {
		t.Fatal("expected a matching envelope to confirm the partial text match")
	}
}
