package voicechat

import (
	"reflect"
	"testing"
)

func TestResponseBufferCutsStreamedSentences(t *testing.T) {
	buffer := newResponseBuffer()
	buffer.AddChunk("Привет! Как ")
	buffer.AddChunk("дела? Сегодня мы")
	buffer.AddChunk(" поговорим о погоде")
	buffer.TextComplete()

	var segments []string
	buffer.Segments(func(segment string) bool {
		segments = append(segments, segment)
		return true
	})

	expected := []string{"Привет!", "Как дела?", "Сегодня мы поговорим о погоде"}
	if !reflect.DeepEqual(segments, expected) {
		t.Errorf("expected segments %q, got %q", expected, segments)
	}
}

func TestResponseBufferStringJoinsEverything(t *testing.T) {
	buffer := newResponseBuffer()
	buffer.AddChunk("Раз. Два. ")
	buffer.AddChunk("Три")
	buffer.TextComplete()

	if got := buffer.String(); got != "Раз. Два. Три" {
		t.Errorf("expected joined text %q, got %q", "Раз. Два. Три", got)
	}
}

func TestResponseBufferClearUnblocksIterator(t *testing.T) {
	buffer := newResponseBuffer()

	iterDone := make(chan struct{})
	go func() {
		defer close(iterDone)
		buffer.Segments(func(string) bool { return true })
	}()

	buffer.Clear()
	<-iterDone
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "multiple sentences",
			text:     "Молодец! Это правильный ответ. Продолжим?",
			expected: []string{"Молодец!", "Это правильный ответ.", "Продолжим?"},
		},
		{
			name:     "no terminal punctuation",
			text:     "давай продолжим урок",
			expected: []string{"давай продолжим урок"},
		},
		{
			name:     "ellipsis stays with its sentence",
			text:     "Ну... Посмотрим!",
			expected: []string{"Ну...", "Посмотрим!"},
		},
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := splitSentences(test.text); !reflect.DeepEqual(got, test.expected) {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}
