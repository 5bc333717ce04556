// Package deepgram implements the streaming recognizer on Deepgram's
// listen websocket. It is the preferred strategy: audio is fed as it
// is captured and results arrive incrementally.
package deepgram

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultLanguage = "ru"

// TranscriptionClient holds one listen websocket connection. A zero
// client is not usable, construct it with NewTranscriptionClient and
// open the connection with Transcribe.
type TranscriptionClient struct {
	apiKey string

	connMu sync.Mutex
	conn   *websocket.Conn

	lastMsgTs             time.Time
	accumulatedTranscript string
	lastConfidence        float64
	unendedSegment        bool
}

func NewTranscriptionClient(apiKey string) *TranscriptionClient {
	return &TranscriptionClient{apiKey: apiKey}
}
