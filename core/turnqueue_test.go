package voicechat

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTurnQueueProcessesTriggersInOrder(t *testing.T) {
	queue := newTurnQueue()
	defer queue.Stop()

	var mu sync.Mutex
	var processed []string
	queue.Start(context.Background(), func(_ context.Context, trigger turnTrigger) {
		mu.Lock()
		processed = append(processed, trigger.utterance)
		mu.Unlock()
	})

	queue.Ingest(turnTrigger{utterance: "первый"})
	queue.Ingest(turnTrigger{utterance: "второй"})

	waitFor(t, "both triggers to process", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if processed[0] != "первый" || processed[1] != "второй" {
		t.Errorf("expected triggers in order, got %q", processed)
	}
}

func TestTurnQueueCancelActiveStopsTheRunningTurn(t *testing.T) {
	queue := newTurnQueue()
	defer queue.Stop()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	queue.Start(context.Background(), func(ctx context.Context, _ turnTrigger) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})

	queue.Ingest(turnTrigger{utterance: "длинный ход"})
	<-started

	queue.CancelActive()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the active turn to be cancelled")
	}
}

func TestTurnQueueDropsTriggersBeforeStart(t *testing.T) {
	queue := newTurnQueue()
	queue.Ingest(turnTrigger{utterance: "рано"})

	processed := make(chan struct{}, 1)
	queue.Start(context.Background(), func(context.Context, turnTrigger) {
		processed <- struct{}{}
	})
	defer queue.Stop()

	select {
	case <-processed:
		t.Error("expected the early trigger to be dropped")
	case <-time.After(100 * time.Millisecond):
	}
}
