package voicechat

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

// turnTrigger is one unit of work for the turn queue: a user utterance
// to respond to, or the opening greeting.
type turnTrigger struct {
	token     uint64
	utterance string
	greeting  bool

	// interrupted carries the assistant turn this utterance cut off,
	// so the response can pick up where it left off.
	interrupted *llms.Turn
}

// turnQueue serializes turn processing on a single goroutine. Triggers
// ingested while a turn is running wait their turn; the active turn can
// be cancelled from any goroutine.
type turnQueue struct {
	queue   chan turnTrigger
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once
	started   atomic.Bool

	cancelMu     sync.Mutex
	cancelActive context.CancelFunc
}

func newTurnQueue() *turnQueue {
	return &turnQueue{
		queue:   make(chan turnTrigger, 16),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the processing loop. Subsequent calls are no-ops.
func (p *turnQueue) Start(ctx context.Context, process func(ctx context.Context, trigger turnTrigger)) {
	if p == nil {
		return
	}

	p.startOnce.Do(func() {
		p.started.Store(true)
		go func() {
			defer close(p.done)
			for {
				select {
				case <-p.closeCh:
					return
				case <-ctx.Done():
					return
				case trigger := <-p.queue:
					p.processTrigger(ctx, trigger, process)
				}
			}
		}()
	})
}

func (p *turnQueue) processTrigger(ctx context.Context, trigger turnTrigger, process func(ctx context.Context, trigger turnTrigger)) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.cancelMu.Lock()
	p.cancelActive = cancel
	p.cancelMu.Unlock()
	defer func() {
		p.cancelMu.Lock()
		p.cancelActive = nil
		p.cancelMu.Unlock()
	}()

	process(turnCtx, trigger)
}

// Ingest hands a trigger to the loop. Triggers are dropped when the
// loop is not running or the queue is full.
func (p *turnQueue) Ingest(trigger turnTrigger) {
	if p == nil || !p.started.Load() {
		return
	}
	select {
	case <-p.closeCh:
		return
	default:
	}

	select {
	case p.queue <- trigger:
	default:
		logger.Warn("turn queue full, dropping trigger", "utterance", trigger.utterance)
	}
}

// CancelActive cancels the context of the turn being processed, if any.
func (p *turnQueue) CancelActive() {
	if p == nil {
		return
	}

	p.cancelMu.Lock()
	defer p.cancelMu.Unlock()
	if p.cancelActive != nil {
		p.cancelActive()
	}
}

// Stop cancels the active turn and shuts the loop down, waiting for it
// to exit. Safe to call more than once.
func (p *turnQueue) Stop() {
	if p == nil {
		return
	}

	p.CancelActive()
	p.endOnce.Do(func() {
		close(p.closeCh)
	})
	if p.started.Load() {
		<-p.done
	}
}
