package history

import (
	"log"
	"sync"
	"time"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 256

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed to disk.
	flushInterval = 50 * time.Millisecond
)

// Tracker journals decision and feedback events in the background with
// non-blocking writes. It satisfies the engine's Recorder contract.
type Tracker struct {
	storage    Storage
	eventQueue chan Event
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// NewTracker creates a tracker with background processing.
func NewTracker(s Storage) *Tracker {
	t := &Tracker{
		storage:    s,
		eventQueue: make(chan Event, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    true,
	}

	if err := t.storage.Init(); err != nil {
		log.Printf("Warning: history journal initialization failed: %v", err)
		t.enabled = false
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// RecordDecision journals a decision event (non-blocking).
func (t *Tracker) RecordDecision(caseID string, score int, recommendation string, at time.Time) {
	t.track(Event{
		Kind:           KindDecision,
		CaseID:         caseID,
		Timestamp:      at,
		AggregateScore: score,
		Recommendation: recommendation,
	})
}

// RecordFeedback journals a feedback event (non-blocking).
func (t *Tracker) RecordFeedback(caseID string, didQuit, wasSuccessful bool, at time.Time) {
	t.track(Event{
		Kind:          KindFeedback,
		CaseID:        caseID,
		Timestamp:     at,
		DidUserQuit:   didQuit,
		WasSuccessful: wasSuccessful,
	})
}

// track queues an event. If the queue is full, the event is dropped and a
// warning is logged.
func (t *Tracker) track(event Event) {
	if !t.isEnabled() {
		return
	}

	select {
	case t.eventQueue <- event:
	default:
		log.Printf("Warning: history queue full, dropping event for case: %s", event.CaseID)
	}
}

// Stop gracefully shuts down the tracker, flushing remaining events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// IsEnabled returns whether journaling is active.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Tracker) isEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled && t.storage != nil
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is still queued, flush, and exit.
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = make([]Event, 0, batchFlushSize)
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to storage.
func (t *Tracker) flush(events []Event) {
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		if err := t.storage.RecordEvent(event); err != nil {
			log.Printf("Warning: failed to journal event: %v", err)
		}
	}
}
