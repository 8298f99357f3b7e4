package alerts

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/metrics"
	"cinemaguard/internal/model"
)

type fakePersister struct {
	mu       sync.Mutex
	inserted []model.AlertEvent
	failures int // fail this many Insert calls before succeeding
	calls    int
}

func (f *fakePersister) Insert(event *model.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("database locked")
	}
	f.inserted = append(f.inserted, *event)
	return nil
}

func (f *fakePersister) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
}

func (f *fakeBroadcaster) BroadcastJSON(v interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, v)
}

func (f *fakeBroadcaster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// blockingPersister holds Insert until released, to back up the queue.
// started is signalled when the first Insert begins.
type blockingPersister struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingPersister) Insert(event *model.AlertEvent) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func testEvent(id, zone string) model.AlertEvent {
	return model.AlertEvent{
		ID:        id,
		Hall:      "Hall 1",
		Zone:      zone,
		RiskScore: 0.9,
		Timestamp: time.Now(),
	}
}

func TestEmitter_PersistsAndBroadcasts(t *testing.T) {
	repo := &fakePersister{}
	hub := &fakeBroadcaster{}
	emitter := NewEmitter(8, repo, hub, nil, nil, metrics.New(), logger.New(t.TempDir()))

	emitter.Emit(testEvent("a-1", "5,5"))
	emitter.Emit(testEvent("a-2", "3,7"))
	emitter.Stop()

	if repo.insertedCount() != 2 {
		t.Fatalf("Expected 2 persisted alerts, got %d", repo.insertedCount())
	}
	if hub.count() != 2 {
		t.Fatalf("Expected 2 broadcast messages, got %d", hub.count())
	}

	msg, ok := hub.messages[0].(alertMessage)
	if !ok {
		t.Fatalf("Expected an alertMessage, got %T", hub.messages[0])
	}
	if msg.Type != "alert" || msg.ID != "a-1" {
		t.Errorf("Unexpected broadcast payload: %+v", msg)
	}
}

func TestEmitter_RetriesFailedPersist(t *testing.T) {
	repo := &fakePersister{failures: 1}
	hub := &fakeBroadcaster{}
	emitter := NewEmitter(8, repo, hub, nil, nil, metrics.New(), logger.New(t.TempDir()))

	emitter.Emit(testEvent("a-1", "5,5"))
	emitter.Stop()

	if repo.calls != 2 {
		t.Errorf("Expected 2 insert attempts, got %d", repo.calls)
	}
	if repo.insertedCount() != 1 {
		t.Errorf("Expected the retry to persist the alert, got %d", repo.insertedCount())
	}
}

func TestEmitter_BroadcastsEvenWhenPersistFails(t *testing.T) {
	repo := &fakePersister{failures: persistRetries}
	hub := &fakeBroadcaster{}
	m := metrics.New()
	emitter := NewEmitter(8, repo, hub, nil, nil, m, logger.New(t.TempDir()))

	emitter.Emit(testEvent("a-1", "5,5"))
	emitter.Stop()

	if repo.insertedCount() != 0 {
		t.Errorf("Expected persist to fail, got %d inserted", repo.insertedCount())
	}
	if hub.count() != 1 {
		t.Errorf("Expected the alert to reach viewers anyway, got %d messages", hub.count())
	}
	if got := testutil.ToFloat64(m.SinkErrors); got != 1 {
		t.Errorf("Expected 1 sink error, got %f", got)
	}
}

func TestEmitter_FullQueueDropsWithoutBlocking(t *testing.T) {
	repo := &blockingPersister{started: make(chan struct{}), release: make(chan struct{})}
	hub := &fakeBroadcaster{}
	m := metrics.New()
	emitter := NewEmitter(1, repo, hub, nil, nil, m, logger.New(t.TempDir()))

	// First event occupies the worker, second fills the one-slot queue.
	emitter.Emit(testEvent("a-1", "1,1"))
	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("Worker never picked up the first alert")
	}
	emitter.Emit(testEvent("a-2", "2,2"))

	done := make(chan struct{})
	go func() {
		emitter.Emit(testEvent("a-3", "3,3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}

	close(repo.release)
	emitter.Stop()

	if got := testutil.ToFloat64(m.AlertsDropped); got != 1 {
		t.Errorf("Expected 1 dropped alert, got %f", got)
	}
	if got := testutil.ToFloat64(m.AlertsEmitted); got != 2 {
		t.Errorf("Expected 2 emitted alerts, got %f", got)
	}
}

func TestEmitter_CapturesSnapshotWhenFrameAvailable(t *testing.T) {
	repo := &fakePersister{}
	hub := &fakeBroadcaster{}

	var mu sync.Mutex
	var captured []model.AlertEvent
	taker := snapshotFunc(func(event model.AlertEvent, frame []byte) {
		mu.Lock()
		defer mu.Unlock()
		captured = append(captured, event)
	})
	frames := func() ([]byte, bool) { return []byte{0xFF, 0xD8}, true }

	emitter := NewEmitter(8, repo, hub, taker, frames, metrics.New(), logger.New(t.TempDir()))
	emitter.Emit(testEvent("a-1", "5,5"))
	emitter.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(captured) != 1 || captured[0].ID != "a-1" {
		t.Errorf("Expected one captured snapshot for a-1, got %+v", captured)
	}
}

// snapshotFunc adapts a function to the SnapshotTaker interface.
type snapshotFunc func(event model.AlertEvent, frame []byte)

func (f snapshotFunc) Capture(event model.AlertEvent, frame []byte) { f(event, frame) }
