package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGateAdmitsUpToSlots(t *testing.T) {
	g := NewGate(GateConfig{PlaySlots: 2, PlayWaiting: 1})
	ctx := context.Background()

	rel1, err := g.Enter(ctx, OpPlay)
	if err != nil {
		t.Fatalf("First Enter: %v", err)
	}
	rel2, err := g.Enter(ctx, OpPlay)
	if err != nil {
		t.Fatalf("Second Enter: %v", err)
	}

	if got := g.Stats().Play.Active; got != 2 {
		t.Errorf("Active = %d, want 2", got)
	}
	rel1()
	rel2()

	stats := g.Stats().Play
	if stats.Active != 0 {
		t.Errorf("Active after release = %d, want 0", stats.Active)
	}
	if stats.Served != 2 {
		t.Errorf("Served = %d, want 2", stats.Served)
	}
}

func TestGateRejectsBeyondQueueBound(t *testing.T) {
	g := NewGate(GateConfig{RecordSlots: 1, RecordWaiting: 1})
	ctx := context.Background()

	rel, err := g.Enter(ctx, OpRecord)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	defer rel()

	// One caller may wait; park it behind the held slot.
	waiterCtx, cancelWaiter := context.WithCancel(ctx)
	defer cancelWaiter()
	waiting := make(chan error, 1)
	go func() {
		_, err := g.Enter(waiterCtx, OpRecord)
		waiting <- err
	}()
	for i := 0; g.Stats().Record.Waiting == 0; i++ {
		if i > 1000 {
			t.Fatal("Parked caller never reached the queue")
		}
		time.Sleep(time.Millisecond)
	}

	// The queue is now full, so the next caller fails fast rather
	// than blocking.
	if _, err := g.Enter(ctx, OpRecord); !errors.Is(err, ErrServerBusy) {
		t.Fatalf("Expected ErrServerBusy with the queue full, got %v", err)
	}
	if got := g.Stats().Record.Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}

	cancelWaiter()
	if err := <-waiting; !errors.Is(err, context.Canceled) {
		t.Errorf("Parked caller finished with %v, want context.Canceled", err)
	}
}

func TestGateContextCancelWhileWaiting(t *testing.T) {
	g := NewGate(GateConfig{PlaySlots: 1, PlayWaiting: 4})
	rel, err := g.Enter(context.Background(), OpPlay)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Enter(ctx, OpPlay); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if got := g.Stats().Play.Waiting; got != 0 {
		t.Errorf("Waiting after cancel = %d, want 0", got)
	}

	// The slot is still usable afterwards.
	rel()
	rel2, err := g.Enter(context.Background(), OpPlay)
	if err != nil {
		t.Fatalf("Enter after cancel: %v", err)
	}
	rel2()
}

func TestGateReleaseIsIdempotent(t *testing.T) {
	g := NewGate(GateConfig{PlaySlots: 1, PlayWaiting: 1})
	rel, err := g.Enter(context.Background(), OpPlay)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	rel()
	rel()

	stats := g.Stats().Play
	if stats.Active != 0 {
		t.Errorf("Active after double release = %d, want 0", stats.Active)
	}
	if stats.Served != 1 {
		t.Errorf("Served after double release = %d, want 1", stats.Served)
	}
}

func TestGateClassesAreIndependent(t *testing.T) {
	g := NewGate(GateConfig{PlaySlots: 1, PlayWaiting: 1, RecordSlots: 1, RecordWaiting: 1})
	ctx := context.Background()

	relPlay, err := g.Enter(ctx, OpPlay)
	if err != nil {
		t.Fatalf("Play Enter: %v", err)
	}
	defer relPlay()

	// A saturated play class does not block record admission.
	relRecord, err := g.Enter(ctx, OpRecord)
	if err != nil {
		t.Fatalf("Record Enter with play saturated: %v", err)
	}
	relRecord()
}

func TestGateUnderContention(t *testing.T) {
	g := NewGate(GateConfig{PlaySlots: 4, PlayWaiting: 100})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rel, err := g.Enter(ctx, OpPlay)
			if err != nil {
				t.Errorf("Enter: %v", err)
				return
			}
			rel()
		}()
	}
	wg.Wait()

	stats := g.Stats().Play
	if stats.Served != 50 {
		t.Errorf("Served = %d, want 50", stats.Served)
	}
	if stats.Active != 0 || stats.Waiting != 0 {
		t.Errorf("Gate not drained: active=%d waiting=%d", stats.Active, stats.Waiting)
	}
}
