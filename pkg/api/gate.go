package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrServerBusy is returned by Gate.Enter when a class has no free
// slot and its waiting queue is already full.
var ErrServerBusy = errors.New("server busy")

// OpClass partitions requests for admission control. Play operations
// (rolls, moves, cube actions) are short and latency sensitive;
// record operations (import, export, stored records) parse or build
// whole game records. Separate slots keep bulk record traffic from
// starving live games.
type OpClass int

const (
	OpPlay OpClass = iota
	OpRecord
)

// GateConfig bounds each class: at most Slots operations in flight,
// with at most Waiting callers queued behind them. A caller arriving
// beyond the queue bound is rejected immediately instead of piling up.
type GateConfig struct {
	PlaySlots     int // default 100
	PlayWaiting   int // default 200
	RecordSlots   int // default 8
	RecordWaiting int // default 32
}

// DefaultGateConfig returns a GateConfig with sensible defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		PlaySlots:     100,
		PlayWaiting:   200,
		RecordSlots:   8,
		RecordWaiting: 32,
	}
}

// Gate admits requests per operation class.
type Gate struct {
	play   classGate
	record classGate
}

// NewGate creates an admission gate with the given bounds.
func NewGate(cfg GateConfig) *Gate {
	def := DefaultGateConfig()
	if cfg.PlaySlots <= 0 {
		cfg.PlaySlots = def.PlaySlots
	}
	if cfg.PlayWaiting <= 0 {
		cfg.PlayWaiting = def.PlayWaiting
	}
	if cfg.RecordSlots <= 0 {
		cfg.RecordSlots = def.RecordSlots
	}
	if cfg.RecordWaiting <= 0 {
		cfg.RecordWaiting = def.RecordWaiting
	}
	return &Gate{
		play:   classGate{slots: make(chan struct{}, cfg.PlaySlots), waitCap: int64(cfg.PlayWaiting)},
		record: classGate{slots: make(chan struct{}, cfg.RecordSlots), waitCap: int64(cfg.RecordWaiting)},
	}
}

// Enter admits one operation of the given class, waiting for a slot
// while the queue bound allows. The returned release gives the slot
// back and is safe to call more than once.
func (g *Gate) Enter(ctx context.Context, class OpClass) (func(), error) {
	if class == OpRecord {
		return g.record.enter(ctx)
	}
	return g.play.enter(ctx)
}

type classGate struct {
	slots    chan struct{}
	waitCap  int64
	waiting  int64
	served   int64
	rejected int64
}

func (c *classGate) enter(ctx context.Context) (func(), error) {
	select {
	case c.slots <- struct{}{}:
	default:
		if atomic.AddInt64(&c.waiting, 1) > c.waitCap {
			atomic.AddInt64(&c.waiting, -1)
			atomic.AddInt64(&c.rejected, 1)
			return nil, ErrServerBusy
		}
		select {
		case c.slots <- struct{}{}:
			atomic.AddInt64(&c.waiting, -1)
		case <-ctx.Done():
			atomic.AddInt64(&c.waiting, -1)
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-c.slots
			atomic.AddInt64(&c.served, 1)
		})
	}, nil
}

func (c *classGate) stats() ClassStats {
	return ClassStats{
		Active:   len(c.slots),
		Waiting:  atomic.LoadInt64(&c.waiting),
		Served:   atomic.LoadInt64(&c.served),
		Rejected: atomic.LoadInt64(&c.rejected),
		Slots:    cap(c.slots),
	}
}

// ClassStats is a snapshot of one class's admission activity.
type ClassStats struct {
	Active   int   `json:"active"`
	Waiting  int64 `json:"waiting"`
	Served   int64 `json:"served"`
	Rejected int64 `json:"rejected"`
	Slots    int   `json:"slots"`
}

// GateStats is a snapshot of gate activity.
type GateStats struct {
	Play   ClassStats `json:"play"`
	Record ClassStats `json:"record"`
}

// Stats returns current admission statistics.
func (g *Gate) Stats() GateStats {
	return GateStats{
		Play:   g.play.stats(),
		Record: g.record.stats(),
	}
}
