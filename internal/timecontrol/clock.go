// Package timecontrol implements per-player reserve clocks with a
// per-turn grace delay. It is a pure clock-delta calculator: callers
// invoke StartTurn/EndTurn around turns and poll TimedOut; nothing
// here schedules or blocks.
package timecontrol

import "time"

// Side identifies a player on the clock.
type Side int

const (
	SideWhite Side = iota
	SideBlack
)

// Type selects the clocking rule.
type Type int

const (
	// TypeNone disables timing; TimedOut is always false.
	TypeNone Type = iota
	// TypeDelay grants DelaySeconds of free time each turn before
	// the reserve starts draining.
	TypeDelay
)

// Config describes a time control.
type Config struct {
	Type           Type
	DelaySeconds   int
	ReserveSeconds int
}

// PlayerClock is one side's timing state.
type PlayerClock struct {
	ReserveTime    time.Duration
	TurnStartTime  time.Time
	DelayStartTime time.Time
}

// Clock tracks both players' reserves.
type Clock struct {
	cfg    Config
	sides  [2]PlayerClock
	active [2]bool
	now    func() time.Time
}

// New returns a clock with both reserves full.
func New(cfg Config) *Clock {
	c := &Clock{cfg: cfg, now: time.Now}
	reserve := time.Duration(cfg.ReserveSeconds) * time.Second
	c.sides[SideWhite].ReserveTime = reserve
	c.sides[SideBlack].ReserveTime = reserve
	return c
}

// SetNowFunc overrides the time source, for tests.
func (c *Clock) SetNowFunc(now func() time.Time) { c.now = now }

// StartTurn marks the start of a side's turn.
func (c *Clock) StartTurn(s Side) {
	if c.cfg.Type == TypeNone {
		return
	}
	t := c.now()
	c.sides[s].TurnStartTime = t
	c.sides[s].DelayStartTime = t
	c.active[s] = true
}

// EndTurn stops a side's turn, deducting time spent beyond the grace
// delay from the reserve. Ending a turn that never started is a
// no-op.
func (c *Clock) EndTurn(s Side) {
	if c.cfg.Type == TypeNone || !c.active[s] {
		return
	}
	c.active[s] = false
	elapsed := c.now().Sub(c.sides[s].TurnStartTime)
	charged := elapsed - c.delay()
	if charged <= 0 {
		return
	}
	c.sides[s].ReserveTime -= charged
	if c.sides[s].ReserveTime < 0 {
		c.sides[s].ReserveTime = 0
	}
}

// Remaining returns the side's reserve, accounting for an in-flight
// turn.
func (c *Clock) Remaining(s Side) time.Duration {
	if c.cfg.Type == TypeNone {
		return 0
	}
	reserve := c.sides[s].ReserveTime
	if c.active[s] {
		charged := c.now().Sub(c.sides[s].TurnStartTime) - c.delay()
		if charged > 0 {
			reserve -= charged
		}
	}
	if reserve < 0 {
		return 0
	}
	return reserve
}

// TimedOut reports whether the side has exhausted its reserve.
func (c *Clock) TimedOut(s Side) bool {
	if c.cfg.Type == TypeNone {
		return false
	}
	return c.Remaining(s) <= 0
}

func (c *Clock) delay() time.Duration {
	return time.Duration(c.cfg.DelaySeconds) * time.Second
}
