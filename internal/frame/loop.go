// Package frame drives per-frame components in a fixed order.
//
// Each Tick runs every Updater in registration order, then every
// LateUpdater. Anything that writes shared state (the rotation angle) is an
// Updater; anything that reads it to produce render parameters is a
// LateUpdater, so readers always see the value written for the same frame.
// The host calls Tick after its own world update and before submitting the
// frame for rendering.
package frame

import (
	"context"
	"time"
)

// Updater runs in the first phase of a frame.
type Updater interface {
	Update(dt time.Duration)
}

// LateUpdater runs after all Updaters of the same frame.
type LateUpdater interface {
	LateUpdate()
}

// Loop holds the registered components. Not safe for concurrent use.
type Loop struct {
	updaters []Updater
	late     []LateUpdater
	frames   int
}

// AddUpdater registers u for the update phase.
func (l *Loop) AddUpdater(u Updater) {
	l.updaters = append(l.updaters, u)
}

// AddLateUpdater registers u for the late phase.
func (l *Loop) AddLateUpdater(u LateUpdater) {
	l.late = append(l.late, u)
}

// Tick runs one frame.
func (l *Loop) Tick(dt time.Duration) {
	for _, u := range l.updaters {
		u.Update(dt)
	}
	for _, u := range l.late {
		u.LateUpdate()
	}
	l.frames++
}

// Frames returns how many frames have been ticked.
func (l *Loop) Frames() int {
	return l.frames
}

// Run ticks n frames with a fixed dt, stopping early when ctx is done.
// n <= 0 runs until ctx is done. With interval > 0 frames are paced by a
// ticker; otherwise they run back to back.
func (l *Loop) Run(ctx context.Context, n int, dt, interval time.Duration) error {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for i := 0; n <= 0 || i < n; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		l.Tick(dt)
	}
	return nil
}
