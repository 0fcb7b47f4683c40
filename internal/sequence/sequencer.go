// Package sequence implements timed countdowns delivered on the dispatch
// loop: one tick per remaining value down to zero, then a completion
// callback, with explicit cancellation.
package sequence

import (
	"sync"
	"time"

	"voice-clone-studio/internal/dispatch"
)

// Sequencer runs at most one countdown at a time. Starting a new countdown
// implicitly cancels the previous one; Cancel after completion is a no-op.
type Sequencer struct {
	loop *dispatch.Loop

	mu     sync.Mutex
	gen    int
	active bool
	timer  *time.Timer
}

// New creates a sequencer that delivers callbacks via loop.
func New(loop *dispatch.Loop) *Sequencer {
	return &Sequencer{loop: loop}
}

// Start schedules onTick(initial), onTick(initial-1), … onTick(0), each
// separated by interval, then onComplete. The first tick is delivered
// immediately. Callbacks run on the dispatch loop.
func (s *Sequencer) Start(initial int, interval time.Duration, onTick func(remaining int), onComplete func()) {
	if initial < 0 {
		initial = 0
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.active = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.step(gen, initial, interval, onTick, onComplete)
}

// step delivers one tick and schedules the next, guarded by the generation
// token so a cancelled or superseded countdown goes silent.
func (s *Sequencer) step(gen, remaining int, interval time.Duration, onTick func(int), onComplete func()) {
	s.loop.Post(func() {
		if !s.current(gen) {
			return
		}
		if onTick != nil {
			onTick(remaining)
		}

		if remaining == 0 {
			s.finish(gen)
			if onComplete != nil {
				onComplete()
			}
			return
		}

		timer := time.AfterFunc(interval, func() {
			s.step(gen, remaining-1, interval, onTick, onComplete)
		})
		s.mu.Lock()
		if s.gen == gen {
			s.timer = timer
		} else {
			timer.Stop()
		}
		s.mu.Unlock()
	})
}

// Cancel suppresses all pending ticks and the completion callback.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.gen++
	s.active = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Active reports whether a countdown is still in flight.
func (s *Sequencer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// current reports whether gen is still the live countdown.
func (s *Sequencer) current(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.gen == gen
}

// finish marks the live countdown as completed.
func (s *Sequencer) finish(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.active = false
		s.timer = nil
	}
}
