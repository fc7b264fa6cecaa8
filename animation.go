package gpubridge

import (
	"fmt"
	"math"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/translate"
)

// Animation is the state of a timed animation.
type Animation struct {
	ID ID `json:"id"`
	gpucore.AnimationDescriptor
	IsRunning   bool    `json:"isRunning"`
	CurrentTime float64 `json:"currentTime"`
}

type animationEntry struct {
	desc    gpucore.AnimationDescriptor
	curve   translate.Curve
	running bool
	time    float64
}

func (a *animationEntry) snapshot(h handle.Handle) Animation {
	return Animation{ID: idOf(h), AnimationDescriptor: a.desc, IsRunning: a.running, CurrentTime: a.time}
}

// period is one forward pass, plus the reverse pass when autoreversing.
func (a *animationEntry) period() float64 {
	if a.desc.Autoreverses {
		return 2 * a.desc.Duration
	}
	return a.desc.Duration
}

// total is the time at which the last repeat ends.
func (a *animationEntry) total() float64 {
	return a.period() * a.desc.RepeatCount
}

// progress returns the eased position in [0,1] at the current time.
func (a *animationEntry) progress() float64 {
	t := math.Min(a.time, a.total())
	p := a.period()
	local := math.Mod(t, p)
	if local == 0 && t > 0 {
		// Exactly at a cycle boundary: report the end of the cycle.
		local = p
	}
	x := local / a.desc.Duration
	if x > 1 {
		x = 2 - x
	}
	return a.curve.Ease(x)
}

// CreateAnimation validates d and creates a stopped animation at time 0.
func (r *Registry) CreateAnimation(d gpucore.AnimationDescriptor) (Animation, error) {
	if err := r.lock(); err != nil {
		return Animation{}, err
	}
	defer r.mu.Unlock()
	d, err := translate.ApplyAnimationDefaults(d)
	if err != nil {
		return Animation{}, invalid(err)
	}
	curve, ok := translate.TimingCurve(d.TimingFunction)
	if !ok {
		r.fallback("timingFunction", d.TimingFunction, translate.DefaultTimingFunction)
		d.TimingFunction = translate.DefaultTimingFunction
	}
	h := r.ids.Acquire()
	a := &animationEntry{desc: d, curve: curve}
	r.animations[h] = a
	r.log.Debug("gpubridge: animation created", "id", idOf(h), "duration", d.Duration, "repeat", d.RepeatCount)
	return a.snapshot(h), nil
}

func (r *Registry) withAnimation(id ID, fn func(a *animationEntry) error) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	a, _, err := lookup(r, r.animations, id, ErrAnimationNotFound)
	if err != nil {
		return err
	}
	return fn(a)
}

// StartAnimation runs the animation from its current time. A finished
// animation restarts from 0.
func (r *Registry) StartAnimation(id ID) error {
	return r.withAnimation(id, func(a *animationEntry) error {
		if a.time >= a.total() {
			a.time = 0
		}
		a.running = true
		return nil
	})
}

// PauseAnimation stops the clock and keeps the current time.
func (r *Registry) PauseAnimation(id ID) error {
	return r.withAnimation(id, func(a *animationEntry) error {
		a.running = false
		return nil
	})
}

// StopAnimation stops the clock and rewinds to 0.
func (r *Registry) StopAnimation(id ID) error {
	return r.withAnimation(id, func(a *animationEntry) error {
		a.running = false
		a.time = 0
		return nil
	})
}

// SetAnimationTime seeks to t seconds, clamped to the end of the last
// repeat. t must be >= 0.
func (r *Registry) SetAnimationTime(id ID, t float64) error {
	return r.withAnimation(id, func(a *animationEntry) error {
		if !(t >= 0) || math.IsInf(t, 1) {
			return fmt.Errorf("%w: animation time %v", ErrInvalidDescriptor, t)
		}
		a.time = math.Min(t, a.total())
		return nil
	})
}

// AnimationProgress returns the eased progress in [0,1].
func (r *Registry) AnimationProgress(id ID) (float64, error) {
	if err := r.rlock(); err != nil {
		return 0, err
	}
	defer r.mu.RUnlock()
	a, _, err := lookup(r, r.animations, id, ErrAnimationNotFound)
	if err != nil {
		return 0, err
	}
	return a.progress(), nil
}

// AdvanceAnimations moves every running animation forward by dt seconds.
// Animations reaching their end stop and emit EventAnimationComplete.
func (r *Registry) AdvanceAnimations(dt float64) {
	if !(dt > 0) {
		return
	}
	if r.lock() != nil {
		return
	}
	var done []Event
	for h, a := range r.animations {
		if !a.running {
			continue
		}
		a.time += dt
		if end := a.total(); a.time >= end {
			a.time = end
			a.running = false
			done = append(done, Event{Type: EventAnimationComplete, ID: idOf(h)})
		}
	}
	r.mu.Unlock()
	r.emit(done)
}

// Tick advances animations by the wall time elapsed since the previous
// Tick or since New.
func (r *Registry) Tick() {
	r.mu.Lock()
	now := r.clock()
	dt := now.Sub(r.lastTick).Seconds()
	r.lastTick = now
	r.mu.Unlock()
	r.AdvanceAnimations(dt)
}

// GetAnimation returns the state of an animation.
func (r *Registry) GetAnimation(id ID) (Animation, error) {
	if err := r.rlock(); err != nil {
		return Animation{}, err
	}
	defer r.mu.RUnlock()
	a, h, err := lookup(r, r.animations, id, ErrAnimationNotFound)
	if err != nil {
		return Animation{}, err
	}
	return a.snapshot(h), nil
}

// ReleaseAnimation removes an animation. Unknown and released ids are
// ignored.
func (r *Registry) ReleaseAnimation(id ID) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	if _, h, ok := peek(r, r.animations, id); ok {
		delete(r.animations, h)
		r.ids.Release(h)
	}
}
