package animation

import (
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
)

// Animation is the playback state component of an animated entity.
type Animation struct {
	ClipIndex       int
	Time            float32
	Playing         bool
	SpeedMultiplier float32
	Clips           []*Clip
}

// NewAnimation creates a playing animation on the first clip at normal speed.
func NewAnimation(clips []*Clip) Animation {
	return Animation{Playing: len(clips) > 0, SpeedMultiplier: 1, Clips: clips}
}

// Current returns the active clip, or nil when the index is out of range.
func (a *Animation) Current() *Clip {
	if a.ClipIndex < 0 || a.ClipIndex >= len(a.Clips) {
		return nil
	}
	return a.Clips[a.ClipIndex]
}

// Play switches to the clip with the given name and restarts it. It reports false and leaves the
// state untouched when no clip has that name.
func (a *Animation) Play(name string) bool {
	for i, c := range a.Clips {
		if c.Name == name {
			if i != a.ClipIndex {
				a.Time = 0
			}
			a.ClipIndex = i
			a.Playing = true
			return true
		}
	}
	return false
}

// Advance moves the playhead by dt scaled by the speed multiplier, wrapping at the clip duration.
func (a *Animation) Advance(dt float32) {
	clip := a.Current()
	if clip == nil || !a.Playing {
		return
	}
	a.Time += dt * a.SpeedMultiplier
	if clip.Duration <= 0 {
		a.Time = 0
		return
	}
	a.Time = float32(math.Mod(float64(a.Time), float64(clip.Duration)))
	if a.Time < 0 {
		a.Time += clip.Duration
	}
}

// UpdateAnimations advances every playing Animation and samples it into its Skeleton.
func UpdateAnimations(r *ecs.Registry, dt float32) {
	ecs.Each2(r, func(_ ecs.Entity, a *Animation, s *Skeleton) {
		if !a.Playing {
			return
		}
		clip := a.Current()
		if clip == nil {
			return
		}
		a.Advance(dt)
		Sample(clip, a.Time, s)
	})
}

// UpdateSkeletons recomposes the skinning palette of every Skeleton.
func UpdateSkeletons(r *ecs.Registry) {
	ecs.Each(r, func(_ ecs.Entity, s *Skeleton) {
		s.Update()
	})
}
