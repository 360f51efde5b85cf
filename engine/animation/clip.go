package animation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Channel holds the keyframes animating one joint. Each property has its own strictly increasing
// time track with one value per key.
type Channel struct {
	JointIndex int

	TranslationTimes  []float32
	TranslationValues []mgl32.Vec3

	RotationTimes  []float32
	RotationValues []mgl32.Quat

	ScaleTimes  []float32
	ScaleValues []mgl32.Vec3
}

// Clip is a named set of channels.
type Clip struct {
	Name     string
	Duration float32
	Channels []Channel
}

// NewClip validates channels and derives the clip duration as the latest key time.
//
// Parameters:
//   - name: the clip name
//   - channels: the channels
//
// Returns:
//   - *Clip: the clip
//   - error: an error if a track is not strictly increasing or its value count differs from its key count
func NewClip(name string, channels []Channel) (*Clip, error) {
	c := &Clip{Name: name, Channels: channels}
	for i := range channels {
		ch := &channels[i]
		tracks := []struct {
			prop   string
			times  []float32
			values int
		}{
			{"translation", ch.TranslationTimes, len(ch.TranslationValues)},
			{"rotation", ch.RotationTimes, len(ch.RotationValues)},
			{"scale", ch.ScaleTimes, len(ch.ScaleValues)},
		}
		for _, tr := range tracks {
			if len(tr.times) != tr.values {
				return nil, fmt.Errorf("clip %q channel %d %s: %d keys but %d values", name, i, tr.prop, len(tr.times), tr.values)
			}
			for k := 1; k < len(tr.times); k++ {
				if tr.times[k] <= tr.times[k-1] {
					return nil, fmt.Errorf("clip %q channel %d %s: key times not strictly increasing at %d", name, i, tr.prop, k)
				}
			}
			if n := len(tr.times); n > 0 {
				c.Duration = max(c.Duration, tr.times[n-1])
			}
		}
	}
	return c, nil
}

// keyframe locates the interpolation interval for t. Before the first key and past the last key
// it pins to that key with a zero factor.
func keyframe(times []float32, t float32) (int, int, float32) {
	n := len(times)
	if t <= times[0] {
		return 0, 0, 0
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 0
	}
	i1 := 1
	for i1 < n-1 && times[i1] < t {
		i1++
	}
	i0 := i1 - 1
	span := times[i1] - times[i0]
	if span <= 0 {
		return i0, i1, 0
	}
	return i0, i1, (t - times[i0]) / span
}

func sampleVec3(times []float32, values []mgl32.Vec3, t float32, def mgl32.Vec3) mgl32.Vec3 {
	if len(times) == 0 || len(values) == 0 {
		return def
	}
	i0, i1, f := keyframe(times, t)
	return common.LerpVec3(values[i0], values[i1], f)
}

func sampleQuat(times []float32, values []mgl32.Quat, t float32) mgl32.Quat {
	if len(times) == 0 || len(values) == 0 {
		return mgl32.QuatIdent()
	}
	i0, i1, f := keyframe(times, t)
	if i0 == i1 {
		return values[i0]
	}
	return common.Slerp(values[i0], values[i1], f)
}

// Sample writes the pose of clip at time t into the Local transforms of skel. Channels targeting
// joints the skeleton does not have are skipped.
func Sample(clip *Clip, t float32, skel *Skeleton) {
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		if ch.JointIndex < 0 || ch.JointIndex >= len(skel.Joints) {
			continue
		}
		tr := sampleVec3(ch.TranslationTimes, ch.TranslationValues, t, mgl32.Vec3{})
		rot := sampleQuat(ch.RotationTimes, ch.RotationValues, t)
		scale := sampleVec3(ch.ScaleTimes, ch.ScaleValues, t, mgl32.Vec3{1, 1, 1})
		skel.Joints[ch.JointIndex].Local = common.TRS(tr, rot, scale)
	}
}
