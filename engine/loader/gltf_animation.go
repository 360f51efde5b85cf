package loader

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// extractClips converts every animation into a clip over the skeleton. Channels targeting nodes
// that are not joints, and weight channels, are skipped.
func (f *gltfFile) extractClips(jointOf map[int]int) ([]*animation.Clip, error) {
	var clips []*animation.Clip
	for animIdx := range f.doc.Animations {
		anim := &f.doc.Animations[animIdx]
		channels := make(map[int]*animation.Channel)

		for i := range anim.Channels {
			ch := &anim.Channels[i]
			if ch.Target.Node == nil {
				continue
			}
			joint, ok := jointOf[*ch.Target.Node]
			if !ok {
				continue
			}
			if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
				return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", anim.Name, i, ch.Sampler)
			}
			sampler := &anim.Samplers[ch.Sampler]

			out, ok := channels[joint]
			if !ok {
				out = &animation.Channel{JointIndex: joint}
				channels[joint] = out
			}
			if err := f.readTrack(out, ch.Target.Path, sampler); err != nil {
				return nil, fmt.Errorf("animation %q channel %d: %w", anim.Name, i, err)
			}
		}

		list := make([]animation.Channel, 0, len(channels))
		for _, ch := range channels {
			list = append(list, *ch)
		}
		sort.Slice(list, func(a, b int) bool { return list[a].JointIndex < list[b].JointIndex })

		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", animIdx)
		}
		clip, err := animation.NewClip(name, list)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (f *gltfFile) readTrack(out *animation.Channel, path string, sampler *gltfAnimSampler) error {
	times, err := readFloats[float32](f, sampler.Input, gltfAccessorTypeScalar)
	if err != nil {
		return fmt.Errorf("failed to read key times: %w", err)
	}
	cubic := sampler.Interpolation == gltfInterpolationCubicSpline

	switch path {
	case gltfAnimPathTranslation, gltfAnimPathScale:
		raw, err := readFloats[[3]float32](f, sampler.Output, gltfAccessorTypeVec3)
		if err != nil {
			return fmt.Errorf("failed to read %s values: %w", path, err)
		}
		values := make([]mgl32.Vec3, len(raw))
		for i, v := range raw {
			values[i] = v
		}
		t, v := keepIncreasing(times, splineValues(values, cubic))
		if path == gltfAnimPathTranslation {
			out.TranslationTimes, out.TranslationValues = t, v
		} else {
			out.ScaleTimes, out.ScaleValues = t, v
		}
	case gltfAnimPathRotation:
		raw, err := readFloats[[4]float32](f, sampler.Output, gltfAccessorTypeVec4)
		if err != nil {
			return fmt.Errorf("failed to read rotation values: %w", err)
		}
		values := make([]mgl32.Quat, len(raw))
		for i, q := range raw {
			values[i] = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}.Normalize()
		}
		out.RotationTimes, out.RotationValues = keepIncreasing(times, splineValues(values, cubic))
	}
	return nil
}

// splineValues keeps the key values of a cubic spline track, which stores in-tangent, value and
// out-tangent per key.
func splineValues[T any](values []T, cubic bool) []T {
	if !cubic {
		return values
	}
	out := make([]T, 0, len(values)/3)
	for i := 1; i < len(values); i += 3 {
		out = append(out, values[i])
	}
	return out
}

// keepIncreasing pairs times with values and drops keys whose time does not advance.
func keepIncreasing[T any](times []float32, values []T) ([]float32, []T) {
	n := min(len(times), len(values))
	outT := make([]float32, 0, n)
	outV := make([]T, 0, n)
	for i := 0; i < n; i++ {
		if len(outT) > 0 && times[i] <= outT[len(outT)-1] {
			continue
		}
		outT = append(outT, times[i])
		outV = append(outV, values[i])
	}
	return outT, outV
}
