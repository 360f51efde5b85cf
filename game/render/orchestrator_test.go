package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	o      *Orchestrator
	rec    *gfx.Recorder
	assets *AssetStore
	cam    camera.Camera
	reg    *ecs.Registry
}

func newFixture(t *testing.T, mutate ...func(*config.GameSettings)) *fixture {
	t.Helper()
	settings := config.Default()
	for _, m := range mutate {
		m(&settings)
	}
	rec := gfx.NewRecorder(1280, 720)
	assets := NewAssetStore(rec)
	texts, err := text.NewCache(rec)
	require.NoError(t, err)

	buildings := world.GenerateBuildings(settings.Buildings, nil)
	require.NotEmpty(t, buildings)
	tree := spatial.Build(world.BuildingBoxes(buildings))

	o, err := NewOrchestrator(assets, &settings, texts, WithCity(buildings, tree))
	require.NoError(t, err)

	cam := camera.NewCamera(
		camera.WithAspect(1280.0/720.0),
		camera.WithPose(mgl32.Vec3{0, 10, 20}, mgl32.Vec3{0, 5, -10}),
	)
	return &fixture{o: o, rec: rec, assets: assets, cam: cam, reg: ecs.NewRegistry()}
}

func (f *fixture) input() FrameInput {
	return FrameInput{Registry: f.reg, Camera: f.cam, World: true, Focus: mgl32.Vec3{0, 0, 10}, Time: 1}
}

func floatsOf(b []byte, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func TestWorldFramePassOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.o.RenderFrame(f.input()))

	assert.Equal(t, []string{PassShadow, PassMain, PassBlit, PassOverlay}, f.rec.PassLabels())
	assert.Equal(t, 1, f.rec.Frames())

	main, ok := f.rec.Pass(PassMain)
	require.True(t, ok)
	desc, ok := f.rec.TargetDesc(main.Target)
	require.True(t, ok)
	assert.Equal(t, 4, desc.Samples)
	assert.NotZero(t, main.ResolveTo)

	overlay, _ := f.rec.Pass(PassOverlay)
	assert.Equal(t, gfx.Screen, overlay.Target)
	assert.True(t, overlay.LoadColor)
	assert.Equal(t, PostNone, f.o.Stats().Effect)
}

func TestBuildingsAreOneInstancedDrawPerPass(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.o.RenderFrame(f.input()))
	stats := f.o.Stats()
	require.Positive(t, stats.CameraInstances)
	require.Positive(t, stats.ShadowInstances)

	var buildingDraws []gfx.Command
	for _, c := range f.rec.DrawsIn(PassMain) {
		if c.ProgramName == variant(ProgBuilding, 4) {
			buildingDraws = append(buildingDraws, c)
		}
	}
	require.Len(t, buildingDraws, 1)
	assert.Len(t, buildingDraws[0].Draw.Instances, stats.CameraInstances)

	var shadowDraws []gfx.Command
	for _, c := range f.rec.DrawsIn(PassShadow) {
		if c.ProgramName == ProgShadowInstanced {
			shadowDraws = append(shadowDraws, c)
		}
	}
	require.Len(t, shadowDraws, 1)
	assert.Len(t, shadowDraws[0].Draw.Instances, stats.ShadowInstances)
}

func TestPostEffectPriority(t *testing.T) {
	tests := []struct {
		name    string
		set     func(*FrameInput)
		effect  PostEffect
		passes  []string
		program string
	}{
		{
			name:    "radial wins",
			set:     func(in *FrameInput) { in.RadialBlur, in.MotionBlur, in.Toon = true, true, true },
			effect:  PostRadialBlur,
			passes:  []string{PassShadow, PassMain, PassPost, PassOverlay},
			program: ProgRadialBlur,
		},
		{
			name:    "motion blur over toon",
			set:     func(in *FrameInput) { in.MotionBlur, in.Toon = true, true },
			effect:  PostMotionBlur,
			passes:  []string{PassShadow, PassMain, PassPost, PassBlit, PassOverlay},
			program: ProgMotionBlur,
		},
		{
			name:    "toon",
			set:     func(in *FrameInput) { in.Toon = true },
			effect:  PostToon,
			passes:  []string{PassShadow, PassMain, PassPost, PassOverlay},
			program: ProgToon,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.input()
			tt.set(&in)
			assert.Equal(t, tt.effect, SelectPost(&in))
			require.NoError(t, f.o.RenderFrame(in))

			assert.Equal(t, tt.effect, f.o.Stats().Effect)
			assert.Equal(t, tt.passes, f.rec.PassLabels())
			draws := f.rec.DrawsIn(PassPost)
			require.Len(t, draws, 1)
			assert.Equal(t, tt.program, draws[0].ProgramName)
		})
	}
}

func TestDepthEffectsRenderSingleSampled(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.Toon = true
	require.NoError(t, f.o.RenderFrame(in))

	main, _ := f.rec.Pass(PassMain)
	assert.Equal(t, f.o.targets.scene, main.Target)
	assert.Zero(t, main.ResolveTo)

	post := f.rec.DrawsIn(PassPost)
	require.Len(t, post, 1)
	assert.Equal(t, []gfx.Texture{f.rec.TargetColor(f.o.targets.scene), f.rec.TargetDepth(f.o.targets.scene)}, post[0].Draw.Textures)
	for _, c := range f.rec.DrawsIn(PassMain) {
		assert.NotContains(t, c.ProgramName, "@")
	}
}

func TestMotionBlurPingPongsHistory(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.MotionBlur = true

	require.NoError(t, f.o.RenderFrame(in))
	first, _ := f.rec.Pass(PassPost)
	draws := f.rec.DrawsIn(PassPost)
	require.Len(t, draws, 1)
	reproject := floatsOf(draws[0].Draw.Uniforms, 16)
	ident := mgl32.Ident4()
	for i := range reproject {
		assert.InDelta(t, ident[i], reproject[i], 1e-3)
	}

	require.NoError(t, f.o.RenderFrame(in))
	second, _ := f.rec.Pass(PassPost)
	assert.NotEqual(t, first.Target, second.Target)
	assert.ElementsMatch(t, f.o.targets.history[:], []gfx.Target{first.Target, second.Target})

	draws = f.rec.DrawsIn(PassPost)
	require.Len(t, draws, 1)
	assert.Equal(t, f.rec.TargetColor(first.Target), draws[0].Draw.Textures[2])
	blit := f.rec.DrawsIn(PassBlit)
	require.Len(t, blit, 1)
	assert.Equal(t, f.rec.TargetColor(second.Target), blit[0].Draw.Textures[0])
}

func TestOverlayOnlyFrame(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.o.RenderFrame(FrameInput{Registry: f.reg, ClearColor: mgl32.Vec4{0, 0, 0, 1}}))

	assert.Equal(t, []string{PassOverlay}, f.rec.PassLabels())
	overlay, _ := f.rec.Pass(PassOverlay)
	assert.False(t, overlay.LoadColor)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, overlay.ClearColor)
}

func TestBrightnessScalesBlit(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.Brightness = 0.4
	require.NoError(t, f.o.RenderFrame(in))

	blit := f.rec.DrawsIn(PassBlit)
	require.Len(t, blit, 1)
	params := floatsOf(blit[0].Draw.Uniforms[64:], 4)
	assert.InDelta(t, 0.4, params[2], 1e-6)
}

func TestOverlayDrawsMinimapTextAndShadowDebug(t *testing.T) {
	f := newFixture(t)
	e := f.reg.Create()
	ecs.Add(f.reg, e, ecs.UIText{Text: "Score", FontSize: 24, Visible: true, Color: white})

	in := f.input()
	in.Minimap = true
	in.ShadowDebug = true
	in.Monsters = []mgl32.Vec3{{5, 0, 5}}
	require.NoError(t, f.o.RenderFrame(in))

	counts := map[string]int{}
	var debug gfx.Command
	for _, c := range f.rec.DrawsIn(PassOverlay) {
		counts[c.ProgramName]++
		if c.ProgramName == ProgDebugDepth {
			debug = c
		}
	}
	assert.Equal(t, 5, counts[ProgUIText], "four cardinal letters and one UI string")
	assert.GreaterOrEqual(t, counts[ProgUIColor], 4)
	assert.Equal(t, 1, counts[ProgDebugDepth])
	assert.Equal(t, []gfx.Texture{f.rec.TargetDepth(f.o.targets.shadow)}, debug.Draw.Textures)
	assert.Equal(t, 1, f.o.Stats().Texts)
}

func TestRenderablesDrawInMainAndShadowPasses(t *testing.T) {
	f := newFixture(t)
	verts, idx := UnitBox()
	mesh, err := f.assets.AddMesh("crate", gfx.LayoutMesh, gfx.PackVertices(verts), idx)
	require.NoError(t, err)
	skinned := mesh
	skinned.Skinned = true

	visible := f.reg.Create()
	ecs.Add(f.reg, visible, ecs.NewTransform(mgl32.Vec3{0, 0, 5}))
	ecs.Add(f.reg, visible, ecs.Renderable{Shader: ecs.ShaderModel, Visible: true})
	ecs.Add(f.reg, visible, ecs.MeshGroup{Meshes: []ecs.Mesh{mesh, skinned}})

	hidden := f.reg.Create()
	ecs.Add(f.reg, hidden, ecs.NewTransform(mgl32.Vec3{3, 0, 5}))
	ecs.Add(f.reg, hidden, ecs.Renderable{Shader: ecs.ShaderModel})
	ecs.Add(f.reg, hidden, ecs.MeshGroup{Meshes: []ecs.Mesh{mesh}})

	require.NoError(t, f.o.RenderFrame(f.input()))

	var models []gfx.Command
	for _, c := range f.rec.DrawsIn(PassMain) {
		if c.ProgramName == variant(ProgModel, 4) {
			models = append(models, c)
		}
	}
	require.Len(t, models, 1, "skinned mesh without a skeleton is skipped")
	assert.Equal(t, f.o.white, models[0].Draw.Textures[0])
	assert.Equal(t, 1, f.o.Stats().Renderables)

	var shadows int
	for _, c := range f.rec.DrawsIn(PassShadow) {
		if c.ProgramName == ProgShadow {
			shadows++
		}
	}
	assert.Equal(t, 1, shadows)
}

func TestSingleSampleSettingsSkipMultisampling(t *testing.T) {
	f := newFixture(t, func(s *config.GameSettings) { s.Graphics.MSAASamples = 1 })
	require.NoError(t, f.o.RenderFrame(f.input()))

	main, _ := f.rec.Pass(PassMain)
	assert.Equal(t, f.o.targets.scene, main.Target)
	assert.Zero(t, main.ResolveTo)
	assert.Zero(t, f.o.targets.msaa)
}

func TestSnowToggle(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.Snow = true
	in.SnowSpeed = 1
	require.NoError(t, f.o.RenderFrame(in))

	var snow, overlay int
	for _, c := range f.rec.DrawsIn(PassMain) {
		switch c.ProgramName {
		case variant(ProgSnow, 4):
			snow++
			assert.Equal(t, config.Default().Snow.ParticleCount, c.Draw.InstanceCount)
		case variant(ProgSnowOverlay, 4):
			overlay++
		}
	}
	assert.Equal(t, 1, snow)
	assert.Equal(t, 1, overlay)

	in.Snow = false
	require.NoError(t, f.o.RenderFrame(in))
	for _, c := range f.rec.DrawsIn(PassMain) {
		assert.NotEqual(t, variant(ProgSnow, 4), c.ProgramName)
	}
}
