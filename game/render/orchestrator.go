package render

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/light"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Pass labels, in frame order.
const (
	PassShadow  = "shadow"
	PassMain    = "main"
	PassPost    = "post"
	PassBlit    = "blit"
	PassOverlay = "overlay"
)

// PostEffect is the full-screen effect applied after the main pass. At most one runs per frame.
type PostEffect int

const (
	PostNone PostEffect = iota
	PostToon
	PostMotionBlur
	PostRadialBlur
)

func (p PostEffect) String() string {
	switch p {
	case PostToon:
		return "toon"
	case PostMotionBlur:
		return "motion_blur"
	case PostRadialBlur:
		return "radial_blur"
	default:
		return "none"
	}
}

// Post effect constants.
const (
	blurSamples       = 12
	toonLevels        = 4
	debugQuadSize     = 256
	debugQuadMargin   = 16
	debugDepthPower   = 1
	cometHeight       = 120
	cometSpread       = 150
	snowHeight        = 20
	overlayDensity    = 0.35
	overlayFlakeSize  = 0.06
	letterFontSize    = 14
	defaultBrightness = 1
)

// FrameInput is everything a scene hands the orchestrator for one frame.
type FrameInput struct {
	Registry *ecs.Registry
	Camera   camera.Camera

	// World draws the shadow, main and post passes. Without it only the overlay pass runs, cleared
	// to ClearColor.
	World      bool
	ClearColor mgl32.Vec4

	// Focus centers the shadow map and the snow volume, normally the player position.
	Focus     mgl32.Vec3
	PlayerYaw float32
	Time      float32

	Fog       bool
	Snow      bool
	SnowSpeed float32
	// SnowAngle is the wind slant in degrees.
	SnowAngle float32
	SnowBlur  float32

	Toon       bool
	MotionBlur bool
	RadialBlur bool
	// RadialCenter is the blur center in uv; zero means the screen center.
	RadialCenter mgl32.Vec2
	// Brightness scales the final blit when no post effect runs; zero means 1.
	Brightness float32

	Minimap     bool
	Monsters    []mgl32.Vec3
	ShadowDebug bool
	// Dim darkens everything drawn before the UI text by this alpha.
	Dim float32
	// HideUI skips the UIText layer.
	HideUI bool
}

// SelectPost picks the frame's post effect: radial blur over motion blur over toon.
func SelectPost(in *FrameInput) PostEffect {
	switch {
	case in.RadialBlur:
		return PostRadialBlur
	case in.MotionBlur:
		return PostMotionBlur
	case in.Toon:
		return PostToon
	default:
		return PostNone
	}
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Effect          PostEffect
	CameraInstances int
	ShadowInstances int
	Renderables     int
	Texts           int
}

type targets struct {
	shadow  gfx.Target
	msaa    gfx.Target
	resolve gfx.Target
	scene   gfx.Target
	history [2]gfx.Target
}

type frameMeshes struct {
	box       gfx.Mesh
	billboard gfx.Mesh
	quad      gfx.Mesh
}

// Orchestrator runs the per-frame pass sequence: shadow, main, post, blit and overlay.
type Orchestrator struct {
	device   gfx.Device
	assets   *AssetStore
	logger   *zap.Logger
	settings *config.GameSettings

	samples int
	targets targets
	meshes  frameMeshes
	white   gfx.Texture

	light     light.Light
	shadowCam light.ShadowCamera

	instanced *InstancedRenderer
	system    *System
	text      *TextLayer
	minimap   Minimap

	tree      *spatial.Octree
	buildings []world.BuildingData

	scene   GPUSceneUniform
	prevVP  mgl32.Mat4
	hasPrev bool
	flip    bool
	stats   FrameStats
}

// NewOrchestrator compiles the programs, uploads the shared meshes and creates the render targets.
//
// Parameters:
//   - assets: the asset store owning every GPU resource
//   - settings: the game settings
//   - texts: the text cache used by the UI and minimap letters; nil disables text
//   - options: functional options for the orchestrator
//
// Returns:
//   - *Orchestrator: the orchestrator
//   - error: an error if a program, mesh, texture or target cannot be created
func NewOrchestrator(assets *AssetStore, settings *config.GameSettings, texts *text.Cache, options ...OrchestratorBuilderOption) (*Orchestrator, error) {
	o := &Orchestrator{
		device:   assets.Device(),
		assets:   assets,
		logger:   assets.logger,
		settings: settings,
		samples:  max(settings.Graphics.MSAASamples, 1),
	}
	for _, option := range options {
		option(o)
	}

	if err := LoadPrograms(assets, 1, o.samples); err != nil {
		return nil, err
	}
	if err := o.createMeshes(); err != nil {
		return nil, err
	}
	if err := o.createTargets(); err != nil {
		return nil, err
	}

	ls := settings.Light
	o.light = light.NewLight(
		light.WithDirection(ls.Direction),
		light.WithColor(ls.Color),
		light.WithIntensity(ls.Intensity),
		light.WithAmbient(ls.Ambient),
		light.WithCastsShadows(true),
	)
	o.shadowCam = light.ShadowCamera{
		Distance:   ls.ShadowDistance,
		OrthoSize:  ls.ShadowOrthoSize,
		Near:       ls.ShadowNear,
		Far:        ls.ShadowFar,
		Resolution: ls.ShadowMapSize,
	}

	bs := settings.Buildings
	facade := assets.TextureOr("building", bs.Texture, [4]uint8{150, 150, 160, 255})
	o.instanced = NewInstancedRenderer(o.device, o.meshes.box, facade)
	o.instanced.Color = bs.Color.Vec4(1)
	o.system = NewSystem(o.device, o.white)
	o.system.TerrainTiling = settings.Ground.Tiling
	o.text = NewTextLayer(o.device, texts, assets.Program(ProgUIText), o.meshes.quad)
	o.minimap = Minimap{Radius: settings.UI.MinimapRadius, WorldRadius: settings.UI.MinimapWorldRadius}

	o.logger.Info("render pipeline ready",
		zap.Int("msaa", o.samples),
		zap.Int("shadowMap", o.shadowCam.Resolution),
		zap.Int("buildings", len(o.buildings)),
	)
	return o, nil
}

func (o *Orchestrator) createMeshes() error {
	boxVerts, boxIdx := UnitBox()
	box, err := o.assets.AddMesh("unit_box", gfx.LayoutMesh, gfx.PackVertices(boxVerts), boxIdx)
	if err != nil {
		return err
	}
	boardVerts, boardIdx := Billboard()
	board, err := o.assets.AddMesh("billboard", gfx.LayoutMesh, gfx.PackVertices(boardVerts), boardIdx)
	if err != nil {
		return err
	}
	quadVerts, quadIdx := ScreenQuad()
	quad, err := o.assets.AddMesh("screen_quad", gfx.LayoutScreen, gfx.PackVertices(quadVerts), quadIdx)
	if err != nil {
		return err
	}
	o.meshes = frameMeshes{box: box.Handle, billboard: board.Handle, quad: quad.Handle}
	o.white, err = o.assets.AddTexture("white", common.SolidImage(1, 1, [4]uint8{255, 255, 255, 255}))
	return err
}

func (o *Orchestrator) createTargets() error {
	size := max(o.settings.Light.ShadowMapSize, 1)
	descs := []struct {
		dst  *gfx.Target
		desc gfx.TargetDesc
	}{
		{&o.targets.shadow, gfx.TargetDesc{Name: "shadow", Width: size, Height: size, Depth: true}},
		{&o.targets.resolve, gfx.TargetDesc{Name: "resolve", Color: true}},
		{&o.targets.scene, gfx.TargetDesc{Name: "scene", Color: true, Depth: true}},
		{&o.targets.history[0], gfx.TargetDesc{Name: "history_a", Color: true}},
		{&o.targets.history[1], gfx.TargetDesc{Name: "history_b", Color: true}},
	}
	if o.samples > 1 {
		descs = append(descs, struct {
			dst  *gfx.Target
			desc gfx.TargetDesc
		}{&o.targets.msaa, gfx.TargetDesc{Name: "main_msaa", Samples: o.samples, Color: true, Depth: true}})
	}
	for _, d := range descs {
		t, err := o.device.CreateTarget(d.desc)
		if err != nil {
			return fmt.Errorf("render target %q: %w", d.desc.Name, err)
		}
		*d.dst = t
		o.logger.Debug("render target created", zap.String("target", d.desc.Name), zap.Int("samples", max(d.desc.Samples, 1)))
	}
	return nil
}

// SetCity hands the orchestrator the generated buildings and their octree.
func (o *Orchestrator) SetCity(buildings []world.BuildingData, tree *spatial.Octree) {
	o.buildings = buildings
	o.tree = tree
}

// Light returns the sun.
func (o *Orchestrator) Light() light.Light {
	return o.light
}

// Stats returns what the last frame drew.
func (o *Orchestrator) Stats() FrameStats {
	return o.stats
}

// Size returns the surface size in pixels.
func (o *Orchestrator) Size() (int, int) {
	return o.device.Size()
}

// Resize reconfigures the surface and the surface-sized targets. The motion blur history is
// discarded.
func (o *Orchestrator) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	o.device.Resize(width, height)
	o.hasPrev = false
	o.logger.Debug("render targets resized", zap.Int("width", width), zap.Int("height", height))
}

// RenderFrame records and presents one frame.
//
// Returns:
//   - error: an error if the frame or a pass cannot be started
func (o *Orchestrator) RenderFrame(in FrameInput) error {
	if err := o.device.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	defer o.device.EndFrame()

	o.stats = FrameStats{}
	drawWorld := in.World && in.Camera != nil && in.Registry != nil
	if drawWorld {
		if err := o.renderWorld(&in); err != nil {
			return err
		}
	} else {
		o.hasPrev = false
	}
	return o.renderOverlay(&in, drawWorld)
}

func (o *Orchestrator) renderWorld(in *FrameInput) error {
	cam := in.Camera
	lightDir := o.light.Direction()
	lightVP := o.shadowCam.LightSpace(lightDir, in.Focus)
	o.instanced.Cull(o.tree, o.buildings, cam.Frustum(), cam.Position(), o.settings.Light.ShadowDistance)
	o.stats.CameraInstances = o.instanced.CameraCount()
	o.stats.ShadowInstances = o.instanced.ShadowCount()

	if err := o.device.BeginPass(gfx.PassDesc{Label: PassShadow, Target: o.targets.shadow}); err != nil {
		return fmt.Errorf("shadow pass: %w", err)
	}
	o.instanced.RenderShadow(o.assets.Program(ProgShadowInstanced), lightVP)
	o.system.RenderShadow(in.Registry, o.assets.Program(ProgShadow), o.assets.Program(ProgShadowSkinned), lightVP)
	o.device.EndPass()

	effect := SelectPost(in)
	o.stats.Effect = effect
	needsDepth := effect == PostToon || effect == PostMotionBlur
	pass := gfx.PassDesc{Label: PassMain, Target: o.targets.scene}
	source := o.targets.scene
	samples := 1
	if !needsDepth && o.samples > 1 {
		pass.Target = o.targets.msaa
		pass.ResolveTo = o.targets.resolve
		source = o.targets.resolve
		samples = o.samples
	}
	fog := o.settings.Fog
	clear := o.settings.Graphics.ClearColor
	density := float32(0)
	if in.Fog {
		clear = fog.Color
		density = fog.Density
	}
	pass.ClearColor = clear.Vec4(1)

	if err := o.device.BeginPass(pass); err != nil {
		return fmt.Errorf("main pass: %w", err)
	}
	shadowMap := o.device.TargetDepth(o.targets.shadow)
	o.scene = GPUSceneUniform{
		Camera: cam.Uniform(),
		Light:  light.ToGPULight(o.light, o.shadowCam, lightVP, fog.Color, density),
		Params: mgl32.Vec4{1, 0, in.Time, 0},
	}
	progs := scenePrograms{
		model:   o.assets.Program(variant(ProgModel, samples)),
		terrain: o.assets.Program(variant(ProgTerrain, samples)),
		skinned: o.assets.Program(variant(ProgSkinned, samples)),
	}
	o.system.Render(in.Registry, progs, &o.scene, shadowMap)
	o.stats.Renderables = o.system.Drawn()
	o.instanced.Render(o.assets.Program(variant(ProgBuilding, samples)), &o.scene, shadowMap)
	o.drawSky(in, samples)
	o.drawSnow(in, samples)
	o.device.EndPass()

	return o.renderPost(in, effect, source)
}

func (o *Orchestrator) drawSky(in *FrameInput, samples int) {
	cam := in.Camera
	view := cam.ViewMatrix()
	right := mgl32.Vec4{view[0], view[4], view[8], 0}
	up := mgl32.Vec4{view[1], view[5], view[9], 0}
	vp := cam.ViewProjectionMatrix()
	ls := o.settings.Light

	center := cam.Position().Add(o.light.Direction().Mul(ls.SunDistance))
	sun := GPUSunUniform{
		ViewProj:    vp,
		CameraRight: right,
		CameraUp:    up,
		Center:      center.Vec4(ls.SunSize),
		Color:       ls.SunColor.Vec4(1),
	}
	o.device.Draw(gfx.DrawCall{Program: o.assets.Program(variant(ProgSun, samples)), Mesh: o.meshes.billboard, Uniforms: bytesOf(&sun)})

	if ls.CometCount <= 0 {
		return
	}
	comet := GPUCometUniform{
		ViewProj:      vp,
		CameraRight:   right,
		CameraUp:      up,
		Origin:        in.Focus.Add(mgl32.Vec3{0, cometHeight, 0}).Vec4(cometSpread),
		Time:          in.Time,
		FallSpeed:     ls.CometFallSpeed * ls.CometFallDist,
		CycleTime:     ls.CometCycleTime,
		FallDistance:  ls.CometFallDist,
		FallDirection: ls.CometDirection,
		Scale:         ls.CometScale,
		NumComets:     float32(ls.CometCount),
	}
	o.device.Draw(gfx.DrawCall{
		Program:       o.assets.Program(variant(ProgComet, samples)),
		Mesh:          o.meshes.billboard,
		Uniforms:      bytesOf(&comet),
		InstanceCount: ls.CometCount,
	})
}

func (o *Orchestrator) drawSnow(in *FrameInput, samples int) {
	ss := o.settings.Snow
	if !in.Snow {
		return
	}
	cam := in.Camera
	angle := common.Radians(in.SnowAngle)
	if ss.ParticleCount > 0 {
		view := cam.ViewMatrix()
		snow := GPUSnowUniform{
			ViewProj:    cam.ViewProjectionMatrix(),
			CameraRight: mgl32.Vec4{view[0], view[4], view[8], 0},
			CameraUp:    mgl32.Vec4{view[1], view[5], view[9], 0},
			Center:      in.Focus.Vec4(ss.Radius),
			Params:      mgl32.Vec4{in.Time, in.SnowSpeed, angle, ss.FlakeSize},
			Extra:       mgl32.Vec4{float32(ss.ParticleCount), snowHeight, 0, 0},
		}
		o.device.Draw(gfx.DrawCall{
			Program:       o.assets.Program(variant(ProgSnow, samples)),
			Mesh:          o.meshes.billboard,
			Uniforms:      bytesOf(&snow),
			InstanceCount: ss.ParticleCount,
		})
	}
	if ss.Overlay {
		w, h := o.device.Size()
		overlay := GPUOverlayUniform{
			Params: mgl32.Vec4{in.Time, in.SnowSpeed, angle, in.SnowBlur},
			Extra:  mgl32.Vec4{overlayDensity * ss.OverlayRate, float32(w) / float32(max(h, 1)), overlayFlakeSize, 0},
		}
		o.device.Draw(gfx.DrawCall{Program: o.assets.Program(variant(ProgSnowOverlay, samples)), Mesh: o.meshes.quad, Uniforms: bytesOf(&overlay)})
	}
}

func (o *Orchestrator) renderPost(in *FrameInput, effect PostEffect, source gfx.Target) error {
	w, h := o.device.Size()
	cam := in.Camera
	color := o.device.TargetColor(source)
	depth := o.device.TargetDepth(o.targets.scene)
	post := GPUPostUniform{
		Reproject: mgl32.Ident4(),
		Params:    mgl32.Vec4{1 / float32(max(w, 1)), 1 / float32(max(h, 1)), 0, blurSamples},
		Extra:     mgl32.Vec4{cam.Near(), cam.Far(), 0.5, 0.5},
	}
	curVP := cam.ViewProjectionMatrix()
	defer func() {
		o.prevVP = curVP
		o.hasPrev = effect == PostMotionBlur
	}()

	switch effect {
	case PostRadialBlur:
		post.Params[2] = o.settings.Graphics.RadialBlurStrength
		if in.RadialCenter != (mgl32.Vec2{}) {
			post.Extra[2], post.Extra[3] = in.RadialCenter[0], in.RadialCenter[1]
		}
		return o.fullscreen(PassPost, gfx.Screen, ProgRadialBlur, &post, color)

	case PostToon:
		post.Params[2] = 1 / max(o.settings.Graphics.ToonEdgeThreshold, 0.001)
		post.Params[3] = toonLevels
		return o.fullscreen(PassPost, gfx.Screen, ProgToon, &post, color, depth)

	case PostMotionBlur:
		prev := curVP
		if o.hasPrev {
			prev = o.prevVP
		}
		post.Reproject = prev.Mul4(curVP.Inv())
		post.Params[2] = o.settings.Graphics.MotionBlurStrength
		dst, history := o.targets.history[0], o.targets.history[1]
		if o.flip {
			dst, history = history, dst
		}
		o.flip = !o.flip
		if err := o.fullscreen(PassPost, dst, ProgMotionBlur, &post, color, depth, o.device.TargetColor(history)); err != nil {
			return err
		}
		return o.blit(o.device.TargetColor(dst), defaultBrightness)

	default:
		brightness := in.Brightness
		if brightness == 0 {
			brightness = defaultBrightness
		}
		return o.blit(color, brightness)
	}
}

func (o *Orchestrator) blit(source gfx.Texture, brightness float32) error {
	post := GPUPostUniform{Reproject: mgl32.Ident4(), Params: mgl32.Vec4{0, 0, brightness, 0}}
	return o.fullscreen(PassBlit, gfx.Screen, ProgBlit, &post, source)
}

func (o *Orchestrator) fullscreen(label string, target gfx.Target, program string, u *GPUPostUniform, textures ...gfx.Texture) error {
	if err := o.device.BeginPass(gfx.PassDesc{Label: label, Target: target}); err != nil {
		return fmt.Errorf("%s pass: %w", label, err)
	}
	o.device.Draw(gfx.DrawCall{
		Program:  o.assets.Program(program),
		Mesh:     o.meshes.quad,
		Uniforms: bytesOf(u),
		Textures: textures,
	})
	o.device.EndPass()
	return nil
}

func (o *Orchestrator) renderOverlay(in *FrameInput, drawWorld bool) error {
	pass := gfx.PassDesc{Label: PassOverlay, Target: gfx.Screen, LoadColor: drawWorld, ClearColor: in.ClearColor}
	if err := o.device.BeginPass(pass); err != nil {
		return fmt.Errorf("overlay pass: %w", err)
	}
	defer o.device.EndPass()
	w, h := o.device.Size()

	if drawWorld && in.Minimap && o.settings.UI.Minimap {
		shapes, labels := o.minimap.Build(in.Focus, in.PlayerYaw, o.buildings, in.Monsters, w, h)
		o.drawShapes(shapes)
		for _, l := range labels {
			o.text.DrawString(l.Text, text.FontBold, letterFontSize, l.Position, minimapLetter, w, h)
		}
	}
	if drawWorld && in.ShadowDebug {
		u := GPUQuadUniform{
			Transform: rectTransform(debugQuadMargin, float32(h)-debugQuadMargin-debugQuadSize, debugQuadSize, debugQuadSize, w, h),
			Color:     white,
			Params:    mgl32.Vec4{0, 0, debugDepthPower, 0},
		}
		o.device.Draw(gfx.DrawCall{
			Program:  o.assets.Program(ProgDebugDepth),
			Mesh:     o.meshes.quad,
			Uniforms: bytesOf(&u),
			Textures: []gfx.Texture{o.device.TargetDepth(o.targets.shadow)},
		})
	}
	if in.Dim > 0 {
		o.drawShapes([]Shape{{Transform: mgl32.Ident4(), Color: mgl32.Vec4{0, 0, 0, in.Dim}, Kind: ShapeRect}})
	}
	if !in.HideUI {
		o.stats.Texts = o.text.Render(in.Registry, w, h)
	}
	return nil
}

func (o *Orchestrator) drawShapes(shapes []Shape) {
	program := o.assets.Program(ProgUIColor)
	for i := range shapes {
		s := &shapes[i]
		u := GPUQuadUniform{Transform: s.Transform, Color: s.Color, Params: mgl32.Vec4{s.Kind, s.Inner, 0, 0}}
		o.device.Draw(gfx.DrawCall{Program: program, Mesh: o.meshes.quad, Uniforms: bytesOf(&u)})
	}
}
