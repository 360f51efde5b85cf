package scenes

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/loader"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/monster"
	"github.com/Carmen-Shannon/oxy-snowfall/game/render"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// spawnClearance keeps generated buildings away from the player start.
const spawnClearance float32 = 3

// Level is the populated city: the registry with the ground, landmark, player, camera and
// monsters, the generated buildings and their octree, and the render camera.
type Level struct {
	Registry  *ecs.Registry
	Camera    camera.Camera
	Tree      *spatial.Octree
	Buildings []world.BuildingData
	Monsters  *monster.Manager

	Ground       ecs.Entity
	Landmark     ecs.Entity
	Player       ecs.Entity
	CameraEntity ecs.Entity

	settings     *config.GameSettings
	logger       *zap.Logger
	landmarkHigh ecs.MeshGroup
	landmarkLow  ecs.MeshGroup
	highDetail   bool
	scratch      []int
	monsterPos   []mgl32.Vec3
}

// BuildLevel generates the city and spawns every entity the scenes drive.
//
// Parameters:
//   - s: the game settings
//   - assets: uploads meshes and textures
//   - models: the actor geometry
//   - logger: structured logger
//
// Returns:
//   - *Level: the level with the player at its start pose
//   - error: an error if an upload fails
func BuildLevel(s *config.GameSettings, assets *render.AssetStore, models Models, logger *zap.Logger) (*Level, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Level{
		Registry:   ecs.NewRegistry(),
		settings:   s,
		logger:     logger,
		highDetail: true,
		Monsters:   monster.NewManager(monster.WithLogger(logger), monster.WithBlockSize(s.Buildings.BlockSize)),
	}

	keepOut := []common.AABB{common.AABBFromCenter(s.Player.Start, mgl32.Vec3{spawnClearance, spawnClearance, spawnClearance})}
	if s.FingBuilding.Enabled {
		keepOut = append(keepOut, landmarkBox(s.FingBuilding))
	}
	l.Buildings = world.GenerateBuildings(s.Buildings, keepOut)
	l.Tree = spatial.Build(world.BuildingBoxes(l.Buildings))

	if err := l.spawnGround(assets); err != nil {
		return nil, err
	}
	if s.FingBuilding.Enabled {
		if err := l.spawnLandmark(assets, models); err != nil {
			return nil, err
		}
	}
	if err := l.spawnPlayer(assets, models.Player); err != nil {
		return nil, err
	}
	if err := l.spawnMonsters(assets, models.Monster); err != nil {
		return nil, err
	}

	w, h := assets.Device().Size()
	cs := s.Camera
	l.Camera = camera.NewCamera(
		camera.WithFov(common.Radians(cs.FOV)),
		camera.WithNear(cs.Near),
		camera.WithFar(cs.Far),
		camera.WithAspect(aspect(w, h)),
		camera.WithPose(cs.MenuPosition, cs.MenuTarget),
	)
	l.CameraEntity = l.Registry.Create()
	ecs.Add(l.Registry, l.CameraEntity, ecs.NewTransform(cs.MenuPosition))
	ecs.Add(l.Registry, l.CameraEntity, ecs.CameraComponent{FOV: cs.FOV, Near: cs.Near, Far: cs.Far, Active: true, LookAt: cs.MenuTarget})
	ecs.Add(l.Registry, l.CameraEntity, ecs.FollowTarget{
		Target:         l.Player,
		Distance:       cs.Distance,
		Height:         cs.Height,
		ShoulderOffset: cs.ShoulderOffset,
		LookAhead:      cs.LookAhead,
		Sensitivity:    cs.Sensitivity,
	})
	l.Reset()

	logger.Info("level built",
		zap.Int("buildings", len(l.Buildings)),
		zap.Int("monsters", len(l.Monsters.Monsters())),
		zap.Int("entities", l.Registry.Len()),
	)
	return l, nil
}

func aspect(w, h int) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}

func landmarkBox(f config.FingBuildingSettings) common.AABB {
	return common.AABBFromCenter(f.Position.Add(mgl32.Vec3{0, f.HalfExtents[1], 0}), f.HalfExtents)
}

func (l *Level) spawnGround(assets *render.AssetStore) error {
	gs := l.settings.Ground
	verts, indices := render.Plane(gs.Size)
	mesh, err := assets.AddMesh("ground", gfx.LayoutMesh, gfx.PackVertices(verts), indices)
	if err != nil {
		return fmt.Errorf("ground: %w", err)
	}
	mesh.Texture = assets.TextureOr("ground", gs.Texture, [4]uint8{235, 240, 248, 255})
	mesh.Color = gs.Color.Vec4(1)

	l.Ground = l.Registry.Create()
	ecs.Add(l.Registry, l.Ground, ecs.NewTransform(mgl32.Vec3{0, gs.Height, 0}))
	ecs.Add(l.Registry, l.Ground, ecs.Renderable{Shader: ecs.ShaderTerrain, Visible: true})
	ecs.Add(l.Registry, l.Ground, ecs.MeshGroup{Meshes: []ecs.Mesh{mesh}})
	ecs.Add(l.Registry, l.Ground, ecs.GroundPlane{Height: gs.Height})
	return nil
}

func (l *Level) spawnLandmark(assets *render.AssetStore, models Models) error {
	fs := l.settings.FingBuilding
	high, err := assets.UploadModel(models.LandmarkHigh)
	if err != nil {
		return fmt.Errorf("landmark: %w", err)
	}
	low, err := assets.UploadModel(models.LandmarkLow)
	if err != nil {
		return fmt.Errorf("landmark: %w", err)
	}
	l.landmarkHigh, l.landmarkLow = high, low

	tr := ecs.NewTransform(fs.Position)
	tr.Rotation = common.YawQuat(common.Radians(fs.Yaw))
	if fs.Scale > 0 {
		tr.Scale = mgl32.Vec3{fs.Scale, fs.Scale, fs.Scale}
	}
	l.Landmark = l.Registry.Create()
	ecs.Add(l.Registry, l.Landmark, tr)
	ecs.Add(l.Registry, l.Landmark, ecs.Renderable{Shader: ecs.ShaderModel, Visible: true})
	ecs.Add(l.Registry, l.Landmark, high)
	ecs.Add(l.Registry, l.Landmark, ecs.BoxCollider{HalfExtents: fs.HalfExtents, Offset: mgl32.Vec3{0, fs.HalfExtents[1], 0}})
	return nil
}

// addModel attaches the render components of a model to e, with its own skeleton instance when
// the model is skinned.
func addModel(r *ecs.Registry, e ecs.Entity, m *loader.Model, group ecs.MeshGroup, clip string) {
	shader := ecs.ShaderModel
	if m.Skinned() {
		shader = ecs.ShaderSkinned
		skel, anim := m.Instantiate()
		anim.Play(clip)
		ecs.Add(r, e, *skel)
		ecs.Add(r, e, anim)
	}
	ecs.Add(r, e, ecs.Renderable{Shader: shader, Visible: true})
	ecs.Add(r, e, group)
}

func (l *Level) spawnPlayer(assets *render.AssetStore, m *loader.Model) error {
	ps := l.settings.Player
	group, err := assets.UploadModel(m)
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}
	l.Player = l.Registry.Create()
	tr := ecs.NewTransform(ps.Start)
	if ps.Scale > 0 {
		tr.Scale = mgl32.Vec3{ps.Scale, ps.Scale, ps.Scale}
	}
	ecs.Add(l.Registry, l.Player, tr)
	ecs.Add(l.Registry, l.Player, ecs.FacingDirection{})
	ecs.Add(l.Registry, l.Player, ecs.PlayerController{MoveSpeed: ps.MoveSpeed, TurnSpeed: ps.TurnSpeed})
	ecs.Add(l.Registry, l.Player, ecs.RigidBody{Gravity: ps.Gravity})
	addModel(l.Registry, l.Player, m, group, ps.IdleClip)
	l.idle()
	return nil
}

func (l *Level) spawnMonsters(assets *render.AssetStore, m *loader.Model) error {
	ms := l.settings.Monsters
	if ms.Count <= 0 {
		return nil
	}
	group, err := assets.UploadModel(m)
	if err != nil {
		return fmt.Errorf("monster: %w", err)
	}
	grid := world.GridFromSettings(l.settings.Buildings)
	plans := monster.PlanPatrols(grid.Segments(), ms.Count, l.settings.Buildings.Seed, l.settings.Player.Start, monster.EscapeRadius)
	for _, data := range plans {
		tr := ecs.NewTransform(data.Midpoint())
		if ms.Scale > 0 {
			tr.Scale = mgl32.Vec3{ms.Scale, ms.Scale, ms.Scale}
		}
		e := l.Monsters.Spawn(l.Registry, data, tr)
		addModel(l.Registry, e, m, group, ms.Clip)
	}
	l.Monsters.ResetAll(l.Registry)
	return nil
}

// Reset puts the player back on its start pose, recenters the follow camera behind it and sends
// every monster back to patrol.
func (l *Level) Reset() {
	ps := l.settings.Player
	yaw := common.Radians(ps.StartYaw)
	if tr, ok := ecs.Get[ecs.Transform](l.Registry, l.Player); ok {
		tr.Position = ps.Start
		tr.Rotation = common.YawQuat(yaw)
	}
	if f, ok := ecs.Get[ecs.FacingDirection](l.Registry, l.Player); ok {
		f.Yaw = yaw
	}
	if rb, ok := ecs.Get[ecs.RigidBody](l.Registry, l.Player); ok {
		rb.Velocity = mgl32.Vec3{}
		rb.Grounded = false
	}
	l.idle()
	if ft, ok := ecs.Get[ecs.FollowTarget](l.Registry, l.CameraEntity); ok {
		ft.Yaw = yaw
		ft.Pitch = common.Radians(l.settings.Camera.Pitch)
	}
	l.Monsters.SetFrenzy(l.Registry, false)
	l.Monsters.ResetAll(l.Registry)
}

// PlayerPosition returns the player's feet position.
func (l *Level) PlayerPosition() mgl32.Vec3 {
	if tr, ok := ecs.Get[ecs.Transform](l.Registry, l.Player); ok {
		return tr.Position
	}
	return mgl32.Vec3{}
}

// SetPlayerPosition teleports the player.
func (l *Level) SetPlayerPosition(p mgl32.Vec3) {
	if tr, ok := ecs.Get[ecs.Transform](l.Registry, l.Player); ok {
		tr.Position = p
	}
}

// PlayerYaw returns the player's facing yaw in radians.
func (l *Level) PlayerYaw() float32 {
	if f, ok := ecs.Get[ecs.FacingDirection](l.Registry, l.Player); ok {
		return f.Yaw
	}
	return 0
}

// SetPlayerYaw turns the player immediately.
func (l *Level) SetPlayerYaw(yaw float32) {
	if f, ok := ecs.Get[ecs.FacingDirection](l.Registry, l.Player); ok {
		f.Yaw = yaw
	}
	if tr, ok := ecs.Get[ecs.Transform](l.Registry, l.Player); ok {
		tr.Rotation = common.YawQuat(yaw)
	}
	if ft, ok := ecs.Get[ecs.FollowTarget](l.Registry, l.CameraEntity); ok {
		ft.Yaw = yaw
	}
}

// Follow returns the camera rig.
func (l *Level) Follow() *ecs.FollowTarget {
	ft, _ := ecs.Get[ecs.FollowTarget](l.Registry, l.CameraEntity)
	return ft
}

// MonsterPositions returns the positions of the visible monsters. The slice is reused.
func (l *Level) MonsterPositions() []mgl32.Vec3 {
	l.monsterPos = l.monsterPos[:0]
	for _, e := range l.Monsters.Monsters() {
		tr, ok := ecs.Get[ecs.Transform](l.Registry, e)
		if !ok {
			continue
		}
		if rd, ok := ecs.Get[ecs.Renderable](l.Registry, e); ok && !rd.Visible {
			continue
		}
		l.monsterPos = append(l.monsterPos, tr.Position)
	}
	return l.monsterPos
}

// NearestMonster returns the monster closest to p in the XZ plane.
func (l *Level) NearestMonster(p mgl32.Vec3) (mgl32.Vec3, bool) {
	best := float32(math.Inf(1))
	var out mgl32.Vec3
	for _, e := range l.Monsters.Monsters() {
		tr, ok := ecs.Get[ecs.Transform](l.Registry, e)
		if !ok {
			continue
		}
		if d := common.DistanceXZ(tr.Position, p); d < best {
			best, out = d, tr.Position
		}
	}
	return out, !math.IsInf(float64(best), 1)
}

// colliders gathers the buildings within a block of center plus every box collider.
func (l *Level) colliders(center mgl32.Vec3) []common.AABB {
	return world.CollectColliders(l.Registry, l.Tree, center, l.settings.Buildings.BlockSize, l.scratch)
}

// MovePlayer applies held keys to the player and picks its gait clip.
func (l *Level) MovePlayer(in world.MoveInput, dt float32) world.PlayerStep {
	ft := l.Follow()
	var yaw float32
	if ft != nil {
		yaw = ft.Yaw
	}
	ps := l.settings.Player
	step := world.MovePlayer(l.Registry, l.Player, yaw, in, dt, l.colliders(l.PlayerPosition()), common.Coalesce(ps.Radius, world.DefaultPlayerRadius))

	if !step.Moving {
		l.idle()
	} else if a, ok := ecs.Get[animation.Animation](l.Registry, l.Player); ok {
		switch {
		case step.Scale >= world.SprintScale:
			a.Play(ps.RunClip)
		default:
			a.Play(ps.WalkClip)
		}
	}
	return step
}

// idle plays the player's idle clip. A model without one is paused and put back in its bind pose.
func (l *Level) idle() {
	a, ok := ecs.Get[animation.Animation](l.Registry, l.Player)
	if !ok || a.Play(l.settings.Player.IdleClip) {
		return
	}
	a.Playing = false
	if skel, ok := ecs.Get[animation.Skeleton](l.Registry, l.Player); ok {
		skel.ResetToBindPose()
	}
}

// UpdateFollowCamera places the camera behind the player, pulled in front of anything between it
// and the look-at point.
func (l *Level) UpdateFollowCamera() {
	ft := l.Follow()
	if ft == nil {
		return
	}
	target := l.PlayerPosition()
	pos, lookAt := camera.FollowPose(target, ft)

	var extra []common.AABB
	ecs.Each2(l.Registry, func(_ ecs.Entity, tr *ecs.Transform, bc *ecs.BoxCollider) {
		extra = append(extra, bc.Bounds(tr.Position))
	})
	pos = camera.ResolveCollision(lookAt, pos, l.Tree, extra, l.settings.Camera.CollisionOffset)
	l.SetCameraPose(pos, lookAt)
}

// SetCameraPose moves the camera entity and the render camera.
func (l *Level) SetCameraPose(pos, target mgl32.Vec3) {
	if tr, ok := ecs.Get[ecs.Transform](l.Registry, l.CameraEntity); ok {
		tr.Position = pos
	}
	if cc, ok := ecs.Get[ecs.CameraComponent](l.Registry, l.CameraEntity); ok {
		cc.LookAt = target
	}
	l.Camera.SetPose(pos, target)
}

// StepPhysics integrates gravity, clamps to the ground and lands bodies on nearby box tops.
func (l *Level) StepPhysics(dt float32) {
	world.StepPhysics(l.Registry, dt)
	world.LandOnBoxes(l.Registry, l.colliders(l.PlayerPosition()), l.settings.Player.StepHeight)
}

// Animate advances every animation by dt and rebuilds the skinning palettes.
func (l *Level) Animate(dt float32) {
	animation.UpdateAnimations(l.Registry, dt)
	animation.UpdateSkeletons(l.Registry)
}

// UpdateLOD swaps the landmark mesh when the camera crosses the detail thresholds.
func (l *Level) UpdateLOD(state *world.GameState) {
	if l.Landmark == 0 {
		return
	}
	tr, ok := ecs.Get[ecs.Transform](l.Registry, l.Landmark)
	if !ok {
		return
	}
	high := world.UpdateLOD(state, tr.Position, l.Camera.Position(), l.settings.LOD)
	if high == l.highDetail {
		return
	}
	l.highDetail = high
	group := l.landmarkLow
	if high {
		group = l.landmarkHigh
	}
	ecs.Add(l.Registry, l.Landmark, group)
	l.logger.Debug("landmark detail changed", zap.Bool("high", high))
}

// SetAspect updates the render camera for a new surface size.
func (l *Level) SetAspect(width, height int) {
	l.Camera.SetAspect(aspect(width, height))
}
