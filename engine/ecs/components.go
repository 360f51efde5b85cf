package ecs

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an entity in the world.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns a transform at pos with identity rotation and unit scale.
func NewTransform(pos mgl32.Vec3) Transform {
	return Transform{Position: pos, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns T·R·S.
func (t *Transform) Matrix() mgl32.Mat4 {
	return common.TRS(t.Position, t.Rotation, t.Scale)
}

// FacingDirection is the logical heading of an entity, kept apart from Transform.Rotation so the
// visual rotation can ease toward it.
type FacingDirection struct {
	Yaw float32
}

// Mesh references GPU geometry owned by the asset store.
type Mesh struct {
	Handle     gfx.Mesh
	IndexCount int
	Texture    gfx.Texture
	Skinned    bool
	Color      mgl32.Vec4
}

// MeshGroup is the set of meshes drawn for one entity.
type MeshGroup struct {
	Meshes []Mesh
}

// ShaderKind selects the program family used to draw a Renderable.
type ShaderKind int

const (
	ShaderColor ShaderKind = iota
	ShaderModel
	ShaderSkinned
	ShaderTerrain
)

// Renderable marks an entity for drawing by the render system.
type Renderable struct {
	Shader     ShaderKind
	Visible    bool
	MeshOffset mgl32.Vec3
}

// CameraComponent holds the lens parameters of a camera entity. LookAt is the world-space point
// the camera aims at; the camera position comes from the entity's Transform.
type CameraComponent struct {
	FOV    float32 // degrees
	Near   float32
	Far    float32
	Active bool
	LookAt mgl32.Vec3
}

// FollowTarget is the over-shoulder orbit state of a camera tracking another entity.
type FollowTarget struct {
	Target         Entity
	Distance       float32
	Height         float32
	ShoulderOffset float32
	LookAhead      float32
	Yaw            float32 // radians
	Pitch          float32 // radians
	Sensitivity    float32 // degrees per pixel
}

// RigidBody carries vertical motion state.
type RigidBody struct {
	Velocity mgl32.Vec3
	Gravity  float32
	Grounded bool
}

// GroundPlane is an infinite horizontal floor at Height.
type GroundPlane struct {
	Height float32
}

// BoxCollider is an axis-aligned box relative to the entity position.
type BoxCollider struct {
	HalfExtents mgl32.Vec3
	Offset      mgl32.Vec3
}

// Bounds returns the collider box in world space for an entity at pos.
func (b *BoxCollider) Bounds(pos mgl32.Vec3) common.AABB {
	return common.AABBFromCenter(pos.Add(b.Offset), b.HalfExtents)
}

// PlayerController marks the player-driven entity.
type PlayerController struct {
	MoveSpeed float32
	TurnSpeed float32
}

// Anchor positions a UI element relative to one of nine screen reference points.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorTopCenter
	AnchorTopRight
	AnchorCenterLeft
	AnchorCenter
	AnchorCenterRight
	AnchorBottomLeft
	AnchorBottomCenter
	AnchorBottomRight
)

// HAlign aligns text horizontally around its anchor point.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// UIText is a screen-space text element.
type UIText struct {
	Text     string
	FontID   string
	FontSize float32
	Offset   mgl32.Vec2
	Anchor   Anchor
	Align    HAlign
	Color    mgl32.Vec4
	Visible  bool
	Layer    int
}
