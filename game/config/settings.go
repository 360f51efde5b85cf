// Package config loads the immutable game settings from an XML document and the intro script from
// YAML. Every value has a default, so a missing or malformed file still yields a playable game.
package config

import "github.com/go-gl/mathgl/mgl32"

// GameSettings is the configuration loaded once at startup. It is read-only afterwards and is
// threaded to systems through the scene context.
type GameSettings struct {
	Window       WindowSettings
	Graphics     GraphicsSettings
	Fog          FogSettings
	Player       PlayerSettings
	Camera       CameraSettings
	Buildings    BuildingSettings
	LOD          LODSettings
	Ground       GroundSettings
	Snow         SnowSettings
	Cinematic    CinematicSettings
	FingBuilding FingBuildingSettings
	Light        LightSettings
	UI           UISettings
	Debug        DebugSettings
	Monsters     MonsterSettings
}

type WindowSettings struct {
	Width      int
	Height     int
	Title      string
	Fullscreen bool
	// FrameLimit caps the frame rate; 0 is uncapped.
	FrameLimit float32
}

type GraphicsSettings struct {
	MSAASamples        int
	ClearColor         mgl32.Vec3
	Toon               bool
	ToonEdgeThreshold  float32
	MotionBlurStrength float32
	RadialBlurStrength float32
	ShadersDir         string
}

type FogSettings struct {
	Enabled bool
	Density float32
	Color   mgl32.Vec3
}

type PlayerSettings struct {
	// Model is the .glb path; empty selects the built-in stand-in mesh.
	Model     string
	MoveSpeed float32
	TurnSpeed float32
	Radius    float32
	Height    float32
	Gravity   float32
	Scale     float32
	Start     mgl32.Vec3
	StartYaw  float32
	// StepHeight is how far below a box top the feet may be and still land on it.
	StepHeight float32
	IdleClip   string
	WalkClip   string
	RunClip    string
}

type CameraSettings struct {
	FOV             float32
	Near            float32
	Far             float32
	Distance        float32
	Height          float32
	ShoulderOffset  float32
	LookAhead       float32
	Sensitivity     float32
	Pitch           float32
	CollisionOffset float32
	MenuPosition    mgl32.Vec3
	MenuTarget      mgl32.Vec3
	FreeSpeed       float32
}

type BuildingSettings struct {
	GridSize     int
	BlockSize    float32
	StreetWidth  float32
	MinHeight    float32
	MaxHeight    float32
	MinFootprint float32
	Seed         int64
	Texture      string
	Color        mgl32.Vec3
}

type LODSettings struct {
	Distance   float32
	Hysteresis float32
}

type GroundSettings struct {
	Size    float32
	Height  float32
	Texture string
	Tiling  float32
	Color   mgl32.Vec3
}

type SnowSettings struct {
	Enabled       bool
	ParticleCount int
	Radius        float32
	Speed         float32
	// Angle is the wind slant in degrees.
	Angle       float32
	Blur        float32
	Overlay     bool
	FlakeSize   float32
	OverlayRate float32
}

type CinematicSettings struct {
	Duration   float32
	MotionBlur bool
	Script     string
}

// FingBuildingSettings describes the landmark building with high and low detail meshes.
type FingBuildingSettings struct {
	Enabled bool
	// HighModel and LowModel are .glb paths; empty selects built-in stand-in towers.
	HighModel   string
	LowModel    string
	Position    mgl32.Vec3
	Scale       float32
	Yaw         float32
	HalfExtents mgl32.Vec3
	Color       mgl32.Vec3
}

type LightSettings struct {
	Direction       mgl32.Vec3
	Color           mgl32.Vec3
	Intensity       float32
	Ambient         mgl32.Vec3
	ShadowDistance  float32
	ShadowOrthoSize float32
	ShadowNear      float32
	ShadowFar       float32
	ShadowMapSize   int
	SunDistance     float32
	SunSize         float32
	SunColor        mgl32.Vec3
	CometCount      int
	// CometFallSpeed is the fraction of CometFallDist a comet covers per second.
	CometFallSpeed float32
	CometCycleTime float32
	CometFallDist  float32
	CometDirection mgl32.Vec3
	CometScale     float32
}

type UISettings struct {
	FontFile           string
	FontSize           float32
	MenuFontSize       float32
	TitleFontSize      float32
	Minimap            bool
	MinimapRadius      float32
	MinimapWorldRadius float32
	HUD                bool
}

type DebugSettings struct {
	ShowShadowMap bool
	Profiler      bool
	LogLevel      string
	DevLogging    bool
	Headless      bool
	PoseFile      string
}

type MonsterSettings struct {
	// Model is the .glb path; empty selects the built-in stand-in mesh.
	Model string
	Count int
	Scale float32
	Color mgl32.Vec3
	Clip  string
}

// Default returns the settings used when the configuration file is missing, malformed, or leaves a
// value out.
func Default() GameSettings {
	return GameSettings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "Snowfall",
		},
		Graphics: GraphicsSettings{
			MSAASamples:        4,
			ClearColor:         mgl32.Vec3{0.55, 0.6, 0.7},
			ToonEdgeThreshold:  0.1,
			MotionBlurStrength: 0.6,
			RadialBlurStrength: 8.0,
			ShadersDir:         "shaders",
		},
		Fog: FogSettings{
			Enabled: true,
			Density: 0.02,
			Color:   mgl32.Vec3{0.6, 0.65, 0.72},
		},
		Player: PlayerSettings{
			MoveSpeed:  3.0,
			TurnSpeed:  10,
			Radius:     0.4,
			Height:     1.8,
			Gravity:    -20,
			Scale:      1,
			StepHeight: 0.5,
			IdleClip:   "idle",
			WalkClip:   "walk",
			RunClip:    "run",
		},
		Camera: CameraSettings{
			FOV:             60,
			Near:            0.1,
			Far:             500,
			Distance:        4,
			Height:          1.6,
			ShoulderOffset:  0.6,
			LookAhead:       2,
			Sensitivity:     0.15,
			Pitch:           10,
			CollisionOffset: 0.3,
			MenuPosition:    mgl32.Vec3{-30, 25, 40},
			MenuTarget:      mgl32.Vec3{20, 5, -10},
			FreeSpeed:       10,
		},
		Buildings: BuildingSettings{
			GridSize:     10,
			BlockSize:    20,
			StreetWidth:  8,
			MinHeight:    6,
			MaxHeight:    30,
			MinFootprint: 6,
			Seed:         42,
			Texture:      "assets/textures/building.png",
			Color:        mgl32.Vec3{0.45, 0.45, 0.5},
		},
		LOD: LODSettings{
			Distance:   60,
			Hysteresis: 10,
		},
		Ground: GroundSettings{
			Size:    400,
			Texture: "assets/textures/snow.png",
			Tiling:  40,
			Color:   mgl32.Vec3{0.92, 0.94, 0.97},
		},
		Snow: SnowSettings{
			Enabled:       true,
			ParticleCount: 4000,
			Radius:        30,
			Speed:         1,
			Blur:          0.3,
			Overlay:       true,
			FlakeSize:     0.05,
			OverlayRate:   1,
		},
		Cinematic: CinematicSettings{
			Duration:   3,
			MotionBlur: true,
			Script:     "assets/intro.yaml",
		},
		FingBuilding: FingBuildingSettings{
			Enabled:     true,
			Position:    mgl32.Vec3{0, 0, -60},
			Scale:       1,
			HalfExtents: mgl32.Vec3{12, 20, 8},
			Color:       mgl32.Vec3{0.7, 0.68, 0.62},
		},
		Light: LightSettings{
			Direction:       mgl32.Vec3{0.5, 1.0, 0.3},
			Color:           mgl32.Vec3{1, 0.96, 0.9},
			Intensity:       1,
			Ambient:         mgl32.Vec3{0.3, 0.32, 0.38},
			ShadowDistance:  50,
			ShadowOrthoSize: 40,
			ShadowNear:      1,
			ShadowFar:       150,
			ShadowMapSize:   2048,
			SunDistance:     400,
			SunSize:         30,
			SunColor:        mgl32.Vec3{1, 0.9, 0.7},
			CometCount:      6,
			CometFallSpeed:  0.35,
			CometCycleTime:  9,
			CometFallDist:   300,
			CometDirection:  mgl32.Vec3{-1, -0.6, 0.2},
			CometScale:      2,
		},
		UI: UISettings{
			FontSize:           24,
			MenuFontSize:       40,
			TitleFontSize:      72,
			Minimap:            true,
			MinimapRadius:      90,
			MinimapWorldRadius: 60,
			HUD:                true,
		},
		Debug: DebugSettings{
			LogLevel: "info",
			PoseFile: "camera_debug.txt",
		},
		Monsters: MonsterSettings{
			Count: 40,
			Scale: 1,
			Color: mgl32.Vec3{0.15, 0.05, 0.05},
			Clip:  "walk",
		},
	}
}
