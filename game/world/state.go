// Package world holds the shared game world: the runtime state record, the procedural building
// grid, and the player movement, physics and landmark LOD systems.
package world

import "github.com/Carmen-Shannon/oxy-snowfall/game/config"

// Pause menu slider ranges.
const (
	SnowSpeedMin float32 = 0
	SnowSpeedMax float32 = 3
	SnowAngleMin float32 = -45
	SnowAngleMax float32 = 45
	SnowBlurMin  float32 = 0
	SnowBlurMax  float32 = 1
)

// GameState is the mutable runtime state shared by the scenes: render toggles changed from the
// pause menu, menu cursors, cinematic bookkeeping and the quit flag.
type GameState struct {
	FogEnabled  bool
	SnowEnabled bool
	ToonEnabled bool
	SnowSpeed   float32
	// SnowAngle is the wind slant in degrees.
	SnowAngle float32
	SnowBlur  float32

	MenuSelection  int
	PauseSelection int

	// MotionBlurFlip selects the ping-pong history target written this frame.
	MotionBlurFlip bool
	// FingHighDetail is the landmark LOD hysteresis flag.
	FingHighDetail bool
	// Frenzy forces every monster into chase (god mode).
	Frenzy bool

	// ChaseDistance is the monster distance recorded when a chase starts; it sizes the death
	// cinematic.
	ChaseDistance float32
	// DeathFocus is where the catching monster was when the chase started.
	DeathFocus [3]float32

	ElapsedTime float32
	ShouldQuit  bool
}

// NewGameState seeds the runtime toggles from settings.
func NewGameState(s *config.GameSettings) *GameState {
	return &GameState{
		FogEnabled:     s.Fog.Enabled,
		SnowEnabled:    s.Snow.Enabled,
		ToonEnabled:    s.Graphics.Toon,
		SnowSpeed:      s.Snow.Speed,
		SnowAngle:      s.Snow.Angle,
		SnowBlur:       s.Snow.Blur,
		FingHighDetail: true,
	}
}
