// Package scene drives a closed set of scenes through a deferred, once-per-frame transition
// protocol.
package scene

import "fmt"

// Type identifies one of the game's scenes.
type Type int

const (
	MainMenu Type = iota
	IntroText
	IntroCinematic
	PlayGame
	GodMode
	PauseMenu
	DeathCinematic
	YouDied

	// None is the zero state before Start and the "no previous scene" marker.
	None Type = -1
)

var typeNames = [...]string{
	MainMenu:       "MainMenu",
	IntroText:      "IntroText",
	IntroCinematic: "IntroCinematic",
	PlayGame:       "PlayGame",
	GodMode:        "GodMode",
	PauseMenu:      "PauseMenu",
	DeathCinematic: "DeathCinematic",
	YouDied:        "YouDied",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	if t == None {
		return "None"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Scene is one state of the game loop. C is the context record passed to every callback.
type Scene[C any] interface {
	// OnEnter is called once when the scene becomes current.
	//
	// Parameters:
	//   - ctx: the shared scene context
	OnEnter(ctx C)

	// Update advances the scene by one tick.
	Update(ctx C)

	// Render draws the scene after Update.
	Render(ctx C)

	// OnExit is called once when the scene stops being current.
	OnExit(ctx C)
}
