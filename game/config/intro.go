package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// IntroScript is the text and camera path shown before play starts.
type IntroScript struct {
	Lines     []string        `yaml:"lines"`
	Cinematic CinematicScript `yaml:"cinematic"`
}

// CinematicScript is the intro camera path. Points are spline control points, LookAt is the
// terminal target blended in near the end, and the yaws (degrees) drive the protagonist's turn.
type CinematicScript struct {
	Points   [][3]float32 `yaml:"points"`
	LookAt   [3]float32   `yaml:"look_at"`
	StartYaw float32      `yaml:"start_yaw"`
	EndYaw   float32      `yaml:"end_yaw"`
}

// ControlPoints returns the spline control points as vectors.
func (c CinematicScript) ControlPoints() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(c.Points))
	for i, p := range c.Points {
		out[i] = p
	}
	return out
}

// Target returns the terminal look-at point.
func (c CinematicScript) Target() mgl32.Vec3 {
	return c.LookAt
}

var (
	errNoLines      = errors.New("intro script has no lines")
	errShortCurve   = errors.New("intro cinematic needs at least 2 control points")
	errEmptyLineSet = errors.New("intro script lines are all empty")
)

// DefaultIntro returns the built-in intro script.
func DefaultIntro() IntroScript {
	return IntroScript{
		Lines: []string{
			"The snow started three days ago.",
			"It has not stopped since.",
			"Something moves between the buildings.",
			"Stay out of its sight.",
		},
		Cinematic: CinematicScript{
			Points: [][3]float32{
				{0, 40, 60},
				{20, 25, 30},
				{10, 8, 12},
				{0, 2.8, 4.5},
			},
			LookAt:   [3]float32{0, 1.5, -2},
			StartYaw: 180,
			EndYaw:   0,
		},
	}
}

// ParseIntro decodes and validates a YAML intro script.
func ParseIntro(data []byte) (IntroScript, error) {
	var s IntroScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return IntroScript{}, fmt.Errorf("failed to decode intro script: %w", err)
	}
	if len(s.Lines) == 0 {
		return IntroScript{}, errNoLines
	}
	empty := true
	for _, l := range s.Lines {
		if l != "" {
			empty = false
			break
		}
	}
	if empty {
		return IntroScript{}, errEmptyLineSet
	}
	if len(s.Cinematic.Points) < 2 {
		return IntroScript{}, errShortCurve
	}
	return s, nil
}

// LoadIntro reads the intro script at path, falling back to DefaultIntro when the file is missing
// or invalid.
//
// Parameters:
//   - path: the YAML file path
//   - logger: receives fallback warnings
//
// Returns:
//   - IntroScript: the script to play
func LoadIntro(path string, logger *zap.Logger) IntroScript {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("intro script unavailable, using built-in", zap.String("path", path), zap.Error(err))
		return DefaultIntro()
	}
	s, err := ParseIntro(data)
	if err != nil {
		logger.Warn("intro script invalid, using built-in", zap.String("path", path), zap.Error(err))
		return DefaultIntro()
	}
	return s
}
