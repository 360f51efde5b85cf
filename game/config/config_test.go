package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMissingFileUsesDefaults(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.xml"), zap.NewNop())

	assert.Equal(t, Default(), s)
	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, float32(3.0), s.Player.MoveSpeed)
	assert.Equal(t, mgl32.Vec3{0.5, 1.0, 0.3}, s.Light.Direction)
}

func TestParseOverridesOnlyPresentValues(t *testing.T) {
	doc := `<?xml version="1.0"?>
<GameConfig>
  <Window windowWidth="1920" title="Whiteout" fullscreen="yes"/>
  <Fog fogDensity="0.05" fogEnabled="0"/>
  <Player playerMoveSpeed="4.5"/>
  <Light lightDir="0, 1, 0"/>
  <Monsters monsterCount="12"/>
  <Mystery foo="bar"/>
</GameConfig>`
	s, err := Parse([]byte(doc), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1920, s.Window.Width)
	assert.Equal(t, 720, s.Window.Height)
	assert.Equal(t, "Whiteout", s.Window.Title)
	assert.True(t, s.Window.Fullscreen)
	assert.Equal(t, float32(0.05), s.Fog.Density)
	assert.False(t, s.Fog.Enabled)
	assert.Equal(t, float32(4.5), s.Player.MoveSpeed)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, s.Light.Direction)
	assert.Equal(t, 12, s.Monsters.Count)
	assert.Equal(t, Default().Buildings, s.Buildings)
}

func TestBadAttributeKeepsDefault(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s, err := Parse([]byte(`<GameConfig><Window windowWidth="wide"/><Light lightDir="1,2"/></GameConfig>`), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, mgl32.Vec3{0.5, 1.0, 0.3}, s.Light.Direction)
	assert.Equal(t, 2, logs.Len())
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	for name, doc := range map[string]string{
		"truncated":  `<GameConfig><Window windowWidth="1920"`,
		"wrong root": `<Settings><Window windowWidth="1920"/></Settings>`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.xml")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
			assert.Equal(t, Default(), Load(path, nil))
		})
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "1": true, "YES": true, "false": false, "0": false, "no": false} {
		got, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestIntroScript(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "intro.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
lines:
  - "Hello"
  - "World"
cinematic:
  points: [[0, 10, 10], [0, 2, 4]]
  look_at: [0, 1, 0]
  start_yaw: 90
  end_yaw: 0
`), 0o644))

	s := LoadIntro(good, nil)
	assert.Equal(t, []string{"Hello", "World"}, s.Lines)
	assert.Equal(t, []mgl32.Vec3{{0, 10, 10}, {0, 2, 4}}, s.Cinematic.ControlPoints())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, s.Cinematic.Target())
	assert.Equal(t, float32(90), s.Cinematic.StartYaw)

	short := filepath.Join(dir, "short.yaml")
	require.NoError(t, os.WriteFile(short, []byte("lines: [a]\ncinematic:\n  points: [[0,0,0]]\n"), 0o644))
	assert.Equal(t, DefaultIntro(), LoadIntro(short, nil))

	assert.Equal(t, DefaultIntro(), LoadIntro(filepath.Join(dir, "missing.yaml"), nil))
}
