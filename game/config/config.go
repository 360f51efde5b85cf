package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// RootElement is the name of the document element.
const RootElement = "GameConfig"

var errWrongRoot = errors.New("config: root element is not " + RootElement)

type xmlSection struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
}

type xmlDocument struct {
	XMLName  xml.Name
	Sections []xmlSection `xml:",any"`
}

// Load reads the configuration file at path. A missing or malformed file is logged and yields
// Default(); the returned settings are always usable.
//
// Parameters:
//   - path: the XML file path
//   - logger: receives fallback warnings
//
// Returns:
//   - GameSettings: the loaded settings
func Load(path string, logger *zap.Logger) GameSettings {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("config file unavailable, using defaults", zap.String("path", path), zap.Error(err))
		return Default()
	}
	s, err := Parse(data, logger)
	if err != nil {
		logger.Warn("config file malformed, using defaults", zap.String("path", path), zap.Error(err))
		return Default()
	}
	logger.Info("loaded config", zap.String("path", path))
	return s
}

// Parse decodes an XML configuration document over the defaults. Unknown sections and attributes
// are ignored; attributes that fail to parse keep their default.
//
// Parameters:
//   - data: the XML document
//   - logger: receives per-attribute warnings
//
// Returns:
//   - GameSettings: the merged settings, or Default() when err is non-nil
//   - error: an error if the document as a whole cannot be decoded
func Parse(data []byte, logger *zap.Logger) (GameSettings, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Default(), fmt.Errorf("failed to decode config: %w", err)
	}
	if doc.XMLName.Local != RootElement {
		return Default(), errWrongRoot
	}

	s := Default()
	for _, sec := range doc.Sections {
		a := attrs{section: sec.XMLName.Local, values: make(map[string]string, len(sec.Attrs)), logger: logger}
		for _, attr := range sec.Attrs {
			a.values[attr.Name.Local] = attr.Value
		}
		apply, ok := sectionAppliers[sec.XMLName.Local]
		if !ok {
			logger.Debug("ignoring unknown config section", zap.String("section", sec.XMLName.Local))
			continue
		}
		apply(&s, a)
	}
	return s, nil
}

var sectionAppliers = map[string]func(*GameSettings, attrs){
	"Window": func(s *GameSettings, a attrs) {
		a.Int("windowWidth", &s.Window.Width)
		a.Int("windowHeight", &s.Window.Height)
		a.String("title", &s.Window.Title)
		a.Bool("fullscreen", &s.Window.Fullscreen)
		a.Float("frameLimit", &s.Window.FrameLimit)
	},
	"Graphics": func(s *GameSettings, a attrs) {
		a.Int("msaaSamples", &s.Graphics.MSAASamples)
		a.Vec3("clearColor", &s.Graphics.ClearColor)
		a.Bool("toonShading", &s.Graphics.Toon)
		a.Float("toonEdgeThreshold", &s.Graphics.ToonEdgeThreshold)
		a.Float("motionBlurStrength", &s.Graphics.MotionBlurStrength)
		a.Float("radialBlurStrength", &s.Graphics.RadialBlurStrength)
		a.String("shadersDir", &s.Graphics.ShadersDir)
	},
	"Fog": func(s *GameSettings, a attrs) {
		a.Bool("fogEnabled", &s.Fog.Enabled)
		a.Float("fogDensity", &s.Fog.Density)
		a.Vec3("fogColor", &s.Fog.Color)
	},
	"Player": func(s *GameSettings, a attrs) {
		a.String("playerModel", &s.Player.Model)
		a.Float("playerMoveSpeed", &s.Player.MoveSpeed)
		a.Float("playerTurnSpeed", &s.Player.TurnSpeed)
		a.Float("playerRadius", &s.Player.Radius)
		a.Float("playerHeight", &s.Player.Height)
		a.Float("playerGravity", &s.Player.Gravity)
		a.Float("playerScale", &s.Player.Scale)
		a.Vec3("playerStart", &s.Player.Start)
		a.Float("playerStartYaw", &s.Player.StartYaw)
		a.Float("playerStepHeight", &s.Player.StepHeight)
		a.String("idleClip", &s.Player.IdleClip)
		a.String("walkClip", &s.Player.WalkClip)
		a.String("runClip", &s.Player.RunClip)
	},
	"Camera": func(s *GameSettings, a attrs) {
		a.Float("cameraFov", &s.Camera.FOV)
		a.Float("cameraNear", &s.Camera.Near)
		a.Float("cameraFar", &s.Camera.Far)
		a.Float("cameraDistance", &s.Camera.Distance)
		a.Float("cameraHeight", &s.Camera.Height)
		a.Float("cameraShoulderOffset", &s.Camera.ShoulderOffset)
		a.Float("cameraLookAhead", &s.Camera.LookAhead)
		a.Float("cameraSensitivity", &s.Camera.Sensitivity)
		a.Float("cameraPitch", &s.Camera.Pitch)
		a.Float("cameraCollisionOffset", &s.Camera.CollisionOffset)
		a.Vec3("menuCameraPosition", &s.Camera.MenuPosition)
		a.Vec3("menuCameraTarget", &s.Camera.MenuTarget)
		a.Float("freeCameraSpeed", &s.Camera.FreeSpeed)
	},
	"Buildings": func(s *GameSettings, a attrs) {
		a.Int("gridSize", &s.Buildings.GridSize)
		a.Float("blockSize", &s.Buildings.BlockSize)
		a.Float("streetWidth", &s.Buildings.StreetWidth)
		a.Float("minHeight", &s.Buildings.MinHeight)
		a.Float("maxHeight", &s.Buildings.MaxHeight)
		a.Float("minFootprint", &s.Buildings.MinFootprint)
		a.Int64("seed", &s.Buildings.Seed)
		a.String("buildingTexture", &s.Buildings.Texture)
		a.Vec3("buildingColor", &s.Buildings.Color)
	},
	"LOD": func(s *GameSettings, a attrs) {
		a.Float("lodDistance", &s.LOD.Distance)
		a.Float("lodHysteresis", &s.LOD.Hysteresis)
	},
	"Ground": func(s *GameSettings, a attrs) {
		a.Float("groundSize", &s.Ground.Size)
		a.Float("groundHeight", &s.Ground.Height)
		a.String("groundTexture", &s.Ground.Texture)
		a.Float("groundTiling", &s.Ground.Tiling)
		a.Vec3("groundColor", &s.Ground.Color)
	},
	"Snow": func(s *GameSettings, a attrs) {
		a.Bool("snowEnabled", &s.Snow.Enabled)
		a.Int("snowParticleCount", &s.Snow.ParticleCount)
		a.Float("snowRadius", &s.Snow.Radius)
		a.Float("snowSpeed", &s.Snow.Speed)
		a.Float("snowAngle", &s.Snow.Angle)
		a.Float("snowBlur", &s.Snow.Blur)
		a.Bool("snowOverlay", &s.Snow.Overlay)
		a.Float("snowFlakeSize", &s.Snow.FlakeSize)
		a.Float("snowOverlayRate", &s.Snow.OverlayRate)
	},
	"Cinematic": func(s *GameSettings, a attrs) {
		a.Float("duration", &s.Cinematic.Duration)
		a.Bool("motionBlur", &s.Cinematic.MotionBlur)
		a.String("script", &s.Cinematic.Script)
	},
	"FingBuilding": func(s *GameSettings, a attrs) {
		a.Bool("enabled", &s.FingBuilding.Enabled)
		a.String("highModel", &s.FingBuilding.HighModel)
		a.String("lowModel", &s.FingBuilding.LowModel)
		a.Vec3("position", &s.FingBuilding.Position)
		a.Float("scale", &s.FingBuilding.Scale)
		a.Float("yaw", &s.FingBuilding.Yaw)
		a.Vec3("halfExtents", &s.FingBuilding.HalfExtents)
		a.Vec3("color", &s.FingBuilding.Color)
	},
	"Light": func(s *GameSettings, a attrs) {
		a.Vec3("lightDir", &s.Light.Direction)
		a.Vec3("lightColor", &s.Light.Color)
		a.Float("lightIntensity", &s.Light.Intensity)
		a.Vec3("ambientColor", &s.Light.Ambient)
		a.Float("shadowDistance", &s.Light.ShadowDistance)
		a.Float("shadowOrthoSize", &s.Light.ShadowOrthoSize)
		a.Float("shadowNear", &s.Light.ShadowNear)
		a.Float("shadowFar", &s.Light.ShadowFar)
		a.Int("shadowMapSize", &s.Light.ShadowMapSize)
		a.Float("sunDistance", &s.Light.SunDistance)
		a.Float("sunSize", &s.Light.SunSize)
		a.Vec3("sunColor", &s.Light.SunColor)
		a.Int("cometCount", &s.Light.CometCount)
		a.Float("cometFallSpeed", &s.Light.CometFallSpeed)
		a.Float("cometCycleTime", &s.Light.CometCycleTime)
		a.Float("cometFallDistance", &s.Light.CometFallDist)
		a.Vec3("cometDirection", &s.Light.CometDirection)
		a.Float("cometScale", &s.Light.CometScale)
	},
	"UI": func(s *GameSettings, a attrs) {
		a.String("fontFile", &s.UI.FontFile)
		a.Float("fontSize", &s.UI.FontSize)
		a.Float("menuFontSize", &s.UI.MenuFontSize)
		a.Float("titleFontSize", &s.UI.TitleFontSize)
		a.Bool("minimap", &s.UI.Minimap)
		a.Float("minimapRadius", &s.UI.MinimapRadius)
		a.Float("minimapWorldRadius", &s.UI.MinimapWorldRadius)
		a.Bool("hud", &s.UI.HUD)
	},
	"Debug": func(s *GameSettings, a attrs) {
		a.Bool("showShadowMap", &s.Debug.ShowShadowMap)
		a.Bool("profiler", &s.Debug.Profiler)
		a.String("logLevel", &s.Debug.LogLevel)
		a.Bool("devLogging", &s.Debug.DevLogging)
		a.Bool("headless", &s.Debug.Headless)
		a.String("poseFile", &s.Debug.PoseFile)
	},
	"Monsters": func(s *GameSettings, a attrs) {
		a.String("monsterModel", &s.Monsters.Model)
		a.Int("monsterCount", &s.Monsters.Count)
		a.Float("monsterScale", &s.Monsters.Scale)
		a.Vec3("monsterColor", &s.Monsters.Color)
		a.String("monsterClip", &s.Monsters.Clip)
	},
}
