package render

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
)

// Program names. Programs drawn inside the main pass exist in a multisampled and a single-sampled
// variant; see variant.
const (
	ProgShadow          = "shadow"
	ProgShadowInstanced = "shadow_instanced"
	ProgShadowSkinned   = "shadow_skinned"
	ProgModel           = "model"
	ProgTerrain         = "terrain"
	ProgBuilding        = "building"
	ProgSkinned         = "skinned"
	ProgSun             = "sun"
	ProgComet           = "comet"
	ProgSnow            = "snow3d"
	ProgSnowOverlay     = "snow_overlay"
	ProgToon            = "toon"
	ProgMotionBlur      = "motion_blur"
	ProgRadialBlur      = "radial_blur"
	ProgBlit            = "blit"
	ProgUIText          = "ui_text"
	ProgUIColor         = "ui_color"
	ProgDebugDepth      = "debug_depth"
)

// shadowDepthBias and shadowSlopeBias are the rasterizer depth bias of the shadow programs.
const (
	shadowDepthBias int32   = 2
	shadowSlopeBias float32 = 2
)

type programSpec struct {
	file string
	desc gfx.ProgramDesc
	// main marks programs drawn inside the main pass.
	main bool
}

// variant names the sample-count variant of a main pass program.
func variant(name string, samples int) string {
	if samples > 1 {
		return fmt.Sprintf("%s@%dx", name, samples)
	}
	return name
}

func programSpecs() []programSpec {
	lit := []gfx.TextureKind{gfx.TextureRepeat, gfx.TextureShadow}
	post := func(name string, format gfx.ColorFormat, tex ...gfx.TextureKind) programSpec {
		return programSpec{file: name + ".wgsl", desc: gfx.ProgramDesc{
			Name: name, Layout: gfx.LayoutScreen, UniformSize: uniformSize[GPUPostUniform](),
			Textures: tex, Format: format,
		}}
	}
	shadow := func(name string, layout gfx.VertexLayout, instanced bool, size int) programSpec {
		return programSpec{file: name + ".wgsl", desc: gfx.ProgramDesc{
			Name: name, Layout: layout, Instanced: instanced, UniformSize: size,
			Format: gfx.FormatNone, HasDepth: true, DepthTest: true, DepthWrite: true,
			Cull: gfx.CullFront, DepthBias: shadowDepthBias, DepthBiasSlopeScale: shadowSlopeBias,
		}}
	}
	scene := func(name string, layout gfx.VertexLayout, instanced bool, size int) programSpec {
		return programSpec{main: true, file: name + ".wgsl", desc: gfx.ProgramDesc{
			Name: name, Layout: layout, Instanced: instanced, UniformSize: size, Textures: lit,
			Format: gfx.FormatRGBA8, HasDepth: true, DepthTest: true, DepthWrite: true, Cull: gfx.CullBack,
		}}
	}
	sky := func(name string, size int, blend gfx.BlendMode) programSpec {
		return programSpec{main: true, file: name + ".wgsl", desc: gfx.ProgramDesc{
			Name: name, Layout: gfx.LayoutMesh, UniformSize: size, Format: gfx.FormatRGBA8,
			HasDepth: true, DepthTest: true, Blend: blend,
		}}
	}
	overlay := func(name string, size int, tex ...gfx.TextureKind) programSpec {
		return programSpec{file: name + ".wgsl", desc: gfx.ProgramDesc{
			Name: name, Layout: gfx.LayoutScreen, UniformSize: size, Textures: tex,
			Format: gfx.FormatSurface, Blend: gfx.BlendAlpha,
		}}
	}

	snowOverlay := sky(ProgSnowOverlay, uniformSize[GPUOverlayUniform](), gfx.BlendAlpha)
	snowOverlay.desc.Layout = gfx.LayoutScreen
	snowOverlay.desc.DepthTest = false

	return []programSpec{
		shadow(ProgShadow, gfx.LayoutMesh, false, uniformSize[GPUShadowUniform]()),
		shadow(ProgShadowInstanced, gfx.LayoutMesh, true, uniformSize[GPUShadowUniform]()),
		shadow(ProgShadowSkinned, gfx.LayoutSkinned, false, uniformSize[GPUShadowSkinnedUniform]()),
		scene(ProgModel, gfx.LayoutMesh, false, uniformSize[GPUSceneUniform]()),
		scene(ProgTerrain, gfx.LayoutMesh, false, uniformSize[GPUSceneUniform]()),
		scene(ProgBuilding, gfx.LayoutMesh, true, uniformSize[GPUSceneUniform]()),
		scene(ProgSkinned, gfx.LayoutSkinned, false, uniformSize[GPUSkinnedUniform]()),
		sky(ProgSun, uniformSize[GPUSunUniform](), gfx.BlendAlpha),
		sky(ProgComet, uniformSize[GPUCometUniform](), gfx.BlendAdditive),
		sky(ProgSnow, uniformSize[GPUSnowUniform](), gfx.BlendAlpha),
		snowOverlay,
		post(ProgToon, gfx.FormatSurface, gfx.TextureColor, gfx.TextureDepth),
		post(ProgMotionBlur, gfx.FormatRGBA8, gfx.TextureColor, gfx.TextureDepth, gfx.TextureColor),
		post(ProgRadialBlur, gfx.FormatSurface, gfx.TextureColor),
		post(ProgBlit, gfx.FormatSurface, gfx.TextureColor),
		overlay(ProgUIText, uniformSize[GPUQuadUniform](), gfx.TextureColor),
		overlay(ProgUIColor, uniformSize[GPUQuadUniform]()),
		overlay(ProgDebugDepth, uniformSize[GPUQuadUniform](), gfx.TextureDepth),
	}
}

// LoadPrograms compiles every render program. Main pass programs are compiled once per sample
// count in samples; duplicate counts are ignored.
//
// Parameters:
//   - assets: the store the programs are cached in
//   - samples: sample counts of the targets the main pass renders into
//
// Returns:
//   - error: the first load or validation failure
func LoadPrograms(assets *AssetStore, samples ...int) error {
	if len(samples) == 0 {
		samples = []int{1}
	}
	for _, spec := range programSpecs() {
		if !spec.main {
			spec.desc.Samples = 1
			if _, err := assets.LoadProgram(spec.file, spec.desc); err != nil {
				return err
			}
			continue
		}
		for _, n := range samples {
			desc := spec.desc
			desc.Name = variant(spec.desc.Name, n)
			desc.Samples = max(n, 1)
			if _, err := assets.LoadProgram(spec.file, desc); err != nil {
				return err
			}
		}
	}
	return nil
}
