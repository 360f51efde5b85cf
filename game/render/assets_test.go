package render

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramsMatchUniformRecords(t *testing.T) {
	rec := gfx.NewRecorder(640, 480)
	assets := NewAssetStore(rec)
	require.NoError(t, LoadPrograms(assets, 1, 4))

	for _, spec := range programSpecs() {
		names := []string{spec.desc.Name}
		if spec.main {
			names = []string{variant(spec.desc.Name, 1), variant(spec.desc.Name, 4)}
		}
		for _, name := range names {
			p := assets.Program(name)
			require.NotZero(t, p, name)
			desc, ok := rec.ProgramDesc(p)
			require.True(t, ok)
			assert.Equal(t, spec.desc.UniformSize, desc.UniformSize, name)
			assert.NotEmpty(t, desc.Source, name)
			assert.Equal(t, "vs_main", desc.VertexEntry, name)
		}
	}

	ms, _ := rec.ProgramDesc(assets.Program(variant(ProgModel, 4)))
	assert.Equal(t, 4, ms.Samples)
	single, _ := rec.ProgramDesc(assets.Program(ProgModel))
	assert.Equal(t, 1, single.Samples)
}

func TestLoadProgramRejectsLayoutMismatch(t *testing.T) {
	assets := NewAssetStore(gfx.NewRecorder(640, 480))

	_, err := assets.LoadProgram("model.wgsl", gfx.ProgramDesc{
		Name:        "bad_size",
		UniformSize: uniformSize[GPUShadowUniform](),
		Textures:    []gfx.TextureKind{gfx.TextureRepeat, gfx.TextureShadow},
		Format:      gfx.FormatRGBA8,
	})
	assert.ErrorIs(t, err, ErrUniformLayout)

	_, err = assets.LoadProgram("model.wgsl", gfx.ProgramDesc{
		Name:        "bad_textures",
		UniformSize: uniformSize[GPUSceneUniform](),
		Format:      gfx.FormatRGBA8,
	})
	assert.ErrorIs(t, err, ErrUniformLayout)
	assert.Zero(t, assets.Program("bad_size"))
}

func TestLoadProgramMissingFile(t *testing.T) {
	assets := NewAssetStore(gfx.NewRecorder(640, 480), WithSearchRoots([]string{t.TempDir()}))
	_, err := assets.LoadProgram("model.wgsl", gfx.ProgramDesc{Name: "model"})
	assert.Error(t, err)
}

func TestReleaseInReverseOrder(t *testing.T) {
	rec := gfx.NewRecorder(640, 480)
	assets := NewAssetStore(rec)
	var created []gfx.Texture
	for _, name := range []string{"a", "b", "c"} {
		tex, err := assets.AddTexture(name, common.SolidImage(2, 2, [4]uint8{255, 0, 0, 255}))
		require.NoError(t, err)
		created = append(created, tex)
	}
	again, err := assets.AddTexture("b", common.SolidImage(1, 1, [4]uint8{}))
	require.NoError(t, err)
	assert.Equal(t, created[1], again)

	assets.Release()
	assert.Equal(t, []gfx.Texture{created[2], created[1], created[0]}, rec.ReleasedTextures())
	assert.True(t, rec.Released())

	assets.Release()
	assert.Len(t, rec.ReleasedTextures(), 3)
}

func TestTextureOrFallsBackToSolidColor(t *testing.T) {
	assets := NewAssetStore(gfx.NewRecorder(640, 480), WithSearchRoots([]string{t.TempDir()}))
	tex := assets.TextureOr("ground", "assets/textures/missing.png", [4]uint8{200, 200, 200, 255})
	assert.NotZero(t, tex)
	assert.Equal(t, tex, assets.Texture("ground"))
}

func TestUploadModel(t *testing.T) {
	assets := NewAssetStore(gfx.NewRecorder(640, 480))
	img := common.SolidImage(4, 4, [4]uint8{10, 20, 30, 255})
	tri := []gfx.SkinnedVertex{
		{Position: [3]float32{0, 0, 0}, Weights: [4]float32{1}},
		{Position: [3]float32{1, 0, 0}, Weights: [4]float32{1}},
		{Position: [3]float32{0, 1, 0}, Weights: [4]float32{1}},
	}
	model := &loader.Model{
		Name: "fox",
		Meshes: []loader.MeshData{
			{Name: "body", Vertices: tri, Indices: []uint32{0, 1, 2}, Skinned: true, BaseColor: mgl32.Vec4{1, 0.5, 0.2, 1}, Image: &img},
			{Name: "collar", Vertices: tri, Indices: []uint32{0, 1, 2}, BaseColor: mgl32.Vec4{0, 0, 1, 1}},
		},
	}

	group, err := assets.UploadModel(model)
	require.NoError(t, err)
	require.Len(t, group.Meshes, 2)

	body := group.Meshes[0]
	assert.True(t, body.Skinned)
	assert.NotZero(t, body.Texture)
	assert.Equal(t, 3, body.IndexCount)
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0.2, 1}, body.Color)

	collar := group.Meshes[1]
	assert.False(t, collar.Skinned)
	assert.Zero(t, collar.Texture)
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, collar.Color)
}
