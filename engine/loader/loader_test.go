package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// testDoc assembles a glTF document and its single binary buffer.
type testDoc struct {
	doc gltfDocument
	bin []byte
}

func newTestDoc() *testDoc {
	return &testDoc{doc: gltfDocument{Asset: gltfAsset{Version: "2.0"}}}
}

func (d *testDoc) view(data []byte) int {
	for len(d.bin)%4 != 0 {
		d.bin = append(d.bin, 0)
	}
	d.doc.BufferViews = append(d.doc.BufferViews, gltfBufferView{ByteOffset: len(d.bin), ByteLength: len(data)})
	d.bin = append(d.bin, data...)
	return len(d.doc.BufferViews) - 1
}

func (d *testDoc) accessor(t *testing.T, values any, count int, typ string, comp int) int {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, values))
	bv := d.view(buf.Bytes())
	d.doc.Accessors = append(d.doc.Accessors, gltfAccessor{BufferView: ptr(bv), ComponentType: comp, Count: count, Type: typ})
	return len(d.doc.Accessors) - 1
}

func (d *testDoc) gltf(t *testing.T) []byte {
	t.Helper()
	doc := d.doc
	doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(d.bin),
		ByteLength: len(d.bin),
	}}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func (d *testDoc) glb(t *testing.T) []byte {
	t.Helper()
	doc := d.doc
	doc.Buffers = []gltfBuffer{{ByteLength: len(d.bin)}}
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), d.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}
	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON}))
	out.Write(js)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}

// nestedTriangle is a triangle under a child node scaled by 2 and offset (1,0,0), itself under a
// parent offset (0,10,0).
func nestedTriangle(t *testing.T) *testDoc {
	d := newTestDoc()
	pos := d.accessor(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, 3, gltfAccessorTypeVec3, gltfComponentTypeFloat)
	idx := d.accessor(t, []uint16{0, 1, 2}, 3, gltfAccessorTypeScalar, gltfComponentTypeUnsignedShort)
	d.doc.Meshes = []gltfMesh{{Name: "tri", Primitives: []gltfPrimitive{{Attributes: map[string]int{"POSITION": pos}, Indices: ptr(idx)}}}}
	d.doc.Nodes = []gltfNode{
		{Name: "parent", Translation: &[3]float32{0, 10, 0}, Children: []int{1}},
		{Name: "child", Mesh: ptr(0), Translation: &[3]float32{1, 0, 0}, Scale: &[3]float32{2, 2, 2}},
	}
	d.doc.Scenes = []gltfScene{{Nodes: []int{0}}}
	d.doc.Scene = ptr(0)
	return d
}

func assertVec3(t *testing.T, want mgl32.Vec3, got [3]float32) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "want %v got %v", want, got)
	}
}

func TestStaticMeshIsBakedIntoModelSpace(t *testing.T) {
	l := NewLoader()
	m, err := l.LoadReader("tri", bytes.NewReader(nestedTriangle(t).gltf(t)))
	require.NoError(t, err)
	require.Len(t, m.Meshes, 1)

	mesh := m.Meshes[0]
	assert.False(t, mesh.Skinned)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assertVec3(t, mgl32.Vec3{1, 10, 0}, mesh.Vertices[0].Position)
	assertVec3(t, mgl32.Vec3{3, 10, 0}, mesh.Vertices[1].Position)
	assertVec3(t, mgl32.Vec3{1, 12, 0}, mesh.Vertices[2].Position)
	for _, v := range mesh.Vertices {
		assertVec3(t, mgl32.Vec3{0, 0, 1}, v.Normal)
	}
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, mesh.BaseColor)
	assert.True(t, m.Bounds.Min.ApproxEqual(mgl32.Vec3{1, 10, 0}))
	assert.True(t, m.Bounds.Max.ApproxEqual(mgl32.Vec3{3, 12, 0}))
	assert.Nil(t, m.Skeleton)
	assert.False(t, m.Skinned())

	static := mesh.StaticVertices()
	require.Len(t, static, 3)
	assert.Equal(t, mesh.Vertices[2].Position, static[2].Position)
}

func TestGLBMatchesJSON(t *testing.T) {
	d := nestedTriangle(t)
	fromJSON, err := parseGLTF(d.gltf(t), ".")
	require.NoError(t, err)
	fromGLB, err := parseGLTF(d.glb(t), ".")
	require.NoError(t, err)

	a, err := fromJSON.importModel("a")
	require.NoError(t, err)
	b, err := fromGLB.importModel("b")
	require.NoError(t, err)
	assert.Equal(t, a.Meshes, b.Meshes)
}

func TestNonTrianglePrimitivesAreSkipped(t *testing.T) {
	d := nestedTriangle(t)
	d.doc.Meshes[0].Primitives = append(d.doc.Meshes[0].Primitives, gltfPrimitive{
		Attributes: d.doc.Meshes[0].Primitives[0].Attributes,
		Mode:       ptr(1),
	})
	f, err := parseGLTF(d.gltf(t), ".")
	require.NoError(t, err)
	m, err := f.importModel("lines")
	require.NoError(t, err)
	assert.Len(t, m.Meshes, 1)
	assert.Equal(t, 1, m.Skipped)
}

func TestParseRejectsBadInput(t *testing.T) {
	d := nestedTriangle(t)
	d.doc.Asset.Version = "1.0"
	_, err := parseGLTF(d.gltf(t), ".")
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	var glb bytes.Buffer
	require.NoError(t, binary.Write(&glb, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: 1, Length: 12}))
	_, err = parseGLTF(glb.Bytes(), ".")
	assert.ErrorIs(t, err, errInvalidGLBVersion)

	_, err = NewLoader().Load("model.obj")
	assert.Error(t, err)
}

// skinnedDoc has a hip → knee chain listed child-first in the skin, and an animation with a
// duplicated key time plus a channel on a non-joint node.
func skinnedDoc(t *testing.T) *testDoc {
	d := newTestDoc()
	pos := d.accessor(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, 3, gltfAccessorTypeVec3, gltfComponentTypeFloat)
	joints := d.accessor(t, [][4]uint8{{0, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}, 3, gltfAccessorTypeVec4, gltfComponentTypeUnsignedByte)
	weights := d.accessor(t, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}, 3, gltfAccessorTypeVec4, gltfComponentTypeFloat)
	ibm := d.accessor(t, []mgl32.Mat4{mgl32.Translate3D(0, -2, 0), mgl32.Translate3D(0, -1, 0)}, 2, gltfAccessorTypeMat4, gltfComponentTypeFloat)

	times := d.accessor(t, []float32{0, 0.5, 0.5, 1}, 4, gltfAccessorTypeScalar, gltfComponentTypeFloat)
	moves := d.accessor(t, [][3]float32{{0, 1, 0}, {0, 2, 0}, {9, 9, 9}, {0, 1, 0}}, 4, gltfAccessorTypeVec3, gltfComponentTypeFloat)
	rotTimes := d.accessor(t, []float32{0, 1}, 2, gltfAccessorTypeScalar, gltfComponentTypeFloat)
	rots := d.accessor(t, [][4]float32{{0, 0, 0, 1}, {0, 0, 0, 1}}, 2, gltfAccessorTypeVec4, gltfComponentTypeFloat)

	d.doc.Meshes = []gltfMesh{{Primitives: []gltfPrimitive{{Attributes: map[string]int{
		"POSITION": pos, "JOINTS_0": joints, "WEIGHTS_0": weights,
	}}}}}
	d.doc.Nodes = []gltfNode{
		{Name: "body", Mesh: ptr(0), Skin: ptr(0)},
		{Name: "hip", Translation: &[3]float32{0, 1, 0}, Children: []int{2}},
		{Name: "knee", Translation: &[3]float32{0, 1, 0}},
	}
	d.doc.Scenes = []gltfScene{{Nodes: []int{0, 1}}}
	d.doc.Skins = []gltfSkin{{InverseBindMatrices: ptr(ibm), Joints: []int{2, 1}}}
	d.doc.Animations = []gltfAnimation{{
		Name: "walk",
		Channels: []gltfAnimChannel{
			{Sampler: 0, Target: gltfAnimTarget{Node: ptr(2), Path: gltfAnimPathTranslation}},
			{Sampler: 1, Target: gltfAnimTarget{Node: ptr(0), Path: gltfAnimPathRotation}},
		},
		Samplers: []gltfAnimSampler{{Input: times, Output: moves}, {Input: rotTimes, Output: rots}},
	}}
	return d
}

func TestSkinnedModel(t *testing.T) {
	f, err := parseGLTF(skinnedDoc(t).glb(t), ".")
	require.NoError(t, err)
	m, err := f.importModel("walker")
	require.NoError(t, err)

	require.NotNil(t, m.Skeleton)
	assert.True(t, m.Skinned())
	skel := m.Skeleton
	require.Len(t, skel.Joints, 2)
	assert.Equal(t, "hip", skel.Joints[0].Name)
	assert.Equal(t, -1, skel.Joints[0].ParentIndex)
	assert.Equal(t, "knee", skel.Joints[1].Name)
	assert.Equal(t, 0, skel.Joints[1].ParentIndex)
	assert.Equal(t, mgl32.Translate3D(0, -2, 0), skel.Joints[1].InverseBind)

	// Vertex joints follow the parents-first reorder.
	verts := m.Meshes[0].Vertices
	assert.Equal(t, uint32(1), verts[0].Joints[0])
	assert.Equal(t, uint32(0), verts[1].Joints[0])

	skel.Update()
	for i := range skel.BoneMatrices {
		ident := mgl32.Ident4()
		for k := range ident {
			assert.InDelta(t, ident[k], skel.BoneMatrices[i][k], 1e-5, "bone %d", i)
		}
	}

	require.Len(t, m.Clips, 1)
	clip := m.Clips[0]
	assert.Equal(t, "walk", clip.Name)
	assert.Equal(t, float32(1), clip.Duration)
	require.Len(t, clip.Channels, 1)
	ch := clip.Channels[0]
	assert.Equal(t, 1, ch.JointIndex)
	assert.Equal(t, []float32{0, 0.5, 1}, ch.TranslationTimes)
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, ch.TranslationValues[1])

	_, ok := m.Clip("walk")
	assert.True(t, ok)
	a, anim := m.Instantiate()
	assert.NotSame(t, skel, a)
	assert.True(t, anim.Playing)
}

func TestSplineAndIncreasingKeys(t *testing.T) {
	vals := []int{-1, 10, 1, -2, 20, 2}
	assert.Equal(t, []int{10, 20}, splineValues(vals, true))
	assert.Equal(t, vals, splineValues(vals, false))

	times, values := keepIncreasing([]float32{0, 1, 1, 0.5, 2}, []string{"a", "b", "c", "d", "e"})
	assert.Equal(t, []float32{0, 1, 2}, times)
	assert.Equal(t, []string{"a", "b", "e"}, values)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadAllDecodesTexturesAndCaches(t *testing.T) {
	dir := t.TempDir()

	textured := nestedTriangle(t)
	bv := textured.view(encodePNG(t, 2, 1))
	textured.doc.Images = []gltfImage{{MimeType: "image/png", BufferView: ptr(bv)}}
	textured.doc.Textures = []gltfTexture{{Source: ptr(0)}}
	textured.doc.Materials = []gltfMaterial{{Name: "brick", PbrMetallicRoughness: &gltfPbrMetallicRoughness{
		BaseColorFactor:  &[4]float32{0.5, 0.5, 0.5, 1},
		BaseColorTexture: &gltfTextureInfo{Index: 0},
	}}}
	textured.doc.Meshes[0].Primitives[0].Material = ptr(0)

	texPath := filepath.Join(dir, "building.glb")
	require.NoError(t, os.WriteFile(texPath, textured.glb(t), 0o644))
	skinPath := filepath.Join(dir, "monster.gltf")
	require.NoError(t, os.WriteFile(skinPath, skinnedDoc(t).gltf(t), 0o644))

	l := NewLoader(WithWorkers(2))
	models, err := l.LoadAll([]string{texPath, skinPath})
	require.NoError(t, err)
	require.Len(t, models, 2)

	mesh := models[texPath].Meshes[0]
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0.5, 1}, mesh.BaseColor)
	require.NotNil(t, mesh.Image)
	assert.Equal(t, 2, mesh.Image.Width)
	assert.Equal(t, 1, mesh.Image.Height)
	assert.Equal(t, []byte{255, 0, 0, 255}, mesh.Image.Pixels[:4])
	assert.NotNil(t, models[skinPath].Skeleton)

	again, err := l.Load(texPath)
	require.NoError(t, err)
	assert.Same(t, models[texPath], again)

	_, err = l.LoadAll([]string{filepath.Join(dir, "missing.glb")})
	assert.Error(t, err)
}

func TestDecodeImagesKeepsOrder(t *testing.T) {
	l := NewLoader()
	imgs, err := l.DecodeImages([]common.ImageSource{
		{Name: "a", Data: encodePNG(t, 3, 1)},
		{Name: "b", Data: encodePNG(t, 1, 4)},
	})
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	assert.Equal(t, 3, imgs[0].Width)
	assert.Equal(t, 4, imgs[1].Height)

	_, err = l.DecodeImages([]common.ImageSource{{Name: "bad", Data: []byte("nope")}})
	assert.Error(t, err)
}
