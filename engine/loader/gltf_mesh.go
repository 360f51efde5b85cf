package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// extractMeshes walks the scene graph and converts every triangle primitive of every mesh node.
// Unskinned primitives are baked into model space with their node transform. Non-triangle
// primitives are counted and skipped.
func (f *gltfFile) extractMeshes(world map[int]mgl32.Mat4, order []int) ([]MeshData, int, error) {
	var out []MeshData
	skipped := 0
	for _, nodeIdx := range order {
		node := &f.doc.Nodes[nodeIdx]
		if node.Mesh == nil {
			continue
		}
		if *node.Mesh < 0 || *node.Mesh >= len(f.doc.Meshes) {
			return nil, 0, fmt.Errorf("node %d: mesh index %d out of range", nodeIdx, *node.Mesh)
		}
		mesh := &f.doc.Meshes[*node.Mesh]
		for primIdx := range mesh.Primitives {
			prim := &mesh.Primitives[primIdx]
			if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
				skipped++
				continue
			}
			md, err := f.extractPrimitive(prim, node.Skin != nil)
			if err != nil {
				return nil, 0, fmt.Errorf("mesh %d primitive %d: %w", *node.Mesh, primIdx, err)
			}
			md.Name = mesh.Name
			if md.Name == "" {
				md.Name = fmt.Sprintf("mesh_%d", *node.Mesh)
			}
			if primIdx > 0 {
				md.Name = fmt.Sprintf("%s_prim%d", md.Name, primIdx)
			}
			if !md.Skinned {
				bakeTransform(md.Vertices, world[nodeIdx])
			}
			out = append(out, md)
		}
	}
	return out, skipped, nil
}

func (f *gltfFile) extractPrimitive(prim *gltfPrimitive, nodeSkinned bool) (MeshData, error) {
	posAcc, ok := prim.Attributes["POSITION"]
	if !ok {
		return MeshData{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := readFloats[[3]float32](f, posAcc, gltfAccessorTypeVec3)
	if err != nil {
		return MeshData{}, fmt.Errorf("failed to read positions: %w", err)
	}

	n := len(positions)
	verts := make([]gfx.SkinnedVertex, n)
	for i, p := range positions {
		verts[i].Position = p
	}

	hasNormals := false
	if acc, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := readFloats[[3]float32](f, acc, gltfAccessorTypeVec3)
		if err != nil {
			return MeshData{}, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := 0; i < min(n, len(normals)); i++ {
			verts[i].Normal = normals[i]
		}
		hasNormals = true
	}

	if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := readFloats[[2]float32](f, acc, gltfAccessorTypeVec2)
		if err != nil {
			return MeshData{}, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := 0; i < min(n, len(uvs)); i++ {
			verts[i].UV = uvs[i]
		}
	}

	jointsAcc, hasJoints := prim.Attributes["JOINTS_0"]
	weightsAcc, hasWeights := prim.Attributes["WEIGHTS_0"]
	skinned := nodeSkinned && hasJoints && hasWeights
	if skinned {
		joints, err := readUints(f, jointsAcc, gltfAccessorTypeVec4)
		if err != nil {
			return MeshData{}, fmt.Errorf("failed to read joints: %w", err)
		}
		weights, err := readWeights(f, weightsAcc)
		if err != nil {
			return MeshData{}, fmt.Errorf("failed to read weights: %w", err)
		}
		for i := 0; i < n && i*4+3 < len(joints) && i < len(weights); i++ {
			verts[i].Joints = [4]uint32{joints[i*4], joints[i*4+1], joints[i*4+2], joints[i*4+3]}
			verts[i].Weights = weights[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = readUints(f, *prim.Indices, gltfAccessorTypeScalar)
		if err != nil {
			return MeshData{}, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= n {
			return MeshData{}, fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}

	if !hasNormals && len(indices) >= 3 {
		generateNormals(verts, indices)
	}

	md := MeshData{
		Vertices:  verts,
		Indices:   indices,
		Skinned:   skinned,
		BaseColor: mgl32.Vec4{1, 1, 1, 1},
	}
	if prim.Material != nil {
		if err := f.applyMaterial(&md, *prim.Material); err != nil {
			return MeshData{}, err
		}
	}
	return md, nil
}

// bakeTransform moves positions into model space and normals by the inverse-transpose.
func bakeTransform(verts []gfx.SkinnedVertex, m mgl32.Mat4) {
	if m == mgl32.Ident4() {
		return
	}
	normalMat := m.Mat3().Inv().Transpose()
	for i := range verts {
		p := m.Mul4x1(mgl32.Vec3(verts[i].Position).Vec4(1)).Vec3()
		verts[i].Position = p
		nrm := normalMat.Mul3x1(mgl32.Vec3(verts[i].Normal))
		if nrm.Len() > 1e-6 {
			nrm = nrm.Normalize()
		}
		verts[i].Normal = nrm
	}
}

// meshBounds encloses every vertex of every mesh.
func meshBounds(meshes []MeshData) common.AABB {
	first := true
	var b common.AABB
	for i := range meshes {
		for _, v := range meshes[i].Vertices {
			p := mgl32.Vec3(v.Position)
			if first {
				b = common.AABB{Min: p, Max: p}
				first = false
				continue
			}
			b = b.Union(common.AABB{Min: p, Max: p})
		}
	}
	return b
}

// generateNormals assigns area-weighted smooth normals from the triangle list.
func generateNormals(verts []gfx.SkinnedVertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(verts))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(verts[i0].Position)
		e1 := mgl32.Vec3(verts[i1].Position).Sub(p0)
		e2 := mgl32.Vec3(verts[i2].Position).Sub(p0)
		face := e1.Cross(e2)
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}
	for i, a := range accum {
		if a.Len() < 1e-6 {
			verts[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		verts[i].Normal = a.Normalize()
	}
}
