package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// skinOf returns the skin used by the first skinned mesh node, or -1.
func (f *gltfFile) skinOf(order []int) int {
	for _, n := range order {
		node := &f.doc.Nodes[n]
		if node.Mesh != nil && node.Skin != nil {
			return *node.Skin
		}
	}
	if len(f.doc.Skins) > 0 {
		return 0
	}
	return -1
}

// extractSkeleton builds a parents-first skeleton from a skin. Joints are reordered breadth-first
// from the roots, so the returned remap translates a skin joint index to its skeleton index and
// jointOf maps node indices to skeleton indices.
func (f *gltfFile) extractSkeleton(skinIndex int, parents []int) (*animation.Skeleton, []int, map[int]int, error) {
	if skinIndex < 0 || skinIndex >= len(f.doc.Skins) {
		return nil, nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &f.doc.Skins[skinIndex]
	if len(skin.Joints) > animation.MaxJoints {
		return nil, nil, nil, fmt.Errorf("skin %d has %d joints, at most %d are supported", skinIndex, len(skin.Joints), animation.MaxJoints)
	}

	var inverseBind [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBind, err = readFloats[[16]float32](f, *skin.InverseBindMatrices, gltfAccessorTypeMat4)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	skinIndexOf := make(map[int]int, len(skin.Joints))
	for i, node := range skin.Joints {
		if node < 0 || node >= len(f.doc.Nodes) {
			return nil, nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, node)
		}
		skinIndexOf[node] = i
	}

	// A joint's parent is its nearest ancestor node that is also a joint.
	parentJoint := make([]int, len(skin.Joints))
	children := make([][]int, len(skin.Joints))
	var roots []int
	for i, node := range skin.Joints {
		parentJoint[i] = -1
		for p := parents[node]; p >= 0; p = parents[p] {
			if pj, ok := skinIndexOf[p]; ok {
				parentJoint[i] = pj
				break
			}
		}
		if parentJoint[i] < 0 {
			roots = append(roots, i)
		} else {
			children[parentJoint[i]] = append(children[parentJoint[i]], i)
		}
	}

	sorted := make([]int, 0, len(skin.Joints))
	queue := append([]int(nil), roots...)
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		sorted = append(sorted, j)
		queue = append(queue, children[j]...)
	}
	if len(sorted) != len(skin.Joints) {
		return nil, nil, nil, fmt.Errorf("skin %d: joint hierarchy contains a cycle", skinIndex)
	}

	remap := make([]int, len(skin.Joints))
	for newIdx, oldIdx := range sorted {
		remap[oldIdx] = newIdx
	}

	joints := make([]animation.Joint, len(sorted))
	jointOf := make(map[int]int, len(sorted))
	for newIdx, oldIdx := range sorted {
		nodeIdx := skin.Joints[oldIdx]
		node := &f.doc.Nodes[nodeIdx]
		j := animation.Joint{
			Name:        node.Name,
			ParentIndex: -1,
			InverseBind: mgl32.Ident4(),
			Local:       nodeLocal(node),
		}
		if j.Name == "" {
			j.Name = fmt.Sprintf("joint_%d", oldIdx)
		}
		if parentJoint[oldIdx] >= 0 {
			j.ParentIndex = remap[parentJoint[oldIdx]]
		}
		if oldIdx < len(inverseBind) {
			j.InverseBind = mgl32.Mat4(inverseBind[oldIdx])
		}
		joints[newIdx] = j
		jointOf[nodeIdx] = newIdx
	}

	skel, err := animation.NewSkeleton(joints)
	if err != nil {
		return nil, nil, nil, err
	}
	return skel, remap, jointOf, nil
}

// remapJoints rewrites vertex joint indices from skin order to skeleton order.
func remapJoints(meshes []MeshData, remap []int) {
	for i := range meshes {
		if !meshes[i].Skinned {
			continue
		}
		for v := range meshes[i].Vertices {
			vert := &meshes[i].Vertices[v]
			for k := 0; k < 4; k++ {
				if int(vert.Joints[k]) < len(remap) {
					vert.Joints[k] = uint32(remap[vert.Joints[k]])
				}
			}
		}
	}
}
