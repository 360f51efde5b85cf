package loader

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// nodeLocal returns a node's transform relative to its parent. glTF matrices are column-major like
// mgl32, and glTF quaternions are stored x, y, z, w.
func nodeLocal(n *gltfNode) mgl32.Mat4 {
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}
	t := mgl32.Vec3{}
	r := mgl32.QuatIdent()
	s := mgl32.Vec3{1, 1, 1}
	if n.Translation != nil {
		t = mgl32.Vec3(*n.Translation)
	}
	if n.Rotation != nil {
		q := *n.Rotation
		r = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}.Normalize()
	}
	if n.Scale != nil {
		s = mgl32.Vec3(*n.Scale)
	}
	return common.TRS(t, r, s)
}

// nodeParents maps every node to its parent, or -1 for roots.
func (f *gltfFile) nodeParents() []int {
	parents := make([]int, len(f.doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range f.doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(parents) {
				parents[c] = i
			}
		}
	}
	return parents
}

// sceneRoots returns the root nodes of the default scene, falling back to every parentless node.
func (f *gltfFile) sceneRoots(parents []int) []int {
	doc := f.doc
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	var roots []int
	for i, p := range parents {
		if p < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeWorld computes the model-space transform of every node reachable from the scene roots, in
// depth-first order. Unreachable nodes are absent from the map.
func (f *gltfFile) nodeWorld(parents []int) (map[int]mgl32.Mat4, []int) {
	world := make(map[int]mgl32.Mat4, len(f.doc.Nodes))
	var order []int

	type item struct {
		node   int
		parent mgl32.Mat4
	}
	roots := f.sceneRoots(parents)
	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{node: roots[i], parent: mgl32.Ident4()})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.node < 0 || it.node >= len(f.doc.Nodes) {
			continue
		}
		if _, seen := world[it.node]; seen {
			continue
		}
		n := &f.doc.Nodes[it.node]
		m := it.parent.Mul4(nodeLocal(n))
		world[it.node] = m
		order = append(order, it.node)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: n.Children[i], parent: m})
		}
	}
	return world, order
}
