// Package spatial holds the static-geometry index used for culling, shadow gathering and camera
// collision.
package spatial

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxObjectsPerNode is the leaf capacity before a split is attempted.
	MaxObjectsPerNode = 8
	// MaxDepth is the deepest level a node may split to.
	MaxDepth = 8

	boundsPadding = 1
	noChild       = -1
)

type node struct {
	bounds   common.AABB
	depth    int
	leaf     bool
	children [8]int32
	objects  []int
}

// Octree indexes a fixed set of boxes. Nodes live in a flat arena and address their children by
// index. Objects are referenced by their position in the slice passed to Build.
//
// Queries share scratch state and must not run concurrently.
type Octree struct {
	boxes []common.AABB
	nodes []node
	seen  []uint32
	stamp uint32
}

// Build creates an octree over boxes. The root bounds are the union of all boxes padded by one
// unit and grown to a cube.
//
// Parameters:
//   - boxes: the object bounds; the octree keeps the slice and never mutates it
//
// Returns:
//   - *Octree: the populated octree
func Build(boxes []common.AABB) *Octree {
	t := &Octree{
		boxes: boxes,
		seen:  make([]uint32, len(boxes)),
	}
	var bounds common.AABB
	for i, b := range boxes {
		if i == 0 {
			bounds = b
			continue
		}
		bounds = bounds.Union(b)
	}
	t.nodes = append(t.nodes, newNode(bounds.Expand(boundsPadding).Cube(), 0))
	for i := range boxes {
		t.insert(0, i)
	}
	return t
}

func newNode(bounds common.AABB, depth int) node {
	n := node{bounds: bounds, depth: depth, leaf: true}
	for i := range n.children {
		n.children[i] = noChild
	}
	return n
}

func (t *Octree) insert(ni int, obj int) {
	n := &t.nodes[ni]
	if !n.leaf {
		placed := false
		for _, c := range n.children {
			if c != noChild && t.nodes[c].bounds.Intersects(t.boxes[obj]) {
				t.insert(int(c), obj)
				placed = true
			}
		}
		if !placed {
			t.nodes[ni].objects = append(t.nodes[ni].objects, obj)
		}
		return
	}

	n.objects = append(n.objects, obj)
	if len(n.objects) > MaxObjectsPerNode && n.depth < MaxDepth {
		t.split(ni)
	}
}

// octants returns the eight child boxes of b split at its center.
func octants(b common.AABB) [8]common.AABB {
	c := b.Center()
	var out [8]common.AABB
	for i := range out {
		var lo, hi mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) == 0 {
				lo[axis], hi[axis] = b.Min[axis], c[axis]
			} else {
				lo[axis], hi[axis] = c[axis], b.Max[axis]
			}
		}
		out[i] = common.AABB{Min: lo, Max: hi}
	}
	return out
}

// split turns a leaf into an interior node. The split is abandoned when every object would land
// in every child, since subdividing would then only multiply the object lists.
func (t *Octree) split(ni int) {
	n := t.nodes[ni]
	kids := octants(n.bounds)

	useful := false
	for _, obj := range n.objects {
		for _, k := range kids {
			if !k.Intersects(t.boxes[obj]) {
				useful = true
				break
			}
		}
		if useful {
			break
		}
	}
	if !useful {
		return
	}

	for i, k := range kids {
		t.nodes = append(t.nodes, newNode(k, n.depth+1))
		t.nodes[ni].children[i] = int32(len(t.nodes) - 1)
	}
	t.nodes[ni].leaf = false
	t.nodes[ni].objects = nil

	for _, obj := range n.objects {
		t.insert(ni, obj)
	}
}

// Len returns the number of indexed objects.
func (t *Octree) Len() int {
	return len(t.boxes)
}

// Bounds returns the root bounds.
func (t *Octree) Bounds() common.AABB {
	return t.nodes[0].bounds
}

// Box returns the bounds of object i.
func (t *Octree) Box(i int) common.AABB {
	return t.boxes[i]
}

func (t *Octree) nextStamp() {
	t.stamp++
	if t.stamp == 0 {
		clear(t.seen)
		t.stamp = 1
	}
}

// visit reports obj once per query.
func (t *Octree) visit(obj int) bool {
	if t.seen[obj] == t.stamp {
		return false
	}
	t.seen[obj] = t.stamp
	return true
}

// QueryFrustum appends to out the index of every object whose box is at least partially inside f.
// Results are sorted and unique.
//
// Parameters:
//   - f: the view frustum
//   - out: destination slice, reused when it has capacity
//
// Returns:
//   - []int: out with the visible object indices appended
func (t *Octree) QueryFrustum(f common.Frustum, out []int) []int {
	out = out[:0]
	if len(t.boxes) == 0 {
		return out
	}
	t.nextStamp()
	stack := []int32{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[ni]
		if !f.IntersectsAABB(n.bounds) {
			continue
		}
		for _, obj := range n.objects {
			if t.visit(obj) && f.IntersectsAABB(t.boxes[obj]) {
				out = append(out, obj)
			}
		}
		if !n.leaf {
			for _, c := range n.children {
				if c != noChild {
					stack = append(stack, c)
				}
			}
		}
	}
	slices.Sort(out)
	return out
}

// QueryRadius appends to out every object whose box intersects the axis-aligned box of side 2r
// centered on center. Corners of that box count, so this is broader than a sphere test.
func (t *Octree) QueryRadius(center mgl32.Vec3, radius float32, out []int) []int {
	out = out[:0]
	if len(t.boxes) == 0 {
		return out
	}
	query := common.AABBFromCenter(center, mgl32.Vec3{radius, radius, radius})
	t.nextStamp()
	stack := []int32{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[ni]
		if !n.bounds.Intersects(query) {
			continue
		}
		for _, obj := range n.objects {
			if t.visit(obj) && t.boxes[obj].Intersects(query) {
				out = append(out, obj)
			}
		}
		if !n.leaf {
			for _, c := range n.children {
				if c != noChild {
					stack = append(stack, c)
				}
			}
		}
	}
	slices.Sort(out)
	return out
}

// Raycast finds the closest object hit along a ray.
//
// Parameters:
//   - origin: ray origin
//   - dir: ray direction; need not be normalized, distances are in units of dir
//   - maxDist: the farthest accepted hit distance
//
// Returns:
//   - bool: true if an object is hit within [0, maxDist]
//   - float32: the hit distance, or maxDist when nothing is hit
func (t *Octree) Raycast(origin, dir mgl32.Vec3, maxDist float32) (bool, float32) {
	if len(t.boxes) == 0 {
		return false, maxDist
	}
	inv := common.InverseDirection(dir)
	best := maxDist
	hit := false
	stack := []int32{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[ni]
		if !n.bounds.Contains(origin) {
			tmin, _, ok := n.bounds.RaySlab(origin, inv)
			if !ok || tmin > best {
				continue
			}
		}
		for _, obj := range n.objects {
			d, ok := t.boxes[obj].Raycast(origin, inv)
			if ok && d >= 0 && d <= best {
				best = d
				hit = true
			}
		}
		if !n.leaf {
			for _, c := range n.children {
				if c != noChild {
					stack = append(stack, c)
				}
			}
		}
	}
	return hit, best
}
