package spatial

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridBoxes(n int, spacing float32) []common.AABB {
	var boxes []common.AABB
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			c := mgl32.Vec3{float32(x) * spacing, 5, float32(z) * spacing}
			boxes = append(boxes, common.AABBFromCenter(c, mgl32.Vec3{2, 5, 2}))
		}
	}
	return boxes
}

func collect(t *Octree, ni int, obj int) bool {
	n := t.nodes[ni]
	for _, o := range n.objects {
		if o == obj {
			return true
		}
	}
	if n.leaf {
		return false
	}
	for _, c := range n.children {
		if c != noChild && collect(t, int(c), obj) {
			return true
		}
	}
	return false
}

func TestBuildRootBoundsIsPaddedCube(t *testing.T) {
	boxes := []common.AABB{
		{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 2, 4}},
	}
	tree := Build(boxes)
	size := tree.Bounds().Size()
	assert.InDelta(t, 12, size[0], 1e-5)
	assert.InDelta(t, 12, size[1], 1e-5)
	assert.InDelta(t, 12, size[2], 1e-5)
	assert.Equal(t, boxes[0].Center(), tree.Bounds().Center())
}

func TestBuildEveryObjectReachable(t *testing.T) {
	boxes := gridBoxes(10, 20)
	tree := Build(boxes)
	require.Greater(t, len(tree.nodes), 1, "a 100-object grid must subdivide")
	for i := range boxes {
		assert.True(t, collect(tree, 0, i), "object %d not stored", i)
	}
	for _, n := range tree.nodes {
		for _, obj := range n.objects {
			assert.True(t, n.bounds.Intersects(boxes[obj]))
		}
	}
}

func TestBuildAbandonsUselessSplit(t *testing.T) {
	var boxes []common.AABB
	for i := 0; i < 20; i++ {
		boxes = append(boxes, common.AABB{Min: mgl32.Vec3{-5, -5, -5}, Max: mgl32.Vec3{5, 5, 5}})
	}
	tree := Build(boxes)
	assert.Len(t, tree.nodes, 1)
	assert.Len(t, tree.nodes[0].objects, 20)
}

func TestQueryFrustumNoFalseNegatives(t *testing.T) {
	boxes := gridBoxes(12, 20)
	tree := Build(boxes)
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		eye := mgl32.Vec3{rng.Float32() * 240, 3 + rng.Float32()*20, rng.Float32() * 240}
		target := mgl32.Vec3{rng.Float32() * 240, 0, rng.Float32() * 240}
		vp := common.Perspective(common.Radians(60), 16.0/9.0, 0.1, 150).Mul4(common.LookAt(eye, target, common.Up))
		f := common.ExtractFrustum(vp)

		got := tree.QueryFrustum(f, nil)
		seen := make(map[int]int)
		for _, o := range got {
			seen[o]++
		}
		for i, b := range boxes {
			if f.ContainsPoint(b.Center()) {
				assert.Equal(t, 1, seen[i], "trial %d object %d", trial, i)
			}
		}
		for o, n := range seen {
			assert.Equal(t, 1, n, "object %d reported %d times", o, n)
		}
	}
}

func TestQueryRadiusIsBoxShaped(t *testing.T) {
	boxes := []common.AABB{
		common.AABBFromCenter(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 0.5, 0.5}),
		// Inside the square of side 2r but outside the circle of radius r.
		common.AABBFromCenter(mgl32.Vec3{9, 0, 9}, mgl32.Vec3{0.5, 0.5, 0.5}),
		common.AABBFromCenter(mgl32.Vec3{30, 0, 0}, mgl32.Vec3{0.5, 0.5, 0.5}),
	}
	tree := Build(boxes)
	got := tree.QueryRadius(mgl32.Vec3{0, 0, 0}, 10, nil)
	assert.Equal(t, []int{0, 1}, got)
}

func TestQueryResultsAreStable(t *testing.T) {
	tree := Build(gridBoxes(8, 15))
	a := tree.QueryRadius(mgl32.Vec3{50, 0, 50}, 40, nil)
	b := tree.QueryRadius(mgl32.Vec3{50, 0, 50}, 40, nil)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestRaycastSingleBox(t *testing.T) {
	tree := Build([]common.AABB{
		common.AABBFromCenter(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{1, 1, 1}),
	})

	hit, d := tree.Raycast(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 100)
	require.True(t, hit)
	assert.InDelta(t, 9.0, d, 1e-4)

	hit, _ = tree.Raycast(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 5)
	assert.False(t, hit)

	hit, _ = tree.Raycast(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 100)
	assert.False(t, hit)
}

func TestRaycastReturnsClosest(t *testing.T) {
	boxes := gridBoxes(6, 10)
	boxes = append(boxes, common.AABBFromCenter(mgl32.Vec3{25, 5, -30}, mgl32.Vec3{1, 1, 1}))
	tree := Build(boxes)

	origin := mgl32.Vec3{25, 5, -60}
	hit, d := tree.Raycast(origin, mgl32.Vec3{0, 0, 1}, 1000)
	require.True(t, hit)
	assert.InDelta(t, 29.0, d, 1e-3)
}

func TestRaycastFromInsideBox(t *testing.T) {
	tree := Build([]common.AABB{
		common.AABBFromCenter(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2}),
	})
	hit, d := tree.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, 10)
	require.True(t, hit)
	assert.InDelta(t, 2.0, d, 1e-5)
}

func TestEmptyOctree(t *testing.T) {
	tree := Build(nil)
	assert.Empty(t, tree.QueryRadius(mgl32.Vec3{}, 10, nil))
	hit, _ := tree.Raycast(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 10)
	assert.False(t, hit)
}
