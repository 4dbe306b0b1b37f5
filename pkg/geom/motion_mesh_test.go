package geom

import (
	"testing"

	"github.com/lp249839965/embree/pkg/core"
)

func TestMotionTriangleMesh_StaticBoundsStable(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}
	mesh := StaticTriangleMesh(vertices, []int{0, 1, 2})

	if mesh.NumTimeSegments() != 1 {
		t.Fatalf("expected 1 time segment for a static mesh, got %d", mesh.NumTimeSegments())
	}

	lbounds := mesh.LinearBounds(0, core.UnitTimeRange())
	const tol = 1e-9
	if lbounds.Bounds0.Min.Subtract(lbounds.Bounds1.Min).Length() > tol {
		t.Errorf("static mesh should have identical bounds at both ends, got %v vs %v", lbounds.Bounds0, lbounds.Bounds1)
	}
	if lbounds.Bounds0.Max.X != 1 || lbounds.Bounds0.Max.Y != 1 {
		t.Errorf("unexpected bounds %v", lbounds.Bounds0)
	}
}

func TestMotionTriangleMesh_InterpolatesAcrossSegments(t *testing.T) {
	start := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}
	end := []core.Vec3{
		core.NewVec3(10, 0, 0),
		core.NewVec3(11, 0, 0),
		core.NewVec3(10, 1, 0),
	}
	mesh := NewMotionTriangleMesh([][]core.Vec3{start, end}, []int{0, 1, 2})

	if mesh.NumTimeSegments() != 1 {
		t.Fatalf("expected 1 time segment, got %d", mesh.NumTimeSegments())
	}

	full := mesh.LinearBounds(0, core.UnitTimeRange())
	if full.Bounds0.Min.X != 0 {
		t.Errorf("expected start bounds min.X == 0, got %v", full.Bounds0.Min.X)
	}
	if full.Bounds1.Max.X != 11 {
		t.Errorf("expected end bounds max.X == 11, got %v", full.Bounds1.Max.X)
	}

	// A sub-range in the middle of the shutter interval should bound a
	// proper subset of the full sweep.
	mid := mesh.LinearBounds(0, core.TimeRange{Start: 0.4, End: 0.6})
	if mid.Bounds0.Min.X < full.Bounds0.Min.X || mid.Bounds1.Max.X > full.Bounds1.Max.X {
		t.Errorf("sub-range bounds %v exceed full sweep %v", mid, full)
	}
}

func TestNewMotionTriangleMesh_PanicsOnMismatchedKeyframes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for mismatched keyframe vertex counts")
		}
	}()
	NewMotionTriangleMesh([][]core.Vec3{
		{core.NewVec3(0, 0, 0)},
		{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)},
	}, []int{0, 0, 0})
}

func TestMeshSet_Lookup(t *testing.T) {
	mesh := StaticTriangleMesh([]core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}, []int{0, 1, 2})

	set := MeshSet{1: mesh}

	if got, ok := set.Mesh(1); !ok || got != mesh {
		t.Errorf("expected to find mesh for geomID 1")
	}
	if _, ok := set.Mesh(2); ok {
		t.Errorf("expected no mesh for unknown geomID 2")
	}
}
