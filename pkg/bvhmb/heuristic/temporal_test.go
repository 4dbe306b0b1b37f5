package heuristic

import (
	"context"
	"testing"

	"github.com/lp249839965/embree/pkg/bvhmb"
	"github.com/lp249839965/embree/pkg/core"
	"github.com/lp249839965/embree/pkg/geom"
)

func fastMovingMesh() *geom.MotionTriangleMesh {
	k0 := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
	k1 := []core.Vec3{core.NewVec3(50, 0, 0), core.NewVec3(51, 0, 0), core.NewVec3(50, 1, 0)}
	return geom.NewMotionTriangleMesh([][]core.Vec3{k0, k1}, []int{0, 1, 2})
}

func movingSet(mesh *geom.MotionTriangleMesh) bvhmb.Set {
	total := mesh.NumTimeSegments()
	prims := bvhmb.PrimArray{{
		GeomID:             0,
		PrimID:             0,
		Bounds:             mesh.LinearBounds(0, core.UnitTimeRange()),
		ActiveTimeSegments: total,
		TotalTimeSegments:  total,
	}}
	return bvhmb.NewRootSet(prims)
}

func TestTemporalBinning_FindPrefersSplittingAFastMovingPrimitive(t *testing.T) {
	mesh := fastMovingMesh()
	backend := geom.MeshSet{0: mesh}
	recalc := bvhmb.NewRecalculator(backend)
	h := NewTemporalBinning(1, 1, recalc)

	set := movingSet(mesh)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := h.Find(set, pinfo, 0)

	if !split.Valid() {
		t.Fatalf("expected a valid temporal split for a fast-moving primitive's full shutter interval")
	}
	if split.Kind != bvhmb.SplitTemporal {
		t.Errorf("Kind = %v, want SplitTemporal", split.Kind)
	}
}

func TestTemporalBinning_PartitionAllocatesIndependentHalves(t *testing.T) {
	mesh := fastMovingMesh()
	backend := geom.MeshSet{0: mesh}
	recalc := bvhmb.NewRecalculator(backend)
	h := NewTemporalBinning(1, 1, recalc)

	set := movingSet(mesh)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := bvhmb.Split{Kind: bvhmb.SplitTemporal, SplitTime: 0.5}

	lset, linfo, rset, rinfo, err := h.Partition(context.Background(), split, set, pinfo)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if lset.Vec == set.Vec || rset.Vec == set.Vec || lset.Vec == rset.Vec {
		t.Fatalf("expected a temporal split to allocate two vectors distinct from the parent and each other")
	}
	if lset.Vec.RefCount() != 1 || rset.Vec.RefCount() != 1 {
		t.Errorf("expected freshly allocated vectors to start at refcount 1")
	}
	if linfo.Size != 1 || rinfo.Size != 1 {
		t.Fatalf("expected both halves to retain the single primitive, got %d and %d", linfo.Size, rinfo.Size)
	}
	if lset.TimeRange.End != 0.5 || rset.TimeRange.Start != 0.5 {
		t.Errorf("expected the halves' time ranges to meet at the split time, got %+v / %+v", lset.TimeRange, rset.TimeRange)
	}

	lset.Vec.Release()
	rset.Vec.Release()
}

func TestTemporalBinning_PartitionReservesAndReleasesThroughMemoryMonitor(t *testing.T) {
	mesh := fastMovingMesh()
	backend := geom.MeshSet{0: mesh}
	recalc := bvhmb.NewRecalculator(backend)
	monitor := bvhmb.NewMemoryMonitor(1 << 20)

	h := NewTemporalBinning(1, 1, recalc)
	h.Memory = monitor

	set := movingSet(mesh)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := bvhmb.Split{Kind: bvhmb.SplitTemporal, SplitTime: 0.5}

	lset, _, rset, _, err := h.Partition(context.Background(), split, set, pinfo)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}

	// Releasing both halves should return their reservations to the
	// monitor without blocking a subsequent reservation of the same size.
	lset.Vec.Release()
	rset.Vec.Release()

	if err := monitor.Reserve(context.Background(), bvhmb.PrimRefBytes(1)); err != nil {
		t.Fatalf("expected budget to be available again after both halves freed: %v", err)
	}
}
