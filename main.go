package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/lp249839965/embree/pkg/bvhmb"
	"github.com/lp249839965/embree/pkg/bvhmb/heuristic"
	"github.com/lp249839965/embree/pkg/core"
	"github.com/lp249839965/embree/pkg/geom"
)

// node is the tree representation this command builds: just enough to
// report depth, leaf size and bounds statistics, not a real traversal
// structure.
type node struct {
	Bounds   core.LBBox
	Leaf     bool
	Size     int
	Depth    int
	Children []*node
}

func newCallbacks() bvhmb.Callbacks[*node] {
	return bvhmb.Callbacks[*node]{
		CreateAlloc: func() *bvhmb.NodeAllocator[*node] {
			return bvhmb.NewNodeAllocator(func() *node { return &node{} })
		},
		CreateLeaf: func(set bvhmb.Set, alloc *bvhmb.NodeAllocator[*node]) (*node, error) {
			bounds := core.EmptyLBBox()
			for _, p := range set.Prims() {
				bounds = bounds.Union(p.Bounds)
			}
			n := alloc.Get()
			*n = node{Bounds: bounds, Leaf: true, Size: set.Size()}
			return n, nil
		},
		CreateNode: func(depth int, children []*node, alloc *bvhmb.NodeAllocator[*node]) (*node, error) {
			bounds := core.EmptyLBBox()
			size := 0
			for _, c := range children {
				bounds = bounds.Union(c.Bounds)
				size += c.Size
			}
			n := alloc.Get()
			*n = node{Bounds: bounds, Depth: depth, Size: size, Children: children}
			return n, nil
		},
	}
}

// treeStats walks a built tree and summarizes it for the JSON report.
type treeStats struct {
	Primitives int `json:"primitives"`
	Leaves     int `json:"leaves"`
	InnerNodes int `json:"innerNodes"`
	MaxDepth   int `json:"maxDepth"`
	MaxLeaf    int `json:"maxLeafSize"`
}

func summarize(root *node) treeStats {
	var s treeStats
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if n.Leaf {
			s.Leaves++
			s.Primitives += n.Size
			if n.Size > s.MaxLeaf {
				s.MaxLeaf = n.Size
			}
			return
		}
		s.InnerNodes++
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return s
}

// gridMesh builds n unit triangles laid out spacing apart along x, none of
// them moving — the static bulk of the demo scene.
func gridMesh(n int, spacing float64) *geom.MotionTriangleMesh {
	var verts []core.Vec3
	var faces []int
	for i := 0; i < n; i++ {
		x := float64(i) * spacing
		base := len(verts)
		verts = append(verts,
			core.NewVec3(x, 0, 0),
			core.NewVec3(x+1, 0, 0),
			core.NewVec3(x, 1, 0),
		)
		faces = append(faces, base, base+1, base+2)
	}
	return geom.StaticTriangleMesh(verts, faces)
}

// sweepingMesh builds a single triangle that travels a long distance over
// the shutter interval across 8 motion segments, forcing temporal splits in
// an otherwise static scene (totalTimeSegments must be > 1 for a temporal
// split to have a finer time range left to bisect into).
func sweepingMesh(distance float64) *geom.MotionTriangleMesh {
	const segments = 8
	keyframes := make([][]core.Vec3, segments+1)
	for i := range keyframes {
		x := float64(i) / float64(segments) * distance
		keyframes[i] = []core.Vec3{core.NewVec3(x, 0, 0), core.NewVec3(x+1, 0, 0), core.NewVec3(x, 1, 0)}
	}
	return geom.NewMotionTriangleMesh(keyframes, []int{0, 1, 2})
}

func primsFromMesh(geomID uint32, mesh *geom.MotionTriangleMesh, timeRange core.TimeRange) bvhmb.PrimArray {
	total := mesh.NumTimeSegments()
	prims := make(bvhmb.PrimArray, mesh.NumTriangles())
	for i := range prims {
		segRange := core.TimeSegmentRange(timeRange, total)
		prims[i] = bvhmb.PrimRef{
			GeomID:             geomID,
			PrimID:             uint32(i),
			Bounds:             mesh.LinearBounds(i, timeRange),
			ActiveTimeSegments: segRange.Size(),
			TotalTimeSegments:  total,
		}
	}
	return prims
}

func main() {
	triangles := flag.Int("triangles", 2000, "number of static triangles in the grid")
	moving := flag.Int("moving", 5, "number of independently sweeping moving triangles")
	maxLeafSize := flag.Int("max-leaf-size", 8, "maximum primitives per leaf")
	branchingFactor := flag.Int("branching-factor", 2, "maximum children per inner node")
	singleLeafTimeSegment := flag.Bool("single-leaf-time-segment", false, "force every leaf to cover at most one motion segment")
	help := flag.Bool("help", false, "show help information")
	flag.Parse()

	if *help {
		fmt.Println("Motion-blur BVH builder demo")
		fmt.Println("Usage: embree [options]")
		fmt.Println()
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Output is written to output/<run>/summary.json")
		return
	}

	undo, err := maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	if err != nil {
		fmt.Printf("maxprocs: %v\n", err)
	}
	defer undo()

	zapLog, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("zap: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	logger := bvhmb.NewZapLogger(zapLog.Sugar())

	staticMesh := gridMesh(*triangles, 3.0)
	backend := geom.MeshSet{0: staticMesh}
	prims := primsFromMesh(0, staticMesh, core.UnitTimeRange())

	for i := 0; i < *moving; i++ {
		m := sweepingMesh(float64(20 * (i + 1)))
		geomID := uint32(i + 1)
		backend[geomID] = m
		prims = append(prims, primsFromMesh(geomID, m, core.UnitTimeRange())...)
	}

	cfg := bvhmb.Default()
	cfg.MaxLeafSize = *maxLeafSize
	cfg.BranchingFactor = *branchingFactor
	cfg.SingleLeafTimeSegment = *singleLeafTimeSegment
	if err := cfg.Validate(); err != nil {
		fmt.Printf("invalid config: %v\n", err)
		os.Exit(1)
	}

	recalc := bvhmb.NewRecalculator(backend)
	sel := &bvhmb.Selector{
		Object:                heuristic.NewObjectBinning(cfg.TravCost, cfg.IntCost),
		Temporal:              heuristic.NewTemporalBinning(cfg.TravCost, cfg.IntCost, recalc),
		LogBlockSize:          cfg.LogBlockSize,
		SingleLeafTimeSegment: cfg.SingleLeafTimeSegment,
	}

	memory := bvhmb.NewMemoryMonitor(512 << 20)
	progress := func(primCount int) error {
		logger.Printf("progress: top-level subtree down to %d primitives", primCount)
		return nil
	}
	builder, err := bvhmb.New(cfg, sel, newCallbacks(),
		bvhmb.WithLogger[*node](logger),
		bvhmb.WithMemoryMonitor[*node](memory),
		bvhmb.WithProgressMonitor[*node](progress),
	)
	if err != nil {
		fmt.Printf("failed to construct builder: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	root, err := builder.Build(context.Background(), prims)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("build failed: %v\n", err)
		os.Exit(1)
	}

	stats := summarize(root)
	fmt.Printf("build completed in %v\n", elapsed)
	fmt.Printf("primitives=%d leaves=%d innerNodes=%d maxDepth=%d maxLeafSize=%d\n",
		stats.Primitives, stats.Leaves, stats.InnerNodes, stats.MaxDepth, stats.MaxLeaf)

	runID := uuid.NewString()
	outputDir := filepath.Join("output", runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("error creating output directory: %v\n", err)
		os.Exit(1)
	}

	report := struct {
		RunID         string       `json:"runId"`
		ElapsedMillis int64        `json:"elapsedMillis"`
		Config        bvhmb.Config `json:"config"`
		Stats         treeStats    `json:"stats"`
	}{
		RunID:         runID,
		ElapsedMillis: elapsed.Milliseconds(),
		Config:        cfg,
		Stats:         stats,
	}

	summaryPath := filepath.Join(outputDir, "summary.json")
	f, err := os.Create(summaryPath)
	if err != nil {
		fmt.Printf("error creating summary file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Printf("error writing summary: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("summary saved as %s\n", summaryPath)
}
