package geom

import "github.com/lp249839965/embree/pkg/core"

// MotionTriangleMesh is a collection of triangles sharing one topology
// (the face index buffer) but a sequence of keyframe vertex buffers, one
// per motion-segment endpoint. It is the motion-blur generalization of the
// teacher's static TriangleMesh: instead of a single vertex array, it
// holds len(Keyframes) snapshots and linearly interpolates between the two
// keyframes bracketing whatever normalized time it is asked about.
//
// Keyframes must all have the same length; Faces is a flat triangle index
// buffer (a multiple of 3 long) shared by every keyframe.
type MotionTriangleMesh struct {
	Keyframes [][]core.Vec3 // len(Keyframes)-1 time segments
	Faces     []int
}

// NewMotionTriangleMesh validates and constructs a motion mesh. Malformed
// input (mismatched slice lengths, non-triple face buffer) is a programmer
// error and panics, matching the teacher's own convention for construction
// input that isn't data-dependent.
func NewMotionTriangleMesh(keyframes [][]core.Vec3, faces []int) *MotionTriangleMesh {
	if len(keyframes) < 2 {
		panic("MotionTriangleMesh requires at least two keyframes")
	}
	if len(faces)%3 != 0 {
		panic("face indices must be a multiple of 3")
	}
	numVerts := len(keyframes[0])
	for i, kf := range keyframes {
		if len(kf) != numVerts {
			panic("all keyframes must have the same vertex count")
		}
		_ = i
	}
	for _, idx := range faces {
		if idx < 0 || idx >= numVerts {
			panic("face index out of bounds")
		}
	}
	return &MotionTriangleMesh{Keyframes: keyframes, Faces: faces}
}

// NumTriangles returns the number of triangles (primitives) in the mesh.
func (m *MotionTriangleMesh) NumTriangles() int {
	return len(m.Faces) / 3
}

// NumTimeSegments implements Mesh.
func (m *MotionTriangleMesh) NumTimeSegments() int {
	return len(m.Keyframes) - 1
}

// vertexAt linearly interpolates vertex i's position at normalized time t.
func (m *MotionTriangleMesh) vertexAt(i int, t float64) core.Vec3 {
	numSegments := m.NumTimeSegments()
	segF := t * float64(numSegments)
	seg := int(segF)
	if seg < 0 {
		seg = 0
	}
	if seg > numSegments-1 {
		seg = numSegments - 1
	}
	local := segF - float64(seg)
	return m.Keyframes[seg][i].Lerp(m.Keyframes[seg+1][i], local)
}

// LinearBounds implements Mesh.
func (m *MotionTriangleMesh) LinearBounds(primID int, timeRange core.TimeRange) core.LBBox {
	i0, i1, i2 := m.Faces[primID*3], m.Faces[primID*3+1], m.Faces[primID*3+2]

	bounds0 := core.NewAABBFromPoints(
		m.vertexAt(i0, timeRange.Start),
		m.vertexAt(i1, timeRange.Start),
		m.vertexAt(i2, timeRange.Start),
	)
	bounds1 := core.NewAABBFromPoints(
		m.vertexAt(i0, timeRange.End),
		m.vertexAt(i1, timeRange.End),
		m.vertexAt(i2, timeRange.End),
	)
	return core.LBBox{Bounds0: bounds0, Bounds1: bounds1}
}

// StaticTriangleMesh builds a MotionTriangleMesh with a single time
// segment (two identical keyframes) — a convenience for primitives that
// don't move, matching scenario S1/S2/S3 in the spec.
func StaticTriangleMesh(vertices []core.Vec3, faces []int) *MotionTriangleMesh {
	return NewMotionTriangleMesh([][]core.Vec3{vertices, vertices}, faces)
}
