// Package tri2quad converts a conforming triangular mesh into a conforming
// quadrilateral mesh by splitting every triangle into three quadrilaterals
// that share its centroid.
package tri2quad

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/notargets/tri2quad/mesh"
)

// InputMesh is the read-only view of the triangular mesh used by Convert.
// Edges are numbered globally and consistently across elements, and local
// element edge i joins local vertices i and i+1. *mesh.Mesh implements it
// once its topology is finalized.
type InputMesh interface {
	Dimension() int
	SpaceDimension() int
	Geometries(dim int) []mesh.Geometry

	NumVertices() int
	NumEdges() int
	NumElements() int
	NumBdrElements() int

	Vertex(i int) []float64
	EdgeVertices(i int) [2]int

	ElementVertices(i int) []int
	ElementEdges(i int) (edges, orientations []int)
	Attribute(i int) int

	BdrElementVertices(i int) []int
	BdrElementEdges(i int) (edges, orientations []int)
	BdrAttribute(i int) int
}

// Convert splits every triangle of in into three quadrilaterals and every
// boundary segment into two, returning the finalized quadrilateral mesh
func Convert(in InputMesh) (*mesh.Mesh, error) {
	out, _, err := ConvertWithStats(in)
	return out, err
}

// ConvertWithStats is Convert, also reporting entity counts and stage timings
func ConvertWithStats(in InputMesh) (out *mesh.Mesh, stats Stats, err error) {
	if err = CheckInput(in); err != nil {
		return nil, stats, err
	}

	var (
		sdim  = in.SpaceDimension()
		nv    = in.NumVertices()
		nedge = in.NumEdges()
		ntri  = in.NumElements()
		nbe   = in.NumBdrElements()
		bands = vertexBands{nv: nv, nedge: nedge}
	)
	stats = Stats{
		InputVertices:    nv,
		InputEdges:       nedge,
		InputTriangles:   ntri,
		InputBdrElements: nbe,
	}

	out = mesh.New(2, sdim, bands.size(ntri), 3*ntri, 2*nbe)

	stage := stats.timer()
	if err = synthesizeVertices(in, out, bands); err != nil {
		return nil, stats, err
	}
	stage("vertices")
	splitElements(in, out, bands)
	stage("elements")
	splitBoundary(in, out, bands)
	stage("boundary")

	if err = out.FinalizeTopology(); err != nil {
		return nil, stats, errors.New("finalizing quadrilateral mesh topology failed").Wrap(err)
	}
	if err = out.Finalize(mesh.FinalizeOptions{FixOrientation: true}); err != nil {
		return nil, stats, errors.New("finalizing quadrilateral mesh failed").Wrap(err)
	}
	stage("finalize")

	stats.OutputVertices = out.NumVertices()
	stats.OutputQuads = out.NumElements()
	stats.OutputBdrElements = out.NumBdrElements()
	stats.Reoriented = out.Reoriented()

	logs.WithTag("vertices", stats.OutputVertices).
		WithTag("quadrilaterals", stats.OutputQuads).
		WithTag("boundary_segments", stats.OutputBdrElements).
		Debug("triangles split into quadrilaterals")
	return out, stats, nil
}

// CheckInput verifies that in is a two-dimensional mesh made only of triangles
// whose topology, when in can report it, has been finalized
func CheckInput(in InputMesh) error {
	if dim := in.Dimension(); dim != 2 {
		return errors.New("input mesh must be two-dimensional").
			WithTag("dimension", dim)
	}
	geoms := in.Geometries(2)
	if len(geoms) != 1 || geoms[0] != mesh.Triangle {
		return errors.New("input mesh must contain only triangles").
			WithTag("geometries", geoms)
	}
	if tf, ok := in.(topologyFinalizer); ok && !tf.TopologyFinalized() {
		return errors.New("input mesh topology is not finalized")
	}
	return nil
}

// topologyFinalizer is implemented by inputs that can tell whether their edge
// numbering is current
type topologyFinalizer interface {
	TopologyFinalized() bool
}

// synthesizeVertices appends the original vertices, the edge midpoints and the
// triangle centroids, checking that each lands on its band index
func synthesizeVertices(in InputMesh, out *mesh.Mesh, b vertexBands) error {
	x := make([]float64, in.SpaceDimension())

	for v := 0; v < in.NumVertices(); v++ {
		if got := out.AddVertex(in.Vertex(v)); got != b.original(v) {
			return bandError("original", v, got, b.original(v))
		}
	}
	for e := 0; e < in.NumEdges(); e++ {
		ev := in.EdgeVertices(e)
		mean(in, ev[:], x)
		if got := out.AddVertex(x); got != b.midpoint(e) {
			return bandError("midpoint", e, got, b.midpoint(e))
		}
	}
	for k := 0; k < in.NumElements(); k++ {
		mean(in, in.ElementVertices(k), x)
		if got := out.AddVertex(x); got != b.centroid(k) {
			return bandError("centroid", k, got, b.centroid(k))
		}
	}
	return nil
}

// mean stores in x the component-wise average of the coordinates of verts
func mean(in InputMesh, verts []int, x []float64) {
	for d := range x {
		x[d] = 0
	}
	for _, v := range verts {
		for d, c := range in.Vertex(v) {
			x[d] += c
		}
	}
	n := float64(len(verts))
	for d := range x {
		x[d] /= n
	}
}

func bandError(band string, local, got, want int) error {
	return errors.New("output vertex index does not match its band").
		WithTag("band", band).
		WithTag("local_index", local).
		WithTag("index", got).
		WithTag("expected_index", want)
}

// splitElements emits one quadrilateral per triangle corner, bounded by the
// corner vertex, the midpoints of the two edges touching it and the centroid
func splitElements(in InputMesh, out *mesh.Mesh, b vertexBands) {
	for k := 0; k < in.NumElements(); k++ {
		verts := in.ElementVertices(k)
		edges, _ := in.ElementEdges(k)
		attr := in.Attribute(k)
		for i, ce := range triCornerEdges {
			out.AddQuad([4]int{
				b.original(verts[i]),
				b.midpoint(edges[ce[0]]),
				b.centroid(k),
				b.midpoint(edges[ce[1]]),
			}, attr)
		}
	}
}

// splitBoundary emits two segments per boundary segment meeting at the midpoint
// of its coincident edge, both keeping the direction of the original
func splitBoundary(in InputMesh, out *mesh.Mesh, b vertexBands) {
	for j := 0; j < in.NumBdrElements(); j++ {
		verts := in.BdrElementVertices(j)
		edges, _ := in.BdrElementEdges(j)
		attr := in.BdrAttribute(j)
		mid := b.midpoint(edges[0])
		out.AddBdrSegment([2]int{b.original(verts[0]), mid}, attr)
		out.AddBdrSegmentReversed([2]int{b.original(verts[1]), mid}, attr)
	}
}

// Stats describes one conversion
type Stats struct {
	InputVertices     int
	InputEdges        int
	InputTriangles    int
	InputBdrElements  int
	OutputVertices    int
	OutputQuads       int
	OutputBdrElements int
	Reoriented        int
	Stages            []StageTiming
}

// StageTiming is the wall time spent in one conversion stage
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// timer returns a function recording the time since the previous call
func (s *Stats) timer() func(name string) {
	last := time.Now()
	return func(name string) {
		now := time.Now()
		s.Stages = append(s.Stages, StageTiming{Name: name, Duration: now.Sub(last)})
		last = now
	}
}
