package mesh

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// edgeKey is the canonical (sorted) vertex pair identifying an edge
func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func edgeOrientation(a, b int) int {
	if a < b {
		return 1
	}
	return -1
}

// FinalizeTopology numbers the unique edges of the mesh and records, for every
// element and boundary element, its edges and their orientations. Edges are
// numbered in order of first appearance walking elements by index and their
// local edges in local order, so the numbering is fixed by the element order.
func (m *Mesh) FinalizeTopology() error {
	m.edges = make([][2]int, 0, len(m.Elements)*2)
	m.edgeIndex = make(map[[2]int]int, len(m.Elements)*2)
	m.elemEdges = make([][]int, len(m.Elements))
	m.elemOrient = make([][]int, len(m.Elements))
	m.bdrEdges = make([][]int, len(m.BdrElements))
	m.bdrOrient = make([][]int, len(m.BdrElements))
	m.topologyReady = false
	m.finalized = false

	for k, el := range m.Elements {
		if err := m.checkElement(el, m.Dim); err != nil {
			return errors.New("invalid element").
				WithTag("element", k).
				Wrap(err)
		}
		local := el.Geometry.LocalEdges()
		edges := make([]int, len(local))
		orient := make([]int, len(local))
		for i, le := range local {
			a, b := el.Vertices[le[0]], el.Vertices[le[1]]
			key := edgeKey(a, b)
			idx, ok := m.edgeIndex[key]
			if !ok {
				idx = len(m.edges)
				m.edgeIndex[key] = idx
				m.edges = append(m.edges, key)
			}
			edges[i] = idx
			orient[i] = edgeOrientation(a, b)
		}
		m.elemEdges[k] = edges
		m.elemOrient[k] = orient
	}

	for j, be := range m.BdrElements {
		if err := m.checkElement(be, m.Dim-1); err != nil {
			return errors.New("invalid boundary element").
				WithTag("boundary_element", j).
				Wrap(err)
		}
		if be.Geometry != Segment {
			continue
		}
		a, b := be.Vertices[0], be.Vertices[1]
		idx, ok := m.edgeIndex[edgeKey(a, b)]
		if !ok {
			return errors.New("boundary segment does not coincide with an element edge").
				WithTag("boundary_element", j).
				WithTag("vertices", be.Vertices)
		}
		m.bdrEdges[j] = []int{idx}
		m.bdrOrient[j] = []int{edgeOrientation(a, b)}
	}

	m.topologyReady = true
	return nil
}

func (m *Mesh) checkElement(el Element, dim int) error {
	if !el.Geometry.Valid() {
		return fmt.Errorf("unknown geometry %d", el.Geometry)
	}
	if int(el.Geometry.Dimension()) != dim {
		return fmt.Errorf("%s has dimension %d, expected %d",
			el.Geometry, el.Geometry.Dimension(), dim)
	}
	if len(el.Vertices) != el.Geometry.NumVerts() {
		return fmt.Errorf("%s has %d vertices, expected %d",
			el.Geometry, len(el.Vertices), el.Geometry.NumVerts())
	}
	nv := m.NumVertices()
	for _, v := range el.Vertices {
		if v < 0 || v >= nv {
			return fmt.Errorf("vertex index %d out of range [0,%d)", v, nv)
		}
	}
	return nil
}

// BoundaryEdges returns the edges used by exactly one element, in edge order.
// For a closed 2D domain these are the edges that need boundary segments.
func (m *Mesh) BoundaryEdges() []int {
	m.requireTopology()
	count := make([]int, len(m.edges))
	for _, edges := range m.elemEdges {
		for _, e := range edges {
			count[e]++
		}
	}
	var bdr []int
	for e, c := range count {
		if c == 1 {
			bdr = append(bdr, e)
		}
	}
	return bdr
}
