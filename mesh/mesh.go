package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/gocfd/utils"
	"gonum.org/v1/gonum/mat"
)

// Element is a domain or boundary element: a shape, its global vertex indices
// and the integer attribute (material, region or boundary condition tag)
type Element struct {
	Geometry  Geometry
	Vertices  []int
	Attribute int
}

// Mesh is an unstructured mesh of points, segments, triangles and quadrilaterals.
// It is built by appending vertices and elements, then FinalizeTopology builds the
// edge table and Finalize checks (and optionally repairs) element orientation.
type Mesh struct {
	Dim         int // Topological dimension of the elements
	SpaceDim    int // Dimension of the vertex coordinates
	Elements    []Element
	BdrElements []Element

	vertices []float64 // SpaceDim coordinates per vertex

	// Topology, valid after FinalizeTopology
	edges         [][2]int
	edgeIndex     map[[2]int]int
	elemEdges     [][]int
	elemOrient    [][]int
	bdrEdges      [][]int
	bdrOrient     [][]int
	topologyReady bool

	// Geometry, valid after Finalize
	areas      utils.Vector
	reoriented int
	finalized  bool
}

// New creates an empty mesh. The counts are capacity hints for the vertex,
// element and boundary element storage.
func New(dim, sdim, nv, ne, nbe int) *Mesh {
	if dim < 1 || dim > 2 || sdim < dim || sdim > 3 {
		panic(fmt.Sprintf("unsupported mesh dimensions: dim=%d, sdim=%d", dim, sdim))
	}
	return &Mesh{
		Dim:         dim,
		SpaceDim:    sdim,
		Elements:    make([]Element, 0, ne),
		BdrElements: make([]Element, 0, nbe),
		vertices:    make([]float64, 0, nv*sdim),
	}
}

func (m *Mesh) invalidate() {
	m.topologyReady = false
	m.finalized = false
}

// AddVertex appends a vertex and returns its index. Coordinates beyond the space
// dimension are ignored, missing ones are zero.
func (m *Mesh) AddVertex(x []float64) int {
	for d := 0; d < m.SpaceDim; d++ {
		var v float64
		if d < len(x) {
			v = x[d]
		}
		m.vertices = append(m.vertices, v)
	}
	m.invalidate()
	return m.NumVertices() - 1
}

// AddElement appends a domain element and returns its index
func (m *Mesh) AddElement(el Element) int {
	el.Vertices = append([]int(nil), el.Vertices...)
	m.Elements = append(m.Elements, el)
	m.invalidate()
	return len(m.Elements) - 1
}

// AddBdrElement appends a boundary element and returns its index
func (m *Mesh) AddBdrElement(el Element) int {
	el.Vertices = append([]int(nil), el.Vertices...)
	m.BdrElements = append(m.BdrElements, el)
	m.invalidate()
	return len(m.BdrElements) - 1
}

// AddTriangle appends a triangle with vertices v and attribute attr
func (m *Mesh) AddTriangle(v [3]int, attr int) int {
	return m.AddElement(Element{Geometry: Triangle, Vertices: v[:], Attribute: attr})
}

// AddQuad appends a quadrilateral with vertices v and attribute attr
func (m *Mesh) AddQuad(v [4]int, attr int) int {
	return m.AddElement(Element{Geometry: Square, Vertices: v[:], Attribute: attr})
}

// AddBdrSegment appends a boundary segment running from v[0] to v[1]
func (m *Mesh) AddBdrSegment(v [2]int, attr int) int {
	return m.AddBdrElement(Element{Geometry: Segment, Vertices: v[:], Attribute: attr})
}

// AddBdrSegmentReversed appends a boundary segment running from v[1] to v[0]
func (m *Mesh) AddBdrSegmentReversed(v [2]int, attr int) int {
	return m.AddBdrSegment([2]int{v[1], v[0]}, attr)
}

// Dimension returns the topological dimension of the elements
func (m *Mesh) Dimension() int { return m.Dim }

// SpaceDimension returns the number of coordinates per vertex
func (m *Mesh) SpaceDimension() int { return m.SpaceDim }

// NumVertices returns the number of vertices
func (m *Mesh) NumVertices() int { return len(m.vertices) / m.SpaceDim }

// NumElements returns the number of domain elements
func (m *Mesh) NumElements() int { return len(m.Elements) }

// NumBdrElements returns the number of boundary elements
func (m *Mesh) NumBdrElements() int { return len(m.BdrElements) }

// NumEdges returns the number of unique edges, requires FinalizeTopology
func (m *Mesh) NumEdges() int {
	m.requireTopology()
	return len(m.edges)
}

// Vertex returns the coordinates of vertex i. The slice aliases mesh storage.
func (m *Mesh) Vertex(i int) []float64 {
	return m.vertices[i*m.SpaceDim : (i+1)*m.SpaceDim : (i+1)*m.SpaceDim]
}

// Coordinates returns a copy of the vertex coordinates as an [NV × SpaceDim] matrix
func (m *Mesh) Coordinates() *mat.Dense {
	if m.NumVertices() == 0 {
		return &mat.Dense{}
	}
	data := append([]float64(nil), m.vertices...)
	return mat.NewDense(m.NumVertices(), m.SpaceDim, data)
}

// Geometries returns the distinct geometries present among the elements of
// topological dimension dim, in ascending order
func (m *Mesh) Geometries(dim int) []Geometry {
	var els []Element
	switch dim {
	case m.Dim:
		els = m.Elements
	case m.Dim - 1:
		els = m.BdrElements
	default:
		return nil
	}
	seen := make(map[Geometry]bool)
	var geoms []Geometry
	for _, el := range els {
		if !seen[el.Geometry] {
			seen[el.Geometry] = true
			geoms = append(geoms, el.Geometry)
		}
	}
	sort.Slice(geoms, func(i, j int) bool { return geoms[i] < geoms[j] })
	return geoms
}

// ElementVertices returns the vertices of element i. The slice aliases mesh storage.
func (m *Mesh) ElementVertices(i int) []int { return m.Elements[i].Vertices }

// Attribute returns the attribute of element i
func (m *Mesh) Attribute(i int) int { return m.Elements[i].Attribute }

// BdrElementVertices returns the vertices of boundary element i
func (m *Mesh) BdrElementVertices(i int) []int { return m.BdrElements[i].Vertices }

// BdrAttribute returns the attribute of boundary element i
func (m *Mesh) BdrAttribute(i int) int { return m.BdrElements[i].Attribute }

// EdgeVertices returns the two vertices of edge i, lower index first
func (m *Mesh) EdgeVertices(i int) [2]int {
	m.requireTopology()
	return m.edges[i]
}

// ElementEdges returns the global edges of element i in local edge order with
// their orientation flags (+1 when the element walks the edge from its lower
// to its higher vertex, -1 otherwise)
func (m *Mesh) ElementEdges(i int) (edges, orientations []int) {
	m.requireTopology()
	return m.elemEdges[i], m.elemOrient[i]
}

// BdrElementEdges returns the edges coincident with boundary element i. For a
// boundary segment this is a single edge.
func (m *Mesh) BdrElementEdges(i int) (edges, orientations []int) {
	m.requireTopology()
	return m.bdrEdges[i], m.bdrOrient[i]
}

// Attributes returns the distinct element attributes in ascending order
func (m *Mesh) Attributes() []int {
	return distinctAttributes(m.Elements)
}

// BdrAttributes returns the distinct boundary attributes in ascending order
func (m *Mesh) BdrAttributes() []int {
	return distinctAttributes(m.BdrElements)
}

func distinctAttributes(els []Element) (attrs []int) {
	seen := make(map[int]bool)
	for _, el := range els {
		if !seen[el.Attribute] {
			seen[el.Attribute] = true
			attrs = append(attrs, el.Attribute)
		}
	}
	sort.Ints(attrs)
	return
}

// TopologyFinalized reports whether the edge table is current, that is whether
// FinalizeTopology ran after the last vertex or element was added
func (m *Mesh) TopologyFinalized() bool {
	return m.topologyReady
}

func (m *Mesh) requireTopology() {
	if !m.topologyReady {
		panic("mesh topology is not finalized, call FinalizeTopology first")
	}
}
