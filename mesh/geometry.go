package mesh

import "fmt"

// Dimensionality is the topological dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // points
	D1                       // segments
	D2                       // triangles, quadrilaterals
)

// Geometry identifies the shape of an element. The numeric values are the
// geometry ids used by the MFEM mesh file format.
type Geometry uint8

const (
	Point    Geometry = iota // Point
	Segment                  // Line segment
	Triangle                 // Triangle
	Square                   // Quadrilateral
	InvalidGeometry
)

// GeometryProperties describes the reference shape of a geometry
type GeometryProperties struct {
	Name       string
	NumVerts   int
	NumEdges   int
	Dimensions Dimensionality
	VTKCell    int      // VTK cell type id
	Edges      [][2]int // [edge][local vertex], edge i runs from vertex i to vertex i+1
}

var geometryTable = [...]GeometryProperties{
	Point: {
		Name: "Point", NumVerts: 1, Dimensions: D0, VTKCell: 1,
	},
	Segment: {
		Name: "Segment", NumVerts: 2, NumEdges: 1, Dimensions: D1, VTKCell: 3,
		Edges: [][2]int{{0, 1}},
	},
	Triangle: {
		Name: "Triangle", NumVerts: 3, NumEdges: 3, Dimensions: D2, VTKCell: 5,
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 0}},
	},
	Square: {
		Name: "Square", NumVerts: 4, NumEdges: 4, Dimensions: D2, VTKCell: 9,
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	},
}

// Valid reports whether g is a known geometry
func (g Geometry) Valid() bool {
	return g < InvalidGeometry
}

// Properties returns the reference shape description of g
func (g Geometry) Properties() GeometryProperties {
	if !g.Valid() {
		panic(fmt.Sprintf("invalid geometry %d", g))
	}
	return geometryTable[g]
}

// NumVerts returns the number of vertices of g
func (g Geometry) NumVerts() int { return g.Properties().NumVerts }

// Dimension returns the topological dimension of g
func (g Geometry) Dimension() Dimensionality { return g.Properties().Dimensions }

// LocalEdges returns the local vertex pairs of the edges of g
func (g Geometry) LocalEdges() [][2]int { return g.Properties().Edges }

// String returns the geometry name
func (g Geometry) String() string {
	if !g.Valid() {
		return fmt.Sprintf("Geometry(%d)", uint8(g))
	}
	return geometryTable[g].Name
}
