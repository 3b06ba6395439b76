package readers

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/tri2quad/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unit square, boundary lines after the triangles so the reader files them
// under named boundary groups
const squareGmsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
1 1 "wall"
2 5 "fluid"
$EndPhysicalNames
$Nodes
4
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
$EndNodes
$Elements
6
1 2 2 5 1 1 2 3
2 2 2 5 1 1 3 4
3 1 2 1 1 1 2
4 1 2 1 1 2 3
5 1 2 7 1 3 4
6 1 2 7 1 4 1
$EndElements
`

// boundary lines first, as Gmsh writes them, so they arrive as elements
const linesFirstGmsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
4
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
$EndNodes
$Elements
6
1 1 2 3 1 1 2
2 1 2 3 1 2 3
3 1 2 3 1 3 4
4 1 2 3 1 4 1
5 2 2 1 1 1 2 3
6 2 2 1 1 1 3 4
$EndElements
`

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadGmshBoundaryGroups(t *testing.T) {
	m, err := ReadMeshFile(createTempFile(t, "square.msh", squareGmsh))
	require.NoError(t, err)

	assert.Equal(t, 2, m.Dimension())
	assert.Equal(t, 2, m.SpaceDimension())
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, []mesh.Geometry{mesh.Triangle}, m.Geometries(2))
	assert.Equal(t, []int{0, 1, 2}, m.ElementVertices(0))
	assert.Equal(t, []int{0, 2, 3}, m.ElementVertices(1))
	assert.Equal(t, []int{5}, m.Attributes())
	assert.Equal(t, 5, m.NumEdges())
	assert.InDelta(t, 1.0, m.TotalArea(), 1e-14)

	// "wall" keeps physical tag 1, the unnamed group keeps tag 7
	require.Equal(t, 4, m.NumBdrElements())
	assert.Equal(t, []int{0, 1}, m.BdrElementVertices(0))
	assert.Equal(t, []int{1, 2}, m.BdrElementVertices(1))
	assert.Equal(t, []int{2, 3}, m.BdrElementVertices(2))
	assert.Equal(t, []int{3, 0}, m.BdrElementVertices(3))
	assert.Equal(t, []int{1, 1, 7, 7}, []int{
		m.BdrAttribute(0), m.BdrAttribute(1), m.BdrAttribute(2), m.BdrAttribute(3),
	})
}

func TestReadGmshLinesAsElements(t *testing.T) {
	m, err := ReadMeshFile(createTempFile(t, "square.msh", linesFirstGmsh))
	require.NoError(t, err)

	assert.Equal(t, 2, m.NumElements())
	assert.Equal(t, []int{1}, m.Attributes())
	require.Equal(t, 4, m.NumBdrElements())
	assert.Equal(t, []int{3}, m.BdrAttributes())
	assert.Equal(t, []int{3, 0}, m.BdrElementVertices(3))
	assert.Len(t, m.BoundaryEdges(), 4)
}

func TestReadGmshSurface(t *testing.T) {
	// the unit square tilted onto the plane z = x
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
4
1 0 0 0
2 1 0 1
3 1 1 1
4 0 1 0
$EndNodes
$Elements
2
1 2 2 1 1 1 2 3
2 2 2 1 1 1 3 4
$EndElements
`
	m, err := ReadMeshFile(createTempFile(t, "tilted.msh", content))
	require.NoError(t, err)
	assert.Equal(t, 3, m.SpaceDimension())
	assert.Equal(t, []float64{1, 0, 1}, m.Vertex(1))
	assert.InDelta(t, math.Sqrt2, m.TotalArea(), 1e-14)
	assert.Zero(t, m.NumBdrElements())
}

func TestReadGmshErrors(t *testing.T) {
	tests := map[string]string{
		"lines only": `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
2
1 0 0 0
2 1 0 0
$EndNodes
$Elements
1
1 1 2 1 1 1 2
$EndElements
`,
		"quadratic triangle": `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
6
1 0 0 0
2 1 0 0
3 0 1 0
4 0.5 0 0
5 0.5 0.5 0
6 0 0.5 0
$EndNodes
$Elements
1
1 9 2 1 1 1 2 3 4 5 6
$EndElements
`,
		"no format section": "$Nodes\n0\n$EndNodes\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadMeshFile(createTempFile(t, "bad.msh", content))
			require.Error(t, err)
		})
	}
}
