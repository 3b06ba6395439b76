package writers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/notargets/tri2quad/mesh"
)

const mfemGeometryLegend = `#
# MFEM Geometry Types (see mesh/geom.hpp):
#
# POINT       = 0
# SEGMENT     = 1
# TRIANGLE    = 2
# SQUARE      = 3
# TETRAHEDRON = 4
# CUBE        = 5
# PRISM       = 6
#
`

// WriteMFEM writes m in the MFEM v1.0 ASCII mesh format. Coordinates are
// written with the shortest representation that reads back to the same bits.
func WriteMFEM(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "MFEM mesh v1.0\n\n%s\n", mfemGeometryLegend)
	fmt.Fprintf(bw, "dimension\n%d\n\n", m.Dimension())

	fmt.Fprintf(bw, "elements\n%d\n", m.NumElements())
	writeElements(bw, m.Elements)

	fmt.Fprintf(bw, "\nboundary\n%d\n", m.NumBdrElements())
	writeElements(bw, m.BdrElements)

	fmt.Fprintf(bw, "\nvertices\n%d\n%d\n", m.NumVertices(), m.SpaceDimension())
	for i := 0; i < m.NumVertices(); i++ {
		for d, x := range m.Vertex(i) {
			if d > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return errors.New("writing MFEM mesh failed").Wrap(err)
	}
	return nil
}

func writeElements(bw *bufio.Writer, els []mesh.Element) {
	for _, el := range els {
		fmt.Fprintf(bw, "%d %d", el.Attribute, el.Geometry)
		for _, v := range el.Vertices {
			fmt.Fprintf(bw, " %d", v)
		}
		bw.WriteByte('\n')
	}
}

// SaveMFEM writes m to the named file in the MFEM v1.0 format
func SaveMFEM(filename string, m *mesh.Mesh) error {
	return save(filename, m, WriteMFEM)
}

func save(filename string, m *mesh.Mesh, write func(io.Writer, *mesh.Mesh) error) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return errors.New("creating output file failed").
			WithTag("file", filename).
			Wrap(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.New("closing output file failed").
				WithTag("file", filename).
				Wrap(cerr)
		}
	}()

	if err = write(f, m); err != nil {
		return errors.New("saving mesh failed").
			WithTag("file", filename).
			Wrap(err)
	}
	return nil
}
