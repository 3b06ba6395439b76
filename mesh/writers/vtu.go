package writers

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/notargets/tri2quad/mesh"
)

// VTK XML UnstructuredGrid document, ASCII encoded
type vtkFile struct {
	XMLName   xml.Name `xml:"VTKFile"`
	Type      string   `xml:"type,attr"`
	Version   string   `xml:"version,attr"`
	ByteOrder string   `xml:"byte_order,attr"`
	Grid      vtkGrid  `xml:"UnstructuredGrid"`
}

type vtkGrid struct {
	Piece vtkPiece `xml:"Piece"`
}

type vtkPiece struct {
	NumberOfPoints int            `xml:"NumberOfPoints,attr"`
	NumberOfCells  int            `xml:"NumberOfCells,attr"`
	Points         vtkDataArrays  `xml:"Points"`
	Cells          vtkDataArrays  `xml:"Cells"`
	CellData       vtkScalarArray `xml:"CellData"`
}

type vtkDataArrays struct {
	Arrays []vtkDataArray `xml:"DataArray"`
}

type vtkScalarArray struct {
	Scalars string         `xml:"Scalars,attr"`
	Arrays  []vtkDataArray `xml:"DataArray"`
}

type vtkDataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr,omitempty"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr,omitempty"`
	Format             string `xml:"format,attr"`
	Data               string `xml:",chardata"`
}

// WriteVTU writes the domain elements of m as a VTK unstructured grid with the
// element attribute as cell data
func WriteVTU(w io.Writer, m *mesh.Mesh) error {
	return writeVTU(w, m, m.Elements)
}

// WriteBdrVTU writes the boundary elements of m as a VTK unstructured grid with
// the boundary attribute as cell data
func WriteBdrVTU(w io.Writer, m *mesh.Mesh) error {
	return writeVTU(w, m, m.BdrElements)
}

// SaveVTU writes the domain to prefix.vtu
func SaveVTU(prefix string, m *mesh.Mesh) error {
	return save(prefix+".vtu", m, WriteVTU)
}

// SaveBdrVTU writes the boundary to prefix.vtu
func SaveBdrVTU(prefix string, m *mesh.Mesh) error {
	return save(prefix+".vtu", m, WriteBdrVTU)
}

func writeVTU(w io.Writer, m *mesh.Mesh, els []mesh.Element) error {
	var points, conn, offsets, types, attrs strings.Builder

	// VTK points are always 3D
	for i := 0; i < m.NumVertices(); i++ {
		var x [3]float64
		copy(x[:], m.Vertex(i))
		points.WriteString(formatFloats(x[:]))
		points.WriteByte('\n')
	}

	var offset int
	for _, el := range els {
		for i, v := range el.Vertices {
			if i > 0 {
				conn.WriteByte(' ')
			}
			conn.WriteString(strconv.Itoa(v))
		}
		conn.WriteByte('\n')
		offset += len(el.Vertices)
		offsets.WriteString(strconv.Itoa(offset))
		offsets.WriteByte('\n')
		types.WriteString(strconv.Itoa(el.Geometry.Properties().VTKCell))
		types.WriteByte('\n')
		attrs.WriteString(strconv.Itoa(el.Attribute))
		attrs.WriteByte('\n')
	}

	doc := vtkFile{
		Type:      "UnstructuredGrid",
		Version:   "0.1",
		ByteOrder: "LittleEndian",
		Grid: vtkGrid{Piece: vtkPiece{
			NumberOfPoints: m.NumVertices(),
			NumberOfCells:  len(els),
			Points: vtkDataArrays{Arrays: []vtkDataArray{
				{Type: "Float64", NumberOfComponents: 3, Format: "ascii", Data: points.String()},
			}},
			Cells: vtkDataArrays{Arrays: []vtkDataArray{
				{Type: "Int32", Name: "connectivity", Format: "ascii", Data: conn.String()},
				{Type: "Int32", Name: "offsets", Format: "ascii", Data: offsets.String()},
				{Type: "UInt8", Name: "types", Format: "ascii", Data: types.String()},
			}},
			CellData: vtkScalarArray{
				Scalars: "attribute",
				Arrays: []vtkDataArray{
					{Type: "Int32", Name: "attribute", Format: "ascii", Data: attrs.String()},
				},
			},
		}},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.New("writing VTU header failed").Wrap(err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return errors.New("encoding VTU document failed").Wrap(err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.New("writing VTU document failed").Wrap(err)
	}
	return nil
}

func formatFloats(x []float64) string {
	s := make([]string, len(x))
	for i, v := range x {
		s[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(s, " ")
}
