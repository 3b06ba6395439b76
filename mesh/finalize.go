package mesh

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/notargets/gocfd/utils"
	"gonum.org/v1/gonum/mat"
)

// FinalizeOptions controls the checks done by Finalize
type FinalizeOptions struct {
	// FixOrientation reverses the vertex order of elements whose Jacobian is
	// negative at every corner, so that all element areas are positive
	FixOrientation bool
}

// Finalize validates element geometry and computes element areas. When the
// space dimension equals the topological dimension the Jacobian determinant is
// checked at every element corner: elements with a zero or sign changing
// Jacobian are rejected, inverted elements are reversed if opts.FixOrientation
// is set and rejected otherwise. The topology is rebuilt if any element was
// reversed.
func (m *Mesh) Finalize(opts FinalizeOptions) error {
	if !m.topologyReady {
		if err := m.FinalizeTopology(); err != nil {
			return err
		}
	}

	m.reoriented = 0
	if m.Dim == 2 && m.SpaceDim == 2 {
		for k := range m.Elements {
			switch sign, err := m.orientation(k); {
			case err != nil:
				return err
			case sign < 0 && !opts.FixOrientation:
				return errors.New("element is inverted").
					WithTag("element", k).
					WithTag("vertices", m.Elements[k].Vertices)
			case sign < 0:
				reverseElement(&m.Elements[k])
				m.reoriented++
			}
		}
		if m.reoriented > 0 {
			if err := m.FinalizeTopology(); err != nil {
				return err
			}
		}
	}

	K := len(m.Elements)
	if K > 0 {
		area := make([]float64, K)
		for k := range m.Elements {
			area[k] = m.elementArea(k)
		}
		m.areas = utils.NewVector(K, area)
	}
	m.finalized = true
	return nil
}

// Reoriented returns the number of elements reversed by the last Finalize
func (m *Mesh) Reoriented() int {
	return m.reoriented
}

// ElementArea returns the area of element k, requires Finalize
func (m *Mesh) ElementArea(k int) float64 {
	if !m.finalized {
		panic("mesh is not finalized, call Finalize first")
	}
	return m.areas.At(k)
}

// TotalArea returns the sum of all element areas, requires Finalize
func (m *Mesh) TotalArea() (total float64) {
	for k := range m.Elements {
		total += m.ElementArea(k)
	}
	return
}

// CornerJacobians returns det(∂x/∂ξ) at each corner of element k, up to the
// positive reference scaling. Corner i uses the edges towards vertex i+1 and
// from vertex i-1. Only defined for planar (SpaceDim == 2) meshes.
func (m *Mesh) CornerJacobians(k int) []float64 {
	verts := m.Elements[k].Vertices
	nv := len(verts)
	J := make([]float64, nv)
	A := mat.NewDense(2, 2, nil)
	for i := 0; i < nv; i++ {
		p := m.Vertex(verts[i])
		next := m.Vertex(verts[(i+1)%nv])
		prev := m.Vertex(verts[(i+nv-1)%nv])
		A.Set(0, 0, next[0]-p[0])
		A.Set(1, 0, next[1]-p[1])
		A.Set(0, 1, prev[0]-p[0])
		A.Set(1, 1, prev[1]-p[1])
		J[i] = mat.Det(A)
	}
	return J
}

func (m *Mesh) orientation(k int) (sign int, err error) {
	el := m.Elements[k]
	J := m.CornerJacobians(k)
	var pos, neg int
	for _, j := range J {
		switch {
		case j > 0:
			pos++
		case j < 0:
			neg++
		}
	}
	switch {
	case pos == len(J):
		return 1, nil
	case neg == len(J):
		return -1, nil
	case pos+neg < len(J):
		return 0, errors.New("element is degenerate").
			WithTag("element", k).
			WithTag("vertices", el.Vertices)
	default:
		return 0, errors.New("element is not convex").
			WithTag("element", k).
			WithTag("vertices", el.Vertices)
	}
}

// reverseElement flips the traversal direction keeping vertex 0 in place
func reverseElement(el *Element) {
	v := el.Vertices
	for i, j := 1, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

// elementArea is the magnitude of the vector area of the polygon, exact for
// planar polygons embedded in 2 or 3 dimensions
func (m *Mesh) elementArea(k int) float64 {
	verts := m.Elements[k].Vertices
	if len(verts) < 3 {
		return 0
	}
	var p0 [3]float64
	copy(p0[:], m.Vertex(verts[0]))
	var sum [3]float64
	for i := 1; i+1 < len(verts); i++ {
		var a, b [3]float64
		copy(a[:], m.Vertex(verts[i]))
		copy(b[:], m.Vertex(verts[i+1]))
		for d := 0; d < 3; d++ {
			a[d] -= p0[d]
			b[d] -= p0[d]
		}
		sum[0] += a[1]*b[2] - a[2]*b[1]
		sum[1] += a[2]*b[0] - a[0]*b[2]
		sum[2] += a[0]*b[1] - a[1]*b[0]
	}
	return 0.5 * math.Sqrt(sum[0]*sum[0]+sum[1]*sum[1]+sum[2]*sum[2])
}
