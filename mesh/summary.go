package mesh

import (
	"fmt"
	"math"
	"strings"
)

// String returns a summary of the mesh properties
func (m *Mesh) String() string {
	var sb strings.Builder

	sb.WriteString("=== Mesh Summary ===\n")

	sb.WriteString("\n--- Dimensions ---\n")
	sb.WriteString(fmt.Sprintf("  Topological dimension: %d\n", m.Dim))
	sb.WriteString(fmt.Sprintf("  Space dimension: %d\n", m.SpaceDim))

	sb.WriteString("\n--- Entities ---\n")
	sb.WriteString(fmt.Sprintf("  Number of vertices: %d\n", m.NumVertices()))
	if m.topologyReady {
		sb.WriteString(fmt.Sprintf("  Number of edges: %d\n", len(m.edges)))
	}
	sb.WriteString(fmt.Sprintf("  Number of elements: %d\n", m.NumElements()))
	for _, g := range m.Geometries(m.Dim) {
		sb.WriteString(fmt.Sprintf("    %s: %d\n", g, countGeometry(m.Elements, g)))
	}
	sb.WriteString(fmt.Sprintf("  Number of boundary elements: %d\n", m.NumBdrElements()))
	for _, g := range m.Geometries(m.Dim - 1) {
		sb.WriteString(fmt.Sprintf("    %s: %d\n", g, countGeometry(m.BdrElements, g)))
	}

	sb.WriteString("\n--- Attributes ---\n")
	sb.WriteString(fmt.Sprintf("  Element attributes: %v\n", m.Attributes()))
	sb.WriteString(fmt.Sprintf("  Boundary attributes: %v\n", m.BdrAttributes()))

	if m.NumVertices() > 0 {
		sb.WriteString("\n--- Bounding Box ---\n")
		lo, hi := m.BoundingBox()
		for d := 0; d < m.SpaceDim; d++ {
			sb.WriteString(fmt.Sprintf("  %c range: [%.4f, %.4f]\n", "XYZ"[d], lo[d], hi[d]))
		}
	}

	if m.finalized && m.NumElements() > 0 {
		sb.WriteString("\n--- Geometry ---\n")
		aMin, aMax := math.Inf(1), math.Inf(-1)
		for k := range m.Elements {
			a := m.ElementArea(k)
			aMin = math.Min(aMin, a)
			aMax = math.Max(aMax, a)
		}
		sb.WriteString(fmt.Sprintf("  Total area: %.6e\n", m.TotalArea()))
		sb.WriteString(fmt.Sprintf("  Element area range: [%.4e, %.4e]\n", aMin, aMax))
		sb.WriteString(fmt.Sprintf("  Reoriented elements: %d\n", m.reoriented))
	}

	sb.WriteString("\n====================\n")

	return sb.String()
}

// BoundingBox returns the per-dimension minimum and maximum vertex coordinates
func (m *Mesh) BoundingBox() (lo, hi []float64) {
	lo = make([]float64, m.SpaceDim)
	hi = make([]float64, m.SpaceDim)
	for d := range lo {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for i := 0; i < m.NumVertices(); i++ {
		for d, x := range m.Vertex(i) {
			lo[d] = math.Min(lo[d], x)
			hi[d] = math.Max(hi[d], x)
		}
	}
	return
}

func countGeometry(els []Element, g Geometry) (n int) {
	for _, el := range els {
		if el.Geometry == g {
			n++
		}
	}
	return
}
