package readers

import (
	"fmt"
	"math"
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	dgmesh "github.com/notargets/gocfd/DG3D/mesh"
	dgreaders "github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/utils"
	"github.com/notargets/tri2quad/mesh"
)

// readDG3D reads Gmsh (.msh, versions 2.2 and 4.x), SU2 (.su2) and Gambit
// neutral (.neu) files with the gocfd DG3D readers
func readDG3D(meshfile string) (*mesh.Mesh, error) {
	dm, err := dgreaders.ReadMeshFile(meshfile)
	if err != nil {
		return nil, err
	}
	return FromDG3D(dm)
}

// FromDG3D converts a linear two-dimensional gocfd DG3D mesh. Triangles and
// quadrilaterals become elements carrying their physical tag as attribute.
// Line elements, whether listed with the elements or in the named boundary
// groups, become boundary segments. Point elements are dropped. The space
// dimension is 2 unless some vertex has a non-zero z coordinate.
func FromDG3D(dm *dgmesh.Mesh) (*mesh.Mesh, error) {
	if dim := dm.GetMeshDimension(); dim != 2 {
		return nil, errors.New("unsupported mesh dimension").
			WithTag("dimension", dim)
	}

	sdim := 2
	for _, x := range dm.Vertices {
		if len(x) > 2 && x[2] != 0 {
			sdim = 3
			break
		}
	}

	m := mesh.New(2, sdim, len(dm.Vertices), len(dm.EtoV), 0)
	for _, x := range dm.Vertices {
		m.AddVertex(x)
	}

	for k, verts := range dm.EtoV {
		etype := dm.ElementTypes[k]
		attr := physicalTag(dm, k)
		var err error
		switch etype {
		case utils.Point:
		case utils.Triangle:
			if err = checkNodes(etype, verts); err == nil {
				m.AddTriangle([3]int{verts[0], verts[1], verts[2]}, attr)
			}
		case utils.Quad:
			if err = checkNodes(etype, verts); err == nil {
				m.AddQuad([4]int{verts[0], verts[1], verts[2], verts[3]}, attr)
			}
		case utils.Line:
			if err = checkNodes(etype, verts); err == nil {
				m.AddBdrSegment([2]int{verts[0], verts[1]}, attr)
			}
		default:
			err = errors.Newf("unsupported element type %s", etype)
		}
		if err != nil {
			return nil, errors.New("converting element failed").
				WithTag("element", k).
				Wrap(err)
		}
	}

	names, attrs := boundaryAttributes(dm)
	for _, name := range names {
		for j, be := range dm.BoundaryElements[name] {
			if be.ElementType != utils.Line {
				return nil, errors.Newf("unsupported boundary element type %s", be.ElementType).
					WithTag("boundary", name).
					WithTag("index", j)
			}
			if err := checkNodes(be.ElementType, be.Nodes); err != nil {
				return nil, errors.New("converting boundary element failed").
					WithTag("boundary", name).
					WithTag("index", j).
					Wrap(err)
			}
			m.AddBdrSegment([2]int{be.Nodes[0], be.Nodes[1]}, attrs[name])
		}
	}

	if err := m.FinalizeTopology(); err != nil {
		return nil, err
	}
	if err := m.Finalize(mesh.FinalizeOptions{FixOrientation: true}); err != nil {
		return nil, err
	}
	return m, nil
}

func checkNodes(etype utils.ElementType, nodes []int) error {
	if n := etype.GetNumNodes(); len(nodes) < n {
		return fmt.Errorf("%s has %d nodes, expected %d", etype, len(nodes), n)
	}
	return nil
}

// physicalTag is the first tag of element k, or 1 when it has none
func physicalTag(dm *dgmesh.Mesh, k int) int {
	if k < len(dm.ElementTags) && len(dm.ElementTags[k]) > 0 && dm.ElementTags[k][0] > 0 {
		return dm.ElementTags[k][0]
	}
	return 1
}

// boundaryAttributes orders the named boundary groups and assigns each an
// attribute. Names of one-dimensional physical groups and "boundary_<tag>"
// names keep their tag, the rest are numbered after the largest known tag in
// file order (or name order when the reader kept none).
func boundaryAttributes(dm *dgmesh.Mesh) (names []string, attrs map[string]int) {
	attrs = make(map[string]int, len(dm.BoundaryElements))
	rank := make(map[string]int, len(dm.BoundaryTags))
	for idx, name := range dm.BoundaryTags {
		rank[name] = idx
	}

	var unresolved []string
	maxTag := 0
	for name := range dm.BoundaryElements {
		names = append(names, name)
		tag := 0
		for t, g := range dm.ElementGroups {
			if g.Dimension == 1 && g.Name == name && t > 0 && (tag == 0 || t < tag) {
				tag = t
			}
		}
		if tag == 0 {
			var t int
			if n, _ := fmt.Sscanf(name, "boundary_%d", &t); n == 1 && t > 0 {
				tag = t
			}
		}
		if tag == 0 {
			unresolved = append(unresolved, name)
			continue
		}
		attrs[name] = tag
		maxTag = max(maxTag, tag)
	}

	sort.Slice(unresolved, func(i, j int) bool {
		ri, ok := rank[unresolved[i]]
		if !ok {
			ri = math.MaxInt
		}
		rj, ok := rank[unresolved[j]]
		if !ok {
			rj = math.MaxInt
		}
		if ri != rj {
			return ri < rj
		}
		return unresolved[i] < unresolved[j]
	})
	for i, name := range unresolved {
		attrs[name] = maxTag + i + 1
	}

	sort.Slice(names, func(i, j int) bool {
		if attrs[names[i]] != attrs[names[j]] {
			return attrs[names[i]] < attrs[names[j]]
		}
		return names[i] < names[j]
	})
	return names, attrs
}
