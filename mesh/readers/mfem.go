package readers

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/notargets/tri2quad/mesh"
)

// MFEMHeader is the first line of an MFEM v1.0 ASCII mesh file
const MFEMHeader = "MFEM mesh v1.0"

// ReadMeshFile reads a mesh file, selecting the format from the file extension,
// and returns the mesh with its topology finalized and orientation fixed. MFEM
// (.mesh or no extension) is read here, Gmsh (.msh), SU2 (.su2) and Gambit
// neutral (.neu) files go through the gocfd readers.
func ReadMeshFile(meshfile string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(meshfile))
	switch ext {
	case ".mesh", "":
	case ".msh", ".su2", ".neu":
		m, err := readDG3D(meshfile)
		if err != nil {
			return nil, errors.New("reading mesh file failed").
				WithTag("file", meshfile).
				WithTag("extension", ext).
				Wrap(err)
		}
		return m, nil
	default:
		return nil, errors.New("unsupported mesh file format").
			WithTag("file", meshfile).
			WithTag("extension", ext)
	}

	f, err := os.Open(meshfile)
	if err != nil {
		return nil, errors.New("opening mesh file failed").
			WithTag("file", meshfile).
			Wrap(err)
	}
	defer f.Close()

	m, err := ReadMFEM(f)
	if err != nil {
		return nil, errors.New("reading mesh file failed").
			WithTag("file", meshfile).
			Wrap(err)
	}
	return m, nil
}

// ReadMFEM parses an MFEM v1.0 mesh: the dimension, elements, boundary and
// vertices sections, each element line being "attribute geometry v0 v1 ...".
// Comments start with '#' and run to the end of the line.
func ReadMFEM(r io.Reader) (*mesh.Mesh, error) {
	tk, err := newTokenizer(r)
	if err != nil {
		return nil, err
	}

	for _, word := range strings.Fields(MFEMHeader) {
		if err = tk.expect(word); err != nil {
			return nil, errors.New("not an MFEM v1.0 mesh").Wrap(err)
		}
	}

	if err = tk.expect("dimension"); err != nil {
		return nil, err
	}
	dim, err := tk.readInt()
	if err != nil {
		return nil, err
	}
	if dim < 1 || dim > 2 {
		return nil, errors.New("unsupported mesh dimension").
			WithTag("dimension", dim).
			WithTag("line", tk.line())
	}

	if err = tk.expect("elements"); err != nil {
		return nil, err
	}
	elements, err := readElements(tk)
	if err != nil {
		return nil, err
	}

	if err = tk.expect("boundary"); err != nil {
		return nil, err
	}
	boundary, err := readElements(tk)
	if err != nil {
		return nil, err
	}

	if err = tk.expect("vertices"); err != nil {
		return nil, err
	}
	nv, err := tk.readInt()
	if err != nil {
		return nil, err
	}
	sdim, err := tk.readInt()
	if err != nil {
		return nil, err
	}
	if sdim < dim || sdim > 3 {
		return nil, errors.New("unsupported space dimension").
			WithTag("dimension", dim).
			WithTag("space_dimension", sdim).
			WithTag("line", tk.line())
	}
	if err = tk.checkCount("vertices", nv, sdim); err != nil {
		return nil, err
	}

	m := mesh.New(dim, sdim, nv, len(elements), len(boundary))
	x := make([]float64, sdim)
	for i := 0; i < nv; i++ {
		for d := range x {
			if x[d], err = tk.readFloat(); err != nil {
				return nil, err
			}
		}
		m.AddVertex(x)
	}
	for _, el := range elements {
		m.AddElement(el)
	}
	for _, el := range boundary {
		m.AddBdrElement(el)
	}

	if err = m.FinalizeTopology(); err != nil {
		return nil, err
	}
	if err = m.Finalize(mesh.FinalizeOptions{FixOrientation: true}); err != nil {
		return nil, err
	}
	return m, nil
}

func readElements(tk *tokenizer) ([]mesh.Element, error) {
	n, err := tk.readInt()
	if err != nil {
		return nil, err
	}
	// attribute, geometry and at least one vertex per element
	if err = tk.checkCount("elements", n, 3); err != nil {
		return nil, err
	}
	els := make([]mesh.Element, n)
	for k := range els {
		if els[k].Attribute, err = tk.readInt(); err != nil {
			return nil, err
		}
		var g int
		if g, err = tk.readInt(); err != nil {
			return nil, err
		}
		if g < 0 || g >= int(mesh.InvalidGeometry) {
			return nil, errors.New("unsupported element geometry").
				WithTag("geometry", g).
				WithTag("line", tk.line())
		}
		els[k].Geometry = mesh.Geometry(g)
		els[k].Vertices = make([]int, els[k].Geometry.NumVerts())
		for i := range els[k].Vertices {
			if els[k].Vertices[i], err = tk.readInt(); err != nil {
				return nil, err
			}
		}
	}
	return els, nil
}

type token struct {
	text string
	line int
}

// tokenizer splits the comment-stripped input into whitespace separated tokens
type tokenizer struct {
	tokens []token
	pos    int
}

func newTokenizer(r io.Reader) (*tokenizer, error) {
	tk := &tokenizer{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, f := range strings.Fields(text) {
			tk.tokens = append(tk.tokens, token{text: f, line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.New("scanning mesh input failed").Wrap(err)
	}
	return tk, nil
}

func (tk *tokenizer) line() int {
	if tk.pos == 0 {
		return 1
	}
	return tk.tokens[tk.pos-1].line
}

func (tk *tokenizer) next() (token, error) {
	if tk.pos >= len(tk.tokens) {
		return token{}, errors.New("unexpected end of mesh input").
			WithTag("line", tk.line())
	}
	t := tk.tokens[tk.pos]
	tk.pos++
	return t, nil
}

// checkCount rejects a negative entity count, or one that needs more than the
// remaining tokens when each entity takes at least per tokens
func (tk *tokenizer) checkCount(what string, n, per int) error {
	if n < 0 {
		return errors.New("negative entity count").
			WithTag("section", what).
			WithTag("count", n).
			WithTag("line", tk.line())
	}
	if left := len(tk.tokens) - tk.pos; n > left/per {
		return errors.New("entity count exceeds the remaining input").
			WithTag("section", what).
			WithTag("count", n).
			WithTag("line", tk.line())
	}
	return nil
}

func (tk *tokenizer) expect(word string) error {
	t, err := tk.next()
	if err != nil {
		return err
	}
	if t.text != word {
		return errors.Newf("expected %q, found %q", word, t.text).
			WithTag("line", t.line)
	}
	return nil
}

func (tk *tokenizer) readInt() (int, error) {
	t, err := tk.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, errors.New("invalid integer").
			WithTag("line", t.line).
			Wrap(err)
	}
	return v, nil
}

func (tk *tokenizer) readFloat() (float64, error) {
	t, err := tk.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return 0, errors.New("invalid number").
			WithTag("line", t.line).
			Wrap(err)
	}
	return v, nil
}
