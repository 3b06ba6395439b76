// Package plot renders raster previews of a mesh for quick visual checks.
package plot

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/gogpu/gg"
	"github.com/notargets/tri2quad/mesh"
)

// Options controls the look of a preview image.
type Options struct {
	Size      int     // width and height of the square canvas, in pixels
	Margin    float64 // blank border around the mesh, in pixels
	LineWidth float64
}

// DefaultOptions returns the settings used by the command line tool.
func DefaultOptions() Options {
	return Options{Size: 800, Margin: 16, LineWidth: 1}
}

// fill colours cycled by element attribute
var palette = []gg.RGBA{
	gg.Hex("#dbe9f6"),
	gg.Hex("#fde2c8"),
	gg.Hex("#d9f0d3"),
	gg.Hex("#efd9ef"),
	gg.Hex("#fff5bf"),
}

type viewport struct {
	x0, y0 float64
	scale  float64
	size   float64
	margin float64
}

func newViewport(m *mesh.Mesh, opts Options) viewport {
	lo, hi := m.BoundingBox()
	w, h := hi[0]-lo[0], 0.
	if len(lo) > 1 {
		h = hi[1] - lo[1]
	}
	size := float64(opts.Size)
	extent := math.Max(w, h)
	scale := 1.
	if extent > 0 {
		scale = (size - 2*opts.Margin) / extent
	}
	vp := viewport{x0: lo[0], scale: scale, size: size, margin: opts.Margin}
	if len(lo) > 1 {
		vp.y0 = lo[1]
	}
	return vp
}

// project maps mesh coordinates onto the canvas, dropping z and flipping y.
func (vp viewport) project(p []float64) (x, y float64) {
	x = vp.margin + (p[0]-vp.x0)*vp.scale
	py := 0.
	if len(p) > 1 {
		py = p[1]
	}
	y = vp.size - vp.margin - (py-vp.y0)*vp.scale
	return x, y
}

func (vp viewport) polygon(dc *gg.Context, m *mesh.Mesh, verts []int, closed bool) {
	for i, v := range verts {
		x, y := vp.project(m.Vertex(v))
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
	if closed {
		dc.ClosePath()
	}
}

// Render draws every element, filled by attribute and outlined, and then the
// boundary elements on top in red.
func Render(m *mesh.Mesh, opts Options) (*gg.Context, error) {
	if opts.Size <= 0 {
		return nil, errors.Newf("invalid preview size %d", opts.Size)
	}
	if opts.Margin < 0 || 2*opts.Margin >= float64(opts.Size) {
		return nil, errors.Newf("margin %g does not fit a %d pixel canvas", opts.Margin, opts.Size)
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 1
	}

	dc := gg.NewContext(opts.Size, opts.Size)
	dc.ClearWithColor(gg.RGB(1, 1, 1))
	if m.NumVertices() == 0 {
		return dc, nil
	}
	vp := newViewport(m, opts)

	for k := 0; k < m.NumElements(); k++ {
		verts := m.ElementVertices(k)
		attr := m.Attribute(k)
		dc.SetColor(palette[(attr%len(palette)+len(palette))%len(palette)].Color())
		vp.polygon(dc, m, verts, true)
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, errors.New("filling element").WithTag("element", k).Wrap(err)
		}
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.SetLineWidth(opts.LineWidth)
		vp.polygon(dc, m, verts, true)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, errors.New("outlining element").WithTag("element", k).Wrap(err)
		}
	}

	dc.SetRGB(0.85, 0.1, 0.1)
	dc.SetLineWidth(2 * opts.LineWidth)
	for b := 0; b < m.NumBdrElements(); b++ {
		vp.polygon(dc, m, m.BdrElementVertices(b), false)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, errors.New("drawing boundary element").WithTag("boundary_element", b).Wrap(err)
		}
	}
	return dc, nil
}

// Save renders m and writes it to filename. The image format follows the
// extension: .png or .webp.
func Save(filename string, m *mesh.Mesh, opts Options) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".png" && ext != ".webp" {
		return errors.Newf("unsupported preview format %q", ext).WithTag("file", filename)
	}

	dc, err := Render(m, opts)
	if err != nil {
		return err
	}
	defer dc.Close()

	if ext == ".png" {
		if err := dc.SavePNG(filename); err != nil {
			return errors.New("saving png preview").WithTag("file", filename).Wrap(err)
		}
		return nil
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.New("creating webp preview").WithTag("file", filename).Wrap(err)
	}
	if err := dc.FlushGPU(); err != nil {
		f.Close()
		return errors.New("flushing preview").WithTag("file", filename).Wrap(err)
	}
	if err := nativewebp.Encode(f, dc.Image(), nil); err != nil {
		f.Close()
		return errors.New("encoding webp preview").WithTag("file", filename).Wrap(err)
	}
	if err := f.Close(); err != nil {
		return errors.New("closing webp preview").WithTag("file", filename).Wrap(err)
	}
	return nil
}
