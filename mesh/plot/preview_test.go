package plot

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/tri2quad/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare(t *testing.T) *mesh.Mesh {
	t.Helper()
	m := mesh.New(2, 2, 4, 2, 4)
	m.AddVertex([]float64{0, 0})
	m.AddVertex([]float64{1, 0})
	m.AddVertex([]float64{1, 1})
	m.AddVertex([]float64{0, 1})
	m.AddTriangle([3]int{0, 1, 2}, 1)
	m.AddTriangle([3]int{0, 2, 3}, 2)
	m.AddBdrSegment([2]int{0, 1}, 1)
	m.AddBdrSegment([2]int{1, 2}, 1)
	m.AddBdrSegment([2]int{2, 3}, 1)
	m.AddBdrSegment([2]int{3, 0}, 1)
	require.NoError(t, m.FinalizeTopology())
	require.NoError(t, m.Finalize(mesh.FinalizeOptions{FixOrientation: true}))
	return m
}

func TestRenderDrawsMesh(t *testing.T) {
	dc, err := Render(unitSquare(t), Options{Size: 64, Margin: 4, LineWidth: 1})
	require.NoError(t, err)
	defer dc.Close()

	img := dc.Image()
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	// the corner of the canvas lies in the margin, the centre inside the mesh
	cr, cg, cb, _ := img.At(0, 0).RGBA()
	mr, mg, mb, _ := img.At(44, 40).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{cr, cg, cb})
	assert.NotEqual(t, [3]uint32{cr, cg, cb}, [3]uint32{mr, mg, mb})
}

func TestRenderRejectsBadOptions(t *testing.T) {
	m := unitSquare(t)
	_, err := Render(m, Options{Size: 0})
	require.Error(t, err)
	_, err = Render(m, Options{Size: 10, Margin: 5})
	require.Error(t, err)
}

func TestSavePNG(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "square.png")
	require.NoError(t, Save(filename, unitSquare(t), Options{Size: 96, Margin: 8}))

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 96, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}

func TestSaveWebP(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "square.webp")
	require.NoError(t, Save(filename, unitSquare(t), DefaultOptions()))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.True(t, bytes.Equal(data[:4], []byte("RIFF")))
	assert.True(t, bytes.Equal(data[8:12], []byte("WEBP")))
}

func TestSaveUnsupportedFormat(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "square.jpg")
	require.Error(t, Save(filename, unitSquare(t), DefaultOptions()))
	_, err := os.Stat(filename)
	assert.True(t, os.IsNotExist(err))
}
