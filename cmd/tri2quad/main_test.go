package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/notargets/tri2quad/mesh"
	"github.com/notargets/tri2quad/mesh/readers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOutput(t *testing.T) {
	tests := map[string]string{
		"beam-tri.mesh":        "beam-tri_t2q.mesh",
		"meshes/square.mesh":   "meshes/square_t2q.mesh",
		"noext":                "noext_t2q.mesh",
		"dir.v2/star-tri.mesh": "dir.v2/star-tri_t2q.mesh",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, defaultOutput(in))
		})
	}
}

func TestLoadBundledSample(t *testing.T) {
	m, name, err := loadInput("")
	require.NoError(t, err)
	assert.Equal(t, sampleName, name)
	assert.Equal(t, 18, m.NumVertices())
	assert.Equal(t, 16, m.NumElements())
	assert.Equal(t, 18, m.NumBdrElements())
	assert.Equal(t, []mesh.Geometry{mesh.Triangle}, m.Geometries(2))
	assert.InDelta(t, 8.0, m.TotalArea(), 1e-12)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := loadInput(filepath.Join(t.TempDir(), "missing.mesh"))
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "beam-quad.mesh")
	conf := config{
		Output:      output,
		Paraview:    true,
		Preview:     filepath.Join(dir, "beam.png"),
		PreviewSize: 128,
		MetricsFile: filepath.Join(dir, "tri2quad.prom"),
	}
	require.NoError(t, run(conf))

	out, err := readers.ReadMeshFile(output)
	require.NoError(t, err)
	assert.Equal(t, 67, out.NumVertices())
	assert.Equal(t, 48, out.NumElements())
	assert.Equal(t, 36, out.NumBdrElements())
	assert.Equal(t, []mesh.Geometry{mesh.Square}, out.Geometries(2))
	assert.InDelta(t, 8.0, out.TotalArea(), 1e-12)

	for _, name := range []string{"beam-quad.vtu", "beam-quad_bdr.vtu", "beam.png", "tri2quad.prom"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "quad.mesh")
	require.NoError(t, os.WriteFile(input, []byte(`MFEM mesh v1.0
dimension
2
elements
1
1 3 0 1 2 3
boundary
0
vertices
4
2
0 0
1 0
1 1
0 1
`), 0o644))

	require.Error(t, run(config{Mesh: input}))
	_, err := os.Stat(filepath.Join(dir, "quad_t2q.mesh"))
	assert.True(t, os.IsNotExist(err))
}

func TestConfigOptions(t *testing.T) {
	typ := reflect.TypeOf(config{})
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		t.Run(f.Name, func(t *testing.T) {
			_, ok := f.Tag.Lookup("cli")
			assert.True(t, ok)
			assert.NotEmpty(t, f.Tag.Get("help"))
			if env := f.Tag.Get("env"); env != "-" {
				assert.True(t, strings.HasPrefix(env, "TRI2QUAD_"), env)
			}
		})
	}
}

func TestRunGmsh(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "square.msh")
	require.NoError(t, os.WriteFile(input, []byte(`$MeshFormat
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
1 2 2 1 1 1 2 3
2 2 2 1 1 1 3 4
3 1 2 2 1 1 2
4 1 2 2 1 2 3
5 1 2 2 1 3 4
6 1 2 2 1 4 1
$EndElements
`), 0o644))

	require.NoError(t, run(config{Mesh: input}))

	out, err := readers.ReadMeshFile(filepath.Join(dir, "square_t2q.mesh"))
	require.NoError(t, err)
	assert.Equal(t, 4+5+2, out.NumVertices())
	assert.Equal(t, 6, out.NumElements())
	assert.Equal(t, 8, out.NumBdrElements())
	assert.Equal(t, []int{2}, out.BdrAttributes())
	assert.InDelta(t, 1.0, out.TotalArea(), 1e-12)
}
