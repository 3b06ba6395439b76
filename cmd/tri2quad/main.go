// Command tri2quad converts an all-triangle MFEM mesh into an all-quadrilateral
// one by splitting every triangle into three quads.
package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"github.com/notargets/tri2quad/mesh"
	"github.com/notargets/tri2quad/mesh/plot"
	"github.com/notargets/tri2quad/mesh/readers"
	"github.com/notargets/tri2quad/mesh/writers"
	"github.com/notargets/tri2quad/tri2quad"
	"github.com/segmentio/encoding/json"
)

// The tri2quad version number. Set at build.
var version = "v0.1.0"

// sampleName is the name the embedded beam mesh is reported and saved under.
const sampleName = "beam-tri.mesh"

//go:embed data/beam-tri.mesh
var sampleMesh []byte

// This will effectively disable obfuscation of the config struct. Without it,
// garble would rename the fields and the cli package would generate garbled
// command-line options. https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Mesh        string `cli:"" env:"TRI2QUAD_MESH"         help:"Input triangle mesh (.mesh, .msh, .su2 or .neu). Defaults to the bundled beam-tri.mesh sample."`
	Output      string `cli:"" env:"TRI2QUAD_OUTPUT"       help:"Output mesh file. Defaults to <input>_t2q.mesh."`
	Paraview    bool   `cli:"" env:"TRI2QUAD_PARAVIEW"     help:"Also write the output mesh and its boundary as ParaView .vtu files."`
	Preview     string `cli:"" env:"TRI2QUAD_PREVIEW"      help:"Render a .png or .webp preview of the output mesh to this file."`
	PreviewSize int    `cli:"" env:"TRI2QUAD_PREVIEW_SIZE" help:"Preview width and height in pixels."`
	MetricsFile string `cli:"" env:"TRI2QUAD_METRICS_FILE" help:"Write conversion metrics to this Prometheus textfile."`
	LogLevel    string `cli:"" env:"TRI2QUAD_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool   `cli:"" env:"TRI2QUAD_LOG_INDENT"   help:"Indent logs."`
	Version     bool   `cli:"" env:"-"                     help:"Show version."`
	Help        bool   `cli:"" env:"-"                     help:"Show help."`
}

func main() {
	conf := config{
		PreviewSize: plot.DefaultOptions().Size,
		LogLevel:    logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Converts a triangle mesh into a quadrilateral mesh.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := run(conf); err != nil {
		logs.Fatal(err)
	}
}

func run(conf config) error {
	runID := uuid.NewString()

	in, name, err := loadInput(conf.Mesh)
	if err != nil {
		return err
	}
	logs.WithTag("run_id", runID).
		WithTag("mesh", name).
		WithTag("vertices", in.NumVertices()).
		WithTag("triangles", in.NumElements()).
		WithTag("boundary_elements", in.NumBdrElements()).
		Info("mesh loaded")
	logs.WithTag("run_id", runID).Debug(in.String())

	out, stats, err := tri2quad.ConvertWithStats(in)
	if err != nil {
		return errors.New("converting mesh failed").
			WithTag("mesh", name).
			Wrap(err)
	}

	output := conf.Output
	if output == "" {
		output = defaultOutput(name)
	}
	if err := writers.SaveMFEM(output, out); err != nil {
		return err
	}
	logs.WithTag("run_id", runID).
		WithTag("output", output).
		WithTag("vertices", stats.OutputVertices).
		WithTag("quadrilaterals", stats.OutputQuads).
		WithTag("boundary_elements", stats.OutputBdrElements).
		WithTag("reoriented", stats.Reoriented).
		Info("mesh converted")

	if conf.Paraview {
		prefix := strings.TrimSuffix(output, filepath.Ext(output))
		if err := writers.SaveVTU(prefix, out); err != nil {
			return err
		}
		if err := writers.SaveBdrVTU(prefix+"_bdr", out); err != nil {
			return err
		}
		logs.WithTag("run_id", runID).
			WithTag("prefix", prefix).
			Info("paraview files written")
	}

	if conf.Preview != "" {
		opts := plot.DefaultOptions()
		if conf.PreviewSize > 0 {
			opts.Size = conf.PreviewSize
		}
		if err := plot.Save(conf.Preview, out, opts); err != nil {
			return err
		}
		logs.WithTag("run_id", runID).
			WithTag("preview", conf.Preview).
			Info("preview written")
	}

	if conf.MetricsFile != "" {
		if err := stats.WriteTextfile(conf.MetricsFile); err != nil {
			return err
		}
		logs.WithTag("run_id", runID).
			WithTag("metrics_file", conf.MetricsFile).
			Info("metrics written")
	}
	return nil
}

// loadInput reads the mesh named by path, or the embedded sample when path is
// empty. It also returns the name used to derive the default output file.
func loadInput(path string) (*mesh.Mesh, string, error) {
	if path == "" {
		m, err := readers.ReadMFEM(bytes.NewReader(sampleMesh))
		if err != nil {
			return nil, "", errors.New("reading bundled sample mesh failed").Wrap(err)
		}
		return m, sampleName, nil
	}
	m, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, "", err
	}
	return m, path, nil
}

func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_t2q.mesh"
}
