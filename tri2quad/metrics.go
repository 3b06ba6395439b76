package tri2quad

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	kindLabel  = "kind"
	stageLabel = "stage"
)

// Register exposes the conversion statistics as gauges on reg
func (s Stats) Register(reg prometheus.Registerer) error {
	input := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tri2quad_input_entities",
		Help: "Number of entities in the triangular input mesh.",
	}, []string{kindLabel})
	input.WithLabelValues("vertices").Set(float64(s.InputVertices))
	input.WithLabelValues("edges").Set(float64(s.InputEdges))
	input.WithLabelValues("triangles").Set(float64(s.InputTriangles))
	input.WithLabelValues("boundary_segments").Set(float64(s.InputBdrElements))

	output := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tri2quad_output_entities",
		Help: "Number of entities in the quadrilateral output mesh.",
	}, []string{kindLabel})
	output.WithLabelValues("vertices").Set(float64(s.OutputVertices))
	output.WithLabelValues("quadrilaterals").Set(float64(s.OutputQuads))
	output.WithLabelValues("boundary_segments").Set(float64(s.OutputBdrElements))

	reoriented := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tri2quad_reoriented_elements",
		Help: "Number of output elements reversed at finalize.",
	})
	reoriented.Set(float64(s.Reoriented))

	stages := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tri2quad_stage_duration_seconds",
		Help: "Wall time spent in each conversion stage.",
	}, []string{stageLabel})
	for _, st := range s.Stages {
		stages.WithLabelValues(st.Name).Set(st.Duration.Seconds())
	}

	for _, c := range []prometheus.Collector{input, output, reoriented, stages} {
		if err := reg.Register(c); err != nil {
			return errors.New("registering conversion metrics failed").Wrap(err)
		}
	}
	return nil
}

// WriteTextfile writes the conversion statistics in the Prometheus text
// format, for pickup by a node exporter textfile collector
func (s Stats) WriteTextfile(filename string) error {
	reg := prometheus.NewRegistry()
	if err := s.Register(reg); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(filename, reg); err != nil {
		return errors.New("writing metrics textfile failed").
			WithTag("file", filename).
			Wrap(err)
	}
	return nil
}
