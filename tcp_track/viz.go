package tcp_track

import (
	"expvar"
	"log"
	"net/http"
)

// VizMetrics exposes live sensing and command values via expvar.
type VizMetrics struct {
	input  *expvar.Map
	output *expvar.Map
	flat   map[string]*expvar.Float
}

// StartViz starts an HTTP server exposing /debug/vars for plotting.
func StartViz(cfg VizConfig) (*VizMetrics, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7070"
	}

	metrics := &VizMetrics{
		input:  expvar.NewMap("input"),
		output: expvar.NewMap("output"),
		flat:   map[string]*expvar.Float{},
	}
	metrics.input.Set("hit1_z", new(expvar.Float))
	metrics.input.Set("hit2_z", new(expvar.Float))
	metrics.input.Set("beam1_len", new(expvar.Float))
	metrics.input.Set("beam2_len", new(expvar.Float))
	metrics.output.Set("slope", new(expvar.Float))
	metrics.output.Set("z", new(expvar.Float))
	metrics.output.Set("track_error", new(expvar.Float))
	metrics.output.Set("sensor_variance", new(expvar.Float))
	metrics.flat["input_hit1_z"] = expvar.NewFloat("input_hit1_z")
	metrics.flat["input_hit2_z"] = expvar.NewFloat("input_hit2_z")
	metrics.flat["input_beam1_len"] = expvar.NewFloat("input_beam1_len")
	metrics.flat["input_beam2_len"] = expvar.NewFloat("input_beam2_len")
	metrics.flat["output_slope"] = expvar.NewFloat("output_slope")
	metrics.flat["output_z"] = expvar.NewFloat("output_z")
	metrics.flat["output_track_error"] = expvar.NewFloat("output_track_error")
	metrics.flat["output_sensor_variance"] = expvar.NewFloat("output_sensor_variance")

	server := &http.Server{Addr: cfg.Addr, Handler: http.DefaultServeMux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("viz server error: %v", err)
		}
	}()

	return metrics, nil
}

// Update publishes the latest tick result.
func (v *VizMetrics) Update(res StepResult) {
	if v == nil {
		return
	}
	setFloat(v.input, "hit1_z", res.Hits[0].Point.Z)
	setFloat(v.input, "hit2_z", res.Hits[1].Point.Z)
	setFloat(v.input, "beam1_len", res.Hits[0].Range)
	setFloat(v.input, "beam2_len", res.Hits[1].Range)
	setFloat(v.output, "slope", res.Slope)
	setFloat(v.output, "z", res.Pose.Z)
	setFloat(v.output, "track_error", res.TrackError)
	setFloat(v.output, "sensor_variance", res.SensorVariance)
	setFlat(v.flat, "input_hit1_z", res.Hits[0].Point.Z)
	setFlat(v.flat, "input_hit2_z", res.Hits[1].Point.Z)
	setFlat(v.flat, "input_beam1_len", res.Hits[0].Range)
	setFlat(v.flat, "input_beam2_len", res.Hits[1].Range)
	setFlat(v.flat, "output_slope", res.Slope)
	setFlat(v.flat, "output_z", res.Pose.Z)
	setFlat(v.flat, "output_track_error", res.TrackError)
	setFlat(v.flat, "output_sensor_variance", res.SensorVariance)
}

// setFloat updates an expvar.Float stored inside a map.
func setFloat(m *expvar.Map, key string, value float64) {
	if v := m.Get(key); v != nil {
		if f, ok := v.(*expvar.Float); ok {
			f.Set(value)
			return
		}
	}
	f := new(expvar.Float)
	f.Set(value)
	m.Set(key, f)
}

func setFlat(vars map[string]*expvar.Float, key string, value float64) {
	if v, ok := vars[key]; ok {
		v.Set(value)
	}
}
