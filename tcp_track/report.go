package tcp_track

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RunRecorder accumulates tick results and renders the end-of-run report:
// a CSV log plus tracking and error plots.
type RunRecorder struct {
	cfg      ReportConfig
	surface  SurfaceModel
	tracking TrackingConfig
	results  []StepResult
}

// NewRunRecorder creates a recorder, or nil when reporting is disabled.
func NewRunRecorder(cfg ReportConfig, surface SurfaceModel, tracking TrackingConfig) *RunRecorder {
	if cfg.Dir == "" {
		return nil
	}
	return &RunRecorder{cfg: cfg, surface: surface, tracking: tracking}
}

// Record appends one tick result.
func (r *RunRecorder) Record(res StepResult) {
	if r == nil {
		return
	}
	r.results = append(r.results, res)
}

// Flush writes the CSV log and the plots into the configured directory.
func (r *RunRecorder) Flush() error {
	if r == nil || len(r.results) == 0 {
		return nil
	}
	if err := os.MkdirAll(r.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("report: cannot create directory: %w", err)
	}
	if err := r.writeCSV(filepath.Join(r.cfg.Dir, "run_log.csv")); err != nil {
		return err
	}
	if err := r.plotTracking(filepath.Join(r.cfg.Dir, "tracking.png")); err != nil {
		return err
	}
	return r.plotError(filepath.Join(r.cfg.Dir, "error.png"))
}

func (r *RunRecorder) writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: cannot open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"frame", "x", "z",
		"hit1_x", "hit1_z", "hit2_x", "hit2_z",
		"raw1", "raw2", "filtered1", "filtered2",
		"slope", "track_error", "sensor_variance", "reset",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("report: cannot write header: %w", err)
	}
	for _, res := range r.results {
		row := []string{
			strconv.Itoa(res.Frame),
			formatF(res.Pose.X), formatF(res.Pose.Z),
			formatF(res.Hits[0].Point.X), formatF(res.Hits[0].Point.Z),
			formatF(res.Hits[1].Point.X), formatF(res.Hits[1].Point.Z),
			formatF(res.Raw[0]), formatF(res.Raw[1]),
			formatF(res.Filtered[0]), formatF(res.Filtered[1]),
			formatF(res.Slope), formatF(res.TrackError), formatF(res.SensorVariance),
			strconv.FormatBool(res.Reset),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("report: cannot write row: %w", err)
		}
	}
	return nil
}

// plotTracking draws the true surface, the TCP path, and the beam hits.
func (r *RunRecorder) plotTracking(path string) error {
	p := plot.New()
	p.Title.Text = "TCP tracking"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Z"
	p.Add(plotter.NewGrid())

	const samples = 1000
	surfacePts := make(plotter.XYs, samples)
	span := r.tracking.XEnd - r.tracking.XStart
	for i := range surfacePts {
		x := r.tracking.XStart + span*float64(i)/float64(samples-1)
		surfacePts[i].X = x
		surfacePts[i].Y = r.surface.Height(x)
	}
	surfaceLine, err := plotter.NewLine(surfacePts)
	if err != nil {
		return fmt.Errorf("report: surface line: %w", err)
	}
	surfaceLine.Color = color.RGBA{A: 255}

	pathPts := make(plotter.XYs, len(r.results))
	hitPts := make(plotter.XYs, 0, 2*len(r.results))
	for i, res := range r.results {
		pathPts[i].X = res.Pose.X
		pathPts[i].Y = res.Pose.Z
		for _, hit := range res.Hits {
			hitPts = append(hitPts, plotter.XY{X: hit.Point.X, Y: hit.Point.Z})
		}
	}
	pathLine, err := plotter.NewLine(pathPts)
	if err != nil {
		return fmt.Errorf("report: path line: %w", err)
	}
	pathLine.Color = color.RGBA{R: 220, A: 255}
	hits, err := plotter.NewScatter(hitPts)
	if err != nil {
		return fmt.Errorf("report: hit scatter: %w", err)
	}
	hits.Color = color.RGBA{G: 160, A: 255}
	hits.Radius = vg.Points(1)

	p.Add(surfaceLine, pathLine, hits)
	p.Legend.Add("surface", surfaceLine)
	p.Legend.Add("TCP path", pathLine)
	p.Legend.Add("hits", hits)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// plotError draws the tracking-error sequence against the frame index.
func (r *RunRecorder) plotError(path string) error {
	p := plot.New()
	p.Title.Text = "Tracking error"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "error"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(r.results))
	for i, res := range r.results {
		pts[i].X = float64(i)
		pts[i].Y = res.TrackError
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: error line: %w", err)
	}
	line.Color = color.RGBA{B: 200, A: 255}

	p.Add(line)
	return p.Save(8*vg.Inch, 3*vg.Inch, path)
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
