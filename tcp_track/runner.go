package tcp_track

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// RunSim drives the control loop at the configured rate until the frame
// budget is exhausted (MaxFrames, 0 = forever).
//
// toggle, when non-nil, is a line stream (normally stdin): each line
// containing "m" switches smoothing between the configured filter and a
// pass-through, so smoothing can be compared interactively mid-run.
func RunSim(cfg AppConfig, toggle io.Reader) error {
	if cfg.Hz <= 0 {
		return fmt.Errorf("hz must be > 0")
	}
	if err := cfg.Config.Validate(); err != nil {
		return err
	}

	surface := NewSineSurface(cfg.Surface)
	loop, err := NewControlLoop(cfg.Config, surface)
	if err != nil {
		return err
	}
	sender, err := NewOutputSender(cfg.Output.UDPAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = sender.Close()
	}()
	viz, err := StartViz(cfg.Viz)
	if err != nil {
		return err
	}
	recorder := NewRunRecorder(cfg.Report, surface, cfg.Tracking)

	toggles := make(chan struct{}, 1)
	if toggle != nil {
		go watchToggle(toggle, toggles)
	}
	smoothing := true

	dtTarget := 1.0 / cfg.Hz
	ticks := 0
	for cfg.MaxFrames <= 0 || ticks < cfg.MaxFrames {
		start := time.Now()

		select {
		case <-toggles:
			smoothing = !smoothing
			if err := applySmoothing(loop, cfg.Filter, smoothing); err != nil {
				return err
			}
			if cfg.Log.Enabled {
				fmt.Printf("smoothing: %v\n", smoothing)
			}
		default:
		}

		res, err := loop.Step()
		if err != nil {
			// Recoverable per-tick failure: state is unchanged, retry.
			if cfg.Log.Enabled {
				fmt.Printf("tick skipped: %v\n", err)
			}
		} else {
			sender.Send(res)
			viz.Update(res)
			recorder.Record(res)
			if cfg.Log.Enabled {
				fmt.Printf(
					"%6d x=%8.3f z=%8.3f slope=%+.4f err=%+.3f var=%.4f beams(%.2f %.2f)%s\n",
					res.Frame,
					res.Pose.X,
					res.Pose.Z,
					res.Slope,
					res.TrackError,
					res.SensorVariance,
					res.Hits[0].Range,
					res.Hits[1].Range,
					resetSuffix(res),
				)
			}
			if res.Reset && cfg.Log.Enabled {
				printStats(loop.LastTraversalStats())
			}
		}
		ticks++

		elapsed := time.Since(start).Seconds()
		sleep := dtTarget - elapsed
		if sleep > 0 {
			time.Sleep(time.Duration(sleep * float64(time.Second)))
		}
	}

	if cfg.Log.Enabled {
		printStats(loop.Stats())
	}
	return recorder.Flush()
}

// applySmoothing restores the configured filter or swaps in a pass-through.
func applySmoothing(loop *ControlLoop, configured FilterConfig, on bool) error {
	if on {
		return loop.SetFilterMode(configured)
	}
	return loop.SetFilterMode(FilterConfig{Mode: FilterMovingAverage, Window: 1})
}

// watchToggle forwards "m" lines from the reader as toggle events.
func watchToggle(r io.Reader, toggles chan<- struct{}) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "m") {
			select {
			case toggles <- struct{}{}:
			default:
			}
		}
	}
}

func resetSuffix(res StepResult) string {
	if res.Reset {
		return "  [reset]"
	}
	return ""
}

func printStats(st ErrorStats) {
	fmt.Printf(
		"traversal stats: n=%d mean=%+.4f rms=%.4f std=%.4f max=%.4f p50=%+.4f p90=%+.4f p99=%+.4f\n",
		st.Count, st.Mean, st.RMS, st.StdDev, st.MaxAbs, st.P50, st.P90, st.P99,
	)
}
