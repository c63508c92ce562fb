package main

import (
	"flag"
	"log"
	"os"

	"github.com/PhilKit6/tcpKit/tcp_track"
)

func main() {
	var configPath string
	var frames int
	var filterMode string
	var outputAddr string
	var reportDir string
	flag.StringVar(&configPath, "config", "config.testing.json", "Path to JSON config.")
	flag.IntVar(&frames, "frames", 0, "Override frame budget (0 = run until interrupted).")
	flag.StringVar(&filterMode, "filter", "", "Override filter mode (MOVING_AVERAGE or EXPONENTIAL).")
	flag.StringVar(&outputAddr, "output-addr", "", "Override telemetry UDP addr (host:port).")
	flag.StringVar(&reportDir, "report-dir", "", "Override report output directory.")
	flag.Parse()

	cfg, err := tcp_track.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config %q: %v", configPath, err)
	}

	if frames > 0 {
		cfg.MaxFrames = frames
	}
	if filterMode != "" {
		mode, err := tcp_track.ParseFilterMode(filterMode)
		if err != nil {
			log.Fatalf("invalid filter override %q: %v", filterMode, err)
		}
		cfg.Filter.Mode = mode
	}
	if outputAddr != "" {
		cfg.Output.UDPAddr = outputAddr
	}
	if reportDir != "" {
		cfg.Report.Dir = reportDir
	}

	if err := tcp_track.RunSim(cfg, os.Stdin); err != nil {
		log.Fatal(err)
	}
}
