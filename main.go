package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kwv/pxvectorize/imageio"
	"github.com/kwv/pxvectorize/pxconfig"
	"github.com/kwv/pxvectorize/pxgeojson"
	"github.com/kwv/pxvectorize/pxrender"
	"github.com/kwv/pxvectorize/pxservice"
	"github.com/kwv/pxvectorize/vectorize"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile = flag.String("config", "", "Path to YAML configuration file (optional, defaults apply without one)")
	inputFile  = flag.String("input", "", "Input PNG file (required unless --mqtt)")
	outputFile = flag.String("output", "out.svg", "Output file path")
	format     = flag.String("format", "svg", "Output format: svg, png, or geojson")
	scale      = flag.Float64("scale", 0, "Pixel-to-output-unit scale; 0 uses config.render.scale or its default")
	dpi        = flag.Float64("dpi", 96, "DPI used when --format=png")
	seed       = flag.Int64("seed", 0, "Override the smoother's random seed (0 keeps the config/default seed)")
	mqttMode   = flag.Bool("mqtt", false, "Run as an MQTT service: subscribe to PNG payloads, publish GeoJSON")
)

func main() {
	flag.Parse()
	fmt.Printf("pxvectorize version: %s\n", Version)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	if *mqttMode {
		runService(cfg)
		return
	}

	if *inputFile == "" {
		log.Fatal("--input is required (or pass --mqtt to run as a service)")
	}

	runOnce(cfg)
}

func loadConfig() (pxconfig.Config, error) {
	if *configFile == "" {
		return pxconfig.Default(), nil
	}
	cfg, err := pxconfig.Load(*configFile)
	if err != nil {
		return pxconfig.Config{}, err
	}
	return *cfg, nil
}

func runOnce(cfg pxconfig.Config) {
	if *seed != 0 {
		cfg.Seed = *seed
	}

	f, err := os.Open(*inputFile)
	if err != nil {
		log.Fatalf("opening input file: %v", err)
	}
	defer f.Close()

	width, height, pixels, err := imageio.DecodePNG(f)
	if err != nil {
		log.Fatalf("decoding input PNG: %v", err)
	}

	shapes, err := vectorize.Vectorize(cfg.ToVectorizeConfig(), width, height, pixels)
	if err != nil {
		log.Fatalf("vectorizing image: %v", err)
	}

	out, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("creating output file: %v", err)
	}
	defer out.Close()

	renderScale := *scale
	if renderScale == 0 {
		renderScale = cfg.Render.Scale
	}

	switch *format {
	case "svg":
		if err := pxrender.RenderSVG(out, shapes, renderScale); err != nil {
			log.Fatalf("rendering SVG: %v", err)
		}
	case "png":
		if err := pxrender.RenderPNG(out, shapes, renderScale, *dpi); err != nil {
			log.Fatalf("rendering PNG: %v", err)
		}
	case "geojson":
		fc := pxgeojson.ShapesToFeatureCollection(shapes)
		enc := json.NewEncoder(out)
		if err := enc.Encode(fc); err != nil {
			log.Fatalf("encoding GeoJSON: %v", err)
		}
	default:
		log.Fatalf("unknown --format %q (want svg, png, or geojson)", *format)
	}

	fmt.Printf("Wrote %d shape(s) to %s\n", len(shapes), *outputFile)
}

func runService(cfg pxconfig.Config) {
	svc, err := pxservice.New(cfg)
	if err != nil {
		log.Fatalf("starting MQTT service: %v", err)
	}
	defer svc.Close()

	fmt.Printf("pxvectorize service running, subscribed to %s, publishing to %s\n",
		cfg.MQTT.InputTopic, cfg.MQTT.OutputTopic)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Shutting down service...")
}
