package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	flag "github.com/ogier/pflag"

	"github.com/inkbridge/inkbridge/capture"
	"github.com/inkbridge/inkbridge/config"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/host"
	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/shell"
	"github.com/inkbridge/inkbridge/version"
)

func main() {
	serverMode := flag.BoolP("server", "s", false, "run the HTTP API server")
	port := flag.String("port", "", "HTTP server port, overrides the config")
	configPath := flag.StringP("config", "c", os.Getenv("INKBRIDGE_CONFIG"), "path to config file")
	jsonOutput := flag.BoolP("json", "j", false, "print command results as JSON")
	showVersion := flag.BoolP("version", "v", false, "print version and exit")
	flag.Parse()

	log.InitLog()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error.Fatalf("failed to load config: %v", err)
	}

	if *serverMode {
		runServerMode(cfg, *port)
		return
	}

	canvas := capture.NewCanvas(cfg.Canvas.Width, cfg.Canvas.Height)
	exporter := export.New(cfg.Export.Exporter())
	session := host.NewSession(canvas, exporter, cfg.Backend.Client(), cfg.Export.MaxDimension)

	if err := shell.RunShell(session, cfg, *jsonOutput, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
