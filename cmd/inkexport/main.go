package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/inkbridge/inkbridge/annotations"
	"github.com/inkbridge/inkbridge/config"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/version"
)

func report(out Outcome) {
	switch {
	case out.Err != nil:
		log.Error.Printf("%s: %v", out.Input, out.Err)
	case out.Skipped:
		log.Warning.Printf("%s: empty drawing, skipped", out.Input)
	default:
		log.Info.Printf("%s -> %s: %s", out.Input, out.Output, out.Metrics)
	}
}

func newConverter(cmd *cli.Command) (*converter, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	maxDim := cfg.Export.MaxDimension
	if cmd.IsSet("max") {
		maxDim = cmd.Float("max")
	}

	ec := cfg.Export.Exporter()
	c := &converter{
		exporter:     export.New(ec),
		canvas:       cfg.Canvas.Rect(),
		maxDimension: maxDim,
		outDir:       cmd.String("out"),
		bundle:       cmd.Bool("bundle"),
	}
	if cmd.Bool("pdf") {
		c.pdf = annotations.CreatePdfGenerator(ec, annotations.PdfGeneratorOptions{})
	}
	if c.outDir != "" {
		if err := os.MkdirAll(c.outDir, 0755); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.InitLog()

	c, err := newConverter(cmd)
	if err != nil {
		return err
	}

	if dir := cmd.String("watch"); dir != "" {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		return c.watch(ctx, dir, nil)
	}

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("missing input files")
	}
	inputs, err := expandInputs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	results, err := c.convertAll(ctx, inputs, cmd.Int("jobs"))
	if err != nil {
		return err
	}
	failed := 0
	for _, out := range results {
		report(out)
		if out.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d drawings failed", failed, len(results))
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "inkexport",
		Usage:     "Convert saved drawings (.ink, .json) to cropped PNG images",
		ArgsUsage: "<file or dir>...",
		Version:   version.Version,
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("INKBRIDGE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory, defaults to next to each input",
			},
			&cli.FloatFlag{
				Name:  "max",
				Usage: "Maximum image dimension in pixels, 0 for no limit",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Files converted in parallel",
				Value:   4,
			},
			&cli.BoolFlag{
				Name:  "pdf",
				Usage: "Also write a vector PDF per drawing",
			},
			&cli.BoolFlag{
				Name:  "bundle",
				Usage: "Also write a zip with the image, the drawing and its metrics",
			},
			&cli.StringFlag{
				Name:  "watch",
				Usage: "Convert drawings as they appear in this directory",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
