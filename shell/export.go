package shell

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/inkbridge/inkbridge/annotations"
	"github.com/inkbridge/inkbridge/visualize"
)

func exportCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "export",
		Help:      "export the drawing to PNG",
		Completer: createFsEntryCompleter(),
		LongHelp: `Usage: export [options] [file.png]

Options:
  --thumb=<N>  also write a preview no larger than NxN next to the file`,
		Func: func(c *ishell.Context) {
			if err := runExport(ctx, c.Args, output(c)); err != nil {
				c.Err(err)
			}
		},
	}
}

func runExport(ctx *ShellCtxt, args []string, w io.Writer) error {
	flagSet := flag.NewFlagSet("export", flag.ContinueOnError)
	thumb := flagSet.Uint("thumb", 0, "preview size")
	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	dst := "drawing.png"
	if flagSet.NArg() > 0 {
		dst = flagSet.Arg(0)
	}

	res, err := ctx.Session.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, res.Image, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", dst, err)
	}
	if *thumb > 0 {
		data, err := visualize.ThumbnailPNG(res.Raster, *thumb, *thumb)
		if err != nil {
			return err
		}
		preview := dst + ".thumb.png"
		if err := os.WriteFile(preview, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %v", preview, err)
		}
	}

	if ctx.JSONOutput {
		return displayJSON(w, res.Metrics)
	}
	fmt.Fprintf(w, "%s: %dx%d\n%s\n", dst, res.Width, res.Height, res.Metrics)
	return nil
}

func pdfCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "pdf",
		Help:      "export the drawing as a vector PDF",
		Completer: createFsEntryCompleter(),
		LongHelp: `Usage: pdf [options] <file.pdf>

Options:
  --full     print the whole canvas
  --numbers  add page numbers`,
		Func: func(c *ishell.Context) {
			if err := runPDF(ctx, c.Args, output(c)); err != nil {
				c.Err(err)
			}
		},
	}
}

func runPDF(ctx *ShellCtxt, args []string, w io.Writer) error {
	flagSet := flag.NewFlagSet("pdf", flag.ContinueOnError)
	full := flagSet.Bool("full", false, "print the whole canvas")
	numbers := flagSet.Bool("numbers", false, "add page numbers")
	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() == 0 {
		return errors.New("missing destination file")
	}
	dst := flagSet.Arg(0)

	gen := annotations.CreatePdfGenerator(ctx.exportConfig(), annotations.PdfGeneratorOptions{
		FullCanvas:     *full,
		AddPageNumbers: *numbers,
	})
	page := annotations.Page{
		Drawing: ctx.Session.Drawing(),
		Canvas:  ctx.Session.Canvas().CanvasExtent(),
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := gen.Generate(f, page); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %v", dst, err)
	}
	fmt.Fprintln(w, "OK")
	return nil
}
