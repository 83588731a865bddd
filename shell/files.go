package shell

import (
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/inkbridge/inkbridge/encoding/strokes"
)

func loadCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load",
		Help:      "open a saved drawing (.ink or .json)",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing source file"))
				return
			}
			doc, err := strokes.Load(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ctx.Session.Open(); err != nil {
				c.Err(err)
				return
			}
			canvas := ctx.Session.Canvas()
			if !doc.Canvas.IsEmpty() {
				canvas.Resize(doc.Canvas.Width, doc.Canvas.Height)
			}
			canvas.Restore(doc.Drawing)
			c.Println(fmt.Sprintf("loaded %d strokes", len(doc.Drawing.Strokes)))
		},
	}
}

func saveCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "save",
		Help:      "save the drawing (.ink or .json)",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing destination file"))
				return
			}
			doc := &strokes.Document{
				Canvas:  ctx.Session.Canvas().CanvasExtent(),
				Drawing: ctx.Session.Drawing(),
			}
			if err := strokes.Save(c.Args[0], doc); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}
}
