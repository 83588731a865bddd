package shell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abiosoft/ishell"

	"github.com/inkbridge/inkbridge/export"
)

func submitCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:     "submit",
		Help:     "send the drawing to the vision backend",
		LongHelp: "Usage: submit [prompt]",
		Func: func(c *ishell.Context) {
			if err := runSubmit(ctx, c.Args, output(c)); err != nil {
				c.Err(err)
			}
		},
	}
}

func runSubmit(ctx *ShellCtxt, args []string, w io.Writer) error {
	reply, res, err := ctx.Session.Submit(context.Background(), joinArgs(args))
	if errors.Is(err, export.ErrEmptyContent) {
		fmt.Fprintln(w, "nothing to submit")
		return nil
	}
	if err != nil {
		return err
	}

	if ctx.JSONOutput {
		return displayJSON(w, submitJSON{ID: reply.ID, Text: reply.Text, Metrics: res.Metrics})
	}
	fmt.Fprintln(w, res.Metrics)
	fmt.Fprintln(w, reply.Text)
	return nil
}
