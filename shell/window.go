package shell

import (
	"github.com/abiosoft/ishell"
)

func openCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "open",
		Help: "open the drawing window",
		Func: func(c *ishell.Context) {
			if err := ctx.Session.Open(); err != nil {
				c.Err(err)
			}
		},
	}
}

func minimizeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "minimize",
		Help: "hide the window and keep the drawing",
		Func: func(c *ishell.Context) {
			if err := ctx.Session.Minimize(); err != nil {
				c.Err(err)
			}
		},
	}
}

func reopenCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "reopen",
		Help: "restore the kept drawing",
		Func: func(c *ishell.Context) {
			if err := ctx.Session.Reopen(); err != nil {
				c.Err(err)
			}
		},
	}
}

func toggleCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "toggle",
		Help: "switch between open and minimized",
		Func: func(c *ishell.Context) {
			st, err := ctx.Session.Toggle()
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(st)
		},
	}
}

func clearCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "clear",
		Help: "erase the drawing",
		Func: func(c *ishell.Context) {
			if err := ctx.Session.Clear(); err != nil {
				c.Err(err)
			}
		},
	}
}

func closeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "close",
		Help: "discard the drawing and close the window",
		Func: func(c *ishell.Context) {
			if err := ctx.Session.Close(); err != nil {
				c.Err(err)
			}
		},
	}
}

func statusCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "status",
		Help: "show the session state",
		Func: func(c *ishell.Context) {
			st := ctx.Session.Status()
			if ctx.JSONOutput {
				if err := displayJSON(output(c), st); err != nil {
					c.Err(err)
				}
				return
			}
			c.Printf("%s, %d strokes, %d points", st.State, st.Strokes, st.Points)
			if st.Preserved {
				c.Print(", drawing kept")
			}
			c.Println()
		},
	}
}
