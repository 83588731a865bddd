// Package shell is the interactive drawing console. It drives a
// host.Session the way the drawing window would.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/inkbridge/inkbridge/config"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/host"
	"github.com/inkbridge/inkbridge/version"
)

type ShellCtxt struct {
	Session    *host.Session
	Config     *config.Config
	JSONOutput bool
}

func (ctx *ShellCtxt) prompt() string {
	return fmt.Sprintf("[%s]>", ctx.Session.State())
}

func (ctx *ShellCtxt) exportConfig() export.Config {
	if ctx.Config == nil {
		return export.DefaultConfig()
	}
	return ctx.Config.Export.Exporter()
}

func (ctx *ShellCtxt) maxDimension() float64 {
	if ctx.Config == nil {
		return 0
	}
	return ctx.Config.Export.MaxDimension
}

// createFsEntryCompleter completes local paths.
func createFsEntryCompleter() func([]string) []string {
	return func(args []string) []string {
		prefix := ""
		if len(args) > 0 {
			prefix = args[len(args)-1]
		}
		matches, _ := filepath.Glob(prefix + "*")
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.IsDir() {
				m += string(filepath.Separator)
			}
			out = append(out, m)
		}
		return out
	}
}

func commands(ctx *ShellCtxt) []*ishell.Cmd {
	return []*ishell.Cmd{
		openCmd(ctx),
		minimizeCmd(ctx),
		reopenCmd(ctx),
		toggleCmd(ctx),
		clearCmd(ctx),
		closeCmd(ctx),
		statusCmd(ctx),
		strokeCmd(ctx),
		loadCmd(ctx),
		saveCmd(ctx),
		exportCmd(ctx),
		pdfCmd(ctx),
		submitCmd(ctx),
		versionCmd(),
	}
}

// RunShell processes args as a single command, or starts the interactive
// console when there are none.
func RunShell(session *host.Session, cfg *config.Config, jsonOutput bool, args []string) error {
	shell := ishell.New()
	ctx := &ShellCtxt{
		Session:    session,
		Config:     cfg,
		JSONOutput: jsonOutput,
	}

	shell.SetPrompt(ctx.prompt())
	for _, cmd := range commands(ctx) {
		shell.AddCmd(wrapPrompt(shell, ctx, cmd))
	}

	if len(args) > 0 {
		return shell.Process(args...)
	}

	shell.Printf("inkbridge shell %s, canvas %s\n", version.Version, canvasLabel(session))
	shell.Run()
	return nil
}

// wrapPrompt refreshes the prompt after every command since most of them
// change the session state.
func wrapPrompt(shell *ishell.Shell, ctx *ShellCtxt, cmd *ishell.Cmd) *ishell.Cmd {
	f := cmd.Func
	cmd.Func = func(c *ishell.Context) {
		f(c)
		shell.SetPrompt(ctx.prompt())
	}
	return cmd
}

func canvasLabel(s *host.Session) string {
	r := s.Canvas().CanvasExtent()
	return fmt.Sprintf("%gx%g", r.Width, r.Height)
}

func versionCmd() *ishell.Cmd {
	return &ishell.Cmd{
		Name: "version",
		Help: "show version",
		Func: func(c *ishell.Context) {
			c.Println(version.Version)
		},
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
