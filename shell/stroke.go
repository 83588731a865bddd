package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/inkbridge/inkbridge/host"
	"github.com/inkbridge/inkbridge/ink"
)

func strokeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:     "stroke",
		Help:     "draw a stroke through the given points",
		LongHelp: "Usage: stroke x1,y1 [x2,y2 ...]",
		Func: func(c *ishell.Context) {
			if ctx.Session.State() != host.Open {
				c.Err(errors.New("the drawing window is not open"))
				return
			}
			points, err := parsePoints(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			ctx.Session.Canvas().AddStroke(points...)
		},
	}
}

func parsePoints(args []string) ([]ink.Point, error) {
	if len(args) == 0 {
		return nil, errors.New("missing points")
	}
	points := make([]ink.Point, 0, len(args))
	for _, a := range args {
		xs, ys, ok := strings.Cut(a, ",")
		if !ok {
			return nil, fmt.Errorf("point %q is not x,y", a)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %v", a, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %v", a, err)
		}
		points = append(points, ink.Point{X: x, Y: y})
	}
	return points, nil
}
