package shell

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/abiosoft/ishell"

	"github.com/inkbridge/inkbridge/metrics"
)

type submitJSON struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Metrics metrics.Export `json:"metrics"`
}

// shellWriter sends command output to the shell.
type shellWriter struct {
	c *ishell.Context
}

func (w shellWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}

func output(c *ishell.Context) io.Writer {
	return shellWriter{c}
}

func displayJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
