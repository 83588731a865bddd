package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbridge/inkbridge/capture"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/host"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/transport"
)

type stubSender struct {
	prompts []string
	err     error
}

func (s *stubSender) Send(ctx context.Context, sub *transport.Submission) (*transport.Reply, error) {
	s.prompts = append(s.prompts, sub.Prompt)
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Reply{ID: "r1", Text: "a cat"}, nil
}

func drawnContext(t *testing.T, sender host.Sender) *ShellCtxt {
	s := host.NewSession(capture.NewCanvas(2048, 2732), nil, sender, ink.DefaultMaxDimension)
	require.NoError(t, s.Open())
	s.Canvas().AddStroke(ink.Point{X: 100, Y: 90}, ink.Point{X: 150, Y: 120})
	return &ShellCtxt{Session: s}
}

func TestExportCommand(t *testing.T) {
	ctx := drawnContext(t, nil)
	dst := filepath.Join(t.TempDir(), "out.png")

	var out bytes.Buffer
	require.NoError(t, runExport(ctx, []string{"--thumb=16", dst}, &out))
	assert.Contains(t, out.String(), "out.png: 114x94")

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 114, cfg.Width)
	assert.Equal(t, 94, cfg.Height)
	assert.FileExists(t, dst+".thumb.png")
}

func TestExportCommandEmpty(t *testing.T) {
	ctx := &ShellCtxt{Session: host.NewSession(capture.NewCanvas(100, 100), nil, nil, 0)}
	dst := filepath.Join(t.TempDir(), "out.png")

	err := runExport(ctx, []string{dst}, &bytes.Buffer{})
	assert.ErrorIs(t, err, export.ErrEmptyContent)
	assert.NoFileExists(t, dst)
}

func TestPDFCommand(t *testing.T) {
	ctx := drawnContext(t, nil)
	dst := filepath.Join(t.TempDir(), "out.pdf")

	var out bytes.Buffer
	require.NoError(t, runPDF(ctx, []string{"--numbers", dst}, &out))
	assert.Equal(t, "OK\n", out.String())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	assert.EqualError(t, runPDF(ctx, nil, &out), "missing destination file")
}

func TestSubmitCommand(t *testing.T) {
	sender := &stubSender{}
	ctx := drawnContext(t, sender)
	ctx.JSONOutput = true

	var out bytes.Buffer
	require.NoError(t, runSubmit(ctx, []string{"what", "is", "this"}, &out))
	assert.Equal(t, []string{"what is this"}, sender.prompts)

	var got submitJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "a cat", got.Text)
	assert.Equal(t, ink.Size{Width: 114, Height: 94}, got.Metrics.FinalSize)
	assert.Equal(t, host.Closed, ctx.Session.State())
	assert.False(t, ctx.Session.Drawing().HasContent())
}

func TestSubmitCommandNothingToSubmit(t *testing.T) {
	sender := &stubSender{}
	s := host.NewSession(capture.NewCanvas(100, 100), nil, sender, 0)
	require.NoError(t, s.Open())

	var out bytes.Buffer
	require.NoError(t, runSubmit(&ShellCtxt{Session: s}, nil, &out))
	assert.Equal(t, "nothing to submit\n", out.String())
	assert.Empty(t, sender.prompts)
}

func TestSubmitCommandBackendError(t *testing.T) {
	ctx := drawnContext(t, &stubSender{err: errors.New("backend down")})

	err := runSubmit(ctx, nil, &bytes.Buffer{})
	assert.EqualError(t, err, "backend down")
	assert.Equal(t, host.Open, ctx.Session.State())
	assert.True(t, ctx.Session.Drawing().HasContent())
}
