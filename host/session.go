// Package host owns the drawing window lifecycle: the capture canvas, the
// drawing preserved across minimize and reopen, and submission to the
// backend.
package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/inkbridge/inkbridge/capture"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/transport"
)

// State of the drawing window.
type State int

const (
	Closed State = iota
	Open
	Minimized
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Minimized:
		return "minimized"
	case Submitting:
		return "submitting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrInvalidState is returned for transitions the current state does
	// not allow.
	ErrInvalidState = errors.New("invalid session state")
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("submission in progress")
)

// Sender delivers a submission. *transport.Client implements it.
type Sender interface {
	Send(ctx context.Context, sub *transport.Submission) (*transport.Reply, error)
}

// Status is a snapshot of the session.
type Status struct {
	State     string `json:"state"`
	Strokes   int    `json:"strokes"`
	Points    int    `json:"points"`
	Preserved bool   `json:"preserved"`
}

// Session is the explicit home of the preserved drawing. It is safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	state     State
	canvas    *capture.Canvas
	preserved *ink.Drawing

	exporter     *export.Exporter
	sender       Sender
	maxDimension float64
}

// NewSession returns a closed session drawing on canvas.
func NewSession(canvas *capture.Canvas, exporter *export.Exporter, sender Sender, maxDimension float64) *Session {
	if exporter == nil {
		exporter = export.New(export.DefaultConfig())
	}
	return &Session{
		canvas:       canvas,
		exporter:     exporter,
		sender:       sender,
		maxDimension: maxDimension,
	}
}

// Canvas returns the capture surface.
func (s *Session) Canvas() *capture.Canvas {
	return s.canvas
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a snapshot for display.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.drawingLocked()
	return Status{
		State:     s.state.String(),
		Strokes:   len(d.Strokes),
		Points:    d.PointCount(),
		Preserved: s.preserved != nil,
	}
}

// Open shows the window. A minimized session is reopened with its
// preserved drawing; an open one is left alone.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Closed:
		s.canvas.Clear()
		s.state = Open
	case Minimized:
		s.reopenLocked()
	case Submitting:
		return ErrBusy
	}
	return nil
}

// Toggle flips between open and minimized, opening a closed session.
func (s *Session) Toggle() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Closed:
		s.canvas.Clear()
		s.state = Open
	case Open:
		s.minimizeLocked()
	case Minimized:
		s.reopenLocked()
	case Submitting:
		return s.state, ErrBusy
	}
	return s.state, nil
}

// Minimize hides the window and preserves the drawing.
func (s *Session) Minimize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Open {
		return errors.Wrapf(ErrInvalidState, "cannot minimize when %s", s.state)
	}
	s.minimizeLocked()
	return nil
}

// Reopen restores the preserved drawing onto the canvas.
func (s *Session) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Minimized {
		return errors.Wrapf(ErrInvalidState, "cannot reopen when %s", s.state)
	}
	s.reopenLocked()
	return nil
}

func (s *Session) minimizeLocked() {
	d := s.canvas.CurrentDrawing()
	s.preserved = &d
	s.state = Minimized
	log.Trace.Printf("session minimized, preserved %d strokes", len(d.Strokes))
}

func (s *Session) reopenLocked() {
	if s.preserved != nil {
		s.canvas.Restore(*s.preserved)
		s.preserved = nil
	}
	s.state = Open
}

// Clear empties the canvas and the preserved slot without changing state.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrBusy
	}
	s.canvas.Clear()
	s.preserved = nil
	return nil
}

// Close discards the drawing and closes the window.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrBusy
	}
	s.canvas.Clear()
	s.preserved = nil
	s.state = Closed
	return nil
}

// Drawing returns a copy of the drawing the session would submit: the
// preserved one while minimized, the canvas otherwise.
func (s *Session) Drawing() ink.Drawing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawingLocked()
}

func (s *Session) drawingLocked() ink.Drawing {
	if s.state == Minimized && s.preserved != nil {
		return s.preserved.Clone()
	}
	return s.canvas.CurrentDrawing()
}

// Export runs the pipeline over the current drawing.
func (s *Session) Export() (*export.Result, error) {
	d := s.Drawing()
	return s.exporter.Export(d, s.canvas.CanvasExtent(), s.maxDimension)
}

// Submit exports the drawing and sends it with prompt. On success the
// canvas and preserved slot are cleared and the session closes; on failure
// the session returns to its previous state with the drawing intact.
func (s *Session) Submit(ctx context.Context, prompt string) (*transport.Reply, *export.Result, error) {
	s.mu.Lock()
	if s.state != Open && s.state != Minimized {
		s.mu.Unlock()
		if s.state == Submitting {
			return nil, nil, ErrBusy
		}
		return nil, nil, errors.Wrapf(ErrInvalidState, "cannot submit when %s", s.state)
	}
	if s.sender == nil {
		s.mu.Unlock()
		return nil, nil, errors.New("no backend configured")
	}
	d := s.drawingLocked()
	if !d.HasContent() {
		s.mu.Unlock()
		return nil, nil, export.ErrEmptyContent
	}
	prev := s.state
	s.state = Submitting
	s.mu.Unlock()

	res, err := s.exporter.Export(d, s.canvas.CanvasExtent(), s.maxDimension)
	var reply *transport.Reply
	if err == nil {
		reply, err = s.sender.Send(ctx, &transport.Submission{
			Prompt:   prompt,
			Image:    res.Image,
			MimeType: res.MimeType,
			Width:    res.Width,
			Height:   res.Height,
			Metrics:  res.Metrics,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = prev
		log.Warning.Printf("submit failed: %v", err)
		return nil, res, err
	}
	s.canvas.Clear()
	s.preserved = nil
	s.state = Closed
	log.Info.Printf("submitted %s: %s", reply.ID, res.Metrics)
	return reply, res, nil
}
