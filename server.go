package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkbridge/inkbridge/archive"
	"github.com/inkbridge/inkbridge/capture"
	"github.com/inkbridge/inkbridge/config"
	"github.com/inkbridge/inkbridge/encoding/strokes"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/host"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/metrics"
	"github.com/inkbridge/inkbridge/version"
	"github.com/inkbridge/inkbridge/visualize"
)

const (
	maxBodyBytes       = 32 << 20
	defaultPreviewSize = 256
)

type ApiServer struct {
	cfg      *config.Config
	exporter *export.Exporter
	session  *host.Session
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ExportJSON is the non-inline answer of /api/export.
type ExportJSON struct {
	Image    string         `json:"image"`
	MimeType string         `json:"mimeType"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Region   ink.Rect       `json:"region"`
	Scale    float64        `json:"scale"`
	Metrics  metrics.Export `json:"metrics"`
}

type SubmitJSON struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Metrics metrics.Export `json:"metrics"`
}

func NewApiServer(cfg *config.Config, sender host.Sender) *ApiServer {
	exporter := export.New(cfg.Export.Exporter())
	canvas := capture.NewCanvas(cfg.Canvas.Width, cfg.Canvas.Height)
	return &ApiServer{
		cfg:      cfg,
		exporter: exporter,
		session:  host.NewSession(canvas, exporter, sender, cfg.Export.MaxDimension),
	}
}

func (s *ApiServer) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func (s *ApiServer) writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{Data: data})
}

func (s *ApiServer) writePNG(w http.ResponseWriter, data []byte, name string) {
	w.Header().Set("Content-Type", export.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// exportStatus maps pipeline and session errors to HTTP statuses.
func exportStatus(err error) int {
	switch {
	case errors.Is(err, export.ErrEmptyContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, host.ErrInvalidState), errors.Is(err, host.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *ApiServer) maxDimension(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("max")
	if v == "" {
		return s.cfg.Export.MaxDimension, nil
	}
	return strconv.ParseFloat(v, 64)
}

// POST /api/export?inline=<bool>&max=<n>&format=zip
// The body is a drawing document, binary or JSON.
func (s *ApiServer) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := strokes.Decode(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	maxDim, err := s.maxDimension(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid max: %v", err))
		return
	}

	canvas := doc.Canvas
	if canvas.IsEmpty() {
		canvas = s.cfg.Canvas.Rect()
	}

	res, err := s.exporter.Export(doc.Drawing, canvas, maxDim)
	if err != nil {
		s.writeError(w, exportStatus(err), err)
		return
	}

	if r.URL.Query().Get("format") == "zip" {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", "attachment; filename=\"drawing.zip\"")
		w.WriteHeader(http.StatusOK)
		if err := archive.FromExport(strokes.Document{Canvas: canvas, Drawing: doc.Drawing}, res).Write(w); err != nil {
			log.Error.Printf("failed to write bundle: %v", err)
		}
		return
	}
	if r.URL.Query().Get("inline") == "false" {
		s.writeSuccess(w, exportJSON(res))
		return
	}
	s.writePNG(w, res.Image, "drawing.png")
}

func exportJSON(res *export.Result) ExportJSON {
	return ExportJSON{
		Image:    base64.StdEncoding.EncodeToString(res.Image),
		MimeType: res.MimeType,
		Width:    res.Width,
		Height:   res.Height,
		Region:   res.Region,
		Scale:    res.Scaling.Scale,
		Metrics:  res.Metrics,
	}
}

// POST /api/session/{action}
func (s *ApiServer) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	var err error
	switch action := chi.URLParam(r, "action"); action {
	case "open":
		err = s.session.Open()
	case "minimize":
		err = s.session.Minimize()
	case "reopen":
		err = s.session.Reopen()
	case "toggle":
		_, err = s.session.Toggle()
	case "clear":
		err = s.session.Clear()
	case "close":
		err = s.session.Close()
	default:
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown action %q", action))
		return
	}
	if err != nil {
		s.writeError(w, exportStatus(err), err)
		return
	}
	s.writeSuccess(w, s.session.Status())
}

// GET /api/session
func (s *ApiServer) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	s.writeSuccess(w, s.session.Status())
}

// POST /api/session/strokes
func (s *ApiServer) handleStrokes(w http.ResponseWriter, r *http.Request) {
	if s.session.State() != host.Open {
		s.writeError(w, http.StatusConflict, fmt.Errorf("the drawing window is %s", s.session.State()))
		return
	}
	var req ink.Drawing
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	canvas := s.session.Canvas()
	for _, st := range req.Strokes {
		canvas.AddStroke(st.Points...)
	}
	s.writeSuccess(w, s.session.Status())
}

// POST /api/session/submit
func (s *ApiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && err != io.EOF {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.submitTimeout())
	defer cancel()

	reply, res, err := s.session.Submit(ctx, req.Prompt)
	if err != nil {
		status := exportStatus(err)
		if status == http.StatusInternalServerError && res != nil {
			// exported fine, the backend failed
			status = http.StatusBadGateway
		}
		s.writeError(w, status, err)
		return
	}
	s.writeSuccess(w, SubmitJSON{ID: reply.ID, Text: reply.Text, Metrics: res.Metrics})
}

func (s *ApiServer) submitTimeout() time.Duration {
	if s.cfg.Backend.Timeout > 0 {
		return s.cfg.Backend.Timeout
	}
	return 60 * time.Second
}

// GET /api/session/preview?size=<n>
func (s *ApiServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	size := uint(defaultPreviewSize)
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil || n == 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid size %q", v))
			return
		}
		size = uint(n)
	}

	res, err := s.session.Export()
	if errors.Is(err, export.ErrEmptyContent) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.writeError(w, exportStatus(err), err)
		return
	}
	data, err := visualize.ThumbnailPNG(res.Raster, size, size)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writePNG(w, data, "preview.png")
}

// GET /api/version
func (s *ApiServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeSuccess(w, map[string]string{"version": version.Version})
}

func (s *ApiServer) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Post("/export", s.handleExport)

		r.Get("/session", s.handleSessionStatus)
		r.Get("/session/preview", s.handlePreview)
		r.Post("/session/strokes", s.handleStrokes)
		r.Post("/session/submit", s.handleSubmit)
		r.Post("/session/{action}", s.handleSessionAction)
	})
	return r
}

func runServerMode(cfg *config.Config, port string) {
	server := NewApiServer(cfg, cfg.Backend.Client())

	addr := cfg.Server.Address()
	if port != "" {
		addr = ":" + port
	}

	log.Info.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Error.Fatalf("Server failed: %v", err)
	}
}
