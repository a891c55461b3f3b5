// Package monitor serves the recorder's HTTP control and debug surface:
// session status, control commands, the export history and go-echarts
// views of the point cloud and sampling patterns.
package monitor

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/session"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/storage/sqlite"
	"github.com/banshee-data/pointcloud.recorder/internal/httputil"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
	"github.com/banshee-data/pointcloud.recorder/internal/version"
)

//go:embed status.html
var statusHTML embed.FS

var statusTemplate = template.Must(template.New("status.html").Funcs(template.FuncMap{
	"mul100": func(v float64) float64 { return v * 100 },
}).ParseFS(statusHTML, "status.html"))

// ExportLister lists catalogued exports. *sqlite.Catalog implements it.
type ExportLister interface {
	List(sessionID string, limit int) ([]*sqlite.ExportRecord, error)
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Session *session.Session
	Exports ExportLister // optional
	DB      *sqlite.DB   // optional; mounts the SQL debug routes
}

// WebServer handles the HTTP interface of a recording session.
type WebServer struct {
	address string
	session *session.Session
	exports ExportLister
	db      *sqlite.DB
	started time.Time
	server  *http.Server
}

// NewWebServer creates a web server for cfg.Session.
func NewWebServer(cfg WebServerConfig) *WebServer {
	ws := &WebServer{
		address: cfg.Address,
		session: cfg.Session,
		exports: cfg.Exports,
		db:      cfg.DB,
		started: time.Now(),
	}
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.setupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Handler returns the server's routes.
func (ws *WebServer) Handler() http.Handler { return ws.server.Handler }

// Start serves until ctx is cancelled, then shuts down gracefully. It
// returns early with an error if the listener cannot be started.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("[Monitor] Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("[Monitor] Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("[Monitor] HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("[Monitor] HTTP server force close error: %v", err)
		}
	}
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", ws.handleStatusPage)
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/export", ws.handleExport)
	mux.HandleFunc("/api/clear", ws.handleClear)
	mux.HandleFunc("/api/recording", ws.handleRecording)
	mux.HandleFunc("/api/visibility", ws.handleVisibility)
	mux.HandleFunc("/api/exports", ws.handleExports)
	mux.HandleFunc("/debug/cloud", ws.handleCloudScatter)
	mux.HandleFunc("/debug/pattern", ws.handlePatternScatter)
	mux.HandleFunc("/debug/depth.png", ws.handleDepthPreview)

	if ws.db != nil {
		if err := ws.db.AttachAdminRoutes(mux); err != nil {
			monitoring.Logf("[Monitor] SQL debug routes unavailable: %v", err)
		}
	}
	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":    "ok",
		"service":   "pointcloud-recorder",
		"version":   version.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (ws *WebServer) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		State  session.State
		Uptime string
	}{
		State:  ws.session.State(),
		Uptime: time.Since(ws.started).Round(time.Second).String(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTemplate.Execute(w, data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
	}
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, ws.session.State())
}

func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ws.session.Export()
	httputil.Queued(w, "export")
}

func (ws *WebServer) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ws.session.Clear()
	httputil.Queued(w, "clear")
}

// handleRecording sets recording from the `enabled` query parameter, or
// toggles it when the parameter is absent.
func (ws *WebServer) handleRecording(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	v := r.URL.Query().Get("enabled")
	if v == "" {
		ws.session.ToggleRecording()
		httputil.Queued(w, "toggle-recording")
		return
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		httputil.BadRequest(w, "enabled must be true or false")
		return
	}
	ws.session.SetRecording(on)
	httputil.Queued(w, "set-recording")
}

func (ws *WebServer) handleVisibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ws.session.TogglePointsVisible()
	httputil.Queued(w, "toggle-points-visible")
}

// handleExports returns catalogued exports, newest first.
// Query params:
//
//	limit (optional, default 20)
//	all   (optional; true lists every session, default is this session)
func (ws *WebServer) handleExports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.exports == nil {
		httputil.ServiceUnavailable(w, "export catalog not configured")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > 1000 {
			httputil.BadRequest(w, "limit must be between 1 and 1000")
			return
		}
		limit = v
	}
	sessionID := ws.session.ID()
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		sessionID = ""
	}

	recs, err := ws.exports.List(sessionID, limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if recs == nil {
		recs = []*sqlite.ExportRecord{}
	}
	httputil.WriteJSONOK(w, recs)
}
