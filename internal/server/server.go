// Package server exposes rendered maps over HTTP. Artifacts build on
// first request and are served from an LRU cache until they expire or a
// refresh invalidates them.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/atlas"
)

// formatContentTypes maps accepted ?format= values to response types.
var formatContentTypes = map[string]string{
	"geojson": "application/geo+json",
	"html":    "text/html; charset=utf-8",
	"svg":     "image/svg+xml",
}

// Server handles map requests against a shared builder.
type Server struct {
	builder *atlas.Builder
	cache   *ArtifactCache
}

// Options configures the server.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

// New creates a Server around the builder.
func New(builder *atlas.Builder, opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Server{
		builder: builder,
		cache:   NewArtifactCache(opts.CacheSize, opts.CacheTTL),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/maps", s.handleListMaps)
		r.Get("/maps/{name}", s.handleMap)
		r.Get("/maps/{name}/html", s.handleMapHTML)
		r.Get("/maps/{name}/svg", s.handleMapSVG)
		r.Get("/maps/{name}/legend", s.handleLegend)
		r.Post("/maps/{name}/refresh", s.handleRefresh)
		r.Get("/cache/stats", s.handleCacheStats)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// mapSummary is one row of the map listing.
type mapSummary struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Boundary string `json:"boundary"`
	Dataset  string `json:"dataset"`
}

func (s *Server) handleListMaps(w http.ResponseWriter, _ *http.Request) {
	defs := s.builder.Maps.All()
	out := make([]mapSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, mapSummary{
			Name:     def.Name,
			Title:    def.Title,
			Boundary: def.Boundary,
			Dataset:  def.Dataset,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "geojson"
	}
	s.serveMap(w, r, format)
}

// handleMapHTML and handleMapSVG are fixed-format aliases so an iframe
// or <object> src can reference a map without query parameters.
func (s *Server) handleMapHTML(w http.ResponseWriter, r *http.Request) {
	s.serveMap(w, r, "html")
}

func (s *Server) handleMapSVG(w http.ResponseWriter, r *http.Request) {
	s.serveMap(w, r, "svg")
}

func (s *Server) serveMap(w http.ResponseWriter, r *http.Request, format string) {
	name := chi.URLParam(r, "name")
	contentType, ok := formatContentTypes[format]
	if !ok {
		http.Error(w, `{"error":"unknown format"}`, http.StatusBadRequest)
		return
	}
	if _, err := s.builder.Maps.Get(name); err != nil {
		http.Error(w, `{"error":"unknown map"}`, http.StatusNotFound)
		return
	}

	if cached := s.cache.Get(name, format); cached != nil {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(cached)
		return
	}

	artifact, _, err := s.builder.BuildMap(r.Context(), name)
	if err != nil {
		zap.L().Error("map build failed", zap.String("map", name), zap.Error(err))
		http.Error(w, `{"error":"map build failed"}`, http.StatusInternalServerError)
		return
	}

	var data []byte
	switch format {
	case "geojson":
		data, err = artifact.GeoJSON()
	case "html":
		data, err = artifact.HTML()
	case "svg":
		data, err = artifact.SVG(0)
	}
	if err != nil {
		zap.L().Error("artifact encoding failed",
			zap.String("map", name), zap.String("format", format), zap.Error(err))
		http.Error(w, `{"error":"artifact encoding failed"}`, http.StatusInternalServerError)
		return
	}

	s.cache.Put(name, format, data)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(data)
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.builder.Maps.Get(name); err != nil {
		http.Error(w, `{"error":"unknown map"}`, http.StatusNotFound)
		return
	}

	if cached := s.cache.Get(name, "legend"); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(cached)
		return
	}

	artifact, _, err := s.builder.BuildMap(r.Context(), name)
	if err != nil {
		zap.L().Error("map build failed", zap.String("map", name), zap.Error(err))
		http.Error(w, `{"error":"map build failed"}`, http.StatusInternalServerError)
		return
	}
	data, err := json.Marshal(artifact.Legend)
	if err != nil {
		http.Error(w, `{"error":"legend encoding failed"}`, http.StatusInternalServerError)
		return
	}

	s.cache.Put(name, "legend", data)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(data)
}

// handleRefresh drops the named map's cached encodings so the next
// request rebuilds from source data.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.builder.Maps.Get(name); err != nil {
		http.Error(w, `{"error":"unknown map"}`, http.StatusNotFound)
		return
	}
	s.cache.Invalidate(name)
	zap.L().Info("map cache invalidated", zap.String("map", name))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "invalidated", "map": name})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request with its status and timing.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
