package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// Events serves the SSE stream at /events when set
	Events http.Handler
}

// NewRouter wires the editor API
func NewRouter(h *EditorHandler, opts RouterOptions) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(h.logger))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Graph-Rejected"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, map[string]string{"status": "healthy"}, http.StatusOK)
	})
	if opts.Events != nil {
		router.Handle("/events", opts.Events)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/graph", h.GetGraph)
		r.Get("/graph/description", h.Export)
		r.Post("/graph/import", h.Import)
		r.Post("/graph/undo", h.Undo)
		r.Post("/graph/redo", h.Redo)
		r.Post("/graph/reset", h.Reset)
		r.Put("/graph/loop", h.SetRootLoop)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", h.CreateNode)
			r.Post("/positions/commit", h.CommitPositions)
			r.Get("/{nodeID}", h.GetNode)
			r.Delete("/{nodeID}", h.DeleteNode)
			r.Put("/{nodeID}/position", h.MoveNode)
			r.Put("/{nodeID}/name", h.RenameNode)
			r.Put("/{nodeID}/value", h.UpdateValue)
			r.Put("/{nodeID}/params", h.UpdateParams)
			r.Put("/{nodeID}/result", h.SetResult)
			r.Put("/{nodeID}/scope", h.MoveToLoop)
			r.Put("/{nodeID}/loop", h.SetNodeLoop)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", h.ListEdges)
			r.Post("/", h.CreateEdge)
			r.Delete("/{index}", h.DeleteEdge)
		})

		r.Route("/inputs", func(r chi.Router) {
			r.Put("/", h.SetLiteral)
			r.Post("/unbind", h.Unbind)
		})

		r.Route("/draft", func(r chi.Router) {
			r.Get("/", h.GetDraft)
			r.Post("/", h.BeginDraft)
			r.Put("/", h.UpdateDraft)
			r.Post("/end", h.EndDraft)
			r.Delete("/", h.CancelDraft)
		})

		r.Route("/saves", func(r chi.Router) {
			r.Get("/", h.ListSaved)
			r.Post("/", h.Save)
			r.Post("/{id}/load", h.LoadSaved)
			r.Delete("/{id}", h.DeleteSaved)
		})

		r.Get("/templates", h.ListTemplates)
		r.Post("/templates/{name}/apply", h.ApplyTemplate)
		r.Get("/agents", h.ListAgents)
	})

	return router
}

// requestLogger logs every request after it is served
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
