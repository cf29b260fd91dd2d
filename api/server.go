/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a separately served frontend

ROUTE GROUPS:
  /api/orders/*          Board view and uploads
  /api/confirmations/*   Confirmation save/edit/export
  /api/batches/*         Upload-batch listing and purge
  /*                     Minimal HTML index

SECURITY NOTE:
  No authentication middleware. The board is meant for a trusted
  internal network, like the spreadsheet it replaced.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.GetOrders)
			r.Post("/upload", h.UploadOrders)
		})

		r.Route("/confirmations", func(r chi.Router) {
			r.Post("/", h.SaveConfirmations)
			r.Put("/", h.UpdateConfirmations)
			r.Get("/export", h.ExportConfirmed)
		})

		r.Route("/batches", func(r chi.Router) {
			r.Get("/", h.ListBatches)
			r.Delete("/", h.PurgeBatch)
		})
	})

	// Minimal index so a browser hitting the root sees something useful.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Confirmaciones A&amp;G</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Confirmaciones A&amp;G</h1>
<p>API para el tablero de confirmaciones de órdenes de servicio.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/orders">/api/orders</a> - Tablero (completadas / pendientes / confirmadas)</li>
<li>POST /api/orders/upload - Cargar pendientes (.xlsx, campo "files")</li>
<li>POST /api/confirmations - Guardar confirmaciones</li>
<li>PUT /api/confirmations - Editar confirmaciones</li>
<li><a href="/api/confirmations/export">/api/confirmations/export</a> - Descargar confirmadas</li>
<li><a href="/api/batches">/api/batches</a> - Fechas de carga</li>
<li>DELETE /api/batches?loaded_at=... - Eliminar pendientes por fecha</li>
</ul>
</body>
</html>`))
	})

	return r
}
