/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Confirmaciones A&G board server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize the chosen store (SQLite or workbook)
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -store   Backing store: "sqlite" or "xlsx" (default: sqlite)
  -db      SQLite database path (default: confirmaciones.db)
           Use ":memory:" for an in-memory database
  -data    Workbook path for the xlsx store (default: confirmaciones.xlsx)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run against SQLite
  ./server -db="./data/confirmaciones.db"

  # Run against a local workbook, spreadsheet-style
  ./server -store=xlsx -data="./data/confirmaciones.xlsx"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite, store/xlsx: Store implementations
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayg/confirmaciones/api"
	"github.com/ayg/confirmaciones/orders"
	"github.com/ayg/confirmaciones/store/sqlite"
	"github.com/ayg/confirmaciones/store/xlsx"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	storeKind := flag.String("store", "sqlite", `backing store: "sqlite" or "xlsx"`)
	dbPath := flag.String("db", "confirmaciones.db", "SQLite database path")
	dataPath := flag.String("data", "confirmaciones.xlsx", "workbook path for the xlsx store")
	flag.Parse()

	// Initialize store
	store, closer, err := newStore(*storeKind, *dbPath, *dataPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	// Initialize handler and router
	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("📋 Confirmaciones A&G on http://localhost:%d (store: %s)", *port, *storeKind)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// newStore builds the configured orders.Store. The returned closer is
// nil for stores with nothing to release.
func newStore(kind, dbPath, dataPath string) (orders.Store, io.Closer, error) {
	switch kind {
	case "sqlite":
		s, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "xlsx":
		s, err := xlsx.New(dataPath)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
