/*
Package sqlite provides a SQLite-backed implementation of orders.Store.

PURPOSE:
  Persists the pendientes and confirmaciones tables in SQLite while
  keeping the board's storage contract: full read, full overwrite,
  nothing row-level. SQLite stands in for the cloud spreadsheet the
  board originally lived in, so an overwrite really does clear the
  table and rewrite every row.

KEY TABLES:
  pendientes:      uploaded work orders, stamped by batch
  confirmaciones:  technician confirmations, keyed (by convention)
                   on numero_peticion

ROW ORDER:
  An autoincrement seq column preserves insertion order across the
  clear-then-write cycle. Row order is user-visible data here.

OVERWRITE ATOMICITY:
  Each overwrite runs DELETE + INSERTs inside one transaction, so a
  reader never observes a half-written table. That is stronger than
  the spreadsheet original, which could lose the table between clear
  and write; there is no reason to reproduce that failure mode.

CONCURRENCY:
  sync.RWMutex serializes access within the process. The deployment
  assumes a single active editor; two concurrent editors still race
  at the overwrite level (last write wins).

WAL MODE:
  Opened with WAL so reads don't block the writer.

USAGE:
  store, err := sqlite.New("./data/confirmaciones.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - orders/store.go: Interface definition
  - store/xlsx: Workbook-backed implementation
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ayg/confirmaciones/orders"
)

// Store implements orders.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Uploaded work orders, one row per order per upload batch
	CREATE TABLE IF NOT EXISTS pendientes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		tecnico TEXT NOT NULL,
		estado TEXT NOT NULL,
		numero_peticion TEXT NOT NULL,
		dias TEXT NOT NULL,
		direccion TEXT NOT NULL,
		localidad TEXT NOT NULL,
		telefono_movil TEXT NOT NULL,
		fecha_carga TEXT NOT NULL
	);

	-- Batch purge selects on fecha_carga
	CREATE INDEX IF NOT EXISTS idx_pendientes_fecha_carga
		ON pendientes(fecha_carga);

	-- Technician confirmations. numero_peticion is NOT unique here:
	-- the legacy data contains duplicates and the board tolerates them.
	CREATE TABLE IF NOT EXISTS confirmaciones (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		tecnico TEXT NOT NULL,
		estado TEXT NOT NULL,
		numero_peticion TEXT NOT NULL,
		dias TEXT NOT NULL,
		direccion TEXT NOT NULL,
		localidad TEXT NOT NULL,
		telefono_movil TEXT NOT NULL,
		confirmacion TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_confirmaciones_peticion
		ON confirmaciones(numero_peticion);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PENDIENTES (orders.Store interface)
// =============================================================================

// LoadPending returns every pending order in stored order.
func (s *Store) LoadPending(ctx context.Context) ([]orders.PendingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT tecnico, estado, numero_peticion, dias, direccion, localidad,
		       telefono_movil, fecha_carga
		FROM pendientes
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load pendientes: %w", err)
	}
	defer rows.Close()

	result := []orders.PendingOrder{}
	for rows.Next() {
		var p orders.PendingOrder
		if err := rows.Scan(&p.Technician, &p.Status, &p.OrderID, &p.DaysOutstanding,
			&p.Address, &p.Localidad, &p.MobilePhone, &p.LoadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pendiente: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// OverwritePending replaces the whole pendientes table in one transaction.
func (s *Store) OverwritePending(ctx context.Context, pending []orders.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pendientes`); err != nil {
		return fmt.Errorf("failed to clear pendientes: %w", err)
	}

	insert := `
		INSERT INTO pendientes
		(tecnico, estado, numero_peticion, dias, direccion, localidad,
		 telefono_movil, fecha_carga)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, p := range pending {
		if _, err := tx.ExecContext(ctx, insert,
			p.Technician, p.Status, p.OrderID, p.DaysOutstanding,
			p.Address, p.Localidad, p.MobilePhone, p.LoadedAt,
		); err != nil {
			return fmt.Errorf("failed to insert pendiente %q: %w", p.OrderID, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// CONFIRMACIONES (orders.Store interface)
// =============================================================================

// LoadConfirmations returns every confirmation record in stored order.
func (s *Store) LoadConfirmations(ctx context.Context) ([]orders.ConfirmationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT tecnico, estado, numero_peticion, dias, direccion, localidad,
		       telefono_movil, confirmacion
		FROM confirmaciones
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmaciones: %w", err)
	}
	defer rows.Close()

	result := []orders.ConfirmationRecord{}
	for rows.Next() {
		var c orders.ConfirmationRecord
		if err := rows.Scan(&c.Technician, &c.Status, &c.OrderID, &c.DaysOutstanding,
			&c.Address, &c.Localidad, &c.MobilePhone, &c.Confirmation); err != nil {
			return nil, fmt.Errorf("failed to scan confirmación: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// OverwriteConfirmations replaces the whole confirmaciones table in one
// transaction.
func (s *Store) OverwriteConfirmations(ctx context.Context, confirmations []orders.ConfirmationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM confirmaciones`); err != nil {
		return fmt.Errorf("failed to clear confirmaciones: %w", err)
	}

	insert := `
		INSERT INTO confirmaciones
		(tecnico, estado, numero_peticion, dias, direccion, localidad,
		 telefono_movil, confirmacion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, c := range confirmations {
		if _, err := tx.ExecContext(ctx, insert,
			c.Technician, c.Status, c.OrderID, c.DaysOutstanding,
			c.Address, c.Localidad, c.MobilePhone, c.Confirmation,
		); err != nil {
			return fmt.Errorf("failed to insert confirmación %q: %w", c.OrderID, err)
		}
	}

	return tx.Commit()
}

// Reset clears both tables. Used by tests and development tooling.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"pendientes", "confirmaciones"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}
