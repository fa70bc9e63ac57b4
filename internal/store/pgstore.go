package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sorteo/internal/models"
)

// PGConfig holds the Postgres connection settings.
type PGConfig struct {
	Host     string
	Port     int
	UserName string
	Password string
	DBName   string
}

// PGStore implements Store on a Postgres table keyed by numero.
// Row-level statements give each mutation the isolation the file
// document cannot.
type PGStore struct {
	db *sqlx.DB
}

const reservasSchema = `
CREATE TABLE IF NOT EXISTS reservas (
	numero         INTEGER PRIMARY KEY,
	customer_name  TEXT NOT NULL,
	customer_phone TEXT NOT NULL,
	customer_email TEXT NOT NULL DEFAULT '',
	customer_notes TEXT NOT NULL DEFAULT '',
	payment_status TEXT NOT NULL DEFAULT 'pending',
	fecha          TEXT NOT NULL
)`

// NewPGStore opens a pooled connection and verifies it.
func NewPGStore(cfg PGConfig) (*PGStore, error) {
	// localhost runs without SSL
	sslMode := "require"
	if cfg.Host == "localhost" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.UserName,
		cfg.Password,
		cfg.DBName,
		sslMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PGStore{db: db}, nil
}

// EnsureSchema creates the reservas table if it is missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, reservasSchema)
	return err
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	return s.db.Close()
}

// List returns every reservation in creation order.
func (s *PGStore) List(ctx context.Context) ([]models.Reservation, error) {
	records := []models.Reservation{}
	err := s.db.SelectContext(ctx, &records,
		`SELECT numero, customer_name, customer_phone, customer_email,
		        customer_notes, payment_status, fecha
		   FROM reservas
		  ORDER BY fecha, numero`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return records, nil
}

// Create inserts the batch inside one transaction so a bulk
// reservation is never half applied.
func (s *PGStore) Create(ctx context.Context, records []models.Reservation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO reservas (numero, customer_name, customer_phone,
			                       customer_email, customer_notes,
			                       payment_status, fecha)
			 VALUES (:numero, :customer_name, :customer_phone,
			         :customer_email, :customer_notes,
			         :payment_status, :fecha)`, r)
		if err != nil {
			return fmt.Errorf("failed to insert reservation %d: %w", r.Numero, err)
		}
	}
	return tx.Commit()
}

// Update merges fields into the row with the given numero. A missing
// numero is a no-op.
func (s *PGStore) Update(ctx context.Context, numero int, fields models.ReservationUpdate) error {
	var current models.Reservation
	err := s.db.GetContext(ctx, &current,
		`SELECT numero, customer_name, customer_phone, customer_email,
		        customer_notes, payment_status, fecha
		   FROM reservas
		  WHERE numero = $1`, numero)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load reservation %d: %w", numero, err)
	}

	fields.Apply(&current)

	_, err = s.db.NamedExecContext(ctx,
		`UPDATE reservas
		    SET customer_name  = :customer_name,
		        customer_phone = :customer_phone,
		        customer_email = :customer_email,
		        customer_notes = :customer_notes,
		        payment_status = :payment_status
		  WHERE numero = :numero`, current)
	if err != nil {
		return fmt.Errorf("failed to update reservation %d: %w", numero, err)
	}
	return nil
}

// Delete frees the slot. A missing numero is a no-op.
func (s *PGStore) Delete(ctx context.Context, numero int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reservas WHERE numero = $1`, numero)
	if err != nil {
		return fmt.Errorf("failed to delete reservation %d: %w", numero, err)
	}
	return nil
}
