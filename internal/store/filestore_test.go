package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/logger"

	"sorteo/internal/models"
)

func TestMain(m *testing.M) {
	l := logger.Init("filestore_test", false, false, io.Discard)
	code := m.Run()
	l.Close()
	os.Exit(code)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reservas.json")
	s := NewFileStore(path)

	t.Run("Missing document reads as empty list", func(t *testing.T) {
		records, err := s.List(ctx)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected 0 records, but got %d", len(records))
		}
	})

	t.Run("Create and list round-trip", func(t *testing.T) {
		err := s.Create(ctx, []models.Reservation{
			{Numero: 7, CustomerName: "Ana", CustomerPhone: "111", PaymentStatus: models.PaymentPending, Fecha: "2025-01-01T00:00:00Z"},
			{Numero: 42, CustomerName: "Luis", CustomerPhone: "222", PaymentStatus: models.PaymentPending, Fecha: "2025-01-01T00:00:00Z"},
		})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}

		records, _ := s.List(ctx)
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, but got %d", len(records))
		}
		if records[0].Numero != 7 || records[1].Numero != 42 {
			t.Errorf("Expected numeros [7 42], but got [%d %d]", records[0].Numero, records[1].Numero)
		}
	})

	t.Run("Update merges only the set fields", func(t *testing.T) {
		paid := models.PaymentPaid
		if err := s.Update(ctx, 7, models.ReservationUpdate{PaymentStatus: &paid}); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}

		records, _ := s.List(ctx)
		if records[0].PaymentStatus != models.PaymentPaid {
			t.Errorf("Expected payment status %q, but got %q", models.PaymentPaid, records[0].PaymentStatus)
		}
		if records[0].CustomerName != "Ana" {
			t.Errorf("Expected customer name to survive the merge, but got %q", records[0].CustomerName)
		}
	})

	t.Run("Update of an unknown numero is a no-op", func(t *testing.T) {
		paid := models.PaymentPaid
		if err := s.Update(ctx, 999, models.ReservationUpdate{PaymentStatus: &paid}); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		records, _ := s.List(ctx)
		if len(records) != 2 {
			t.Errorf("Expected 2 records, but got %d", len(records))
		}
	})

	t.Run("Delete frees the slot", func(t *testing.T) {
		if err := s.Delete(ctx, 7); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		records, _ := s.List(ctx)
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, but got %d", len(records))
		}
		if records[0].Numero != 42 {
			t.Errorf("Expected the remaining record to be 42, but got %d", records[0].Numero)
		}
	})

	t.Run("Delete of an unknown numero is a no-op", func(t *testing.T) {
		if err := s.Delete(ctx, 999); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		records, _ := s.List(ctx)
		if len(records) != 1 {
			t.Errorf("Expected 1 record, but got %d", len(records))
		}
	})

	t.Run("Corrupt document reads as empty list", func(t *testing.T) {
		if err := os.WriteFile(path, []byte(`{"not":"a list"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		records, err := s.List(ctx)
		if err != nil {
			t.Fatalf("Expected the read to fail open, but got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected 0 records, but got %d", len(records))
		}
	})
}
