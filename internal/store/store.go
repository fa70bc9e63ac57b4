package store

import (
	"context"

	"sorteo/internal/models"
)

// Store is the narrow contract every backend implements: the four
// operations the reservation service needs, keyed by numero.
//
// Update and Delete are no-ops when no record matches.
type Store interface {
	List(ctx context.Context) ([]models.Reservation, error)
	Create(ctx context.Context, records []models.Reservation) error
	Update(ctx context.Context, numero int, fields models.ReservationUpdate) error
	Delete(ctx context.Context, numero int) error
}
