package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/logger"

	"sorteo/internal/models"
	"sorteo/internal/store"
)

// ValidationError rejects a malformed reservation request. The message
// is user-facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError rejects a bulk reservation whose numbers are already
// taken. Numbers lists the conflicting ones.
type ConflictError struct {
	Numbers []int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Los siguientes números ya están reservados: %s", joinNumbers(e.Numbers))
}

// ListParams are the list endpoint's query parameters.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Status  string // all | reserved | available
	Payment string // all | paid | pending | cancelled
}

// ListResult is the list endpoint's response body. Data holds
// reservations, or synthesized available placeholders when filtering
// by status=available.
type ListResult struct {
	Data       []any             `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// BulkRequest is the body of a multi-number reservation: all numbers
// share the same customer fields and one timestamp.
type BulkRequest struct {
	Numbers []int  `json:"numbers"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Notes   string `json:"notes"`
}

// ReservationService implements the reservation operations over a
// Store. Filtering, search and duplicate checks are all linear scans;
// the list is bounded by the slot count.
type ReservationService struct {
	store store.Store
	total int
	now   func() time.Time
}

// NewReservationService creates a service selling slots 1..total.
func NewReservationService(st store.Store, total int) *ReservationService {
	return &ReservationService{
		store: st,
		total: total,
		now:   time.Now,
	}
}

// List applies search, status and payment filters, then pages the
// result.
func (s *ReservationService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = models.TotalNumbers
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]any, 0, len(records))
	if p.Status == "available" {
		// Available slots are synthesized from the full record set.
		// They carry no payment status, so the payment filter does not
		// apply; neither does search, which only matches records.
		reserved := make(map[int]bool, len(records))
		for _, r := range records {
			reserved[r.Numero] = true
		}
		for n := 1; n <= s.total; n++ {
			if !reserved[n] {
				entries = append(entries, models.AvailableNumber{Numero: n})
			}
		}
	} else {
		// status=reserved and status=all see the same record set:
		// everything in the store is a reservation.
		for _, r := range records {
			if p.Search != "" && !matchesSearch(r, p.Search) {
				continue
			}
			if p.Payment != "" && p.Payment != "all" && r.PaymentStatus != p.Payment {
				continue
			}
			entries = append(entries, r)
		}
	}

	total := len(entries)
	totalPages := (total + p.Limit - 1) / p.Limit

	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	return &ListResult{
		Data: entries[start:end],
		Pagination: models.Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    p.Page < totalPages,
			HasPrev:    p.Page > 1,
		},
	}, nil
}

// Create appends a single reservation, stamping fecha server-side.
// The numero is deliberately not checked against existing records
// here; only the bulk path rejects double bookings.
func (s *ReservationService) Create(ctx context.Context, r models.Reservation) error {
	r.Fecha = s.now().UTC().Format(time.RFC3339)
	return s.store.Create(ctx, []models.Reservation{r})
}

// CreateMultiple validates and reserves a batch of numbers in one
// write. It returns the reserved numbers, a ValidationError, or a
// ConflictError listing the numbers already taken; nothing is written
// unless every number is free.
func (s *ReservationService) CreateMultiple(ctx context.Context, req BulkRequest) ([]int, error) {
	if len(req.Numbers) == 0 {
		return nil, &ValidationError{Message: "Debe proporcionar al menos un número"}
	}
	if req.Name == "" || req.Phone == "" {
		return nil, &ValidationError{Message: "Nombre y teléfono son obligatorios"}
	}

	var invalid []int
	for _, n := range req.Numbers {
		if n < 1 || n > s.total {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("Números inválidos: %s", joinNumbers(invalid))}
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[int]bool, len(records))
	for _, r := range records {
		taken[r.Numero] = true
	}
	var conflicts []int
	for _, n := range req.Numbers {
		if taken[n] {
			conflicts = append(conflicts, n)
		}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Numbers: conflicts}
	}

	fecha := s.now().UTC().Format(time.RFC3339)
	batch := make([]models.Reservation, 0, len(req.Numbers))
	for _, n := range req.Numbers {
		batch = append(batch, models.Reservation{
			Numero:        n,
			CustomerName:  req.Name,
			CustomerPhone: req.Phone,
			CustomerEmail: req.Email,
			CustomerNotes: req.Notes,
			PaymentStatus: models.PaymentPending,
			Fecha:         fecha,
		})
	}
	if err := s.store.Create(ctx, batch); err != nil {
		return nil, err
	}

	logger.Infof("Reserved %d number(s) for %s", len(batch), req.Name)
	return req.Numbers, nil
}

// Update merges fields into the reservation with the given numero.
// A missing numero is a no-op.
func (s *ReservationService) Update(ctx context.Context, numero int, fields models.ReservationUpdate) error {
	return s.store.Update(ctx, numero, fields)
}

// Delete frees a slot entirely. A missing numero is a no-op.
func (s *ReservationService) Delete(ctx context.Context, numero int) error {
	return s.store.Delete(ctx, numero)
}

// matchesSearch reports whether the zero-padded number contains the
// term, or the customer name contains it case-insensitively.
func matchesSearch(r models.Reservation, term string) bool {
	if strings.Contains(fmt.Sprintf("%03d", r.Numero), term) {
		return true
	}
	return r.CustomerName != "" &&
		strings.Contains(strings.ToLower(r.CustomerName), strings.ToLower(term))
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
