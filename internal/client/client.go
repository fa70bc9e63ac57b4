// Package client keeps a browser-style view of the raffle: the full
// 1..1000 slot grid rebuilt from the server's sparse reservation list,
// with a short cache window and single-flight fetches. Mutations call
// the API and then force a refresh; that forced refetch is the only
// consistency mechanism.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/logger"

	"sorteo/internal/models"
)

// DefaultCacheTTL is how long an unforced, parameterless refresh is
// treated as a no-op after a successful fetch.
const DefaultCacheTTL = 30 * time.Second

// APIError is a non-2xx answer from the server. AlreadyReserved is set
// on bulk-reservation conflicts.
type APIError struct {
	Status          int
	Message         string
	AlreadyReserved []int `json:"alreadyReserved"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ListParams narrows a fetch. Any non-zero field is sent as a query
// parameter and bypasses the cache window.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Status  string
	Payment string
}

func (p ListParams) isZero() bool {
	return p == (ListParams{})
}

// CustomerData is the contact block attached to a reservation.
type CustomerData struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// Stats are the derived counts over the current slot grid.
type Stats struct {
	Total     int
	Available int
	Reserved  int
	Paid      int
	Pending   int
}

type listResponse struct {
	Data       []models.Reservation `json:"data"`
	Pagination *models.Pagination   `json:"pagination"`
}

// Client is the slot-grid API client.
type Client struct {
	baseURL string
	http    *http.Client
	ttl     time.Duration

	mu         sync.Mutex
	numbers    []models.Slot
	pagination *models.Pagination
	lastFetch  time.Time
	cancel     context.CancelFunc
}

// New creates a client against baseURL with the default cache window.
func New(baseURL string) *Client {
	return NewWithTTL(baseURL, DefaultCacheTTL)
}

// NewWithTTL creates a client with an explicit cache window.
func NewWithTTL(baseURL string, ttl time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		ttl:     ttl,
	}
}

// Refresh fetches the reservation list and rebuilds the slot grid.
// Unforced, parameterless calls inside the cache window are skipped.
// Starting a fetch cancels any fetch still in flight; the canceled
// fetch's error is swallowed, so at most one outstanding request ever
// lands. A failed fetch logs and leaves the previous grid in place.
func (c *Client) Refresh(ctx context.Context, force bool, params ListParams) error {
	c.mu.Lock()
	if !force && params.isZero() && time.Since(c.lastFetch) < c.ttl {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	resp, err := c.fetchList(fetchCtx, params)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Errorf("Error refreshing reservations: %v", err)
		return err
	}

	grid := Overlay(resp.Data, models.TotalNumbers)

	c.mu.Lock()
	c.numbers = grid
	c.pagination = resp.Pagination
	c.lastFetch = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Client) fetchList(ctx context.Context, params ListParams) (*listResponse, error) {
	u, err := url.Parse(c.baseURL + "/api/reservas")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.Payment != "" {
		q.Set("payment", params.Payment)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	// Older deployments answered with the bare record array instead of
	// {data, pagination}.
	var legacy []models.Reservation
	if err := json.Unmarshal(body, &legacy); err == nil {
		return &listResponse{
			Data: legacy,
			Pagination: &models.Pagination{
				Page:       1,
				Limit:      models.TotalNumbers,
				Total:      len(legacy),
				TotalPages: 1,
			},
		}, nil
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return &out, nil
}

// Overlay builds the full slot grid and marks each record's slot
// reserved. Records outside 1..total are dropped.
func Overlay(records []models.Reservation, total int) []models.Slot {
	slots := make([]models.Slot, total)
	for i := range slots {
		slots[i] = models.Slot{Number: i + 1}
	}
	for _, r := range records {
		idx := r.Numero - 1
		if idx < 0 || idx >= total {
			continue
		}
		slots[idx] = models.Slot{
			Number:        r.Numero,
			IsReserved:    true,
			CustomerName:  r.CustomerName,
			CustomerPhone: r.CustomerPhone,
			CustomerEmail: r.CustomerEmail,
			CustomerNotes: r.CustomerNotes,
			PaymentStatus: r.PaymentStatus,
			ReservedDate:  r.Fecha,
		}
	}
	return slots
}

// Numbers returns a copy of the current slot grid.
func (c *Client) Numbers() []models.Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Slot, len(c.numbers))
	copy(out, c.numbers)
	return out
}

// Pagination returns the pagination block of the last fetch, or nil
// before the first one.
func (c *Client) Pagination() *models.Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pagination == nil {
		return nil
	}
	p := *c.pagination
	return &p
}

// Stats recomputes the derived counts from the current grid. Nothing
// is maintained incrementally.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Total: len(c.numbers)}
	for _, slot := range c.numbers {
		if slot.IsReserved {
			s.Reserved++
		}
		switch slot.PaymentStatus {
		case models.PaymentPaid:
			s.Paid++
		case models.PaymentPending:
			s.Pending++
		}
	}
	s.Available = s.Total - s.Reserved
	return s
}

// AvailableCount returns how many slots are free.
func (c *Client) AvailableCount() int {
	return c.Stats().Available
}

// ReservedCount returns how many slots are taken.
func (c *Client) ReservedCount() int {
	return c.Stats().Reserved
}

// Reserve books a single number, then forces a refresh. The server
// does not reject duplicates on this path.
func (c *Client) Reserve(ctx context.Context, numero int, data CustomerData) error {
	body := models.Reservation{
		Numero:        numero,
		CustomerName:  data.Name,
		CustomerPhone: data.Phone,
		CustomerEmail: data.Email,
		CustomerNotes: data.Notes,
		PaymentStatus: models.PaymentPending,
	}
	if err := c.send(ctx, http.MethodPost, "/api/reservas", body, nil); err != nil {
		return err
	}
	return c.Refresh(ctx, true, ListParams{})
}

// ReserveMultiple books a batch of numbers in one call, then forces a
// refresh. On conflict the returned *APIError lists the numbers that
// were already taken.
func (c *Client) ReserveMultiple(ctx context.Context, numbers []int, data CustomerData) ([]int, error) {
	payload := map[string]any{
		"numbers": numbers,
		"name":    data.Name,
		"phone":   data.Phone,
		"email":   data.Email,
		"notes":   data.Notes,
	}
	var out struct {
		ReservedNumbers []int `json:"reservedNumbers"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/reservas/multiple", payload, &out); err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx, true, ListParams{}); err != nil {
		return nil, err
	}
	return out.ReservedNumbers, nil
}

// SetPaymentStatus marks a reservation pending, paid or cancelled,
// then forces a refresh.
func (c *Client) SetPaymentStatus(ctx context.Context, numero int, status string) error {
	payload := map[string]any{"numero": numero, "paymentStatus": status}
	if err := c.send(ctx, http.MethodPatch, "/api/reservas", payload, nil); err != nil {
		return err
	}
	return c.Refresh(ctx, true, ListParams{})
}

// SetReservationStatus reserves or frees a slot, then forces a
// refresh. data may be nil when freeing.
func (c *Client) SetReservationStatus(ctx context.Context, numero int, reserved bool, data *CustomerData) error {
	if reserved {
		cd := CustomerData{}
		if data != nil {
			cd = *data
		}
		return c.Reserve(ctx, numero, cd)
	}
	payload := map[string]any{"numero": numero}
	if err := c.send(ctx, http.MethodDelete, "/api/reservas", payload, nil); err != nil {
		return err
	}
	return c.Refresh(ctx, true, ListParams{})
}

// UpdateCustomerData rewrites the contact fields of a reservation,
// leaving the payment status alone, then forces a refresh.
func (c *Client) UpdateCustomerData(ctx context.Context, numero int, data CustomerData) error {
	payload := map[string]any{
		"numero":        numero,
		"customerName":  data.Name,
		"customerPhone": data.Phone,
		"customerEmail": data.Email,
		"customerNotes": data.Notes,
	}
	if err := c.send(ctx, http.MethodPatch, "/api/reservas", payload, nil); err != nil {
		return err
	}
	return c.Refresh(ctx, true, ListParams{})
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: res.StatusCode}
		var msg struct {
			Error           string `json:"error"`
			AlreadyReserved []int  `json:"alreadyReserved"`
		}
		if err := json.Unmarshal(resBody, &msg); err == nil && msg.Error != "" {
			apiErr.Message = msg.Error
			apiErr.AlreadyReserved = msg.AlreadyReserved
		} else {
			apiErr.Message = fmt.Sprintf("unexpected status %d", res.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(resBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
