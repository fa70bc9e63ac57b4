package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/google/logger"

	"sorteo/internal/models"
)

// FileStore keeps the whole reservation list in a single JSON
// document. Every mutation re-reads the document, changes the list in
// memory and rewrites the document; the mutex serializes that cycle so
// two mutations cannot discard each other's write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store over the document at path. The file is
// created on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List returns the current reservation list. Reads fail open: a
// missing, unreadable or malformed document yields the empty list and
// never an error.
func (s *FileStore) List(ctx context.Context) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

// Create appends records to the document.
func (s *FileStore) Create(ctx context.Context, records []models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(s.read(), records...)
	return s.write(all)
}

// Update merges fields into the record with the given numero. A
// missing numero leaves the list unchanged.
func (s *FileStore) Update(ctx context.Context, numero int, fields models.ReservationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.read()
	for i := range all {
		if all[i].Numero == numero {
			fields.Apply(&all[i])
			break
		}
	}
	return s.write(all)
}

// Delete removes the record with the given numero, freeing the slot.
// A missing numero leaves the list unchanged.
func (s *FileStore) Delete(ctx context.Context, numero int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.read()
	kept := all[:0]
	for _, r := range all {
		if r.Numero != numero {
			kept = append(kept, r)
		}
	}
	return s.write(kept)
}

func (s *FileStore) read() []models.Reservation {
	data, err := os.ReadFile(s.path)
	if err != nil {
		logger.Infof("Reservation file not readable, starting empty: %v", err)
		return []models.Reservation{}
	}

	var records []models.Reservation
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Infof("Reservation file is not a well-formed list, starting empty: %v", err)
		return []models.Reservation{}
	}
	return records
}

// write rewrites the whole document. The temp-file-plus-rename keeps a
// crashed write from leaving a half-written document behind.
func (s *FileStore) write(records []models.Reservation) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
