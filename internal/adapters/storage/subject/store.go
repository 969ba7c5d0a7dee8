package subject

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tracker/internal/adapters/storage/slot"
	domain "tracker/internal/domain/subject"
)

// SlotKey is the single key the whole subject list is stored under.
const SlotKey = "attendanceTrackerData"

// Persistence errors
var (
	ErrNoSavedData = errors.New("no saved data found")
	ErrCorruptData = errors.New("saved data is corrupted")
	ErrUnavailable = errors.New("storage unavailable")
)

// Store persists the full subject list.
type Store interface {
	Save(ctx context.Context, records []domain.Record) error
	Load(ctx context.Context) ([]domain.Record, error)
	Remove(ctx context.Context) error
}

// SlotStore serializes the list as one JSON array into a slot.Store.
type SlotStore struct {
	slots slot.Store
	key   string
}

var _ Store = (*SlotStore)(nil)

// NewSlotStore creates a store writing under SlotKey.
func NewSlotStore(slots slot.Store) *SlotStore {
	return &SlotStore{slots: slots, key: SlotKey}
}

// Save writes the ordered list, replacing what was stored.
// PRE: records are valid
// POST: Load returns an equivalent sequence; backend failures wrap ErrUnavailable
func (s *SlotStore) Save(ctx context.Context, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}
	if err := s.slots.Put(ctx, s.key, blob); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Load reads the stored list as written, without normalizing it.
// PRE: none
// POST: Returns the records, ErrNoSavedData if nothing was saved, ErrCorruptData
// if the blob does not decode, or ErrUnavailable on backend failure
func (s *SlotStore) Load(ctx context.Context) ([]domain.Record, error) {
	blob, err := s.slots.Get(ctx, s.key)
	if errors.Is(err, slot.ErrNotFound) {
		return nil, ErrNoSavedData
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	dec := json.NewDecoder(bytes.NewReader(blob))
	var records []domain.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after list", ErrCorruptData)
	}
	if records == nil {
		// A literal null is not a list.
		return nil, fmt.Errorf("%w: expected a list", ErrCorruptData)
	}
	return records, nil
}

// Remove deletes the slot.
// POST: Load returns ErrNoSavedData
func (s *SlotStore) Remove(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
