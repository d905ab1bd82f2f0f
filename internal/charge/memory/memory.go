// Package memory is an in-process charge store. It has no transactions, so
// the scheduler falls back to ordered writes against it.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
)

type Store struct {
	mu    sync.Mutex
	items map[uuid.UUID]*charge.Charge
	now   func() time.Time
}

func New(seed ...*charge.Charge) *Store {
	s := &Store{
		items: make(map[uuid.UUID]*charge.Charge, len(seed)),
		now:   time.Now,
	}

	for _, c := range seed {
		cp := c.Clone()
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}

		s.items[cp.ID] = cp
	}

	return s
}

func (s *Store) ListByDueDateRange(_ context.Context, start, end calendar.Date) ([]*charge.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*charge.Charge

	for _, c := range s.items {
		if c.DueDate.Before(start) || c.DueDate.After(end) {
			continue
		}

		out = append(out, c.Clone())
	}

	slices.SortFunc(out, func(a, b *charge.Charge) int {
		return cmp.Or(
			a.DueDate.Compare(b.DueDate),
			cmp.Compare(a.ClientName, b.ClientName),
			a.CreatedAt.Compare(b.CreatedAt),
		)
	})

	return out, nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*charge.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return nil, charge.ErrNotFound
	}

	return c.Clone(), nil
}

func (s *Store) FindSuccessor(_ context.Context, predecessorID uuid.UUID) (*charge.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.items {
		if c.PredecessorID != nil && *c.PredecessorID == predecessorID {
			return c.Clone(), nil
		}
	}

	return nil, charge.ErrNotFound
}

// Insert assigns an id and stores a copy of c. A second successor for the
// same predecessor is rejected with charge.ErrConflict.
func (s *Store) Insert(_ context.Context, c *charge.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.PredecessorID != nil {
		for _, existing := range s.items {
			if existing.PredecessorID != nil && *existing.PredecessorID == *c.PredecessorID {
				return charge.ErrConflict
			}
		}
	}

	c.ID = uuid.New()
	c.CreatedAt = s.now()
	s.items[c.ID] = c.Clone()

	return nil
}

func (s *Store) Update(_ context.Context, id uuid.UUID, patch charge.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return charge.ErrNotFound
	}

	if patch.From != "" && c.Status != patch.From {
		return charge.ErrConflict
	}

	c.Status = patch.Status
	c.SettledAt = nil

	if patch.SettledAt != nil {
		c.SettledAt = new(*patch.SettledAt)
	}

	c.UpdatedAt = new(s.now())

	return nil
}

// Delete removes the charge. Successors keep existing with their back-reference cleared.
func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)

	for _, c := range s.items {
		if c.PredecessorID != nil && *c.PredecessorID == id {
			c.PredecessorID = nil
		}
	}

	return nil
}

// Len returns the number of stored charges.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}
