package charge

import (
	"context"

	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=charge

// Writer holds the targeted, id-keyed writes used by settle and unsettle.
type Writer interface {
	FindSuccessor(ctx context.Context, predecessorID uuid.UUID) (*Charge, error)
	Insert(ctx context.Context, c *Charge) error
	Update(ctx context.Context, id uuid.UUID, patch Patch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository is the durable charge store.
type Repository interface {
	Writer

	// ListByDueDateRange returns charges due between start and end, inclusive.
	ListByDueDateRange(ctx context.Context, start, end calendar.Date) ([]*Charge, error)
	Get(ctx context.Context, id uuid.UUID) (*Charge, error)
}

// Transactor is implemented by stores that can apply several writes atomically.
type Transactor interface {
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	Writer

	Commit() error
	Rollback() error
}
