package signals

import "context"

// Repository persists saved signals.
type Repository interface {
	// Save inserts s and sets its ID.
	Save(ctx context.Context, s *SavedSignal) error

	// FindByGUID returns NotFoundError when no row matches.
	FindByGUID(ctx context.Context, guid string) (*SavedSignal, error)

	// List returns signals newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]SavedSignal, error)

	// Delete returns NotFoundError when no row matches.
	Delete(ctx context.Context, guid string) error

	Count(ctx context.Context) (int, error)
}
