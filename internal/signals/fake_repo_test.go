package signals

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memRepo struct {
	mu       sync.Mutex
	rows     []SavedSignal
	nextID   int64
	listHits int
	saveErr  error
}

func (r *memRepo) Save(_ context.Context, s *SavedSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	s.ID = r.nextID
	r.rows = append(r.rows, *s)
	return nil
}

func (r *memRepo) FindByGUID(_ context.Context, guid string) (*SavedSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GUID == guid {
			out := row
			return &out, nil
		}
	}
	return nil, &NotFoundError{GUID: guid}
}

func (r *memRepo) List(_ context.Context, limit int) ([]SavedSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listHits++
	out := append([]SavedSignal(nil), r.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, guid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.GUID == guid {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{GUID: guid}
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

var errDiskFull = errors.New("disk full")
