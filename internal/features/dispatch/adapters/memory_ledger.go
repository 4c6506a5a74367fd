package adapters

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
)

// MemoryLedger is an in-process AssignmentLedger. The single mutex makes the
// active-assignment check and the insert one atomic step.
type MemoryLedger struct {
	mu      sync.Mutex
	seq     int64
	rows    map[string]*ledgerRow
	byOrder map[string][]string
	active  map[string]string
}

type ledgerRow struct {
	seq int64
	a   domain.Assignment
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		rows:    make(map[string]*ledgerRow),
		byOrder: make(map[string][]string),
		active:  make(map[string]string),
	}
}

func (l *MemoryLedger) Create(_ context.Context, a *domain.Assignment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.active[a.OrderID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrAssignmentActive, a.OrderID)
	}
	if _, ok := l.rows[a.ID]; ok {
		return fmt.Errorf("duplicate assignment id %s", a.ID)
	}

	l.seq++
	row := &ledgerRow{seq: l.seq, a: *a}
	if row.a.UpdatedAt.IsZero() {
		row.a.UpdatedAt = row.a.CreatedAt
	}
	l.rows[a.ID] = row
	l.byOrder[a.OrderID] = append(l.byOrder[a.OrderID], a.ID)
	if a.Status.Active() {
		l.active[a.OrderID] = a.ID
	}
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, id string) (*domain.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssignmentNotFound, id)
	}
	out := row.a
	return &out, nil
}

func (l *MemoryLedger) Active(_ context.Context, orderID string) (*domain.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, ok := l.active[orderID]
	if !ok {
		return nil, nil
	}
	out := l.rows[id].a
	return &out, nil
}

func (l *MemoryLedger) Transition(_ context.Context, id string, from []domain.AssignmentStatus, to domain.AssignmentStatus, note string, at time.Time) (*domain.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssignmentNotFound, id)
	}
	if !slices.Contains(from, row.a.Status) {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrStaleTransition, id, row.a.Status)
	}
	if to.Active() && !row.a.Status.Active() {
		if other, taken := l.active[row.a.OrderID]; taken && other != id {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssignmentActive, row.a.OrderID)
		}
	}

	row.a.Status = to
	row.a.Notes = domain.AppendNote(row.a.Notes, note)
	row.a.UpdatedAt = at
	if to.Active() {
		l.active[row.a.OrderID] = id
	} else if l.active[row.a.OrderID] == id {
		delete(l.active, row.a.OrderID)
	}

	out := row.a
	return &out, nil
}

func (l *MemoryLedger) Discard(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAssignmentNotFound, id)
	}
	if row.a.Status != domain.StatusAssigned {
		return fmt.Errorf("%w: cannot discard %s in %s", domain.ErrStaleTransition, id, row.a.Status)
	}

	orderID := row.a.OrderID
	delete(l.rows, id)
	if l.active[orderID] == id {
		delete(l.active, orderID)
	}
	ids := l.byOrder[orderID]
	l.byOrder[orderID] = slices.DeleteFunc(ids, func(s string) bool { return s == id })
	return nil
}

func (l *MemoryLedger) History(_ context.Context, orderID string) ([]domain.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.byOrder[orderID]
	rows := make([]*ledgerRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, l.rows[id])
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].a.CreatedAt.Equal(rows[j].a.CreatedAt) {
			return rows[i].seq < rows[j].seq
		}
		return rows[i].a.CreatedAt.Before(rows[j].a.CreatedAt)
	})

	out := make([]domain.Assignment, len(rows))
	for i, r := range rows {
		out[i] = r.a
	}
	return out, nil
}

func (l *MemoryLedger) ListExpired(_ context.Context, now time.Time, limit int) ([]domain.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Assignment
	for _, id := range l.active {
		a := l.rows[id].a
		if a.Status == domain.StatusAssigned && a.Expired(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
