package adapters

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

const assignmentColumns = `id::text, order_id, courier_id, status,
	pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
	estimated_distance_km, priority_level, created_at, expires_at, updated_at, notes`

// PostgresLedger stores assignments in PostgreSQL. The partial unique index on
// order_id turns the active-assignment invariant into a single INSERT.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger connects and pings the database.
func NewPostgresLedger(ctx context.Context, dsn string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &PostgresLedger{pool: pool}, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := l.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (l *PostgresLedger) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

// Close releases the pool.
func (l *PostgresLedger) Close() {
	l.pool.Close()
}

func (l *PostgresLedger) Create(ctx context.Context, a *domain.Assignment) error {
	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = a.CreatedAt
	}
	_, err := l.pool.Exec(ctx, `INSERT INTO order_assignments
		(id, order_id, courier_id, status, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		 estimated_distance_km, priority_level, created_at, expires_at, updated_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		a.ID, a.OrderID, a.CourierID, string(a.Status),
		a.Pickup.Lat, a.Pickup.Lng, a.Dropoff.Lat, a.Dropoff.Lng,
		a.EstimatedDistanceKm, a.PriorityLevel, a.CreatedAt, a.ExpiresAt, updated, a.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrAssignmentActive, a.OrderID)
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Get(ctx context.Context, id string) (*domain.Assignment, error) {
	row := l.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM order_assignments WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssignmentNotFound, id)
	}
	return a, err
}

func (l *PostgresLedger) Active(ctx context.Context, orderID string) (*domain.Assignment, error) {
	row := l.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM order_assignments
		WHERE order_id = $1 AND status IN ('assigned', 'accepted', 'in_transit')`, orderID)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (l *PostgresLedger) Transition(ctx context.Context, id string, from []domain.AssignmentStatus, to domain.AssignmentStatus, note string, at time.Time) (*domain.Assignment, error) {
	fromText := make([]string, len(from))
	for i, s := range from {
		fromText[i] = string(s)
	}

	row := l.pool.QueryRow(ctx, `UPDATE order_assignments SET
			status = $3,
			updated_at = $4,
			notes = CASE WHEN $5::text = '' THEN notes WHEN notes = '' THEN $5::text ELSE notes || E'\n' || $5::text END
		WHERE id = $1 AND status = ANY($2)
		RETURNING `+assignmentColumns, id, fromText, string(to), at, note)
	a, err := scanAssignment(row)
	if err == nil {
		return a, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, fmt.Errorf("%w: assignment %s", domain.ErrAssignmentActive, id)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transition assignment %s: %w", id, err)
	}

	var current string
	err = l.pool.QueryRow(ctx, `SELECT status FROM order_assignments WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssignmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read assignment %s: %w", id, err)
	}
	return nil, fmt.Errorf("%w: %s is %s", domain.ErrStaleTransition, id, current)
}

func (l *PostgresLedger) Discard(ctx context.Context, id string) error {
	tag, err := l.pool.Exec(ctx, `DELETE FROM order_assignments WHERE id = $1 AND status = 'assigned'`, id)
	if err != nil {
		return fmt.Errorf("discard assignment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cannot discard %s", domain.ErrStaleTransition, id)
	}
	return nil
}

func (l *PostgresLedger) History(ctx context.Context, orderID string) ([]domain.Assignment, error) {
	rows, err := l.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM order_assignments
		WHERE order_id = $1 ORDER BY created_at, seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", orderID, err)
	}
	return collect(rows)
}

func (l *PostgresLedger) ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Assignment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM order_assignments
		WHERE status = 'assigned' AND expires_at <= $1 ORDER BY expires_at, id LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]domain.Assignment, error) {
	defer rows.Close()
	out := []domain.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var a domain.Assignment
	var status string
	err := row.Scan(&a.ID, &a.OrderID, &a.CourierID, &status,
		&a.Pickup.Lat, &a.Pickup.Lng, &a.Dropoff.Lat, &a.Dropoff.Lng,
		&a.EstimatedDistanceKm, &a.PriorityLevel, &a.CreatedAt, &a.ExpiresAt, &a.UpdatedAt, &a.Notes)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AssignmentStatus(status)
	return &a, nil
}
