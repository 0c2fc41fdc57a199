package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, userId int, event Event) (Event, error)
	GetEvent(ctx context.Context, userId int, id string) (Event, error)
	// GetEvents returns events overlapping the period, boundaries inclusive, ordered by start time.
	GetEvents(ctx context.Context, userId int, from, to time.Time) ([]Event, error)
	GetAllEvents(ctx context.Context, userId int) ([]Event, error)
	UpdateEvent(ctx context.Context, userId int, event Event) (Event, error)
	DeleteEvent(ctx context.Context, userId int, id string) error
	DeleteAllEvents(ctx context.Context, userId int) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const eventColumns = `id, title, description, variant, start_time, end_time`

func (r *RepositoryImpl) StoreEvent(ctx context.Context, userId int, event Event) (Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	query := `INSERT INTO schedule_event (id, user_id, title, description, variant, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING ` + eventColumns

	stored, err := scanEvent(r.getQueryer().QueryRow(ctx, query,
		event.ID,
		userId,
		event.Title,
		event.Description,
		string(event.Variant),
		event.StartDate,
		event.EndDate,
	))
	if err != nil {
		err := fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId int, id string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM schedule_event WHERE user_id = $1 AND id = $2`
	e, err := scanEvent(r.getQueryer().QueryRow(ctx, query, userId, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		return Event{}, fmt.Errorf("could not get event: %w", err)
	}
	return e, nil
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
              FROM schedule_event
              WHERE user_id = $1
                AND start_time <= $2
                AND end_time >= $3
			  ORDER BY start_time, id`

	rows, err := r.getQueryer().Query(ctx, query, userId, to, from)
	if err != nil {
		err := fmt.Errorf("could not query schedule events: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectEvents(rows)
}

func (r *RepositoryImpl) GetAllEvents(ctx context.Context, userId int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM schedule_event WHERE user_id = $1 ORDER BY start_time, id`
	rows, err := r.getQueryer().Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query schedule events: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectEvents(rows)
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, userId int, event Event) (Event, error) {
	query := `UPDATE schedule_event
				SET title = $1, description = $2, variant = $3, start_time = $4, end_time = $5
				WHERE user_id = $6 AND id = $7
				RETURNING ` + eventColumns
	updated, err := scanEvent(r.getQueryer().QueryRow(ctx, query,
		event.Title,
		event.Description,
		string(event.Variant),
		event.StartDate,
		event.EndDate,
		userId,
		event.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not update event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId int, id string) error {
	query := `DELETE FROM schedule_event WHERE user_id = $1 AND id = $2`
	result, err := r.getQueryer().Exec(ctx, query, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteAllEvents(ctx context.Context, userId int) (int, error) {
	query := `DELETE FROM schedule_event WHERE user_id = $1`
	result, err := r.getQueryer().Exec(ctx, query, userId)
	if err != nil {
		return 0, fmt.Errorf("could not delete events: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	var variant string
	err := row.Scan(&e.ID, &e.Title, &e.Description, &variant, &e.StartDate, &e.EndDate)
	if err != nil {
		return Event{}, err
	}
	e.Variant = Variant(variant)
	return e, nil
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	events := make([]Event, 0, 10)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
