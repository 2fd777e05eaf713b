package postgres

import (
	"context"
	"database/sql"
	"errors"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside a listing-locked transaction unchanged.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Listings:   NewListingRepository(db),
		Blackouts:  NewBlackoutRepository(db),
		Rentals:    NewRentalRepository(db),
		Chats:      NewChatRepository(db),
		Tx:         NewTxRunner(db),
	}
}

// serialization_failure and deadlock_detected
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// mapError turns driver errors into domain or repository errors.
func mapError(err error, entity string, id int32) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return errors.Join(repository.ErrConflict, err)
		}
	}
	return err
}
