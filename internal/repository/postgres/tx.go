package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

type txRunner struct {
	db *sql.DB
}

func NewTxRunner(db *sql.DB) repository.TxRunner {
	return &txRunner{db: db}
}

// WithListingLock opens a serializable transaction and locks the listing row
// so concurrent bookings of the same listing run one after another.
func (t *txRunner) WithListingLock(ctx context.Context, listingID int32, fn func(ctx context.Context, tx repository.BookingTx) error) error {
	logger.EnterMethod("txRunner.WithListingLock", "listingID", listingID)

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		logger.ExitMethodWithError("txRunner.WithListingLock", err, "reason", "begin failed")
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	logger.DatabaseCall("SELECT FOR UPDATE", "listings", "listingID", listingID)
	var locked int32
	err = tx.QueryRowContext(ctx, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, listingID).Scan(&locked)
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "listingID", listingID)
	if err != nil {
		err = mapError(err, "listing", listingID)
		logger.ExitMethodWithError("txRunner.WithListingLock", err, "listingID", listingID)
		return err
	}

	if err := fn(ctx, &bookingTx{tx: tx}); err != nil {
		logger.ExitMethodWithError("txRunner.WithListingLock", err, "listingID", listingID)
		return err
	}

	if err := tx.Commit(); err != nil {
		err = mapError(err, "listing", listingID)
		logger.ExitMethodWithError("txRunner.WithListingLock", err, "reason", "commit failed")
		return err
	}
	logger.ExitMethod("txRunner.WithListingLock", "listingID", listingID)
	return nil
}

type bookingTx struct {
	tx *sql.Tx
}

func (b *bookingTx) Rentals() repository.RentalRepository {
	return &rentalRepository{db: b.tx}
}

func (b *bookingTx) Blackouts() repository.BlackoutRepository {
	return &blackoutRepository{db: b.tx}
}
