package postgres

import (
	"context"
	"database/sql"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"

	"github.com/lib/pq"
)

type rentalRepository struct {
	db querier
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, listing_id, renter_id, owner_id, start_date, end_date, total_days,
	daily_price_snapshot_cents, risk_tier_snapshot, peace_fund_daily_cents, rental_fee_cents,
	peace_fund_fee_cents, deposit_cents, total_paid_cents, status, COALESCE(decline_reason, ''), created_on, updated_on`

func scanRental(row interface{ Scan(...any) error }, rt *domain.Rental) error {
	return row.Scan(&rt.ID, &rt.ListingID, &rt.RenterID, &rt.OwnerID, &rt.StartDate, &rt.EndDate, &rt.TotalDays,
		&rt.DailyPriceSnapshotCents, &rt.RiskTierSnapshot, &rt.PeaceFundDailyCents, &rt.RentalFeeCents,
		&rt.PeaceFundFeeCents, &rt.DepositCents, &rt.TotalPaidCents, &rt.Status, &rt.DeclineReason, &rt.CreatedOn, &rt.UpdatedOn)
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "listingID", rt.ListingID, "renterID", rt.RenterID)

	query := `INSERT INTO rentals (listing_id, renter_id, owner_id, start_date, end_date, total_days,
	          daily_price_snapshot_cents, risk_tier_snapshot, peace_fund_daily_cents, rental_fee_cents,
	          peace_fund_fee_cents, deposit_cents, total_paid_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	now := time.Now()
	rt.CreatedOn, rt.UpdatedOn = now, now

	logger.DatabaseCall("INSERT", "rentals", "listingID", rt.ListingID)
	err := r.db.QueryRowContext(ctx, query, rt.ListingID, rt.RenterID, rt.OwnerID, rt.StartDate, rt.EndDate, rt.TotalDays,
		rt.DailyPriceSnapshotCents, rt.RiskTierSnapshot, rt.PeaceFundDailyCents, rt.RentalFeeCents,
		rt.PeaceFundFeeCents, rt.DepositCents, rt.TotalPaidCents, rt.Status, rt.CreatedOn, rt.UpdatedOn).Scan(&rt.ID)
	logger.DatabaseResult("INSERT", 1, err, "rentalID", rt.ID)

	if err != nil {
		err = mapError(err, "rental", 0)
		logger.ExitMethodWithError("rentalRepository.Create", err)
		return err
	}
	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	if err := scanRental(r.db.QueryRowContext(ctx, query, id), rt); err != nil {
		return nil, mapError(err, "rental", id)
	}
	return rt, nil
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET start_date=$1, end_date=$2, total_days=$3, rental_fee_cents=$4, peace_fund_fee_cents=$5,
	          total_paid_cents=$6, status=$7, decline_reason=$8, updated_on=$9 WHERE id=$10`
	rt.UpdatedOn = time.Now()

	logger.DatabaseCall("UPDATE", "rentals", "rentalID", rt.ID, "status", rt.Status)
	result, err := r.db.ExecContext(ctx, query, rt.StartDate, rt.EndDate, rt.TotalDays, rt.RentalFeeCents, rt.PeaceFundFeeCents,
		rt.TotalPaidCents, rt.Status, rt.DeclineReason, rt.UpdatedOn, rt.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", rt.ID)
		return mapError(err, "rental", rt.ID)
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "rentalID", rt.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "rental", ID: rt.ID}
	}
	return nil
}

func (r *rentalRepository) list(ctx context.Context, where string, args ...any) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE ` + where + ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "rental", 0)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		if err := scanRental(rows, &rt); err != nil {
			return nil, err
		}
		rentals = append(rentals, rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int32) ([]domain.Rental, error) {
	return r.list(ctx, `renter_id = $1`, renterID)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Rental, error) {
	return r.list(ctx, `owner_id = $1`, ownerID)
}

func (r *rentalRepository) ListByListing(ctx context.Context, listingID int32, statuses ...domain.RentalStatus) ([]domain.Rental, error) {
	if len(statuses) == 0 {
		return r.list(ctx, `listing_id = $1`, listingID)
	}
	return r.list(ctx, `listing_id = $1 AND status = ANY($2)`, listingID, pq.Array(statusStrings(statuses)))
}

func (r *rentalRepository) ListByStatus(ctx context.Context, statuses ...domain.RentalStatus) ([]domain.Rental, error) {
	if len(statuses) == 0 {
		return r.list(ctx, `TRUE`)
	}
	return r.list(ctx, `status = ANY($1)`, pq.Array(statusStrings(statuses)))
}

func statusStrings(statuses []domain.RentalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
