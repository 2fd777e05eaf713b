package postgres

import (
	"context"
	"database/sql"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

type blackoutRepository struct {
	db querier
}

func NewBlackoutRepository(db *sql.DB) repository.BlackoutRepository {
	return &blackoutRepository{db: db}
}

func (r *blackoutRepository) Create(ctx context.Context, b *domain.BlackoutRange) error {
	query := `INSERT INTO listing_blackouts (listing_id, start_date, end_date, reason, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	b.CreatedOn = time.Now()
	return r.db.QueryRowContext(ctx, query, b.ListingID, b.StartDate, b.EndDate, b.Reason, b.CreatedOn).Scan(&b.ID)
}

func (r *blackoutRepository) GetByID(ctx context.Context, id int32) (*domain.BlackoutRange, error) {
	b := &domain.BlackoutRange{}
	query := `SELECT id, listing_id, start_date, end_date, COALESCE(reason, ''), created_on FROM listing_blackouts WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.ListingID, &b.StartDate, &b.EndDate, &b.Reason, &b.CreatedOn)
	if err != nil {
		return nil, mapError(err, "blackout", id)
	}
	return b, nil
}

func (r *blackoutRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listing_blackouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "blackout", ID: id}
	}
	return nil
}

func (r *blackoutRepository) ListByListing(ctx context.Context, listingID int32) ([]domain.BlackoutRange, error) {
	query := `SELECT id, listing_id, start_date, end_date, COALESCE(reason, ''), created_on
	          FROM listing_blackouts WHERE listing_id = $1 ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BlackoutRange
	for rows.Next() {
		var b domain.BlackoutRange
		if err := rows.Scan(&b.ID, &b.ListingID, &b.StartDate, &b.EndDate, &b.Reason, &b.CreatedOn); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
