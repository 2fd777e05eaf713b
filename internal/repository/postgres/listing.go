package postgres

import (
	"context"
	"database/sql"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"

	"github.com/lib/pq"
)

type categoryRepository struct {
	db querier
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, default_risk_tier, risk_daily_fee_cents, deductible_cents, keywords`

func (r *categoryRepository) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	c := &domain.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.DefaultRiskTier, &c.RiskDailyFeeCents, &c.DeductibleCents, pq.Array(&c.Keywords))
	if err != nil {
		return nil, mapError(err, "category", id)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DefaultRiskTier, &c.RiskDailyFeeCents, &c.DeductibleCents, pq.Array(&c.Keywords)); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

type listingRepository struct {
	db querier
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

const listingColumns = `l.id, l.owner_id, l.category_id, l.title, l.daily_price_cents, l.is_high_powered, l.accepts_barter,
	l.booking_type, l.risk_tier_override, l.suggested_tier, l.deposit_cents, l.archived_at, l.created_on`

func scanListing(row interface{ Scan(...any) error }, l *domain.Listing, extra ...any) error {
	var override, suggested, deposit sql.NullInt32
	var archived sql.NullTime
	dest := []any{&l.ID, &l.OwnerID, &l.CategoryID, &l.Title, &l.DailyPriceCents, &l.IsHighPowered, &l.AcceptsBarter,
		&l.BookingType, &override, &suggested, &deposit, &archived, &l.CreatedOn}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	l.RiskTierOverride = nullInt32Ptr(override)
	l.SuggestedTier = nullInt32Ptr(suggested)
	l.DepositCents = nullInt32Ptr(deposit)
	if archived.Valid {
		t := archived.Time
		l.ArchivedAt = &t
	}
	return nil
}

func nullInt32Ptr(n sql.NullInt32) *int32 {
	if !n.Valid {
		return nil
	}
	v := n.Int32
	return &v
}

// GetView reads the listing and its category in a single joined query.
func (r *listingRepository) GetView(ctx context.Context, id int32) (*domain.ListingView, error) {
	logger.EnterMethod("listingRepository.GetView", "listingID", id)

	query := `SELECT ` + listingColumns + `,
		c.id, c.name, c.default_risk_tier, c.risk_daily_fee_cents, c.deductible_cents, c.keywords
		FROM listings l JOIN categories c ON c.id = l.category_id
		WHERE l.id = $1`
	logger.DatabaseCall("SELECT", "listings JOIN categories", "listingID", id)

	v := &domain.ListingView{}
	c := &v.Category
	err := scanListing(r.db.QueryRowContext(ctx, query, id), &v.Listing,
		&c.ID, &c.Name, &c.DefaultRiskTier, &c.RiskDailyFeeCents, &c.DeductibleCents, pq.Array(&c.Keywords))
	logger.DatabaseResult("SELECT", 1, err, "listingID", id)
	if err != nil {
		err = mapError(err, "listing", id)
		logger.ExitMethodWithError("listingRepository.GetView", err, "listingID", id)
		return nil, err
	}

	logger.ExitMethod("listingRepository.GetView", "listingID", id, "categoryID", c.ID)
	return v, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.owner_id = $1 ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *listingRepository) UpdateRiskTier(ctx context.Context, listingID, categoryID int32, override, suggested *int32) error {
	query := `UPDATE listings SET category_id = $1, risk_tier_override = $2, suggested_tier = $3 WHERE id = $4`
	logger.DatabaseCall("UPDATE", "listings", "listingID", listingID)
	result, err := r.db.ExecContext(ctx, query, categoryID, override, suggested, listingID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "listingID", listingID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "listing", ID: listingID}
	}
	return nil
}
