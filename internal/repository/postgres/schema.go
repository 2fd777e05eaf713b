package postgres

import (
	"context"
	"database/sql"
)

// Schema creates the tables the store reads and writes. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS categories (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	default_risk_tier INTEGER NOT NULL CHECK (default_risk_tier BETWEEN 1 AND 3),
	risk_daily_fee_cents INTEGER NOT NULL DEFAULT 0,
	deductible_cents INTEGER NOT NULL DEFAULT 0,
	keywords TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS listings (
	id SERIAL PRIMARY KEY,
	owner_id INTEGER NOT NULL REFERENCES users(id),
	category_id INTEGER NOT NULL REFERENCES categories(id),
	title TEXT NOT NULL,
	daily_price_cents INTEGER NOT NULL CHECK (daily_price_cents >= 0),
	is_high_powered BOOLEAN NOT NULL DEFAULT FALSE,
	accepts_barter BOOLEAN NOT NULL DEFAULT FALSE,
	booking_type TEXT NOT NULL DEFAULT 'request' CHECK (booking_type IN ('instant', 'request')),
	risk_tier_override INTEGER,
	suggested_tier INTEGER,
	deposit_cents INTEGER,
	archived_at TIMESTAMPTZ,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS listing_blackouts (
	id SERIAL PRIMARY KEY,
	listing_id INTEGER NOT NULL REFERENCES listings(id),
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	reason TEXT,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (start_date <= end_date)
);

CREATE TABLE IF NOT EXISTS rentals (
	id SERIAL PRIMARY KEY,
	listing_id INTEGER NOT NULL REFERENCES listings(id),
	renter_id INTEGER NOT NULL REFERENCES users(id),
	owner_id INTEGER NOT NULL REFERENCES users(id),
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	total_days INTEGER NOT NULL,
	daily_price_snapshot_cents INTEGER NOT NULL,
	risk_tier_snapshot INTEGER NOT NULL,
	peace_fund_daily_cents INTEGER NOT NULL,
	rental_fee_cents INTEGER NOT NULL,
	peace_fund_fee_cents INTEGER NOT NULL,
	deposit_cents INTEGER NOT NULL,
	total_paid_cents INTEGER NOT NULL,
	status TEXT NOT NULL,
	decline_reason TEXT,
	created_on TIMESTAMPTZ NOT NULL,
	updated_on TIMESTAMPTZ NOT NULL,
	CHECK (start_date <= end_date)
);
CREATE INDEX IF NOT EXISTS rentals_listing_status_idx ON rentals (listing_id, status);

CREATE TABLE IF NOT EXISTS chat_threads (
	id TEXT PRIMARY KEY,
	owner_id INTEGER NOT NULL,
	renter_id INTEGER NOT NULL,
	listing_id INTEGER NOT NULL,
	created_on TIMESTAMPTZ NOT NULL,
	UNIQUE (owner_id, renter_id, listing_id)
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL REFERENCES chat_threads(id),
	recipient_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	body TEXT NOT NULL,
	attributes JSONB,
	created_on TIMESTAMPTZ NOT NULL
);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
