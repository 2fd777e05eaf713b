package postgres

import (
	"context"
	"database/sql"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

type userRepository struct {
	db querier
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return u, nil
}
