package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

var ErrAdminNotFound = errors.New("admin not found")

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	admin := new(Admin)
	err := r.db.NewSelect().
		Model(admin).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (r *Repository) Create(ctx context.Context, admin *Admin) error {
	res, err := r.db.NewInsert().Model(admin).Exec(ctx)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	admin.ID = int(id)
	return nil
}
