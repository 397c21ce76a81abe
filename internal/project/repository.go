package project

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	GetAll(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id int) (*Project, error)
	GetByStudent(ctx context.Context, studentID int) ([]Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id int) error
	IncrementViews(ctx context.Context, id int) (int, error)
	ToggleLike(ctx context.Context, id int, unlike bool) (int, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, project *Project) (*Project, error) {
	res, err := r.db.NewInsert().Model(project).Exec(ctx)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	project.ID = int(id)

	// Reload to get DB-generated timestamps
	if err := r.db.NewSelect().Model(project).WherePK().Scan(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := r.db.NewSelect().
		Model(&projects).
		Order("created_at DESC").
		Order("id DESC").
		Scan(ctx)
	return projects, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Project, error) {
	project := new(Project)
	err := r.db.NewSelect().Model(project).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (r *repository) GetByStudent(ctx context.Context, studentID int) ([]Project, error) {
	var projects []Project
	err := r.db.NewSelect().
		Model(&projects).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Scan(ctx)
	return projects, err
}

func (r *repository) Update(ctx context.Context, project *Project) error {
	result, err := r.db.NewUpdate().
		Model(project).
		Column("student_id", "title", "description", "instructions",
			"scratch_url", "sb3_file", "thumbnail", "award", "allow_download").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.NewDelete().
		Model((*Project)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// IncrementViews bumps the counter in a single statement so concurrent
// visitors cannot lose updates, and returns the new value.
func (r *repository) IncrementViews(ctx context.Context, id int) (int, error) {
	result, err := r.db.NewUpdate().
		Model((*Project)(nil)).
		Set("views = views + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rowsAffected == 0 {
		return 0, ErrProjectNotFound
	}

	var views int
	err = r.db.NewSelect().
		Model((*Project)(nil)).
		Column("views").
		Where("id = ?", id).
		Scan(ctx, &views)
	return views, err
}

// ToggleLike increments likes, or decrements with a floor of zero when
// unlike is set, and returns the new value.
func (r *repository) ToggleLike(ctx context.Context, id int, unlike bool) (int, error) {
	query := r.db.NewUpdate().
		Model((*Project)(nil)).
		Where("id = ?", id)
	if unlike {
		query = query.Set("likes = MAX(likes - 1, 0)")
	} else {
		query = query.Set("likes = likes + 1")
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rowsAffected == 0 {
		return 0, ErrProjectNotFound
	}

	var likes int
	err = r.db.NewSelect().
		Model((*Project)(nil)).
		Column("likes").
		Where("id = ?", id).
		Scan(ctx, &likes)
	return likes, err
}
