package student

import (
	"context"
	"errors"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidInput    = errors.New("invalid input")
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Student, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Student, error) {
	return s.repo.Create(ctx, &Student{
		Name:   req.Name,
		Grade:  req.Grade,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	})
}

func (s *service) GetAll(ctx context.Context) ([]Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial patch: fields absent from the request keep their
// stored values.
func (s *service) Update(ctx context.Context, id int, req UpdateRequest) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Grade != nil {
		existing.Grade = *req.Grade
	}
	if req.Bio != nil {
		existing.Bio = *req.Bio
	}
	if req.Avatar != nil {
		existing.Avatar = *req.Avatar
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
