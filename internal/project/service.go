package project

import (
	"context"
	"errors"

	"github.com/3025972301/scratch-viwe/internal/student"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrStudentMissing  = errors.New("student not found")
	ErrInvalidInput    = errors.New("invalid input")
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Project, error)
	GetAll(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id int) (*Project, error)
	GetByStudent(ctx context.Context, studentID int) ([]Project, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Project, error)
	Delete(ctx context.Context, id int) error
	IncrementViews(ctx context.Context, id int) (int, error)
	ToggleLike(ctx context.Context, id int, unlike bool) (int, error)
}

type service struct {
	repo     Repository
	students student.Repository
}

func NewService(repo Repository, students student.Repository) Service {
	return &service{
		repo:     repo,
		students: students,
	}
}

// Create requires the referenced student to exist; the projects table has a
// foreign key, but the explicit check turns the failure into a 400 instead
// of a bare constraint error.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if _, err := s.students.GetByID(ctx, int(req.StudentID)); err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return nil, ErrStudentMissing
		}
		return nil, err
	}

	allowDownload := true
	if req.AllowDownload != nil {
		allowDownload = *req.AllowDownload
	}

	return s.repo.Create(ctx, &Project{
		StudentID:     int(req.StudentID),
		Title:         req.Title,
		Description:   req.Description,
		Instructions:  req.Instructions,
		ScratchURL:    req.ScratchURL,
		Sb3File:       req.Sb3File,
		Thumbnail:     req.Thumbnail,
		Award:         req.Award,
		AllowDownload: allowDownload,
	})
}

func (s *service) GetAll(ctx context.Context) ([]Project, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id int) (*Project, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByStudent(ctx context.Context, studentID int) ([]Project, error) {
	if studentID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByStudent(ctx, studentID)
}

// Update applies a partial patch: fields absent from the request keep their
// stored values.
func (s *service) Update(ctx context.Context, id int, req UpdateRequest) (*Project, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StudentID != nil {
		existing.StudentID = int(*req.StudentID)
	}
	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Instructions != nil {
		existing.Instructions = *req.Instructions
	}
	if req.ScratchURL != nil {
		existing.ScratchURL = *req.ScratchURL
	}
	if req.Sb3File != nil {
		existing.Sb3File = *req.Sb3File
	}
	if req.Thumbnail != nil {
		existing.Thumbnail = *req.Thumbnail
	}
	if req.Award != nil {
		existing.Award = *req.Award
	}
	if req.AllowDownload != nil {
		existing.AllowDownload = *req.AllowDownload
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

func (s *service) IncrementViews(ctx context.Context, id int) (int, error) {
	if id <= 0 {
		return 0, ErrInvalidInput
	}
	return s.repo.IncrementViews(ctx, id)
}

func (s *service) ToggleLike(ctx context.Context, id int, unlike bool) (int, error) {
	if id <= 0 {
		return 0, ErrInvalidInput
	}
	return s.repo.ToggleLike(ctx, id, unlike)
}
