package student

import (
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID        int       `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Grade     string    `bun:"grade"`
	Bio       string    `bun:"bio"`
	Avatar    string    `bun:"avatar"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Response is the wire shape the SPA expects: ids are strings.
type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Student) ToResponse() Response {
	return Response{
		ID:        strconv.Itoa(s.ID),
		Name:      s.Name,
		Grade:     s.Grade,
		Bio:       s.Bio,
		Avatar:    s.Avatar,
		CreatedAt: s.CreatedAt,
	}
}

func ToResponses(students []Student) []Response {
	responses := make([]Response, 0, len(students))
	for i := range students {
		responses = append(responses, students[i].ToResponse())
	}
	return responses
}

// CreateRequest is the request body for creating a student
type CreateRequest struct {
	Name   string `json:"name" validate:"required"`
	Grade  string `json:"grade"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// UpdateRequest is a partial patch: nil fields keep the stored value, a
// present empty string clears the field.
type UpdateRequest struct {
	Name   *string `json:"name"`
	Grade  *string `json:"grade"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}
