package project

import (
	"bytes"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"github.com/3025972301/scratch-viwe/internal/student"
)

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID            int       `bun:"id,pk,autoincrement"`
	StudentID     int       `bun:"student_id,notnull"`
	Title         string    `bun:"title,notnull"`
	Description   string    `bun:"description"`
	Instructions  string    `bun:"instructions"`
	ScratchURL    string    `bun:"scratch_url"`
	Sb3File       string    `bun:"sb3_file"`
	Thumbnail     string    `bun:"thumbnail"`
	Award         string    `bun:"award"`
	AllowDownload bool      `bun:"allow_download,default:true"`
	Views         int       `bun:"views,notnull,default:0"`
	Likes         int       `bun:"likes,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Student *student.Student `bun:"rel:belongs-to,join:student_id=id"`
}

// FlexID accepts both numeric and string JSON ids; the SPA sends ids as
// strings.
type FlexID int

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = FlexID(n)
	return nil
}

// Response is the wire shape the SPA expects: ids are strings.
type Response struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Instructions  string    `json:"instructions"`
	ScratchURL    string    `json:"scratchUrl"`
	Sb3File       string    `json:"sb3File"`
	Thumbnail     string    `json:"thumbnail"`
	Award         string    `json:"award"`
	AllowDownload bool      `json:"allowDownload"`
	Views         int       `json:"views"`
	Likes         int       `json:"likes"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p *Project) ToResponse() Response {
	return Response{
		ID:            strconv.Itoa(p.ID),
		StudentID:     strconv.Itoa(p.StudentID),
		Title:         p.Title,
		Description:   p.Description,
		Instructions:  p.Instructions,
		ScratchURL:    p.ScratchURL,
		Sb3File:       p.Sb3File,
		Thumbnail:     p.Thumbnail,
		Award:         p.Award,
		AllowDownload: p.AllowDownload,
		Views:         p.Views,
		Likes:         p.Likes,
		CreatedAt:     p.CreatedAt,
	}
}

func ToResponses(projects []Project) []Response {
	responses := make([]Response, 0, len(projects))
	for i := range projects {
		responses = append(responses, projects[i].ToResponse())
	}
	return responses
}

// CreateRequest is the request body for creating a project
type CreateRequest struct {
	StudentID     FlexID `json:"studentId" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Instructions  string `json:"instructions"`
	ScratchURL    string `json:"scratchUrl"`
	Sb3File       string `json:"sb3File"`
	Thumbnail     string `json:"thumbnail"`
	Award         string `json:"award"`
	AllowDownload *bool  `json:"allowDownload"`
}

// UpdateRequest is a partial patch: nil fields keep the stored value.
type UpdateRequest struct {
	StudentID     *FlexID `json:"studentId"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Instructions  *string `json:"instructions"`
	ScratchURL    *string `json:"scratchUrl"`
	Sb3File       *string `json:"sb3File"`
	Thumbnail     *string `json:"thumbnail"`
	Award         *string `json:"award"`
	AllowDownload *bool   `json:"allowDownload"`
}

// LikeRequest is the request body for the like toggle. An empty body counts
// as a like.
type LikeRequest struct {
	Unlike bool `json:"unlike"`
}

// CounterResponse reports the new value after a view or like mutation.
type CounterResponse struct {
	Success bool `json:"success"`
	Views   *int `json:"views,omitempty"`
	Likes   *int `json:"likes,omitempty"`
}
