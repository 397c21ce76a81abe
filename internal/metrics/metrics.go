package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service counters. Without a metrics SDK installed the
// global meter is a no-op, so recording is always safe.
type Metrics struct {
	adminLogins     metric.Int64Counter
	studentsCreated metric.Int64Counter
	projectsCreated metric.Int64Counter
	projectViews    metric.Int64Counter
	projectLikes    metric.Int64Counter
	filesUploaded   metric.Int64Counter
}

func New(serviceName string) (*Metrics, error) {
	meter := otel.Meter(serviceName)
	m := &Metrics{}

	var err error

	m.adminLogins, err = meter.Int64Counter(
		"scratch_show.admin.logins",
		metric.WithDescription("Total number of successful admin logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsCreated, err = meter.Int64Counter(
		"scratch_show.students.created",
		metric.WithDescription("Total number of students created"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.projectsCreated, err = meter.Int64Counter(
		"scratch_show.projects.created",
		metric.WithDescription("Total number of projects created"),
		metric.WithUnit("{project}"),
	)
	if err != nil {
		return nil, err
	}

	m.projectViews, err = meter.Int64Counter(
		"scratch_show.projects.views",
		metric.WithDescription("Total number of project view increments"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.projectLikes, err = meter.Int64Counter(
		"scratch_show.projects.likes",
		metric.WithDescription("Total number of project like toggles"),
		metric.WithUnit("{like}"),
	)
	if err != nil {
		return nil, err
	}

	m.filesUploaded, err = meter.Int64Counter(
		"scratch_show.uploads.files",
		metric.WithDescription("Total number of files uploaded"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing.
// The returned Metrics will safely ignore all Record* calls.
func NewMock() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordAdminLogin(ctx context.Context) {
	if m.adminLogins != nil {
		m.adminLogins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStudentCreated(ctx context.Context) {
	if m.studentsCreated != nil {
		m.studentsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordProjectCreated(ctx context.Context) {
	if m.projectsCreated != nil {
		m.projectsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordProjectViewed(ctx context.Context) {
	if m.projectViews != nil {
		m.projectViews.Add(ctx, 1)
	}
}

func (m *Metrics) RecordProjectLiked(ctx context.Context) {
	if m.projectLikes != nil {
		m.projectLikes.Add(ctx, 1)
	}
}

func (m *Metrics) RecordFileUploaded(ctx context.Context) {
	if m.filesUploaded != nil {
		m.filesUploaded.Add(ctx, 1)
	}
}
