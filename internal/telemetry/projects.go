package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/teamkit/internal/project"
	"github.com/roach88/teamkit/internal/store"
)

const storeScopeName = "github.com/roach88/teamkit/store"

var _ project.Repository = (*InstrumentedProjects)(nil)

// InstrumentedProjects wraps a project.Repository with OTel tracing and
// metrics. Every method gets a span and is counted in teamkit.store.*
// metrics.
type InstrumentedProjects struct {
	inner  project.Repository
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapProjects returns repo decorated with the global providers. When
// telemetry is disabled, repo is returned as-is.
func WrapProjects(repo project.Repository) project.Repository {
	if !Enabled() {
		return repo
	}
	return NewInstrumentedProjects(repo, Tracer(storeScopeName), Meter(storeScopeName))
}

// NewInstrumentedProjects wraps repo using the given tracer and meter.
func NewInstrumentedProjects(repo project.Repository, tracer trace.Tracer, m metric.Meter) *InstrumentedProjects {
	ops, _ := m.Int64Counter("teamkit.store.operations",
		metric.WithDescription("Total project store operations executed"),
	)
	dur, _ := m.Float64Histogram("teamkit.store.operation.duration",
		metric.WithDescription("Project store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("teamkit.store.errors",
		metric.WithDescription("Total project store operation errors"),
	)
	return &InstrumentedProjects{inner: repo, tracer: tracer, ops: ops, dur: dur, errs: errs}
}

func (p *InstrumentedProjects) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := p.tracer.Start(ctx, "store."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	p.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

func (p *InstrumentedProjects) done(ctx context.Context, span trace.Span, start time.Time, err error, name string) {
	attrs := metric.WithAttributes(attribute.String("db.operation", name))
	p.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func ownerAttr(ownerID string) attribute.KeyValue {
	return attribute.String("teamkit.owner.id", ownerID)
}

func projectAttr(id string) attribute.KeyValue {
	return attribute.String("teamkit.project.id", id)
}

func (p *InstrumentedProjects) InsertProject(ctx context.Context, rec store.Project) (store.Project, error) {
	ctx, span, t := p.op(ctx, "InsertProject", ownerAttr(rec.UserID), projectAttr(rec.ID))
	v, err := p.inner.InsertProject(ctx, rec)
	p.done(ctx, span, t, err, "InsertProject")
	return v, err
}

func (p *InstrumentedProjects) ProjectByOwner(ctx context.Context, id, ownerID string) (store.Project, error) {
	ctx, span, t := p.op(ctx, "ProjectByOwner", ownerAttr(ownerID), projectAttr(id))
	v, err := p.inner.ProjectByOwner(ctx, id, ownerID)
	p.done(ctx, span, t, err, "ProjectByOwner")
	return v, err
}

func (p *InstrumentedProjects) ProjectsByOwner(ctx context.Context, ownerID string) ([]store.Project, error) {
	ctx, span, t := p.op(ctx, "ProjectsByOwner", ownerAttr(ownerID))
	v, err := p.inner.ProjectsByOwner(ctx, ownerID)
	span.SetAttributes(attribute.Int("teamkit.project.count", len(v)))
	p.done(ctx, span, t, err, "ProjectsByOwner")
	return v, err
}

func (p *InstrumentedProjects) ProjectIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ctx, span, t := p.op(ctx, "ProjectIDsByOwner", ownerAttr(ownerID))
	v, err := p.inner.ProjectIDsByOwner(ctx, ownerID)
	p.done(ctx, span, t, err, "ProjectIDsByOwner")
	return v, err
}

func (p *InstrumentedProjects) UpdateProject(ctx context.Context, id, ownerID string, u store.ProjectUpdate) (store.Project, error) {
	ctx, span, t := p.op(ctx, "UpdateProject", ownerAttr(ownerID), projectAttr(id))
	v, err := p.inner.UpdateProject(ctx, id, ownerID, u)
	p.done(ctx, span, t, err, "UpdateProject")
	return v, err
}

func (p *InstrumentedProjects) DeleteProject(ctx context.Context, id, ownerID string) (bool, error) {
	ctx, span, t := p.op(ctx, "DeleteProject", ownerAttr(ownerID), projectAttr(id))
	v, err := p.inner.DeleteProject(ctx, id, ownerID)
	span.SetAttributes(attribute.Bool("teamkit.project.deleted", v))
	p.done(ctx, span, t, err, "DeleteProject")
	return v, err
}
