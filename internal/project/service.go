package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/teamkit/internal/apperr"
	"github.com/roach88/teamkit/internal/clock"
	"github.com/roach88/teamkit/internal/idgen"
	"github.com/roach88/teamkit/internal/store"
)

// MsgNotFound is returned for every owner-scoped miss.
const MsgNotFound = "project not found or unauthorized"

// Repository is the storage the service needs. *store.Store implements it;
// telemetry.WrapProjects decorates it.
type Repository interface {
	InsertProject(ctx context.Context, p store.Project) (store.Project, error)
	ProjectByOwner(ctx context.Context, id, ownerID string) (store.Project, error)
	ProjectsByOwner(ctx context.Context, ownerID string) ([]store.Project, error)
	ProjectIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	UpdateProject(ctx context.Context, id, ownerID string, u store.ProjectUpdate) (store.Project, error)
	DeleteProject(ctx context.Context, id, ownerID string) (bool, error)
}

// Service is the owner-scoped persistence service.
type Service struct {
	repo   Repository
	ids    idgen.Generator
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides the UUIDv7 id generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Service) { s.ids = g }
}

// WithClock overrides the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		ids:    idgen.UUIDv7Generator{},
		clock:  clock.System{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create saves cfg for ownerID with status not_started. The configuration
// content is never rejected; only input that is not JSON at all is a
// BadRequest.
func (s *Service) Create(ctx context.Context, ownerID string, cfg json.RawMessage, docs Documents) (Project, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return Project{}, apperr.BadRequest(err.Error())
	}

	now := s.clock.Now()
	rec, err := s.repo.InsertProject(ctx, store.Project{
		ID:           s.ids.Generate(),
		UserID:       ownerID,
		ProjectName:  projectNameOf(cfg),
		TeamConfig:   cfg,
		ConfigDigest: configDigest(cfg),
		SprintPlan:   docs.SprintPlan,
		RACIChart:    docs.RACIChart,
		ADRDocument:  docs.ADRDocument,
		Status:       string(DefaultStatus),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}

	s.logger.Debug("project created", "project_id", rec.ID, "user_id", ownerID)
	return fromRecord(rec), nil
}

// Get returns the project if callerID owns it.
func (s *Service) Get(ctx context.Context, projectID, callerID string) (Project, error) {
	rec, err := s.repo.ProjectByOwner(ctx, projectID, callerID)
	if err != nil {
		return Project{}, s.translate("get project", err)
	}
	return fromRecord(rec), nil
}

// ListByOwner returns ownerID's projects, most recently updated first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	recs, err := s.repo.ProjectsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, 0, len(recs))
	for _, r := range recs {
		projects = append(projects, fromRecord(r))
	}
	return projects, nil
}

// IDsByOwner returns the ids of ownerID's projects in list order.
func (s *Service) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := s.repo.ProjectIDsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	return ids, nil
}

// Update merges p into the project and restamps updatedAt. Replacing the
// configuration also refreshes projectName and configDigest.
func (s *Service) Update(ctx context.Context, projectID, ownerID string, p Patch) (Project, error) {
	u := store.ProjectUpdate{
		SprintPlan:  p.SprintPlan,
		RACIChart:   p.RACIChart,
		ADRDocument: p.ADRDocument,
		UpdatedAt:   s.clock.Now(),
	}

	if p.Status != nil {
		st, err := ParseStatus(*p.Status)
		if err != nil {
			return Project{}, apperr.BadRequest(err.Error())
		}
		status := string(st)
		u.Status = &status
	}

	if supplied(p.TeamConfig) {
		cfg, err := normalizeConfig(p.TeamConfig)
		if err != nil {
			return Project{}, apperr.BadRequest(err.Error())
		}
		name := projectNameOf(cfg)
		digest := configDigest(cfg)
		u.TeamConfig = cfg
		u.ProjectName = &name
		u.ConfigDigest = &digest
	}

	rec, err := s.repo.UpdateProject(ctx, projectID, ownerID, u)
	if err != nil {
		return Project{}, s.translate("update project", err)
	}

	s.logger.Debug("project updated", "project_id", projectID, "user_id", ownerID)
	return fromRecord(rec), nil
}

// Delete removes the project if ownerID owns it and reports whether a row
// was removed. A mismatch is not an error.
func (s *Service) Delete(ctx context.Context, projectID, ownerID string) (bool, error) {
	removed, err := s.repo.DeleteProject(ctx, projectID, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	if removed {
		s.logger.Debug("project deleted", "project_id", projectID, "user_id", ownerID)
	}
	return removed, nil
}

func (s *Service) translate(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(MsgNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
