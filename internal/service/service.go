// Package service owns the filter lifecycle: validation, ownership checks,
// persistence and evaluation runs over a model catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	llmcatalog "github.com/kingfs/go-llm-catalog"
	"github.com/kingfs/go-llm-catalog/filter"
	"github.com/kingfs/go-llm-catalog/internal/store"
)

// ErrForbidden is returned when the caller may not read or change a filter.
var ErrForbidden = errors.New("forbidden")

// Store is the persistence the service needs.
type Store interface {
	CreateFilter(ctx context.Context, f *filter.Filter) error
	GetFilter(ctx context.Context, id string) (*filter.Filter, error)
	ListFilters(ctx context.Context, q store.ListQuery) ([]*filter.Filter, error)
	UpdateFilter(ctx context.Context, f *filter.Filter) error
	DeleteFilter(ctx context.Context, id string) error
	SaveRun(ctx context.Context, run *filter.Run) error
	ListRuns(ctx context.Context, filterID string, limit int) ([]*filter.Run, error)
}

// Caller identifies who is acting.
type Caller struct {
	UserID string
	TeamID string
}

// FilterInput carries the user-editable parts of a filter.
type FilterInput struct {
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Visibility  filter.Visibility   `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	TeamID      string              `json:"teamId,omitempty" yaml:"teamId,omitempty"`
	Rules       []filter.RuleClause `json:"rules" yaml:"rules"`
}

// Report is the outcome of a run: the persisted snapshot plus the matching
// models ordered by score.
type Report struct {
	Run    filter.Run      `json:"run" yaml:"run"`
	Ranked []filter.Ranked `json:"ranked" yaml:"ranked"`
}

// ValidationError lists the constraints a filter violates.
type ValidationError struct {
	Problems []string
	err      error
}

func (e *ValidationError) Error() string {
	return "invalid filter: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return e.err }

// Service applies ownership, visibility and validation rules on top of a
// Store.
type Service struct {
	store       Store
	validate    *validator.Validate
	log         zerolog.Logger
	now         func() time.Time
	newID       func() string
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for lifecycle events. The default discards.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithConcurrency bounds parallel evaluation. Zero or less uses GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = n }
}

// New returns a Service backed by st.
func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      zerolog.Nop(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency <= 0 {
		s.concurrency = runtime.GOMAXPROCS(0)
	}
	return s
}

// CanView reports whether the caller may read and run f.
func CanView(f *filter.Filter, c Caller) bool {
	return f.VisibleTo(c.UserID, c.TeamID)
}

// CreateFilter stores a new filter owned by the caller. Visibility defaults
// to private; a team filter without a team id is shared with the caller's team.
func (s *Service) CreateFilter(ctx context.Context, c Caller, in FilterInput) (*filter.Filter, error) {
	now := s.now().UTC()
	f := &filter.Filter{
		ID:        s.newID(),
		OwnerID:   c.UserID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(f, in, c)
	if err := s.check(f); err != nil {
		return nil, err
	}
	if err := s.store.CreateFilter(ctx, f); err != nil {
		return nil, err
	}
	s.log.Info().Str("filter_id", f.ID).Str("owner", f.OwnerID).Int("rules", len(f.Rules)).Msg("filter created")
	return f, nil
}

// GetFilter loads a filter the caller can see.
func (s *Service) GetFilter(ctx context.Context, c Caller, id string) (*filter.Filter, error) {
	f, err := s.store.GetFilter(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(f, c) {
		return nil, fmt.Errorf("filter %s: %w", id, ErrForbidden)
	}
	return f, nil
}

// ListFilters returns every filter visible to the caller.
func (s *Service) ListFilters(ctx context.Context, c Caller) ([]*filter.Filter, error) {
	return s.store.ListFilters(ctx, store.ListQuery{UserID: c.UserID, TeamID: c.TeamID})
}

// UpdateFilter replaces the editable fields of a filter owned by the caller.
// A positive expectedVersion must equal the stored version.
func (s *Service) UpdateFilter(ctx context.Context, c Caller, id string, expectedVersion int, in FilterInput) (*filter.Filter, error) {
	f, err := s.owned(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && expectedVersion != f.Version {
		return nil, fmt.Errorf("filter %s is at version %d, not %d: %w", id, f.Version, expectedVersion, store.ErrVersionConflict)
	}
	apply(f, in, c)
	f.UpdatedAt = s.now().UTC()
	if err := s.check(f); err != nil {
		return nil, err
	}
	if err := s.store.UpdateFilter(ctx, f); err != nil {
		return nil, err
	}
	s.log.Info().Str("filter_id", f.ID).Int("version", f.Version).Msg("filter updated")
	return f, nil
}

// DeleteFilter removes a filter owned by the caller.
func (s *Service) DeleteFilter(ctx context.Context, c Caller, id string) error {
	if _, err := s.owned(ctx, c, id); err != nil {
		return err
	}
	if err := s.store.DeleteFilter(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("filter_id", id).Msg("filter deleted")
	return nil
}

// Run evaluates a filter over models, then persists the run together with
// the filter's usage.
func (s *Service) Run(ctx context.Context, c Caller, id string, models []llmcatalog.Model) (*Report, error) {
	f, err := s.GetFilter(ctx, c, id)
	if err != nil {
		return nil, err
	}

	start := s.now()
	results := filter.EvaluateAllLimit(f.Rules, models, s.concurrency)
	run := filter.NewRun(s.newID(), *f, models, results, start.UTC())

	if err := s.store.SaveRun(ctx, &run); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("filter_id", f.ID).
		Str("run_id", run.ID).
		Int("total", run.Total).
		Int("matched", run.Matched).
		Dur("elapsed", s.now().Sub(start)).
		Msg("filter run completed")

	return &Report{Run: run, Ranked: filter.Rank(models, results)}, nil
}

// ListRuns returns up to limit past runs of a filter the caller can see.
func (s *Service) ListRuns(ctx context.Context, c Caller, id string, limit int) ([]*filter.Run, error) {
	if _, err := s.GetFilter(ctx, c, id); err != nil {
		return nil, err
	}
	return s.store.ListRuns(ctx, id, limit)
}

func (s *Service) owned(ctx context.Context, c Caller, id string) (*filter.Filter, error) {
	f, err := s.store.GetFilter(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != c.UserID {
		return nil, fmt.Errorf("filter %s belongs to another user: %w", id, ErrForbidden)
	}
	return f, nil
}

func (s *Service) check(f *filter.Filter) error {
	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate filter: %w", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problem := fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			problem += "=" + fe.Param()
		}
		problems = append(problems, problem)
	}
	return &ValidationError{Problems: problems, err: err}
}

func apply(f *filter.Filter, in FilterInput, c Caller) {
	f.Name = strings.TrimSpace(in.Name)
	f.Description = in.Description
	f.Visibility = in.Visibility
	if f.Visibility == "" {
		f.Visibility = filter.VisibilityPrivate
	}
	f.TeamID = in.TeamID
	if f.Visibility == filter.VisibilityTeam && f.TeamID == "" {
		f.TeamID = c.TeamID
	}
	f.Rules = append([]filter.RuleClause(nil), in.Rules...)
}
