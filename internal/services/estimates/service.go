package estimates

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/estimate"
	"github.com/joseph-ayodele/fieldops/internal/repository"
	"github.com/joseph-ayodele/fieldops/internal/utils"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Service composes, numbers and stores estimates.
type Service struct {
	composer *estimate.Composer
	repo     repository.EstimateRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(composer *estimate.Composer, repo repository.EstimateRepository, logger *slog.Logger) *Service {
	return &Service{composer: composer, repo: repo, logger: logger, now: time.Now}
}

// CreateRequest is the job description plus an optional job reference.
type CreateRequest struct {
	estimate.Input
	JobID string `json:"jobId,omitempty"`
}

// Create prices the job, takes the next estimate number and persists the
// result. CreatedBy is taken from the employee id on ctx, when present.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*entity.Estimate, error) {
	logger := common.LoggerFromContext(ctx, s.logger)

	breakdown, err := s.composer.Compose(req.Input)
	if err != nil {
		return nil, err
	}
	jobType := req.JobType
	if jt, err := estimate.ParseJobType(string(jobType)); err == nil {
		jobType = jt
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	est := &entity.Estimate{
		ID:         uuid.New(),
		JobID:      utils.NilIfBlank(req.JobID),
		JobType:    jobType,
		Address:    strings.TrimSpace(req.JobAddress),
		Breakdown:  breakdown,
		Currency:   constants.DefaultCurrency,
		CreatedAt:  now,
		ValidUntil: now.AddDate(0, 0, constants.EstimateValidDays),
	}
	if raw := common.EmployeeIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			est.CreatedBy = &id
		}
	}

	if err := s.repo.Create(ctx, est); err != nil {
		logger.Error("failed to create estimate", "job_type", jobType, "error", err)
		return nil, err
	}

	logger.Info("estimate created",
		"estimate_id", est.ID,
		"number", est.Number,
		"job_type", est.JobType,
		"total", est.Breakdown.Total,
	)
	return est, nil
}

// Preview prices the job without numbering or storing it.
func (s *Service) Preview(in estimate.Input) (entity.EstimateBreakdown, error) {
	return s.composer.Compose(in)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Estimate, error) {
	if id == uuid.Nil {
		return nil, common.ValidationErrors{{Field: "id", Message: "is required"}}
	}
	return s.repo.GetByID(ctx, id)
}

// List returns estimates newest first. A non-positive limit means DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]*entity.Estimate, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	list, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Estimate{}
	}
	return list, nil
}
