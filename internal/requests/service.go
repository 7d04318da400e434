// Package requests implements the approval workflow over the request
// table: a one-way pending -> approved|rejected transition stamped with
// the processing user and timestamp.
package requests

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/galvan-crm/galvan/internal/cache"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// ApproveInput carries the approval payload.
type ApproveInput struct {
	ProcessedBy string `json:"processed_by" validate:"required"`
}

// RejectInput carries the rejection payload; a reason is mandatory.
type RejectInput struct {
	ProcessedBy     string `json:"processed_by" validate:"required"`
	RejectionReason string `json:"rejection_reason" validate:"required"`
}

// Repository persists workflow transitions.
type Repository interface {
	Approve(ctx context.Context, id, processedBy string) (map[string]any, error)
	Reject(ctx context.Context, id, processedBy, reason string) (map[string]any, error)
	Count(ctx context.Context, status, createdBy string) (int64, error)
}

// Service validates and executes approval transitions.
type Service struct {
	repo     Repository
	cache    *cache.ResponseCache
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService creates the workflow service.
func NewService(repo Repository, responseCache *cache.ResponseCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		cache:    responseCache,
		logger:   logger,
		validate: validator.New(),
	}
}

// Approve moves a pending request to approved. A request that does not
// exist or has already been processed is a not-found outcome.
func (s *Service) Approve(ctx context.Context, id string, in ApproveInput) (map[string]any, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: processed_by is required", httpx.ErrValidation)
	}
	updated, err := s.repo.Approve(ctx, id, in.ProcessedBy)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTable(ctx, registry.TableRequests)
	return updated, nil
}

// Reject moves a pending request to rejected, recording the reason.
func (s *Service) Reject(ctx context.Context, id string, in RejectInput) (map[string]any, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: processed_by and rejection_reason are required", httpx.ErrValidation)
	}
	updated, err := s.repo.Reject(ctx, id, in.ProcessedBy, in.RejectionReason)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTable(ctx, registry.TableRequests)
	return updated, nil
}

// Count returns how many requests match the optional status/creator pair.
func (s *Service) Count(ctx context.Context, status, createdBy string) (int64, error) {
	return s.repo.Count(ctx, status, createdBy)
}
