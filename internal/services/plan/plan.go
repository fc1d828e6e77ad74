// Package services содержит бизнес-логику каталога тарифных планов
// с кэшированием чтения в redis.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
	"github.com/fithub/membership-service/internal/storage/repository"
)

const listKey = "plans:all"

// PlanRepository хранилище каталога.
type PlanRepository interface {
	CreatePlan(ctx context.Context, p models.Plan) (int64, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	UpdatePlan(ctx context.Context, p models.Plan) error
	DeletePlan(ctx context.Context, id int64) error
}

// Cache кэш чтения каталога.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// PlanService управляет каталогом планов.
type PlanService struct {
	repo  PlanRepository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewPlanService создаёт PlanService. Записи кэша живут ttl.
func NewPlanService(repo PlanRepository, cache Cache, ttl time.Duration, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func planKey(id int64) string {
	return fmt.Sprintf("plan:%d", id)
}

func validate(req models.PlanRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.New(apperr.BadRequest, "Plan name is required")
	}
	if req.DurationDays <= 0 {
		return apperr.New(apperr.BadRequest, "Duration must be greater than 0 days")
	}
	if req.Price < 0 {
		return apperr.New(apperr.BadRequest, "Price must not be negative")
	}
	return nil
}

// Create добавляет план в каталог.
func (s *PlanService) Create(ctx context.Context, req models.PlanRequest) (*models.Plan, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	p := models.Plan{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	}
	id, err := s.repo.CreatePlan(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.New(apperr.BadRequest, "Plan with name %q already exists", p.Name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to create plan")
	}
	p.ID = id

	s.invalidate(ctx, listKey)
	s.log.Info("plan created", slog.Int64("plan_id", id), slog.String("name", p.Name))
	return &p, nil
}

// Get возвращает план по ID, сначала из кэша.
func (s *PlanService) Get(ctx context.Context, id int64) (*models.Plan, error) {
	var cached models.Plan
	found, err := s.cache.Get(ctx, planKey(id), &cached)
	if err != nil {
		s.log.Warn("failed to read plan from cache", slog.Int64("plan_id", id), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetPlan(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Plan not found with id: %d", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to load plan")
	}

	if err := s.cache.Set(ctx, planKey(id), p, s.ttl); err != nil {
		s.log.Warn("failed to cache plan", slog.Int64("plan_id", id), sl.Err(err))
	}
	return p, nil
}

// List возвращает весь каталог.
func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	var cached []models.Plan
	found, err := s.cache.Get(ctx, listKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to list plans")
	}
	if err := s.cache.Set(ctx, listKey, plans, s.ttl); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// Update перезаписывает план id.
func (s *PlanService) Update(ctx context.Context, id int64, req models.PlanRequest) (*models.Plan, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	p := models.Plan{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	}
	err := s.repo.UpdatePlan(ctx, p)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.New(apperr.NotFound, "Plan not found with id: %d", id)
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.New(apperr.BadRequest, "Plan with name %q already exists", p.Name)
	case err != nil:
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to update plan")
	}

	s.invalidate(ctx, planKey(id), listKey)
	s.log.Info("plan updated", slog.Int64("plan_id", id))
	return &p, nil
}

// Remove удаляет план id. План, по которому есть подписки или назначения, не удаляется.
func (s *PlanService) Remove(ctx context.Context, id int64) error {
	err := s.repo.DeletePlan(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.New(apperr.NotFound, "Plan not found with id: %d", id)
	case errors.Is(err, repository.ErrReferenced):
		return apperr.New(apperr.BadRequest, "Plan %d is used by subscriptions or assignments", id)
	case err != nil:
		return apperr.Wrap(apperr.Unexpected, err, "failed to delete plan")
	}

	s.invalidate(ctx, planKey(id), listKey)
	s.log.Info("plan removed", slog.Int64("plan_id", id))
	return nil
}

func (s *PlanService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate plan cache", slog.Any("keys", keys), sl.Err(err))
	}
}
