package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

// StepCacheService keeps autosaved wizard drafts until the applicant submits.
type StepCacheService interface {
	SaveStep(ctx context.Context, db *gorm.DB, step string, payload *dto.StepPayload) (*dto.StepSavedResponse, error)
	List(ctx context.Context, db *gorm.DB) (*dto.CachedApplicationsResponse, error)
	Get(ctx context.Context, db *gorm.DB, sessionID string) (*dto.CachedApplication, error)
}

type StepCacheServiceImpl struct {
	repo repositories.ApplicationCacheRepository
}

func NewStepCacheService(repo repositories.ApplicationCacheRepository) StepCacheService {
	return &StepCacheServiceImpl{repo: repo}
}

func (s *StepCacheServiceImpl) SaveStep(ctx context.Context, db *gorm.DB, step string, payload *dto.StepPayload) (*dto.StepSavedResponse, error) {
	step = strings.TrimSpace(step)
	if step == "" {
		step = strings.TrimSpace(payload.Step)
	}
	if step == "" {
		return nil, apperrors.NewBadRequestError("step is required")
	}

	var saved *models.ApplicationCache
	err := db.Transaction(func(tx *gorm.DB) error {
		cache, err := s.repo.FindBySessionForUpdate(tx, payload.SessionID)
		isNew := errors.Is(err, repositories.ErrCacheNotFound)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			cache = &models.ApplicationCache{SessionID: payload.SessionID}
		}

		if payload.Version != nil && *payload.Version != cache.Version {
			return apperrors.ErrCacheVersionConflict.WithDetails(map[string]int{
				"expected": cache.Version,
				"received": *payload.Version,
			})
		}

		steps := dto.JSONMap(cache.Steps)
		steps[step] = payload.Data
		raw, err := json.Marshal(steps)
		if err != nil {
			return apperrors.NewBadRequestError("invalid step data")
		}
		cache.Steps = datatypes.JSON(raw)
		if payload.UserID != "" {
			cache.UserID = payload.UserID
		}
		cache.Version++

		saved = cache
		if isNew {
			return s.repo.Create(tx, cache)
		}
		return s.repo.Save(tx, cache)
	})
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			// Another request created the session concurrently.
			return nil, apperrors.ErrCacheVersionConflict
		}
		return nil, mapRepoError(err)
	}

	logger.CtxDebug(ctx, "step cached", "session_id", saved.SessionID, "step", step, "version", saved.Version)
	return &dto.StepSavedResponse{Message: "Step saved", Version: saved.Version}, nil
}

func (s *StepCacheServiceImpl) List(ctx context.Context, db *gorm.DB) (*dto.CachedApplicationsResponse, error) {
	caches, err := s.repo.List(db)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := &dto.CachedApplicationsResponse{CachedApplications: make([]dto.CachedApplication, 0, len(caches))}
	for i := range caches {
		out.CachedApplications = append(out.CachedApplications, dto.NewCachedApplication(&caches[i]))
	}
	return out, nil
}

func (s *StepCacheServiceImpl) Get(ctx context.Context, db *gorm.DB, sessionID string) (*dto.CachedApplication, error) {
	cache, err := s.repo.FindBySession(db, sessionID)
	if errors.Is(err, repositories.ErrCacheNotFound) {
		return nil, apperrors.ErrNotFound(err, "application_cache", "No cached application for this session")
	}
	if err != nil {
		return nil, mapRepoError(err)
	}
	view := dto.NewCachedApplication(cache)
	return &view, nil
}
