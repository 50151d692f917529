package services

import (
	"context"

	"gorm.io/gorm"

	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
)

type CatalogService interface {
	Campuses(ctx context.Context, db *gorm.DB) (*dto.CatalogResponse, error)
	Programs(ctx context.Context, db *gorm.DB) (*dto.CatalogResponse, error)
}

type CatalogServiceImpl struct {
	repo repositories.CatalogRepository
}

func NewCatalogService(repo repositories.CatalogRepository) CatalogService {
	return &CatalogServiceImpl{repo: repo}
}

func (s *CatalogServiceImpl) Campuses(ctx context.Context, db *gorm.DB) (*dto.CatalogResponse, error) {
	rows, err := s.repo.ActiveCampuses(db)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := &dto.CatalogResponse{Campuses: make([]dto.CampusView, 0, len(rows))}
	for _, c := range rows {
		out.Campuses = append(out.Campuses, dto.CampusView{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (s *CatalogServiceImpl) Programs(ctx context.Context, db *gorm.DB) (*dto.CatalogResponse, error) {
	rows, err := s.repo.ActivePrograms(db)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := &dto.CatalogResponse{Programs: make([]dto.ProgramView, 0, len(rows))}
	for _, p := range rows {
		out.Programs = append(out.Programs, dto.ProgramView{
			ID:         p.ID,
			Name:       p.Name,
			IsFullTime: p.IsFullTime,
			IsPartTime: p.IsPartTime,
		})
	}
	return out, nil
}
