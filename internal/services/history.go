package services

import (
	"context"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
)

// HistoryService exposes the archived run records.
type HistoryService struct {
	repo repository.HistoryRepository
}

func NewHistoryService(repo repository.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns all archived runs, newest first.
func (s *HistoryService) List(ctx context.Context) ([]*zerify.HistoryEntry, error) {
	return s.repo.ListAll(ctx)
}

// Get returns a single archived run by ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*zerify.HistoryEntry, error) {
	return s.repo.Get(ctx, id)
}

// Clear removes every archived run.
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
