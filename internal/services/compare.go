package services

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
	"github.com/zerify/zerify/internal/zerify/ports"
)

// ErrTooFewReports is returned when a comparison names fewer than two runs.
var ErrTooFewReports = errors.New("at least two reports are required for comparison")

// CompareService produces a streamed comparison brief across archived runs.
type CompareService struct {
	agents  ports.Agents
	history repository.HistoryRepository
}

func NewCompareService(agents ports.Agents, history repository.HistoryRepository) *CompareService {
	return &CompareService{agents: agents, history: history}
}

// Compare loads the named history entries in the order given and streams a
// comparative brief. An unknown ID fails the whole comparison.
func (s *CompareService) Compare(ctx context.Context, ids []string) (iter.Seq2[string, error], error) {
	if len(ids) < 2 {
		return nil, ErrTooFewReports
	}
	entries := make([]*zerify.HistoryEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.history.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load report %s: %w", id, err)
		}
		entries = append(entries, entry)
	}
	return s.agents.Compare(ctx, entries)
}
