package analytics

import (
	"context"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"
)

// Counter is the slice of the store the report needs.
type Counter interface {
	CountByKindSince(ctx context.Context, since time.Time) (map[punishments.Kind]int, error)
}

type Service struct {
	store Counter
}

func New(store Counter) *Service {
	return &Service{store: store}
}

type Report struct {
	Total  int
	ByKind map[punishments.Kind]int
}

// Report summarizes moderation activity since the cutoff, for the daily
// summary embed.
func (s *Service) Report(ctx context.Context, since time.Time) (Report, error) {
	counts, err := s.store.CountByKindSince(ctx, since)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByKind: counts}
	for _, count := range counts {
		report.Total += count
	}
	return report, nil
}
