package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"
)

type fakeCounter struct {
	counts map[punishments.Kind]int
	err    error
}

func (f *fakeCounter) CountByKindSince(ctx context.Context, since time.Time) (map[punishments.Kind]int, error) {
	return f.counts, f.err
}

func TestReportTotals(t *testing.T) {
	service := New(&fakeCounter{counts: map[punishments.Kind]int{
		punishments.KindBan:       2,
		punishments.KindMute:      3,
		punishments.KindWarnTier1: 1,
	}})

	report, err := service.Report(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 6 {
		t.Fatalf("total = %d, want 6", report.Total)
	}
	if report.ByKind[punishments.KindMute] != 3 {
		t.Fatalf("mute count = %d", report.ByKind[punishments.KindMute])
	}
}

func TestReportPropagatesErrors(t *testing.T) {
	service := New(&fakeCounter{err: errors.New("no reachable servers")})
	if _, err := service.Report(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}
