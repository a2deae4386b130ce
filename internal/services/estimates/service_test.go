package estimates

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/estimate"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "est.db"), logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { repository.Close(db, logger) })
	if err := repository.Migrate(db, logger); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	composer := estimate.NewComposer(estimate.DefaultSettings(), geo.Point{Latitude: 36.6484, Longitude: -80.2737})
	svc := NewService(composer, repository.NewEstimateRepository(db, logger), logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateNumbersAndStores(t *testing.T) {
	svc := newTestService(t)
	author := uuid.New()
	ctx := common.WithEmployeeID(context.Background(), author.String())

	req := CreateRequest{Input: estimate.Input{JobType: "sealcoat", SquareFootage: 10000, JobAddress: " 12 Main St "}}
	first, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Number != "EST-0001" || first.Sequence != 1 {
		t.Fatalf("number = %s/%d", first.Number, first.Sequence)
	}
	if first.JobType != constants.JobTypeSealcoating {
		t.Fatalf("job type = %q", first.JobType)
	}
	if first.Address != "12 Main St" || first.Currency != "USD" {
		t.Fatalf("address/currency = %q/%q", first.Address, first.Currency)
	}
	if first.Breakdown.Total != 1318.11 {
		t.Fatalf("total = %v", first.Breakdown.Total)
	}
	if first.CreatedBy == nil || *first.CreatedBy != author {
		t.Fatalf("created by = %v", first.CreatedBy)
	}
	if want := first.CreatedAt.AddDate(0, 0, 30); !first.ValidUntil.Equal(want) {
		t.Fatalf("valid until = %v, want %v", first.ValidUntil, want)
	}

	second, err := svc.Create(context.Background(), CreateRequest{Input: estimate.Input{JobType: constants.JobTypeLineStriping, NumberOfStalls: 10}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.Number != "EST-0002" || second.CreatedBy != nil {
		t.Fatalf("second = %s createdBy=%v", second.Number, second.CreatedBy)
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Number != first.Number || got.Breakdown.Total != first.Breakdown.Total {
		t.Fatalf("Get = %+v", got)
	}

	list, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Number != "EST-0002" {
		t.Fatalf("list order wrong: %v", list)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Input: estimate.Input{JobType: "SEALCOTING", SquareFootage: 100}})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("unknown job type: %v", err)
	}
	_, err = svc.Create(ctx, CreateRequest{Input: estimate.Input{JobType: constants.JobTypeCrackRepair}})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("missing linear footage: %v", err)
	}

	// Rejected requests must not consume numbers.
	est, err := svc.Create(ctx, CreateRequest{Input: estimate.Input{JobType: constants.JobTypeCrackRepair, LinearFootage: 500}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if est.Number != "EST-0001" {
		t.Fatalf("number = %s", est.Number)
	}

	if _, err := svc.Get(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
}
