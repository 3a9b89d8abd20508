package service

import (
	"context"
	"testing"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/internal/deals/transport"
	"dealflow_backend/platform/apperr"
	"dealflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	deals      map[uuid.UUID]*repository.Deal
	activities []repository.Activity
	updates    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{deals: make(map[uuid.UUID]*repository.Deal)}
}

func (f *fakeRepo) seed(d repository.Deal) uuid.UUID {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.deals[d.ID] = &d
	return d.ID
}

func (f *fakeRepo) List(_ context.Context, includeArchived bool) ([]repository.Deal, error) {
	out := make([]repository.Deal, 0, len(f.deals))
	for _, d := range f.deals {
		if d.Archived && !includeArchived {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Deal, error) {
	if d, ok := f.deals[id]; ok {
		return *d, nil
	}
	return repository.Deal{}, repository.ErrNotFound
}

func (f *fakeRepo) GetBySlug(_ context.Context, slug string) (repository.Deal, error) {
	for _, d := range f.deals {
		if d.Slug == slug {
			return *d, nil
		}
	}
	return repository.Deal{}, repository.ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateDealParams) (repository.Deal, error) {
	d := repository.Deal{
		ID:             uuid.New(),
		Brand:          params.Brand,
		Slug:           params.Slug,
		Stage:          params.Stage,
		Priority:       params.Priority,
		Value:          params.Value,
		ContactName:    params.ContactName,
		ContactEmail:   params.ContactEmail,
		ContactPhone:   params.ContactPhone,
		ContactSource:  params.ContactSource,
		NextAction:     params.NextAction,
		NextActionDate: params.NextActionDate,
		WaitingOn:      params.WaitingOn,
		Notes:          params.Notes,
		Archived:       params.Archived,
	}
	f.deals[d.ID] = &d
	return d, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateDealParams) (repository.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return repository.Deal{}, repository.ErrNotFound
	}
	f.updates++
	if params.Brand != nil {
		d.Brand = *params.Brand
	}
	if params.Stage != nil {
		d.Stage = *params.Stage
	}
	if params.Priority != nil {
		d.Priority = *params.Priority
	}
	if params.Value != nil {
		d.Value = params.Value
	}
	if params.ContactPhone != nil {
		d.ContactPhone = params.ContactPhone
	}
	if params.Archived != nil {
		d.Archived = *params.Archived
	}
	d.UpdatedAt = time.Now()
	return *d, nil
}

func (f *fakeRepo) SetArchived(_ context.Context, id uuid.UUID, archived bool) error {
	d, ok := f.deals[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Archived = archived
	return nil
}

func (f *fakeRepo) ListActivities(_ context.Context, dealID uuid.UUID) ([]repository.Activity, error) {
	out := make([]repository.Activity, 0)
	for _, a := range f.activities {
		if a.DealID == dealID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateActivity(_ context.Context, dealID uuid.UUID, date time.Time, note string) (repository.Activity, error) {
	a := repository.Activity{ID: uuid.New(), DealID: dealID, Date: date, Note: note, CreatedAt: time.Now()}
	f.activities = append(f.activities, a)
	return a, nil
}

func testLogger() *logger.Logger {
	return logger.New("development")
}

func strPtr(s string) *string { return &s }

func TestCreateProbesSlugSuffixes(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(repository.Deal{Brand: "Acme Co", Slug: "acme-co", Stage: domain.StagePitch})
	svc := New(repo, testLogger())

	deal, err := svc.Create(context.Background(), transport.CreateDealRequest{Brand: "Acme Co!"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if deal.Slug != "acme-co-2" {
		t.Fatalf("slug = %q, want acme-co-2", deal.Slug)
	}
	if deal.Stage != domain.StagePitch {
		t.Fatalf("stage = %q, want default pitch", deal.Stage)
	}
	if deal.Priority != domain.PriorityMedium {
		t.Fatalf("priority = %q, want default medium", deal.Priority)
	}
}

func TestCreateRejectsUnslugifiableBrand(t *testing.T) {
	svc := New(newFakeRepo(), testLogger())

	_, err := svc.Create(context.Background(), transport.CreateDealRequest{Brand: "!!!"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateNormalizesPhone(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, testLogger())

	deal, err := svc.Create(context.Background(), transport.CreateDealRequest{
		Brand:        "Globex",
		ContactPhone: strPtr("(415) 555-2671"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if deal.ContactPhone == nil || *deal.ContactPhone != "+14155552671" {
		t.Fatalf("phone = %v, want +14155552671", deal.ContactPhone)
	}
}

func TestMoveWritesActivity(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(repository.Deal{Brand: "Acme", Slug: "acme", Stage: domain.StagePitch})
	svc := New(repo, testLogger())

	stage := domain.StageNegotiation
	deal, err := svc.Move(context.Background(), id, transport.MoveDealRequest{Stage: &stage})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if deal.Stage != domain.StageNegotiation {
		t.Fatalf("stage = %q, want negotiation", deal.Stage)
	}
	if len(repo.activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(repo.activities))
	}
	if repo.activities[0].Note != "Moved to negotiation" {
		t.Fatalf("note = %q", repo.activities[0].Note)
	}
}

func TestMoveSameStageIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(repository.Deal{Brand: "Acme", Slug: "acme", Stage: domain.StageContract})
	svc := New(repo, testLogger())

	stage := domain.StageContract
	if _, err := svc.Move(context.Background(), id, transport.MoveDealRequest{Stage: &stage}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if repo.updates != 0 {
		t.Fatalf("updates = %d, want 0", repo.updates)
	}
	if len(repo.activities) != 0 {
		t.Fatalf("activities = %d, want 0", len(repo.activities))
	}
}

func TestMoveResolvesTargetDealStage(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(repository.Deal{Brand: "Acme", Slug: "acme", Stage: domain.StagePitch})
	targetID := repo.seed(repository.Deal{Brand: "Globex", Slug: "globex", Stage: domain.StageInvoiced})
	svc := New(repo, testLogger())

	deal, err := svc.Move(context.Background(), id, transport.MoveDealRequest{TargetDealID: &targetID})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if deal.Stage != domain.StageInvoiced {
		t.Fatalf("stage = %q, want invoiced", deal.Stage)
	}
}

func TestMoveRejectsUnknownStage(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(repository.Deal{Brand: "Acme", Slug: "acme", Stage: domain.StagePitch})
	svc := New(repo, testLogger())

	stage := "limbo"
	_, err := svc.Move(context.Background(), id, transport.MoveDealRequest{Stage: &stage})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestMoveRequiresDestination(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(repository.Deal{Brand: "Acme", Slug: "acme", Stage: domain.StagePitch})
	svc := New(repo, testLogger())

	_, err := svc.Move(context.Background(), id, transport.MoveDealRequest{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestGetUnknownDealIsNotFound(t *testing.T) {
	svc := New(newFakeRepo(), testLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListFiltersByQuery(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(repository.Deal{Brand: "Acme Co", Slug: "acme-co", Stage: domain.StagePitch})
	repo.seed(repository.Deal{
		Brand:        "Globex",
		Slug:         "globex",
		Stage:        domain.StagePitch,
		ContactEmail: strPtr("jane@initech.example"),
	})
	svc := New(repo, testLogger())

	deals, err := svc.List(context.Background(), false, "ACM")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(deals) != 1 || deals[0].Brand != "Acme Co" {
		t.Fatalf("query ACM matched %d deals", len(deals))
	}

	deals, err = svc.List(context.Background(), false, "initech")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(deals) != 1 || deals[0].Brand != "Globex" {
		t.Fatalf("query initech matched %d deals", len(deals))
	}
}

func TestMetricsAggregation(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -3)

	repo.seed(repository.Deal{
		Brand: "Acme", Slug: "acme", Stage: domain.StageNegotiation,
		Value:          strPtr("$2,000"),
		WaitingOn:      strPtr(domain.WaitingOnUs),
		NextActionDate: &overdue,
	})
	repo.seed(repository.Deal{
		Brand: "Globex", Slug: "globex", Stage: domain.StageContract,
		Value:     strPtr("Gift + exposure"),
		WaitingOn: strPtr(domain.WaitingOnBrand),
	})
	// Paid deals keep their value out of the open pipeline.
	repo.seed(repository.Deal{
		Brand: "Initech", Slug: "initech", Stage: domain.StagePaid,
		Value: strPtr("$5,000"),
	})
	repo.seed(repository.Deal{
		Brand: "Umbrella", Slug: "umbrella", Stage: domain.StageComplete,
		Value: strPtr("$9,000"), Archived: true,
	})
	svc := New(repo, testLogger())

	metrics, err := svc.Metrics(context.Background(), now)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if metrics.TotalActive != 3 {
		t.Fatalf("TotalActive = %d, want 3", metrics.TotalActive)
	}
	if metrics.TotalArchived != 1 {
		t.Fatalf("TotalArchived = %d, want 1", metrics.TotalArchived)
	}
	if metrics.PipelineValue != 2000 {
		t.Fatalf("PipelineValue = %d, want 2000", metrics.PipelineValue)
	}
	if metrics.ByStage[domain.StageComplete] != 1 {
		t.Fatalf("ByStage[complete] = %d, want 1", metrics.ByStage[domain.StageComplete])
	}
	if metrics.WaitingOnUs != 1 || metrics.WaitingOnBrand != 1 {
		t.Fatalf("waiting counts = us %d brand %d", metrics.WaitingOnUs, metrics.WaitingOnBrand)
	}
	if metrics.OverdueActions != 1 {
		t.Fatalf("OverdueActions = %d, want 1", metrics.OverdueActions)
	}
}

func TestAddActivityDefaultsDate(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(repository.Deal{Brand: "Acme", Slug: "acme", Stage: domain.StagePitch})
	svc := New(repo, testLogger())

	before := time.Now()
	activity, err := svc.AddActivity(context.Background(), id, transport.AddActivityRequest{Note: "Called them back"})
	if err != nil {
		t.Fatalf("AddActivity: %v", err)
	}
	if activity.Date.Before(before) {
		t.Fatalf("date %v predates the call", activity.Date)
	}
	if activity.Note != "Called them back" {
		t.Fatalf("note = %q", activity.Note)
	}
}
