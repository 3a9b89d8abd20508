package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/apperr"
	"dealflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	deals      []repository.Deal
	activities []repository.Activity

	failUpdate bool
	updates    int
	lists      int
}

func (s *fakeStore) List(_ context.Context, includeArchived bool) ([]repository.Deal, error) {
	s.lists++
	out := make([]repository.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		if d.Archived && !includeArchived {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, params repository.CreateDealParams) (repository.Deal, error) {
	d := repository.Deal{
		ID:           uuid.New(),
		Brand:        params.Brand,
		Slug:         params.Slug,
		Stage:        params.Stage,
		Priority:     params.Priority,
		Value:        params.Value,
		ContactName:  params.ContactName,
		ContactEmail: params.ContactEmail,
		Notes:        params.Notes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.deals = append(s.deals, d)
	return d, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateDealParams) (repository.Deal, error) {
	s.updates++
	if s.failUpdate {
		return repository.Deal{}, errors.New("store rejected update")
	}
	for i := range s.deals {
		if s.deals[i].ID != id {
			continue
		}
		if params.Brand != nil {
			s.deals[i].Brand = *params.Brand
		}
		if params.Stage != nil {
			s.deals[i].Stage = *params.Stage
		}
		if params.Notes != nil {
			s.deals[i].Notes = params.Notes
		}
		if params.ContactName != nil {
			s.deals[i].ContactName = params.ContactName
		}
		s.deals[i].UpdatedAt = time.Now()
		return s.deals[i], nil
	}
	return repository.Deal{}, repository.ErrNotFound
}

func (s *fakeStore) SetArchived(_ context.Context, id uuid.UUID, archived bool) error {
	for i := range s.deals {
		if s.deals[i].ID == id {
			s.deals[i].Archived = archived
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeStore) CreateActivity(_ context.Context, dealID uuid.UUID, date time.Time, note string) (repository.Activity, error) {
	a := repository.Activity{ID: uuid.New(), DealID: dealID, Date: date, Note: note, CreatedAt: time.Now()}
	s.activities = append(s.activities, a)
	return a, nil
}

func seedDeal(s *fakeStore, brand, stage string) repository.Deal {
	d := repository.Deal{
		ID:    uuid.New(),
		Brand: brand,
		Slug:  domain.Slugify(brand),
		Stage: stage,
	}
	s.deals = append(s.deals, d)
	return d
}

func loadedController(t *testing.T, store *fakeStore) *Controller {
	t.Helper()
	c := New(store, logger.New("development"))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return c
}

func TestMoveToColumn(t *testing.T) {
	store := &fakeStore{}
	deal := seedDeal(store, "Acme", domain.StagePitch)
	c := loadedController(t, store)

	if err := c.Move(context.Background(), deal.ID, OnColumn(domain.StageOutreach)); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	got, _ := c.Get(deal.ID)
	if got.Stage != domain.StageOutreach {
		t.Fatalf("expected in-memory stage outreach, got %q", got.Stage)
	}
	if store.deals[0].Stage != domain.StageOutreach {
		t.Fatal("expected persisted stage outreach")
	}
	if len(store.activities) != 1 || store.activities[0].Note != "Moved to outreach" {
		t.Fatalf("expected one move activity, got %+v", store.activities)
	}
}

func TestMoveToSameStageIsNoOp(t *testing.T) {
	store := &fakeStore{}
	deal := seedDeal(store, "Acme", domain.StagePitch)
	c := loadedController(t, store)

	if err := c.Move(context.Background(), deal.ID, OnColumn(domain.StagePitch)); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if store.updates != 0 {
		t.Fatal("same-stage move must not write")
	}
	if len(store.activities) != 0 {
		t.Fatal("same-stage move must not log an activity")
	}
}

func TestMoveOntoCardResolvesItsStage(t *testing.T) {
	store := &fakeStore{}
	moving := seedDeal(store, "Acme", domain.StagePitch)
	under := seedDeal(store, "Globex", domain.StageContract)
	c := loadedController(t, store)

	if err := c.Move(context.Background(), moving.ID, OnCard(under.ID)); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	got, _ := c.Get(moving.ID)
	if got.Stage != domain.StageContract {
		t.Fatalf("expected stage resolved from target card, got %q", got.Stage)
	}
}

func TestMoveFailureRefetchesAndReverts(t *testing.T) {
	store := &fakeStore{}
	deal := seedDeal(store, "Acme", domain.StagePitch)
	c := loadedController(t, store)
	store.failUpdate = true
	listsBefore := store.lists

	err := c.Move(context.Background(), deal.ID, OnColumn(domain.StageOutreach))
	if err == nil {
		t.Fatal("expected move to fail")
	}

	if store.lists != listsBefore+1 {
		t.Fatal("failed move should refetch the collection")
	}
	got, _ := c.Get(deal.ID)
	if got.Stage != domain.StagePitch {
		t.Fatalf("optimistic change should be discarded, got %q", got.Stage)
	}
	if len(store.activities) != 0 {
		t.Fatal("failed move must not log an activity")
	}
}

func TestMoveRejectsUnknownStage(t *testing.T) {
	store := &fakeStore{}
	deal := seedDeal(store, "Acme", domain.StagePitch)
	c := loadedController(t, store)

	err := c.Move(context.Background(), deal.ID, OnColumn("limbo"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveNewPrepends(t *testing.T) {
	store := &fakeStore{}
	seedDeal(store, "Old Deal", domain.StageContent)
	c := loadedController(t, store)

	brand := "Acme Co"
	deal, err := c.Save(context.Background(), nil, repository.UpdateDealParams{Brand: &brand})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if deal.Slug != "acme-co" {
		t.Fatalf("expected derived slug, got %q", deal.Slug)
	}
	if deal.Stage != domain.StagePitch {
		t.Fatalf("new deals start at pitch, got %q", deal.Stage)
	}

	visible := c.Visible()
	if len(visible) != 2 || visible[0].ID != deal.ID {
		t.Fatal("new deal should be prepended to the in-memory list")
	}
}

func TestSaveExistingMergesPatch(t *testing.T) {
	store := &fakeStore{}
	deal := seedDeal(store, "Acme", domain.StageNegotiation)
	c := loadedController(t, store)

	notes := "spoke with marketing lead"
	updated, err := c.Save(context.Background(), &deal.ID, repository.UpdateDealParams{Notes: &notes})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("expected notes patched, got %v", updated.Notes)
	}
	if updated.Stage != domain.StageNegotiation {
		t.Fatal("unsubmitted fields must survive the patch")
	}

	got, _ := c.Get(deal.ID)
	if got.Notes == nil || *got.Notes != notes {
		t.Fatal("in-memory copy should be replaced with the stored row")
	}
}

func TestSaveNewRequiresBrand(t *testing.T) {
	c := loadedController(t, &fakeStore{})

	if _, err := c.Save(context.Background(), nil, repository.UpdateDealParams{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	empty := "!!!"
	if _, err := c.Save(context.Background(), nil, repository.UpdateDealParams{Brand: &empty}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unsluggable brand, got %v", err)
	}
}

func TestArchiveKeepsRecordInMemory(t *testing.T) {
	store := &fakeStore{}
	deal := seedDeal(store, "Acme", domain.StageComplete)
	c := loadedController(t, store)

	if err := c.Archive(context.Background(), deal.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	if len(c.Visible()) != 0 {
		t.Fatal("archived deal should be hidden by default")
	}
	c.SetShowArchived(true)
	if len(c.Visible()) != 1 {
		t.Fatal("archived deal should appear with the toggle on")
	}
	if got, ok := c.Get(deal.ID); !ok || !got.Archived {
		t.Fatal("archived deal must stay in the in-memory list")
	}
}

func TestSearchFilter(t *testing.T) {
	store := &fakeStore{}
	acme := seedDeal(store, "Acme", domain.StagePitch)
	globex := seedDeal(store, "Globex", domain.StagePitch)
	name := "Jane Smith"
	email := "jane@globex.example"
	store.deals[1].ContactName = &name
	store.deals[1].ContactEmail = &email
	c := loadedController(t, store)

	c.SetSearch("ACM")
	visible := c.Visible()
	if len(visible) != 1 || visible[0].ID != acme.ID {
		t.Fatalf("expected brand substring match, got %d deals", len(visible))
	}

	c.SetSearch("smith")
	visible = c.Visible()
	if len(visible) != 1 || visible[0].ID != globex.ID {
		t.Fatal("expected contact name match")
	}

	c.SetSearch("globex.example")
	if len(c.Visible()) != 1 {
		t.Fatal("expected contact email match")
	}

	c.SetSearch("")
	if len(c.Visible()) != 2 {
		t.Fatal("clearing the filter should show everything")
	}
}

func TestColumnsGroupByStage(t *testing.T) {
	store := &fakeStore{}
	seedDeal(store, "Acme", domain.StagePitch)
	seedDeal(store, "Globex", domain.StagePitch)
	seedDeal(store, "Initech", domain.StagePaid)
	c := loadedController(t, store)

	columns := c.Columns()
	if len(columns[domain.StagePitch]) != 2 {
		t.Fatalf("expected 2 pitch cards, got %d", len(columns[domain.StagePitch]))
	}
	if len(columns[domain.StagePaid]) != 1 {
		t.Fatalf("expected 1 paid card, got %d", len(columns[domain.StagePaid]))
	}
	if _, ok := columns[domain.StagePaused]; !ok {
		t.Fatal("every pipeline stage should have a column")
	}
}
