package importer

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/logger"

	"github.com/google/uuid"
)

const sampleFile = `---
brand: Acme Co
stage: negotiation
priority: high
value: "$2,000"
contact_name: Jane Smith
contact_email: jane@acme.example
last_contact: 2026-01-10
waiting_on: brand
---
Met at the trade show. Interested in a spring campaign.

## Activity Log
- 2026-01-03: Sent pitch deck
- 2026-01-10: Call with Jane
- not a dated line
`

func TestParseFile(t *testing.T) {
	deal, notes, activities, err := ParseFile([]byte(sampleFile))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if deal.Brand != "Acme Co" || deal.Stage != "negotiation" || deal.Priority != "high" {
		t.Fatalf("unexpected frontmatter: %+v", deal)
	}
	if deal.Value == nil || *deal.Value != "$2,000" {
		t.Fatalf("expected quoted value preserved, got %v", deal.Value)
	}
	if deal.WaitingOn == nil || *deal.WaitingOn != "brand" {
		t.Fatalf("expected waiting_on brand, got %v", deal.WaitingOn)
	}

	if notes != "Met at the trade show. Interested in a spring campaign." {
		t.Fatalf("unexpected notes: %q", notes)
	}

	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	if activities[0].Note != "Sent pitch deck" {
		t.Fatalf("unexpected first activity: %+v", activities[0])
	}
	want := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	if !activities[0].Date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, activities[0].Date)
	}
}

func TestParseFileRejectsMissingFrontmatter(t *testing.T) {
	if _, _, _, err := ParseFile([]byte("just some text")); err == nil {
		t.Fatal("expected error for missing frontmatter")
	}
	if _, _, _, err := ParseFile([]byte("---\nbrand: Acme\nno closing delimiter")); err == nil {
		t.Fatal("expected error for unterminated frontmatter")
	}
	if _, _, _, err := ParseFile([]byte("---\nstage: pitch\n---\n")); err == nil {
		t.Fatal("expected error for missing brand")
	}
}

type importStore struct {
	deals      map[string]repository.Deal
	activities int
}

func newImportStore() *importStore {
	return &importStore{deals: make(map[string]repository.Deal)}
}

func (s *importStore) GetBySlug(_ context.Context, slug string) (repository.Deal, error) {
	if d, ok := s.deals[slug]; ok {
		return d, nil
	}
	return repository.Deal{}, repository.ErrNotFound
}

func (s *importStore) Create(_ context.Context, params repository.CreateDealParams) (repository.Deal, error) {
	d := repository.Deal{ID: uuid.New(), Brand: params.Brand, Slug: params.Slug, Stage: params.Stage}
	s.deals[params.Slug] = d
	return d, nil
}

func (s *importStore) CreateActivity(_ context.Context, _ uuid.UUID, _ time.Time, _ string) (repository.Activity, error) {
	s.activities++
	return repository.Activity{}, nil
}

func TestRunImportsAndSkipsExisting(t *testing.T) {
	fsys := fstest.MapFS{
		"acme.md":   {Data: []byte(sampleFile)},
		"globex.md": {Data: []byte("---\nbrand: Globex\nstage: pitch\n---\n")},
		"notes.txt": {Data: []byte("not a deal file")},
	}

	store := newImportStore()
	store.deals["globex"] = repository.Deal{ID: uuid.New(), Slug: "globex", Stage: domain.StagePitch}

	imp := New(store, nil, logger.New("development"))
	result, err := imp.Run(context.Background(), fsys, false)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Imported != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Activities != 2 {
		t.Fatalf("expected 2 activities imported, got %d", result.Activities)
	}
	if _, ok := store.deals["acme-co"]; !ok {
		t.Fatal("expected acme-co imported")
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	fsys := fstest.MapFS{"acme.md": {Data: []byte(sampleFile)}}
	store := newImportStore()

	imp := New(store, nil, logger.New("development"))
	result, err := imp.Run(context.Background(), fsys, true)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Imported != 1 {
		t.Fatalf("dry run should still count, got %+v", result)
	}
	if len(store.deals) != 0 || store.activities != 0 {
		t.Fatal("dry run must not write")
	}
}
