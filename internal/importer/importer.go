// Package importer seeds the deal store from markdown files with YAML
// frontmatter, the format the pipeline was tracked in before it had a
// database.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/logger"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Store is the slice of the deals repository the importer writes through.
type Store interface {
	GetBySlug(ctx context.Context, slug string) (repository.Deal, error)
	Create(ctx context.Context, params repository.CreateDealParams) (repository.Deal, error)
	CreateActivity(ctx context.Context, dealID uuid.UUID, date time.Time, note string) (repository.Activity, error)
}

// Archiver stores a copy of an imported source file. Optional.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte) error
}

const (
	frontmatterDelimiter = "---"
	activityHeading      = "## Activity Log"
	dateLayout           = "2006-01-02"
)

// FileDeal is the YAML frontmatter of one deal file.
type FileDeal struct {
	Brand          string  `yaml:"brand"`
	Stage          string  `yaml:"stage"`
	Priority       string  `yaml:"priority"`
	Value          *string `yaml:"value"`
	ContactName    *string `yaml:"contact_name"`
	ContactEmail   *string `yaml:"contact_email"`
	ContactPhone   *string `yaml:"contact_phone"`
	ContactSource  *string `yaml:"contact_source"`
	LastContact    *string `yaml:"last_contact"`
	NextAction     *string `yaml:"next_action"`
	NextActionDate *string `yaml:"next_action_date"`
	WaitingOn      *string `yaml:"waiting_on"`
	Archived       bool    `yaml:"archived"`
}

// ActivityEntry is one dated line from the file's activity log section.
type ActivityEntry struct {
	Date time.Time
	Note string
}

// ParseFile splits a deal file into frontmatter, free-text notes and the
// activity log.
func ParseFile(data []byte) (FileDeal, string, []ActivityEntry, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return FileDeal{}, "", nil, errors.New("missing frontmatter")
	}

	rest := text[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return FileDeal{}, "", nil, errors.New("unterminated frontmatter")
	}

	var deal FileDeal
	if err := yaml.Unmarshal([]byte(rest[:end]), &deal); err != nil {
		return FileDeal{}, "", nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if deal.Brand == "" {
		return FileDeal{}, "", nil, errors.New("frontmatter missing brand")
	}

	body := rest[end+len(frontmatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	notes := body
	var activities []ActivityEntry
	if i := strings.Index(body, activityHeading); i >= 0 {
		notes = body[:i]
		activities = parseActivities(body[i+len(activityHeading):])
	}

	return deal, strings.TrimSpace(notes), activities, nil
}

// parseActivities reads "- 2025-01-03: note" bullet lines. Lines that don't
// match are skipped.
func parseActivities(section string) []ActivityEntry {
	var entries []ActivityEntry
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		line = strings.TrimPrefix(line, "- ")

		datePart, note, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(datePart))
		if err != nil {
			continue
		}
		note = strings.TrimSpace(note)
		if note == "" {
			continue
		}
		entries = append(entries, ActivityEntry{Date: date, Note: note})
	}
	return entries
}

func parseDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	ts, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &ts
}

// Result summarizes one import run.
type Result struct {
	Imported   int
	Skipped    int
	Activities int
	Failed     int
}

// Importer loads deal files into the store.
type Importer struct {
	store    Store
	archiver Archiver
	log      *logger.Logger
}

// New creates an importer. archiver may be nil.
func New(store Store, archiver Archiver, log *logger.Logger) *Importer {
	return &Importer{store: store, archiver: archiver, log: log}
}

// Run imports every .md file under fsys. Files whose slug already exists are
// skipped, never merged; the importer is a seed tool, not a sync process.
func (imp *Importer) Run(ctx context.Context, fsys fs.FS, dryRun bool) (Result, error) {
	var result Result

	entries, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return result, err
	}

	for _, name := range entries {
		if err := imp.importFile(ctx, fsys, name, dryRun, &result); err != nil {
			imp.log.Error("import failed", "file", name, "error", err)
			result.Failed++
		}
	}
	return result, nil
}

func (imp *Importer) importFile(ctx context.Context, fsys fs.FS, name string, dryRun bool, result *Result) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}

	fileDeal, notes, activities, err := ParseFile(data)
	if err != nil {
		return err
	}

	slug := domain.Slugify(fileDeal.Brand)
	if slug == "" {
		return fmt.Errorf("brand %q yields empty slug", fileDeal.Brand)
	}

	if _, err := imp.store.GetBySlug(ctx, slug); err == nil {
		imp.log.Info("skipping existing deal", "file", name, "slug", slug)
		result.Skipped++
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	params := repository.CreateDealParams{
		Brand:          fileDeal.Brand,
		Slug:           slug,
		Stage:          domain.StagePitch,
		Priority:       domain.PriorityMedium,
		Value:          fileDeal.Value,
		ContactName:    fileDeal.ContactName,
		ContactEmail:   fileDeal.ContactEmail,
		ContactPhone:   fileDeal.ContactPhone,
		ContactSource:  fileDeal.ContactSource,
		LastContact:    parseDate(fileDeal.LastContact),
		NextAction:     fileDeal.NextAction,
		NextActionDate: parseDate(fileDeal.NextActionDate),
		WaitingOn:      fileDeal.WaitingOn,
		Archived:       fileDeal.Archived,
	}
	if domain.IsKnownStage(fileDeal.Stage) {
		params.Stage = fileDeal.Stage
	}
	if domain.IsKnownPriority(fileDeal.Priority) {
		params.Priority = fileDeal.Priority
	}
	if notes != "" {
		params.Notes = &notes
	}

	if dryRun {
		imp.log.Info("would import", "file", name, "slug", slug, "activities", len(activities))
		result.Imported++
		result.Activities += len(activities)
		return nil
	}

	deal, err := imp.store.Create(ctx, params)
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}
	result.Imported++

	for _, entry := range activities {
		if _, err := imp.store.CreateActivity(ctx, deal.ID, entry.Date, entry.Note); err != nil {
			imp.log.Error("activity import failed", "slug", slug, "date", entry.Date, "error", err)
			continue
		}
		result.Activities++
	}

	if imp.archiver != nil {
		if err := imp.archiver.Archive(ctx, path.Base(name), data); err != nil {
			imp.log.Warn("source archive failed", "file", name, "error", err)
		}
	}
	return nil
}
