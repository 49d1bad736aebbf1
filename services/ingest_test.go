package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fda-watch/config"
	"fda-watch/models"
	"fda-watch/scrapers"
	"fda-watch/services"
)

// fakeStore hält Records im Speicher und bildet die Identitätsregel des
// echten Stores nach: gleiche URL ODER gleicher Titel aus derselben Quelle.
type fakeStore struct {
	records   []*models.NewsUpdate
	findErr   map[string]error
	insertErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		findErr:   map[string]error{},
		insertErr: map[string]error{},
	}
}

func (s *fakeStore) FindExisting(u *models.NewsUpdate) (*models.NewsUpdate, error) {
	if err, ok := s.findErr[u.Title]; ok {
		return nil, err
	}
	for _, r := range s.records {
		if u.URL != nil && r.URL != nil && *u.URL == *r.URL {
			return r, nil
		}
		if r.Title == u.Title && r.DataSource == u.DataSource {
			return r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Insert(u *models.NewsUpdate) error {
	if err, ok := s.insertErr[u.Title]; ok {
		return err
	}
	s.records = append(s.records, u)
	return nil
}

// fakeNotifier zählt Aufrufe.
type fakeNotifier struct {
	calls int
	err   error
}

func (n *fakeNotifier) Send(_ context.Context, subject, body string) error {
	n.calls++
	return n.err
}

// fakeScraper liefert feste Records oder einen Fehler.
type fakeScraper struct {
	name    string
	records []*models.NewsUpdate
	err     error
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(_ context.Context) ([]*models.NewsUpdate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func recentUpdate(title, source string, url *string) *models.NewsUpdate {
	return &models.NewsUpdate{
		Title:           title,
		Description:     "desc",
		URL:             url,
		PublishedDate:   timePtr(time.Now()),
		DataSource:      source,
		DrugsIdentified: []string{title},
		GenesIdentified: []string{},
	}
}

func testService(store services.UpdateStore, notifier services.Notifier, scraperList ...scrapers.Scraper) *services.IngestService {
	cfg := &config.Config{LookbackDays: 30}
	return services.NewIngestService(cfg, store, zap.NewNop(), scraperList, notifier)
}

func TestRunAllInsertsAndNotifies(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}

	svc := testService(store, notifier,
		&fakeScraper{name: "withdrawals", records: []*models.NewsUpdate{
			recentUpdate("DrugA", models.SourceWithdrawals, strPtr("https://www.fda.gov/a")),
		}},
		&fakeScraper{name: "approvals", records: []*models.NewsUpdate{
			recentUpdate("DrugB", models.SourceApprovals, nil),
		}},
	)

	inserted := svc.RunAll(context.Background())

	assert.Equal(t, 2, inserted)
	assert.Len(t, store.records, 2)
	assert.Equal(t, 1, notifier.calls, "Notifier muss genau einmal feuern")
}

func TestRunAllIsIdempotent(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}

	scraper := &fakeScraper{name: "withdrawals", records: []*models.NewsUpdate{
		recentUpdate("DrugA", models.SourceWithdrawals, strPtr("https://www.fda.gov/a")),
	}}
	svc := testService(store, notifier, scraper)

	first := svc.RunAll(context.Background())
	second := svc.RunAll(context.Background())

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Len(t, store.records, 1)
	assert.Equal(t, 1, notifier.calls, "zweiter Lauf ohne Neues darf nicht benachrichtigen")
}

func TestDuplicateByURLDespiteDifferentTitle(t *testing.T) {
	store := newFakeStore()
	store.records = append(store.records,
		recentUpdate("Old Title", models.SourceWithdrawals, strPtr("https://www.fda.gov/same")))

	svc := testService(store, nil, &fakeScraper{name: "withdrawals", records: []*models.NewsUpdate{
		recentUpdate("New Title", models.SourceWithdrawals, strPtr("https://www.fda.gov/same")),
	}})

	assert.Equal(t, 0, svc.RunAll(context.Background()))
	assert.Len(t, store.records, 1)
}

func TestDuplicateByTitleAndSourceDespiteDifferentURL(t *testing.T) {
	store := newFakeStore()
	store.records = append(store.records,
		recentUpdate("DrugA", models.SourceWithdrawals, strPtr("https://www.fda.gov/old")))

	svc := testService(store, nil, &fakeScraper{name: "withdrawals", records: []*models.NewsUpdate{
		recentUpdate("DrugA", models.SourceWithdrawals, nil),
	}})

	assert.Equal(t, 0, svc.RunAll(context.Background()))
}

func TestSameTitleDifferentSourceIsNotDuplicate(t *testing.T) {
	store := newFakeStore()
	store.records = append(store.records,
		recentUpdate("DrugA", models.SourceWithdrawals, nil))

	svc := testService(store, nil, &fakeScraper{name: "approvals", records: []*models.NewsUpdate{
		recentUpdate("DrugA", models.SourceApprovals, nil),
	}})

	assert.Equal(t, 1, svc.RunAll(context.Background()))
	assert.Len(t, store.records, 2)
}

func TestFilterRecentDropsUnknownDates(t *testing.T) {
	noDate := recentUpdate("NoDate", models.SourceApprovals, nil)
	noDate.PublishedDate = nil

	old := recentUpdate("Old", models.SourceApprovals, nil)
	old.PublishedDate = timePtr(time.Now().AddDate(0, 0, -90))

	fresh := recentUpdate("Fresh", models.SourceApprovals, nil)

	cutoff := time.Now().AddDate(0, 0, -30)
	kept := services.FilterRecent([]*models.NewsUpdate{noDate, old, fresh}, cutoff)

	require.Len(t, kept, 1)
	assert.Equal(t, "Fresh", kept[0].Title)
}

func TestFilterRecentUnknownDateDroppedEvenWithDistantCutoff(t *testing.T) {
	noDate := recentUpdate("NoDate", models.SourceApprovals, nil)
	noDate.PublishedDate = nil

	// Selbst ein praktisch deaktivierter Filter darf Records ohne Datum
	// nicht durchlassen.
	cutoff := time.Now().AddDate(-100, 0, 0)
	kept := services.FilterRecent([]*models.NewsUpdate{noDate}, cutoff)
	assert.Empty(t, kept)
}

func TestStoreErrorSkipsRecordNotBatch(t *testing.T) {
	store := newFakeStore()
	store.findErr["Broken"] = errors.New("store unavailable")

	svc := testService(store, nil, &fakeScraper{name: "approvals", records: []*models.NewsUpdate{
		recentUpdate("Broken", models.SourceApprovals, nil),
		recentUpdate("Fine", models.SourceApprovals, nil),
	}})

	assert.Equal(t, 1, svc.RunAll(context.Background()))
	require.Len(t, store.records, 1)
	assert.Equal(t, "Fine", store.records[0].Title)
}

func TestInsertErrorSkipsRecordNotBatch(t *testing.T) {
	store := newFakeStore()
	store.insertErr["Broken"] = errors.New("insert failed")

	svc := testService(store, nil, &fakeScraper{name: "approvals", records: []*models.NewsUpdate{
		recentUpdate("Broken", models.SourceApprovals, nil),
		recentUpdate("Fine", models.SourceApprovals, nil),
	}})

	assert.Equal(t, 1, svc.RunAll(context.Background()))
}

func TestFailedSourceDegradesToEmptyResult(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}

	svc := testService(store, notifier,
		&fakeScraper{name: "withdrawals", err: errors.New("timeout")},
		&fakeScraper{name: "approvals", records: []*models.NewsUpdate{
			recentUpdate("DrugB", models.SourceApprovals, nil),
		}},
	)

	assert.Equal(t, 1, svc.RunAll(context.Background()))
	assert.Equal(t, 1, notifier.calls)
}

func TestAggregationOrderIndependentOfCompletion(t *testing.T) {
	store := newFakeStore()

	// Die Insert-Reihenfolge im Store spiegelt die feste
	// Aggregations-Reihenfolge wider, nicht die Scrape-Dauer.
	svc := testService(store, nil,
		&fakeScraper{name: "withdrawals", records: []*models.NewsUpdate{
			recentUpdate("W1", models.SourceWithdrawals, nil),
		}},
		&fakeScraper{name: "accelerated", records: []*models.NewsUpdate{
			recentUpdate("A1", models.SourceAccelerated, nil),
		}},
		&fakeScraper{name: "approvals", records: []*models.NewsUpdate{
			recentUpdate("P1", models.SourceApprovals, nil),
		}},
	)

	svc.RunAll(context.Background())

	require.Len(t, store.records, 3)
	assert.Equal(t, "W1", store.records[0].Title)
	assert.Equal(t, "A1", store.records[1].Title)
	assert.Equal(t, "P1", store.records[2].Title)
}

func TestNoNewRecordsNoNotification(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}

	svc := testService(store, notifier, &fakeScraper{name: "approvals"})

	assert.Equal(t, 0, svc.RunAll(context.Background()))
	assert.Equal(t, 0, notifier.calls)
}

func TestNotifierErrorDoesNotAffectResult(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{err: errors.New("ses unavailable")}

	svc := testService(store, notifier, &fakeScraper{name: "approvals", records: []*models.NewsUpdate{
		recentUpdate("DrugA", models.SourceApprovals, nil),
	}})

	assert.Equal(t, 1, svc.RunAll(context.Background()))
	assert.Equal(t, 1, notifier.calls)
}

func TestNilNotifierTolerated(t *testing.T) {
	store := newFakeStore()

	svc := testService(store, nil, &fakeScraper{name: "approvals", records: []*models.NewsUpdate{
		recentUpdate("DrugA", models.SourceApprovals, nil),
	}})

	assert.NotPanics(t, func() {
		assert.Equal(t, 1, svc.RunAll(context.Background()))
	})
}
