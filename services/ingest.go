package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fda-watch/config"
	"fda-watch/models"
	"fda-watch/scrapers"
)

// Feste Inhalte der Benachrichtigungs-Mail.
const (
	notifySubject = "FDA Drug Updates"
	notifyBody    = "New FDA drug approval/withdrawal records have been added to the database."
)

// UpdateStore ist die Store-Schnittstelle, die der Ingest-Prozess benötigt.
type UpdateStore interface {
	FindExisting(u *models.NewsUpdate) (*models.NewsUpdate, error)
	Insert(u *models.NewsUpdate) error
}

// Notifier verschickt eine Benachrichtigung. Fehler beim Versand dürfen das
// Ingest-Ergebnis nie beeinflussen.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// IngestService orchestriert den gesamten Scrape- und Ingest-Prozess.
type IngestService struct {
	Config   *config.Config
	Store    UpdateStore
	Logger   *zap.Logger
	Scrapers []scrapers.Scraper
	Notifier Notifier
}

// NewIngestService erstellt eine neue Instanz des IngestService.
func NewIngestService(cfg *config.Config, store UpdateStore, logger *zap.Logger, scrapers []scrapers.Scraper, notifier Notifier) *IngestService {
	return &IngestService{
		Config:   cfg,
		Store:    store,
		Logger:   logger,
		Scrapers: scrapers,
		Notifier: notifier,
	}
}

// RunAll scrapt alle Quellen parallel, filtert nach Aktualität, fügt neue
// Records sequenziell ein und benachrichtigt, wenn etwas Neues dabei war.
// Gibt die Anzahl neu eingefügter Records zurück.
func (s *IngestService) RunAll(ctx context.Context) int {
	s.Logger.Info("Starte Scrape-Lauf", zap.Int("sources", len(s.Scrapers)))

	// Ergebnisse landen in festen Slots, damit die Aggregations-Reihenfolge
	// unabhängig von der Fertigstellungs-Reihenfolge bleibt.
	results := make([][]*models.NewsUpdate, len(s.Scrapers))
	var wg sync.WaitGroup

	for i, scraper := range s.Scrapers {
		wg.Add(1)
		go func(i int, scraper scrapers.Scraper) {
			defer wg.Done()
			records, err := scraper.Scrape(ctx)
			if err != nil {
				// Eine ausgefallene Quelle liefert ein leeres Ergebnis,
				// der Lauf geht weiter.
				s.Logger.Error("Quelle fehlgeschlagen", zap.String("source", scraper.Name()), zap.Error(err))
				return
			}
			results[i] = records
		}(i, scraper)
	}
	wg.Wait()

	var all []*models.NewsUpdate
	for _, records := range results {
		all = append(all, records...)
	}
	s.Logger.Info("Alle Quellen abgeschlossen", zap.Int("total_records", len(all)))

	cutoff := time.Now().AddDate(0, 0, -s.Config.LookbackDays)
	recent := FilterRecent(all, cutoff)
	s.Logger.Info("Aktualitätsfilter angewendet",
		zap.Int("kept", len(recent)),
		zap.Int("dropped", len(all)-len(recent)))

	inserted := s.ingest(recent)
	s.Logger.Info("Ingest abgeschlossen",
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(recent)-inserted))

	if inserted > 0 {
		s.notify(ctx)
	}
	return inserted
}

// FilterRecent behält nur Records mit bekanntem Datum ab dem Cutoff.
// Records ohne Datum werden immer verworfen, nie still als "ohne Datum"
// gespeichert.
func FilterRecent(updates []*models.NewsUpdate, cutoff time.Time) []*models.NewsUpdate {
	var recent []*models.NewsUpdate
	for _, u := range updates {
		if u.PublishedDate == nil {
			continue
		}
		if u.PublishedDate.Before(cutoff) {
			continue
		}
		recent = append(recent, u)
	}
	return recent
}

// ingest prüft jeden Record sequenziell gegen den Store und fügt nur nicht
// vorhandene ein. Die Sequenzierung ist die Duplikat-Garantie; hier darf
// nichts parallel laufen.
func (s *IngestService) ingest(updates []*models.NewsUpdate) int {
	inserted := 0
	for _, u := range updates {
		existing, err := s.Store.FindExisting(u)
		if err != nil {
			// Ein fehlerhafter Record bricht den Batch nicht ab.
			s.Logger.Warn("Duplikatsprüfung fehlgeschlagen, Record übersprungen",
				zap.String("title", u.Title), zap.Error(err))
			continue
		}
		if existing != nil {
			s.Logger.Debug("Record bereits vorhanden, wird übersprungen",
				zap.String("title", u.Title), zap.String("source", u.DataSource))
			continue
		}

		if err := s.Store.Insert(u); err != nil {
			s.Logger.Warn("Einfügen fehlgeschlagen, Record übersprungen",
				zap.String("title", u.Title), zap.Error(err))
			continue
		}
		inserted++
	}
	return inserted
}

// notify verschickt die Benachrichtigung best-effort.
func (s *IngestService) notify(ctx context.Context) {
	if s.Notifier == nil {
		s.Logger.Debug("Kein Notifier konfiguriert, Benachrichtigung entfällt")
		return
	}
	if err := s.Notifier.Send(ctx, notifySubject, notifyBody); err != nil {
		s.Logger.Warn("Benachrichtigung fehlgeschlagen", zap.Error(err))
	}
}
