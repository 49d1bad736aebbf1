package scrapers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"fda-watch/config"
	"fda-watch/models"
)

// AcceleratedScraper liest die Tabelle der laufenden Cancer Accelerated
// Approvals. Spaltenlayout: 0 Wirkstoffname (ggf. mit Klammerzusatz),
// 1 Indikation (Link oder Text), 2 AA-Datum, 3 Post-Marketing-Auflage.
type AcceleratedScraper struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewAccelerated erstellt den Scraper für die Accelerated-Approvals-Tabelle.
func NewAccelerated(cfg *config.Config, logger *zap.Logger) *AcceleratedScraper {
	return &AcceleratedScraper{
		Config: cfg,
		Logger: logger,
		client: newHTTPClient(cfg.FetchTimeout()),
	}
}

// Name gibt den Namen der Quelle zurück.
func (s *AcceleratedScraper) Name() string {
	return "accelerated"
}

// Scrape ruft die Quellseite ab und extrahiert alle Records.
func (s *AcceleratedScraper) Scrape(ctx context.Context) ([]*models.NewsUpdate, error) {
	doc, err := fetchDocument(ctx, s.client, s.Config.AcceleratedURL)
	if err != nil {
		return nil, fmt.Errorf("accelerated fetch: %w", err)
	}
	return s.Extract(doc), nil
}

// Extract normalisiert die Tabellenzeilen des Dokuments.
func (s *AcceleratedScraper) Extract(doc *goquery.Document) []*models.NewsUpdate {
	var records []*models.NewsUpdate

	forEachRow(doc, 4, func(cells *goquery.Selection) {
		// Klammerzusätze ("Foo (oral)") gehören nicht zum Wirkstoffnamen.
		drugName := cellText(cells, 0)
		cleanName := drugName
		if idx := strings.Index(drugName, "("); idx >= 0 {
			cleanName = strings.TrimSpace(drugName[:idx])
		}

		// Indikations-Spalte: mit Link wird der Linktext Titel und
		// Beschreibung, ohne Link bleibt der Titel leer. Relative Links
		// werden hier gegen die Site-Root aufgelöst, nicht gegen die
		// Listen-URL.
		var fullURL *string
		var title, description string
		if a := findAnchor(cells.Eq(1)); a != nil {
			href, _ := a.Attr("href")
			fullURL = strPtr(resolveURL(s.Config.SiteRoot, href))
			title = strings.TrimSpace(a.Text())
			description = title
		} else {
			description = cellText(cells, 1)
		}

		// "..." ist der Platzhalter für fehlende Post-Marketing-Auflagen.
		if post := cellText(cells, 3); post != "" && post != "..." {
			description = fmt.Sprintf("%s. Post-marketing: %s", description, post)
		}

		records = append(records, &models.NewsUpdate{
			Title:           title,
			Description:     description,
			URL:             fullURL,
			PublishedDate:   ParseDate(cellText(cells, 2), s.Logger),
			DataSource:      models.SourceAccelerated,
			DrugsIdentified: []string{cleanName},
			GenesIdentified: []string{},
		})
	})

	s.Logger.Info("Accelerated-Approvals-Tabelle extrahiert", zap.Int("count", len(records)))
	return records
}
