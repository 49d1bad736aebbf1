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

// ApprovalsScraper liest die Tabelle der Onkologie-Zulassungsmeldungen.
// Spaltenlayout: 0 Wirkstoffname (Link bevorzugt), 1 Beschreibung,
// 2 Zulassungsdatum.
type ApprovalsScraper struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewApprovals erstellt den Scraper für die Approvals-Tabelle.
func NewApprovals(cfg *config.Config, logger *zap.Logger) *ApprovalsScraper {
	return &ApprovalsScraper{
		Config: cfg,
		Logger: logger,
		client: newHTTPClient(cfg.FetchTimeout()),
	}
}

// Name gibt den Namen der Quelle zurück.
func (s *ApprovalsScraper) Name() string {
	return "approvals"
}

// Scrape ruft die Quellseite ab und extrahiert alle Records.
func (s *ApprovalsScraper) Scrape(ctx context.Context) ([]*models.NewsUpdate, error) {
	doc, err := fetchDocument(ctx, s.client, s.Config.ApprovalsURL)
	if err != nil {
		return nil, fmt.Errorf("approvals fetch: %w", err)
	}
	return s.Extract(doc), nil
}

// Extract normalisiert die Tabellenzeilen des Dokuments.
func (s *ApprovalsScraper) Extract(doc *goquery.Document) []*models.NewsUpdate {
	var records []*models.NewsUpdate

	forEachRow(doc, 3, func(cells *goquery.Selection) {
		var fullURL *string
		var drugName string
		if a := findAnchor(cells.Eq(0)); a != nil {
			href, _ := a.Attr("href")
			fullURL = strPtr(resolveURL(s.Config.ApprovalsURL, href))
			drugName = strings.TrimSpace(a.Text())
		} else {
			drugName = cellText(cells, 0)
		}

		records = append(records, &models.NewsUpdate{
			Title:           drugName,
			Description:     cellText(cells, 1),
			URL:             fullURL,
			PublishedDate:   ParseDate(cellText(cells, 2), s.Logger),
			DataSource:      models.SourceApprovals,
			DrugsIdentified: []string{drugName},
			GenesIdentified: []string{},
		})
	})

	s.Logger.Info("Approvals-Tabelle extrahiert", zap.Int("count", len(records)))
	return records
}
