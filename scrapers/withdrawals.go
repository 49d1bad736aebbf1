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

// WithdrawalsScraper liest die Tabelle der zurückgezogenen Accelerated
// Approvals. Spaltenlayout: 0 Wirkstoffname, 1 Indikation (Link oder Text),
// 3 Rückzugsdatum.
type WithdrawalsScraper struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewWithdrawals erstellt den Scraper für die Withdrawals-Tabelle.
func NewWithdrawals(cfg *config.Config, logger *zap.Logger) *WithdrawalsScraper {
	return &WithdrawalsScraper{
		Config: cfg,
		Logger: logger,
		client: newHTTPClient(cfg.FetchTimeout()),
	}
}

// Name gibt den Namen der Quelle zurück.
func (s *WithdrawalsScraper) Name() string {
	return "withdrawals"
}

// Scrape ruft die Quellseite ab und extrahiert alle Records.
func (s *WithdrawalsScraper) Scrape(ctx context.Context) ([]*models.NewsUpdate, error) {
	doc, err := fetchDocument(ctx, s.client, s.Config.WithdrawalsURL)
	if err != nil {
		return nil, fmt.Errorf("withdrawals fetch: %w", err)
	}
	return s.Extract(doc), nil
}

// Extract normalisiert die Tabellenzeilen des Dokuments.
func (s *WithdrawalsScraper) Extract(doc *goquery.Document) []*models.NewsUpdate {
	var records []*models.NewsUpdate

	forEachRow(doc, 4, func(cells *goquery.Selection) {
		drugName := cellText(cells, 0)

		// Zweite Spalte: Link bevorzugt, sonst reiner Text ohne URL.
		var fullURL *string
		var description string
		if a := findAnchor(cells.Eq(1)); a != nil {
			href, _ := a.Attr("href")
			fullURL = strPtr(resolveURL(s.Config.WithdrawalsURL, href))
			if title, ok := a.Attr("title"); ok && strings.TrimSpace(title) != "" {
				description = strings.TrimSpace(title)
			} else {
				description = strings.TrimSpace(a.Text())
			}
		} else {
			description = cellText(cells, 1)
		}

		records = append(records, &models.NewsUpdate{
			Title:           drugName,
			Description:     description,
			URL:             fullURL,
			PublishedDate:   ParseDate(cellText(cells, 3), s.Logger),
			DataSource:      models.SourceWithdrawals,
			DrugsIdentified: []string{drugName},
			GenesIdentified: []string{},
		})
	})

	s.Logger.Info("Withdrawals-Tabelle extrahiert", zap.Int("count", len(records)))
	return records
}
