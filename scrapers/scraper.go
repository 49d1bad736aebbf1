package scrapers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fda-watch/models"
)

// Scraper ist das Interface, das jede FDA-Quelle implementieren muss.
type Scraper interface {
	// Scrape ruft die Quellseite ab und gibt die normalisierten Records in
	// Zeilenreihenfolge zurück.
	Scrape(ctx context.Context) ([]*models.NewsUpdate, error)

	// Name gibt den eindeutigen Namen der Quelle zurück (z.B. "withdrawals").
	Name() string
}

// CustomTransport fügt jeder Anfrage Browser-Header hinzu, ohne die die
// FDA-Seiten den Abruf ablehnen.
type CustomTransport struct {
	Transport http.RoundTripper
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	return t.Transport.RoundTrip(req)
}

// newHTTPClient erstellt den HTTP-Client für einen Scraper.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &CustomTransport{
			Transport: http.DefaultTransport,
		},
	}
}

// fetchDocument ruft eine URL ab und parst die Antwort in einen goquery-Baum.
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// forEachRow iteriert über alle Tabellenzeilen des Dokuments und ruft fn für
// jede Zeile mit mindestens minCols Zellen auf. Kürzere Zeilen (Header,
// Footer, Trenner) werden still übersprungen.
func forEachRow(doc *goquery.Document, minCols int, fn func(cells *goquery.Selection)) {
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCols {
			return
		}
		fn(cells)
	})
}

// cellText gibt den getrimmten Text der i-ten Zelle zurück.
func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

// findAnchor gibt den ersten Link mit href-Attribut in der Zelle zurück,
// oder nil, wenn die Zelle keinen enthält.
func findAnchor(cell *goquery.Selection) *goquery.Selection {
	a := cell.Find("a[href]").First()
	if a.Length() == 0 {
		return nil
	}
	return a
}

// resolveURL löst einen relativen Link ("/...") gegen die Basis der Quelle
// auf. Absolute Links bleiben unverändert.
func resolveURL(base, href string) string {
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return href
}

// strPtr gibt einen Pointer auf einen String zurück.
func strPtr(s string) *string {
	return &s
}
