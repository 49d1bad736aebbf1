package scrapers

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// ParseDate normalisiert einen freien Datums-String aus einer Tabellenzelle.
// Leere oder nicht parsbare Eingaben ergeben nil; Fehler werden nie nach
// oben gereicht.
func ParseDate(text string, log *zap.Logger) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	t, err := dateparse.ParseAny(text)
	if err != nil || t.IsZero() {
		log.Warn("Konnte Datum nicht parsen", zap.String("date", text))
		return nil
	}
	return &t
}
