package models

import (
	"time"
)

// Die drei bekannten Quellen-Tags. Ein Record trägt immer genau einen davon;
// der Tag wird vom Scraper gesetzt, nie aus dem Inhalt abgeleitet.
const (
	SourceWithdrawals = "FDA Withdrawals"
	SourceAccelerated = "FDA-Ongoing | Cancer Accelerated Approvals"
	SourceApprovals   = "FDA Oncology (Cancer)/Hematologic Malignancies Approval Notifications"
)

// NewsUpdate repräsentiert ein Zulassungs- bzw. Rückzugs-Update aus einer der
// FDA-Tabellen. Einmal eingefügte Records werden von der Pipeline nicht mehr
// verändert.
type NewsUpdate struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title" gorm:"index:idx_title_source"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	// URL ist nil, wenn die Zeile keinen Link enthielt.
	URL *string `json:"url,omitempty" gorm:"index"`

	// PublishedDate ist nil, wenn das Datum in der Quelle fehlte oder nicht
	// geparst werden konnte.
	PublishedDate *time.Time `json:"published_date,omitempty"`

	DataSource string `json:"data_source" gorm:"index:idx_title_source"`

	DrugsIdentified []string `json:"drugs_identified,omitempty" gorm:"serializer:json;type:jsonb"`
	GenesIdentified []string `json:"genes_identified,omitempty" gorm:"serializer:json;type:jsonb"`

	IsIndia      bool       `json:"is_india"`
	IsConference bool       `json:"is_conference"`
	Status       string     `json:"status,omitempty"`
	ActiveOn     *time.Time `json:"active_on,omitempty"`
}
