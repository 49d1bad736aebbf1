package storage

import (
	"errors"

	"gorm.io/gorm"

	"fda-watch/models"
)

// UpdateStore kapselt Lese- und Schreibzugriffe auf die Updates-Tabelle.
// Der Tabellenname kommt aus der Konfiguration, nicht aus dem Modell.
type UpdateStore struct {
	db    *gorm.DB
	table string
}

// NewUpdateStore erstellt einen Store über der gegebenen Tabelle.
func NewUpdateStore(db *gorm.DB, table string) *UpdateStore {
	return &UpdateStore{db: db, table: table}
}

// Migrate legt die Updates-Tabelle an bzw. zieht sie auf den aktuellen Stand.
func (s *UpdateStore) Migrate() error {
	return s.db.Table(s.table).AutoMigrate(&models.NewsUpdate{})
}

// FindExisting sucht einen bereits gespeicherten Record mit gleicher
// Identität: gleiche URL (sofern vorhanden) ODER gleicher Titel aus derselben
// Quelle. Kein Treffer ist kein Fehler; dann ist beides nil.
func (s *UpdateStore) FindExisting(u *models.NewsUpdate) (*models.NewsUpdate, error) {
	query := s.db.Table(s.table).Where("title = ? AND data_source = ?", u.Title, u.DataSource)
	if u.URL != nil {
		query = query.Or("url = ?", *u.URL)
	}

	var existing models.NewsUpdate
	if err := query.First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &existing, nil
}

// Insert fügt einen neuen Record ein.
func (s *UpdateStore) Insert(u *models.NewsUpdate) error {
	return s.db.Table(s.table).Create(u).Error
}

// FindRecent gibt die zuletzt gespeicherten Records zurück, optional nach
// Quelle gefiltert.
func (s *UpdateStore) FindRecent(dataSource string, limit int) ([]models.NewsUpdate, error) {
	query := s.db.Table(s.table).Order("created_at desc")
	if dataSource != "" {
		query = query.Where("data_source = ?", dataSource)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var updates []models.NewsUpdate
	if err := query.Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}
