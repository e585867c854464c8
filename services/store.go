package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"digital-library/models"
)

// Precondition errors that fail an import before any record is processed.
var (
	ErrNoContent        = errors.New("no bibtex content provided")
	ErrEditionNotFound  = errors.New("edition not found")
	ErrAmbiguousEdition = errors.New("multiple editions match event and year")
)

// EntityStore is the persistence collaborator of the import pipeline. It
// owns entity lifecycle; the pipeline only asks for get-or-create and
// create operations.
type EntityStore interface {
	GetEdition(id uint) (*models.Edition, error)
	GetOrCreateEvent(name string) (*models.Event, error)
	GetOrCreateEdition(event *models.Event, year int) (*models.Edition, error)
	GetOrCreateAuthor(name string) (*models.Author, error)
	CreateArticle(article *models.Article) error
	AddAuthor(article *models.Article, author *models.Author) error
	AttachPDF(article *models.Article, key, url string) error
}

// GormStore implements EntityStore on a gorm-managed PostgreSQL database.
type GormStore struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	return &GormStore{DB: db, Logger: logger}
}

// GetEdition fetches an edition by id, preloading its event.
func (s *GormStore) GetEdition(id uint) (*models.Edition, error) {
	var ed models.Edition
	if err := s.DB.Preload("Event").First(&ed, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEditionNotFound
		}
		return nil, err
	}
	return &ed, nil
}

// GetOrCreateEvent fetches an event by exact name or creates it.
func (s *GormStore) GetOrCreateEvent(name string) (*models.Event, error) {
	var ev models.Event
	err := s.DB.Where("name = ?", name).First(&ev).Error
	if err == nil {
		return &ev, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ev = models.Event{Name: name}
	if err := s.DB.Create(&ev).Error; err != nil {
		return nil, fmt.Errorf("creating event %q: %w", name, err)
	}
	s.Logger.Info("Created event", zap.String("name", name), zap.Uint("id", ev.ID))
	return &ev, nil
}

// GetOrCreateEdition fetches the edition for (event, year) or creates it.
// More than one existing row for the pair is an ErrAmbiguousEdition.
func (s *GormStore) GetOrCreateEdition(event *models.Event, year int) (*models.Edition, error) {
	var eds []models.Edition
	if err := s.DB.Where("event_id = ? AND year = ?", event.ID, year).Limit(2).Find(&eds).Error; err != nil {
		return nil, err
	}
	switch len(eds) {
	case 1:
		eds[0].Event = *event
		return &eds[0], nil
	case 0:
		ed := models.Edition{EventID: event.ID, Event: *event, Year: year}
		if err := s.DB.Create(&ed).Error; err != nil {
			return nil, fmt.Errorf("creating edition %s %d: %w", event.Name, year, err)
		}
		s.Logger.Info("Created edition", zap.String("event", event.Name), zap.Int("year", year))
		return &ed, nil
	default:
		return nil, ErrAmbiguousEdition
	}
}

// GetOrCreateAuthor fetches an author by exact name match (case-sensitive,
// no normalization) or creates one.
func (s *GormStore) GetOrCreateAuthor(name string) (*models.Author, error) {
	var a models.Author
	err := s.DB.Where("name = ?", name).First(&a).Error
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	a = models.Author{Name: name}
	if err := s.DB.Create(&a).Error; err != nil {
		return nil, fmt.Errorf("creating author %q: %w", name, err)
	}
	return &a, nil
}

// CreateArticle persists an article row. Author association happens
// separately via AddAuthor; the two are not atomic with each other.
func (s *GormStore) CreateArticle(article *models.Article) error {
	if err := s.DB.Omit("Authors", "Edition").Create(article).Error; err != nil {
		return fmt.Errorf("creating article %q: %w", article.Title, err)
	}
	return nil
}

// AddAuthor associates an author with an article.
func (s *GormStore) AddAuthor(article *models.Article, author *models.Author) error {
	if err := s.DB.Model(article).Omit("Authors.*").Association("Authors").Append(author); err != nil {
		return fmt.Errorf("associating author %q with %q: %w", author.Name, article.Title, err)
	}
	return nil
}

// AttachPDF records an uploaded attachment on an existing article.
func (s *GormStore) AttachPDF(article *models.Article, key, url string) error {
	if err := s.DB.Model(article).Updates(map[string]interface{}{
		"pdf_key": key,
		"pdf_url": url,
	}).Error; err != nil {
		return fmt.Errorf("attaching pdf to article %d: %w", article.ID, err)
	}
	article.PDFKey = key
	article.PDFURL = url
	return nil
}
